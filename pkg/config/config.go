package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Cart         CartConfig
	Pricing      PricingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ZANSMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"ZANSMARKET_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"ZANSMARKET_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ZANSMARKET_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ZANSMARKET_LOG_WARN_STACK" default:"false"`
	// CORSOrigins extends the built-in local origins, comma separated.
	CORSOrigins []string `envconfig:"ZANSMARKET_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ZANSMARKET_DB_DSN"`
	Driver string `envconfig:"ZANSMARKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ZANSMARKET_DB_HOST"`
	LegacyPort     int    `envconfig:"ZANSMARKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ZANSMARKET_DB_USER"`
	LegacyPassword string `envconfig:"ZANSMARKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"ZANSMARKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"ZANSMARKET_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"ZANSMARKET_SQLITE_PATH" default:"zansmarket.db"`

	MaxOpenConns    int           `envconfig:"ZANSMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ZANSMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ZANSMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ZANSMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ZANSMARKET_REDIS_URL"`
	Address      string        `envconfig:"ZANSMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"ZANSMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"ZANSMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ZANSMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ZANSMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ZANSMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ZANSMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ZANSMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// JWTConfig describes the tokens minted by the external identity provider.
type JWTConfig struct {
	Secret            string `envconfig:"ZANSMARKET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ZANSMARKET_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ZANSMARKET_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ZANSMARKET_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ZANSMARKET_AUTO_MIGRATE" default:"false"`
}

type CartConfig struct {
	SlotBackend       string        `envconfig:"ZANSMARKET_CART_SLOT" default:"redis"`
	SnapshotTTL       time.Duration `envconfig:"ZANSMARKET_CART_SNAPSHOT_TTL" default:"720h"`
	SessionHeader     string        `envconfig:"ZANSMARKET_CART_SESSION_HEADER" default:"X-Cart-Session"`
	DefaultStockLimit int           `envconfig:"ZANSMARKET_CART_DEFAULT_STOCK_LIMIT" default:"10"`
}

func (c CartConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.SlotBackend)) {
	case CartSlotRedis, CartSlotDB, CartSlotMemory:
	default:
		return fmt.Errorf("unsupported %s %q", EnvCartSlot, c.SlotBackend)
	}
	if c.DefaultStockLimit <= 0 {
		return fmt.Errorf("%s must be positive", EnvCartDefaultStockLimit)
	}
	return nil
}

// Backend returns the normalized slot backend name.
func (c CartConfig) Backend() string {
	return strings.ToLower(strings.TrimSpace(c.SlotBackend))
}

// PricingConfig holds the checkout constants. Values are decimal strings.
type PricingConfig struct {
	FreeShippingThreshold string `envconfig:"ZANSMARKET_PRICING_FREE_SHIPPING_THRESHOLD" default:"100.00"`
	FlatShippingFee       string `envconfig:"ZANSMARKET_PRICING_FLAT_SHIPPING_FEE" default:"10.00"`
	TaxRate               string `envconfig:"ZANSMARKET_PRICING_TAX_RATE" default:"0.15"`
}

// Decimals parses the pricing constants.
func (p PricingConfig) Decimals() (threshold, fee, rate decimal.Decimal, err error) {
	if threshold, err = decimal.NewFromString(p.FreeShippingThreshold); err != nil {
		return threshold, fee, rate, fmt.Errorf("parsing %s: %w", EnvPricingThreshold, err)
	}
	if fee, err = decimal.NewFromString(p.FlatShippingFee); err != nil {
		return threshold, fee, rate, fmt.Errorf("parsing %s: %w", EnvPricingFee, err)
	}
	if rate, err = decimal.NewFromString(p.TaxRate); err != nil {
		return threshold, fee, rate, fmt.Errorf("parsing %s: %w", EnvPricingTaxRate, err)
	}
	return threshold, fee, rate, nil
}

// IsSQLite reports whether the embedded sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" || db.IsSQLite() {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
