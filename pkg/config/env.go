package config

const (
	EnvPrefix = "ZANSMARKET"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	CartSlotRedis  = "redis"
	CartSlotDB     = "db"
	CartSlotMemory = "memory"
)

const (
	EnvAppEnv    = "ZANSMARKET_APP_ENV"
	EnvPort      = "ZANSMARKET_APP_PORT"
	EnvLogLevel  = "ZANSMARKET_LOG_LEVEL"
	EnvLogFormat = "ZANSMARKET_LOG_FORMAT"

	EnvDBDSN  = "ZANSMARKET_DB_DSN"
	EnvDBHost = "ZANSMARKET_DB_HOST"
	EnvDBPort = "ZANSMARKET_DB_PORT"
	EnvDBUser = "ZANSMARKET_DB_USER"
	EnvDBPass = "ZANSMARKET_DB_PASSWORD"
	EnvDBName = "ZANSMARKET_DB_NAME"

	EnvUseSQLite = "ZANSMARKET_USE_SQLITE"

	EnvRedisURL = "ZANSMARKET_REDIS_URL"

	EnvJWTSecret = "ZANSMARKET_JWT_SECRET"
	EnvJWTIssuer = "ZANSMARKET_JWT_ISSUER"

	EnvCartSlot              = "ZANSMARKET_CART_SLOT"
	EnvCartSnapshotTTL       = "ZANSMARKET_CART_SNAPSHOT_TTL"
	EnvCartDefaultStockLimit = "ZANSMARKET_CART_DEFAULT_STOCK_LIMIT"

	EnvPricingThreshold = "ZANSMARKET_PRICING_FREE_SHIPPING_THRESHOLD"
	EnvPricingFee       = "ZANSMARKET_PRICING_FLAT_SHIPPING_FEE"
	EnvPricingTaxRate   = "ZANSMARKET_PRICING_TAX_RATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
