package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zansmarket/storefront-backend/pkg/config"
	"github.com/zansmarket/storefront-backend/pkg/logger"
)

// Cart snapshots live under zm:cart:<session>.
const (
	keyNamespace = "zm"
	cartPrefix   = "cart"
)

// ErrNil is returned by Get when the session has no stored cart.
var ErrNil = redis.Nil

var errNotConnected = errors.New("redis client not initialized")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
}

// Client backs the redis cart slot.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// New connects to redis and pings it once so a bad address fails at boot
// rather than on the first cart write.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"redis_addr": opts.Addr, "redis_db": opts.DB}), "redis cart slot connected")
	}
	return &Client{store: raw, raw: raw}, nil
}

// optionsFromConfig prefers ZANSMARKET_REDIS_URL. Values the URL leaves unset
// fall back to the discrete settings.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password}
	default:
		return nil, errors.New("redis url or address is required")
	}

	fallback(&opts.DB, cfg.DB)
	fallback(&opts.PoolSize, cfg.PoolSize)
	fallback(&opts.MinIdleConns, cfg.MinIdleConns)
	fallback(&opts.DialTimeout, cfg.DialTimeout)
	fallback(&opts.ReadTimeout, cfg.ReadTimeout)
	fallback(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func fallback[T comparable](dst *T, value T) {
	var zero T
	if *dst == zero {
		*dst = value
	}
}

// Set stores a snapshot payload. A zero ttl keeps the key forever.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.store == nil {
		return errNotConnected
	}
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Get returns the payload stored at key, or ErrNil.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c.store == nil {
		return "", errNotConnected
	}
	return c.store.Get(ctx, key).Result()
}

// CartKey returns the slot key for a session. Surrounding whitespace is ignored.
func (c *Client) CartKey(sessionID string) string {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return keyNamespace + ":" + cartPrefix
	}
	return keyNamespace + ":" + cartPrefix + ":" + sessionID
}

// Ping backs the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errNotConnected
	}
	return c.store.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
