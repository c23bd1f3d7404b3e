package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgredis "github.com/zansmarket/storefront-backend/pkg/redis"
)

// KeyValueStore is the subset of the redis client used by RedisSlot.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(sessionID string) string
}

// RedisSlot persists a session snapshot under a namespaced redis key.
type RedisSlot struct {
	store KeyValueStore
	key   string
	ttl   time.Duration
}

// NewRedisSlot binds a slot to sessionID. A zero ttl keeps the key forever.
func NewRedisSlot(store KeyValueStore, sessionID string, ttl time.Duration) *RedisSlot {
	return &RedisSlot{
		store: store,
		key:   store.CartKey(sessionID),
		ttl:   ttl,
	}
}

// Load implements Slot.
func (r *RedisSlot) Load(ctx context.Context) ([]byte, error) {
	value, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, pkgredis.ErrNil) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("load %s: %w", r.key, err)
	}
	return []byte(value), nil
}

// Save implements Slot. Each write refreshes the TTL.
func (r *RedisSlot) Save(ctx context.Context, payload []byte) error {
	if err := r.store.Set(ctx, r.key, payload, r.ttl); err != nil {
		return fmt.Errorf("save %s: %w", r.key, err)
	}
	return nil
}

// Backend implements Slot.
func (r *RedisSlot) Backend() string {
	return "redis"
}
