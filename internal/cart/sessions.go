package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/zansmarket/storefront-backend/pkg/config"
	pkgerrors "github.com/zansmarket/storefront-backend/pkg/errors"
	"github.com/zansmarket/storefront-backend/pkg/logger"
	"github.com/zansmarket/storefront-backend/pkg/metrics"
)

// SlotFactory returns the persistence slot for a session id.
type SlotFactory func(sessionID string) Slot

// RedisSlots builds redis-backed slots.
func RedisSlots(store KeyValueStore, ttl time.Duration) SlotFactory {
	return func(sessionID string) Slot {
		return NewRedisSlot(store, sessionID, ttl)
	}
}

// DBSlots builds database-backed slots.
func DBSlots(db *gorm.DB) SlotFactory {
	return func(sessionID string) Slot {
		return NewDBSlot(db, sessionID)
	}
}

// SessionsParams wires the Sessions dependencies.
type SessionsParams struct {
	Config  config.CartConfig
	Redis   KeyValueStore
	DB      *gorm.DB
	Logger  *logger.Logger
	Metrics *metrics.CartMetrics
}

// Sessions opens a Store per cart session on the configured slot backend.
type Sessions struct {
	slots   SlotFactory
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

// NewSessions picks the slot backend from configuration.
func NewSessions(params SessionsParams) (*Sessions, error) {
	var slots SlotFactory
	switch params.Config.Backend() {
	case config.CartSlotRedis:
		if params.Redis == nil {
			return nil, fmt.Errorf("cart slot %q requires a redis client", config.CartSlotRedis)
		}
		slots = RedisSlots(params.Redis, params.Config.SnapshotTTL)
	case config.CartSlotDB:
		if params.DB == nil {
			return nil, fmt.Errorf("cart slot %q requires a database", config.CartSlotDB)
		}
		slots = DBSlots(params.DB)
	case config.CartSlotMemory:
		slots = NewMemorySlots().Slot
	default:
		return nil, fmt.Errorf("unsupported cart slot %q", params.Config.SlotBackend)
	}
	return NewSessionsWithSlots(slots, params.Logger, params.Metrics), nil
}

// NewSessionsWithSlots uses an explicit slot factory.
func NewSessionsWithSlots(slots SlotFactory, logg *logger.Logger, m *metrics.CartMetrics) *Sessions {
	return &Sessions{slots: slots, logg: logg, metrics: m}
}

// Open rehydrates the Store for sessionID. Notices are delivered to notifier.
func (s *Sessions) Open(ctx context.Context, sessionID string, notifier Notifier) (*Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session id is required")
	}
	if s.logg != nil {
		ctx = s.logg.WithSessionID(ctx, sessionID)
	}
	return Open(ctx, Options{
		Slot:     s.slots(sessionID),
		Notifier: notifier,
		Logger:   s.logg,
		Metrics:  s.metrics,
	}), nil
}
