package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zansmarket/storefront-backend/pkg/db/models"
)

// DBSlot persists a session snapshot in the cart_snapshots table.
type DBSlot struct {
	db        *gorm.DB
	sessionID string
}

// NewDBSlot binds a slot to sessionID.
func NewDBSlot(db *gorm.DB, sessionID string) *DBSlot {
	return &DBSlot{db: db, sessionID: sessionID}
}

// Load implements Slot.
func (d *DBSlot) Load(ctx context.Context) ([]byte, error) {
	var snapshot models.CartSnapshot
	err := d.db.WithContext(ctx).
		Where("session_id = ?", d.sessionID).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	return []byte(snapshot.Payload), nil
}

// Save implements Slot.
func (d *DBSlot) Save(ctx context.Context, payload []byte) error {
	snapshot := models.CartSnapshot{
		SessionID: d.sessionID,
		Payload:   string(payload),
		UpdatedAt: time.Now().UTC(),
	}
	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&snapshot).Error
	if err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

// Backend implements Slot.
func (d *DBSlot) Backend() string {
	return "db"
}
