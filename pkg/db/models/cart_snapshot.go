package models

import "time"

// CartSnapshot is the database-backed persistence slot for one cart session.
type CartSnapshot struct {
	SessionID string    `gorm:"column:session_id;primaryKey"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
