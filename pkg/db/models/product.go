package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Image        string          `gorm:"column:image;not null;default:''"`
	Brand        string          `gorm:"column:brand;not null;default:''"`
	Category     string          `gorm:"column:category;not null;default:''"`
	Description  string          `gorm:"column:description;not null;default:''"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CountInStock int             `gorm:"column:count_in_stock;not null;default:0"`
	Rating       decimal.Decimal `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	NumReviews   int             `gorm:"column:num_reviews;not null;default:0"`
	IsFeatured   bool            `gorm:"column:is_featured;not null;default:false"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an identifier when the caller did not.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
