package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zansmarket/storefront-backend/pkg/enums"
	"github.com/zansmarket/storefront-backend/pkg/types"
)

// Order is a submitted checkout with its priced totals.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	ItemsPrice      decimal.Decimal       `gorm:"column:items_price;type:numeric(12,2);not null"`
	ShippingPrice   decimal.Decimal       `gorm:"column:shipping_price;type:numeric(12,2);not null"`
	TaxPrice        decimal.Decimal       `gorm:"column:tax_price;type:numeric(12,2);not null"`
	TotalPrice      decimal.Decimal       `gorm:"column:total_price;type:numeric(12,2);not null"`
	PaymentMethod   string                `gorm:"column:payment_method;not null"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	Status          enums.OrderStatus     `gorm:"column:status;not null;default:'pending'"`
	IsPaid          bool                  `gorm:"column:is_paid;not null;default:false"`
	PaidAt          *time.Time            `gorm:"column:paid_at"`
	IsDelivered     bool                  `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt     *time.Time            `gorm:"column:delivered_at"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an identifier when the caller did not.
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
