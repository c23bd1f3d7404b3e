package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zansmarket/storefront-backend/pkg/db/models"
	"github.com/zansmarket/storefront-backend/pkg/types"
)

// OrderItemDTO is one ordered line.
type OrderItemDTO struct {
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"qty"`
}

// AddressDTO is the shipping address as returned to clients.
type AddressDTO struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func newAddressDTO(address types.ShippingAddress) AddressDTO {
	return AddressDTO{
		Address:    address.Address,
		City:       address.City,
		PostalCode: address.PostalCode,
		Country:    address.Country,
	}
}

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	OrderItems      []OrderItemDTO  `json:"order_items"`
	ShippingAddress AddressDTO      `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	ItemsPrice      decimal.Decimal `json:"items_price"`
	ShippingPrice   decimal.Decimal `json:"shipping_price"`
	TaxPrice        decimal.Decimal `json:"tax_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          string          `json:"status"`
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewOrderDTO maps the persisted order and its items.
func NewOrderDTO(order *models.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return &OrderDTO{
		ID:              order.ID,
		UserID:          order.UserID,
		OrderItems:      items,
		ShippingAddress: newAddressDTO(order.ShippingAddress),
		PaymentMethod:   order.PaymentMethod,
		ItemsPrice:      order.ItemsPrice,
		ShippingPrice:   order.ShippingPrice,
		TaxPrice:        order.TaxPrice,
		TotalPrice:      order.TotalPrice,
		Status:          order.Status.String(),
		IsPaid:          order.IsPaid,
		PaidAt:          order.PaidAt,
		IsDelivered:     order.IsDelivered,
		DeliveredAt:     order.DeliveredAt,
		CreatedAt:       order.CreatedAt,
	}
}

// StatsDTO aggregates the order book for the admin dashboard.
type StatsDTO struct {
	Orders  int64
	Revenue decimal.Decimal
}
