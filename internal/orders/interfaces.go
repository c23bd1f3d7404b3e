package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zansmarket/storefront-backend/pkg/db/models"
	"github.com/zansmarket/storefront-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	DeleteAll(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	PaidTotals(ctx context.Context) ([]decimal.Decimal, error)
}
