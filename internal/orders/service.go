package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zansmarket/storefront-backend/internal/checkout"
	"github.com/zansmarket/storefront-backend/pkg/db/models"
	"github.com/zansmarket/storefront-backend/pkg/enums"
	pkgerrors "github.com/zansmarket/storefront-backend/pkg/errors"
	"github.com/zansmarket/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Viewer identifies who is reading or mutating an order.
type Viewer struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func (v Viewer) canAccess(order *models.Order) bool {
	return v.IsAdmin || (v.UserID != uuid.Nil && order.UserID == v.UserID)
}

// Service is the order submission collaborator plus order administration.
type Service interface {
	checkout.OrderSubmitter
	Get(ctx context.Context, orderID uuid.UUID, viewer Viewer) (*OrderDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[OrderDTO], error)
	ListAll(ctx context.Context, params pagination.Params) (pagination.Page[OrderDTO], error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, viewer Viewer) (*OrderDTO, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	DeleteAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*StatsDTO, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds the orders service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

// Submit stores the order and its items in one transaction.
func (s *service) Submit(ctx context.Context, userID uuid.UUID, submission checkout.Submission) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id required")
	}
	if len(submission.OrderItems) == 0 {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "no order items")
	}

	order := &models.Order{
		UserID:          userID,
		ItemsPrice:      submission.ItemsPrice,
		ShippingPrice:   submission.ShippingPrice,
		TaxPrice:        submission.TaxPrice,
		TotalPrice:      submission.TotalPrice,
		PaymentMethod:   submission.PaymentMethod,
		ShippingAddress: submission.ShippingAddress,
		Status:          enums.OrderStatusPending,
		Items:           make([]models.OrderItem, 0, len(submission.OrderItems)),
	}
	for i, item := range submission.OrderItems {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Position:  i,
			Price:     item.Price,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateOrder(ctx, order)
	})
	if err != nil {
		return uuid.Nil, pkgerrors.FromStore(err, "create order")
	}
	return order.ID, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID, viewer Viewer) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !viewer.canAccess(order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return NewOrderDTO(order), nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[OrderDTO], error) {
	if userID == uuid.Nil {
		return pagination.Page[OrderDTO]{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id required")
	}
	return s.list(ctx, &userID, params)
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (pagination.Page[OrderDTO], error) {
	return s.list(ctx, nil, params)
}

func (s *service) list(ctx context.Context, userID *uuid.UUID, params pagination.Params) (pagination.Page[OrderDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListOrders(ctx, userID, cursor, params.Limit)
	if err != nil {
		return pagination.Page[OrderDTO]{}, pkgerrors.FromStore(err, "list orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOrderDTO(&rows[i]))
	}
	return pagination.Build(dtos, params.Limit, func(o OrderDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	}), nil
}

// MarkPaid records payment. Paying twice keeps the first paid_at.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID, viewer Viewer) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !viewer.canAccess(order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	if order.IsPaid {
		return NewOrderDTO(order), nil
	}

	updates := map[string]any{
		"is_paid": true,
		"paid_at": s.now().UTC(),
	}
	if order.Status == enums.OrderStatusPending {
		updates["status"] = enums.OrderStatusPaid
	}
	if err := s.update(ctx, orderID, updates); err != nil {
		return nil, err
	}
	return s.reload(ctx, orderID)
}

// MarkDelivered records delivery.
func (s *service) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsDelivered {
		return NewOrderDTO(order), nil
	}

	updates := map[string]any{
		"is_delivered": true,
		"delivered_at": s.now().UTC(),
		"status":       enums.OrderStatusDelivered,
	}
	if err := s.update(ctx, orderID, updates); err != nil {
		return nil, err
	}
	return s.reload(ctx, orderID)
}

func (s *service) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.WithTx(tx).DeleteAll(ctx)
		deleted = n
		return err
	})
	if err != nil {
		return 0, pkgerrors.FromStore(err, "delete orders")
	}
	return deleted, nil
}

// Stats counts orders and sums the totals of paid ones.
func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	count, err := s.repo.CountOrders(ctx)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "count orders")
	}
	totals, err := s.repo.PaidTotals(ctx)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "sum paid orders")
	}
	return &StatsDTO{Orders: count, Revenue: decimal.Sum(decimal.Zero, totals...)}, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "load order")
	}
	return order, nil
}

func (s *service) reload(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

func (s *service) update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	if err := s.repo.UpdateOrder(ctx, orderID, updates); err != nil {
		return pkgerrors.FromStore(err, "update order")
	}
	return nil
}
