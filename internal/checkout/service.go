package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/zansmarket/storefront-backend/internal/cart"
	pkgerrors "github.com/zansmarket/storefront-backend/pkg/errors"
	"github.com/zansmarket/storefront-backend/pkg/logger"
	"github.com/zansmarket/storefront-backend/pkg/metrics"
	"github.com/zansmarket/storefront-backend/pkg/types"
)

const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeFailure  = "failure"
)

// OrderSubmitter accepts a priced submission and returns the new order id.
type OrderSubmitter interface {
	Submit(ctx context.Context, userID uuid.UUID, submission Submission) (uuid.UUID, error)
}

// Service turns a cart into an order.
type Service interface {
	Preview(store *cart.Store) PricedOrder
	PlaceOrder(ctx context.Context, store *cart.Store, userID uuid.UUID, input PlaceOrderInput) (*PlaceOrderResult, error)
}

// PlaceOrderInput carries the shopper supplied checkout fields.
type PlaceOrderInput struct {
	ShippingAddress types.ShippingAddress
	PaymentMethod   string
}

// PlaceOrderResult is returned after a successful submission.
type PlaceOrderResult struct {
	OrderID uuid.UUID   `json:"order_id"`
	Priced  PricedOrder `json:"priced"`
}

type service struct {
	pricing   Pricing
	submitter OrderSubmitter
	logg      *logger.Logger
	metrics   *metrics.CartMetrics
}

// NewService builds the checkout service.
func NewService(pricing Pricing, submitter OrderSubmitter, logg *logger.Logger, m *metrics.CartMetrics) (Service, error) {
	if submitter == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		pricing:   pricing,
		submitter: submitter,
		logg:      logg,
		metrics:   m,
	}, nil
}

func (s *service) Preview(store *cart.Store) PricedOrder {
	return s.pricing.Price(store.Items())
}

// PlaceOrder clears the cart only after the collaborator accepts the order.
func (s *service) PlaceOrder(ctx context.Context, store *cart.Store, userID uuid.UUID, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id required")
	}
	items := store.Items()
	if err := ValidateItems(items); err != nil {
		s.metrics.IncCheckout(outcomeRejected)
		return nil, err
	}
	if err := ValidateShippingAddress(input.ShippingAddress); err != nil {
		s.metrics.IncCheckout(outcomeRejected)
		return nil, err
	}

	submission := s.pricing.BuildSubmission(items, input.ShippingAddress.Trimmed(), normalizePaymentMethod(input.PaymentMethod))
	orderID, err := s.submitter.Submit(ctx, userID, submission)
	if err != nil {
		s.metrics.IncCheckout(outcomeFailure)
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "order submission failed", err)
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order submission failed")
	}

	store.Clear(ctx)
	s.metrics.IncCheckout(outcomeSuccess)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":    orderID.String(),
		"total_price": submission.TotalPrice.StringFixed(pricePlaces),
	}), "order placed")

	return &PlaceOrderResult{OrderID: orderID, Priced: submission.PricedOrder}, nil
}
