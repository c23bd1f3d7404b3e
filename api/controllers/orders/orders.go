package orders

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/zansmarket/storefront-backend/api/middleware"
	"github.com/zansmarket/storefront-backend/api/responses"
	"github.com/zansmarket/storefront-backend/api/validators"
	cartsvc "github.com/zansmarket/storefront-backend/internal/cart"
	"github.com/zansmarket/storefront-backend/internal/checkout"
	internalorders "github.com/zansmarket/storefront-backend/internal/orders"
	"github.com/zansmarket/storefront-backend/pkg/enums"
	pkgerrors "github.com/zansmarket/storefront-backend/pkg/errors"
	"github.com/zansmarket/storefront-backend/pkg/logger"
	"github.com/zansmarket/storefront-backend/pkg/types"
)

// CartSessions opens the cart of a session.
type CartSessions interface {
	Open(ctx context.Context, sessionID string, notifier cartsvc.Notifier) (*cartsvc.Store, error)
}

type placeOrderRequest struct {
	ShippingAddress shippingAddressRequest `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
}

type shippingAddressRequest struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a shippingAddressRequest) toAddress() types.ShippingAddress {
	return types.ShippingAddress{
		Address:    a.Address,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// PlaceOrder checks out the session cart for the authenticated user.
func PlaceOrder(sessions CartSessions, svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := sessions.Open(r.Context(), middleware.CartSessionFromContext(r.Context()), nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceOrder(r.Context(), store, userID, checkout.PlaceOrderInput{
			ShippingAddress: payload.ShippingAddress.toAddress(),
			PaymentMethod:   payload.PaymentMethod,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// Mine lists the authenticated user's orders, newest first.
func Mine(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListForUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// Detail returns an order to its owner or an admin.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		viewer, err := viewerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID, viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// MarkPaid records payment of an order. The payment method is a label; no
// payment is processed here.
func MarkPaid(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		viewer, err := viewerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.MarkPaid(r.Context(), orderID, viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserUUIDFromContext(r.Context())
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return userID, nil
}

func viewerFromContext(r *http.Request) (internalorders.Viewer, error) {
	userID, err := userIDFromContext(r)
	if err != nil {
		return internalorders.Viewer{}, err
	}
	return internalorders.Viewer{
		UserID:  userID,
		IsAdmin: middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin),
	}, nil
}
