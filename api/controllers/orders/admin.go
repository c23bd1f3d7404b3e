package orders

import (
	"context"
	"net/http"

	"github.com/zansmarket/storefront-backend/api/responses"
	"github.com/zansmarket/storefront-backend/api/validators"
	internalorders "github.com/zansmarket/storefront-backend/internal/orders"
	pkgerrors "github.com/zansmarket/storefront-backend/pkg/errors"
	"github.com/zansmarket/storefront-backend/pkg/logger"
)

// AdminList returns every order, newest first.
func AdminList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminDeliver marks an order delivered.
func AdminDeliver(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.MarkDelivered(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ProductCounter reports the catalog size.
type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
}

// adminStatsResponse leaves out a user count since identities live with the
// external provider.
type adminStatsResponse struct {
	Products int64  `json:"products"`
	Orders   int64  `json:"orders"`
	Revenue  string `json:"revenue"`
}

// AdminStats returns catalog and order totals with revenue from paid orders.
func AdminStats(svc internalorders.Service, catalog ProductCounter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stats unavailable"))
			return
		}

		products, err := catalog.Count(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, adminStatsResponse{
			Products: products,
			Orders:   stats.Orders,
			Revenue:  stats.Revenue.StringFixed(2),
		})
	}
}
