package cart

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zansmarket/storefront-backend/api/middleware"
	"github.com/zansmarket/storefront-backend/api/responses"
	"github.com/zansmarket/storefront-backend/api/validators"
	cartsvc "github.com/zansmarket/storefront-backend/internal/cart"
	"github.com/zansmarket/storefront-backend/internal/checkout"
	pkgerrors "github.com/zansmarket/storefront-backend/pkg/errors"
	"github.com/zansmarket/storefront-backend/pkg/logger"
)

// Sessions opens the cart of a session.
type Sessions interface {
	Open(ctx context.Context, sessionID string, notifier cartsvc.Notifier) (*cartsvc.Store, error)
}

// ProductLookup resolves a product id into the cart's product view.
type ProductLookup interface {
	Lookup(ctx context.Context, id string) (cartsvc.Product, error)
}

// Previewer prices a cart without submitting it.
type Previewer interface {
	Preview(store *cartsvc.Store) checkout.PricedOrder
}

// Handlers serves the /api/cart routes.
type Handlers struct {
	sessions   Sessions
	catalog    ProductLookup
	previewer  Previewer
	stockLimit int
	logg       *logger.Logger
}

// NewHandlers wires the cart handlers. stockLimit is the max quantity shown
// for items whose stock is unknown.
func NewHandlers(sessions Sessions, catalog ProductLookup, previewer Previewer, stockLimit int, logg *logger.Logger) *Handlers {
	return &Handlers{
		sessions:   sessions,
		catalog:    catalog,
		previewer:  previewer,
		stockLimit: stockLimit,
		logg:       logg,
	}
}

// Fetch returns the current cart.
func (h *Handlers) Fetch() http.HandlerFunc {
	return h.withCart(func(w http.ResponseWriter, r *http.Request, c *cartRequest) error {
		return nil
	})
}

// AddItem adds quantity of a catalog product to the cart.
func (h *Handlers) AddItem() http.HandlerFunc {
	return h.withCart(func(w http.ResponseWriter, r *http.Request, c *cartRequest) error {
		if h.catalog == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "product catalog unavailable")
		}
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return err
		}
		product, err := h.catalog.Lookup(r.Context(), payload.ProductID)
		if err != nil {
			return err
		}
		if product.CountInStock <= 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "product is out of stock").
				WithDetails(map[string]any{"product_id": product.ResolveID()})
		}
		held := 0
		if existing, ok := c.store.Item(product.ResolveID()); ok {
			held = existing.Quantity
		}
		if held+payload.Quantity > product.CountInStock {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quantity exceeds stock").
				WithDetails(map[string]any{"product_id": product.ResolveID(), "max_qty": product.CountInStock, "in_cart": held})
		}
		c.status = http.StatusCreated
		return c.store.Add(r.Context(), product, payload.Quantity)
	})
}

// RemoveItem deletes a line. Removing an absent product is a no-op.
func (h *Handlers) RemoveItem() http.HandlerFunc {
	return h.withCart(func(w http.ResponseWriter, r *http.Request, c *cartRequest) error {
		c.store.Remove(r.Context(), productIDParam(r))
		return nil
	})
}

// IncreaseItem bumps a line by one, up to its stock ceiling.
func (h *Handlers) IncreaseItem() http.HandlerFunc {
	return h.withCart(func(w http.ResponseWriter, r *http.Request, c *cartRequest) error {
		productID := productIDParam(r)
		item, ok := c.store.Item(productID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}
		if limit := item.StockLimit(h.stockLimit); item.Quantity >= limit {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quantity at stock limit").
				WithDetails(map[string]any{"product_id": productID, "max_qty": limit})
		}
		c.store.Increase(r.Context(), productID)
		return nil
	})
}

// DecreaseItem lowers a line by one without dropping below one.
func (h *Handlers) DecreaseItem() http.HandlerFunc {
	return h.withCart(func(w http.ResponseWriter, r *http.Request, c *cartRequest) error {
		productID := productIDParam(r)
		if _, ok := c.store.Item(productID); !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}
		c.store.Decrease(r.Context(), productID)
		return nil
	})
}

// Clear empties the cart.
func (h *Handlers) Clear() http.HandlerFunc {
	return h.withCart(func(w http.ResponseWriter, r *http.Request, c *cartRequest) error {
		c.store.Clear(r.Context())
		return nil
	})
}

// Summary returns the checkout pricing preview for the cart.
func (h *Handlers) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.previewer == nil {
			responses.WriteError(r.Context(), h.logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		store, _, err := h.open(r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, summaryResponse{
			ItemCount:   store.Len(),
			PricedOrder: h.previewer.Preview(store),
		})
	}
}

type summaryResponse struct {
	ItemCount int `json:"item_count"`
	checkout.PricedOrder
}

type cartRequest struct {
	store  *cartsvc.Store
	status int
}

func (h *Handlers) withCart(fn func(http.ResponseWriter, *http.Request, *cartRequest) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, notices, err := h.open(r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}

		c := &cartRequest{store: store, status: http.StatusOK}
		if err := fn(w, r, c); err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}

		sessionID := middleware.CartSessionFromContext(r.Context())
		responses.WriteSuccessStatus(w, c.status, newCartResponse(sessionID, store, notices.Notices(), h.stockLimit))
	}
}

func (h *Handlers) open(r *http.Request) (*cartsvc.Store, *cartsvc.Collector, error) {
	if h.sessions == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "cart sessions unavailable")
	}
	notices := &cartsvc.Collector{}
	store, err := h.sessions.Open(r.Context(), middleware.CartSessionFromContext(r.Context()), notices)
	if err != nil {
		return nil, nil, err
	}
	return store, notices, nil
}

func productIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "productId"))
}
