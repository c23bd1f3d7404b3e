package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/zansmarket/storefront-backend/internal/cart"
	"github.com/zansmarket/storefront-backend/internal/checkout"
	"github.com/zansmarket/storefront-backend/internal/orders"
	product "github.com/zansmarket/storefront-backend/internal/products"
	pkgAuth "github.com/zansmarket/storefront-backend/pkg/auth"
	"github.com/zansmarket/storefront-backend/pkg/config"
	"github.com/zansmarket/storefront-backend/pkg/enums"
	pkgerrors "github.com/zansmarket/storefront-backend/pkg/errors"
	"github.com/zansmarket/storefront-backend/pkg/logger"
	"github.com/zansmarket/storefront-backend/pkg/metrics"
	"github.com/zansmarket/storefront-backend/pkg/pagination"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubProducts struct {
	product.Service
}

func (stubProducts) List(context.Context, pagination.Params) (pagination.Page[product.ProductDTO], error) {
	return pagination.Page[product.ProductDTO]{Items: []product.ProductDTO{}}, nil
}

func (stubProducts) Lookup(_ context.Context, id string) (cart.Product, error) {
	if id != "p1" {
		return cart.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return cart.Product{ID: "p1", Name: "Lamp", Price: decimal.NewFromInt(20), CountInStock: 5}, nil
}

type stubOrders struct {
	orders.Service
}

func (stubOrders) Submit(context.Context, uuid.UUID, checkout.Submission) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (stubOrders) ListAll(context.Context, pagination.Params) (pagination.Page[orders.OrderDTO], error) {
	return pagination.Page[orders.OrderDTO]{Items: []orders.OrderDTO{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "test"},
		JWT:  config.JWTConfig{Secret: "secret", Issuer: "zansmarket-test", ExpirationMinutes: 30},
		Cart: config.CartConfig{SlotBackend: config.CartSlotMemory, SessionHeader: "X-Cart-Session", DefaultStockLimit: 10},
	}
}

func newTestRouter(t *testing.T, dbP stubPinger) http.Handler {
	t.Helper()
	cfg := testConfig()
	logg := logger.New(logger.Options{Output: io.Discard})
	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registry)

	sessions, err := cart.NewSessions(cart.SessionsParams{Config: cfg.Cart, Logger: logg, Metrics: cartMetrics})
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	ordersSvc := stubOrders{}
	checkoutSvc, err := checkout.NewService(checkout.DefaultPricing(), ordersSvc, logg, cartMetrics)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return NewRouter(cfg, logg, dbP, nil, registry, sessions, stubProducts{}, checkoutSvc, ordersSvc)
}

func bearer(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return "Bearer " + token
}

func serve(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	h := newTestRouter(t, stubPinger{})
	if resp := serve(h, http.MethodGet, "/health/live", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", resp.Code)
	}
	if resp := serve(h, http.MethodGet, "/health/ready", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", resp.Code)
	}

	down := newTestRouter(t, stubPinger{err: context.DeadlineExceeded})
	if resp := serve(down, http.MethodGet, "/health/ready", "", nil); resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready with db down: expected 503 got %d", resp.Code)
	}
}

func TestPublicCartRoutesMintSession(t *testing.T) {
	h := newTestRouter(t, stubPinger{})

	resp := serve(h, http.MethodPost, "/api/cart/items", `{"product_id":"p1","quantity":2}`, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	session := resp.Header().Get("X-Cart-Session")
	if session == "" {
		t.Fatal("expected minted cart session header")
	}

	resp = serve(h, http.MethodGet, "/api/cart", "", map[string]string{"X-Cart-Session": session})
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"quantity":2`) {
		t.Fatalf("expected persisted cart, got %d %s", resp.Code, resp.Body.String())
	}

	if resp := serve(h, http.MethodGet, "/api/products", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("products: expected 200 got %d", resp.Code)
	}
}

func TestOrderRoutesRequireAuth(t *testing.T) {
	h := newTestRouter(t, stubPinger{})

	if resp := serve(h, http.MethodGet, "/api/orders/mine", "", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	customer := map[string]string{"Authorization": bearer(t, enums.UserRoleCustomer)}
	if resp := serve(h, http.MethodGet, "/api/admin/orders", "", customer); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer on admin route, got %d", resp.Code)
	}

	admin := map[string]string{"Authorization": bearer(t, enums.UserRoleAdmin)}
	if resp := serve(h, http.MethodGet, "/api/admin/orders", "", admin); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.Code)
	}
}

func TestCheckoutRoundTrip(t *testing.T) {
	h := newTestRouter(t, stubPinger{})
	session := map[string]string{"X-Cart-Session": "router-checkout"}
	serve(h, http.MethodPost, "/api/cart/items", `{"product_id":"p1","quantity":1}`, session)

	headers := map[string]string{
		"X-Cart-Session": "router-checkout",
		"Authorization":  bearer(t, enums.UserRoleCustomer),
	}
	body := `{"shipping_address":{"address":"1 Main St","city":"Springfield","postal_code":"12345","country":"US"},"payment_method":"Stripe"}`
	resp := serve(h, http.MethodPost, "/api/orders", body, headers)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	resp = serve(h, http.MethodGet, "/api/cart", "", session)
	if !strings.Contains(resp.Body.String(), `"items":[]`) {
		t.Fatalf("expected cart emptied after checkout, got %s", resp.Body.String())
	}

	resp = serve(h, http.MethodGet, "/metrics", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "checkout_attempts_total") {
		t.Fatalf("expected checkout metric exposed, got %d", resp.Code)
	}
}
