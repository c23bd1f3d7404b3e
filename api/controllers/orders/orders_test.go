package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zansmarket/storefront-backend/api/middleware"
	cartsvc "github.com/zansmarket/storefront-backend/internal/cart"
	"github.com/zansmarket/storefront-backend/internal/checkout"
	internalorders "github.com/zansmarket/storefront-backend/internal/orders"
	"github.com/zansmarket/storefront-backend/pkg/enums"
	pkgerrors "github.com/zansmarket/storefront-backend/pkg/errors"
	"github.com/zansmarket/storefront-backend/pkg/logger"
	"github.com/zansmarket/storefront-backend/pkg/pagination"
)

const testSession = "checkout-session"

type stubOrders struct {
	internalorders.Service
	orderID   uuid.UUID
	submitErr error
	submitted []checkout.Submission
	viewer    internalorders.Viewer
	getErr    error
	delivered uuid.UUID
	listUser  uuid.UUID
}

func (s *stubOrders) Submit(_ context.Context, _ uuid.UUID, submission checkout.Submission) (uuid.UUID, error) {
	if s.submitErr != nil {
		return uuid.Nil, s.submitErr
	}
	s.submitted = append(s.submitted, submission)
	return s.orderID, nil
}

func (s *stubOrders) Get(_ context.Context, orderID uuid.UUID, viewer internalorders.Viewer) (*internalorders.OrderDTO, error) {
	s.viewer = viewer
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &internalorders.OrderDTO{ID: orderID, Status: enums.OrderStatusPending.String()}, nil
}

func (s *stubOrders) ListForUser(_ context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[internalorders.OrderDTO], error) {
	s.listUser = userID
	return pagination.Page[internalorders.OrderDTO]{Items: []internalorders.OrderDTO{{ID: s.orderID}}}, nil
}

func (s *stubOrders) MarkDelivered(_ context.Context, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	s.delivered = orderID
	return &internalorders.OrderDTO{ID: orderID, Status: enums.OrderStatusDelivered.String(), IsDelivered: true}, nil
}

func (s *stubOrders) Stats(context.Context) (*internalorders.StatsDTO, error) {
	return &internalorders.StatsDTO{Orders: 4, Revenue: decimal.RequireFromString("169.5")}, nil
}

type countingCatalog struct {
	count int64
	err   error
}

func (c countingCatalog) Count(context.Context) (int64, error) {
	return c.count, c.err
}

type fixture struct {
	router   http.Handler
	sessions *cartsvc.Sessions
	orders   *stubOrders
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logg := logger.New(logger.Options{Output: io.Discard})
	sessions := cartsvc.NewSessionsWithSlots(cartsvc.NewMemorySlots().Slot, nil, nil)
	stub := &stubOrders{orderID: uuid.New()}
	checkoutSvc, err := checkout.NewService(checkout.DefaultPricing(), stub, logg, nil)
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.CartSession("", nil))
	r.Post("/api/orders", PlaceOrder(sessions, checkoutSvc, nil))
	r.Get("/api/orders/mine", Mine(stub, nil))
	r.Get("/api/orders/{orderId}", Detail(stub, nil))
	r.Put("/api/admin/orders/{orderId}/deliver", AdminDeliver(stub, nil))
	r.Get("/api/admin/stats", AdminStats(stub, countingCatalog{count: 6}, nil))
	return fixture{router: r, sessions: sessions, orders: stub}
}

func (f fixture) fillCart(t *testing.T) {
	t.Helper()
	store, err := f.sessions.Open(context.Background(), testSession, nil)
	if err != nil {
		t.Fatalf("open cart: %v", err)
	}
	if err := store.Add(context.Background(), cartsvc.Product{ID: "p1", Name: "Lamp", Price: decimal.NewFromInt(20)}, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
}

func (f fixture) cartLen(t *testing.T) int {
	t.Helper()
	store, err := f.sessions.Open(context.Background(), testSession, nil)
	if err != nil {
		t.Fatalf("open cart: %v", err)
	}
	return store.Len()
}

func request(method, path string, body any, userID uuid.UUID, role enums.UserRole) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(middleware.DefaultCartSessionHeader, testSession)
	ctx := req.Context()
	if userID != uuid.Nil {
		ctx = middleware.WithUserID(ctx, userID.String())
		ctx = middleware.WithRole(ctx, string(role))
	}
	return req.WithContext(ctx)
}

var validBody = map[string]any{
	"shipping_address": map[string]string{
		"address":     "1 Main St",
		"city":        "Springfield",
		"postal_code": "12345",
		"country":     "US",
	},
	"payment_method": "Stripe",
}

func TestPlaceOrderClearsCartOnSuccess(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodPost, "/api/orders", validBody, uuid.New(), enums.UserRoleCustomer))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data checkout.PlaceOrderResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.OrderID != f.orders.orderID {
		t.Fatalf("unexpected order id %s", envelope.Data.OrderID)
	}
	if !envelope.Data.Priced.TotalPrice.Equal(decimal.NewFromInt(79)) {
		t.Fatalf("expected total 79, got %s", envelope.Data.Priced.TotalPrice)
	}
	if len(f.orders.submitted) != 1 || f.orders.submitted[0].OrderItems[0].Quantity != 3 {
		t.Fatalf("unexpected submission %+v", f.orders.submitted)
	}
	if got := f.orders.submitted[0].ShippingAddress.PostalCode; got != "12345" {
		t.Fatalf("expected postal code from postal_code, got %q", got)
	}
	if got := f.cartLen(t); got != 0 {
		t.Fatalf("expected cleared cart, got %d lines", got)
	}
}

func TestPlaceOrderKeepsCartOnFailure(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.orders.submitErr = pkgerrors.New(pkgerrors.CodeDependency, "orders db down")

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodPost, "/api/orders", validBody, uuid.New(), enums.UserRoleCustomer))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if got := f.cartLen(t); got != 1 {
		t.Fatalf("expected cart to survive failure, got %d lines", got)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodPost, "/api/orders", validBody, uuid.New(), enums.UserRoleCustomer))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("empty cart: expected 400 got %d", resp.Code)
	}

	f.fillCart(t)
	resp = httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodPost, "/api/orders", map[string]any{
		"shipping_address": map[string]string{"address": "1 Main St"},
	}, uuid.New(), enums.UserRoleCustomer))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("incomplete address: expected 400 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodPost, "/api/orders", validBody, uuid.Nil, ""))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401 got %d", resp.Code)
	}
	if len(f.orders.submitted) != 0 {
		t.Fatalf("nothing should have been submitted")
	}
}

func TestPlaceOrderRejectsCamelCaseAddress(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodPost, "/api/orders", map[string]any{
		"shipping_address": map[string]string{
			"address":    "1 Main St",
			"city":       "Springfield",
			"postalCode": "12345",
			"country":    "US",
		},
		"payment_method": "Stripe",
	}, uuid.New(), enums.UserRoleCustomer))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown postalCode key, got %d", resp.Code)
	}
	if got := f.cartLen(t); got != 1 {
		t.Fatalf("expected cart untouched, got %d lines", got)
	}
}

func TestDetailPassesViewer(t *testing.T) {
	f := newFixture(t)
	admin := uuid.New()

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodGet, "/api/orders/"+uuid.NewString(), nil, admin, enums.UserRoleAdmin))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if f.orders.viewer.UserID != admin || !f.orders.viewer.IsAdmin {
		t.Fatalf("unexpected viewer %+v", f.orders.viewer)
	}

	f.orders.getErr = pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	resp = httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodGet, "/api/orders/"+uuid.NewString(), nil, uuid.New(), enums.UserRoleCustomer))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodGet, "/api/orders/not-a-uuid", nil, admin, enums.UserRoleAdmin))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMineUsesAuthenticatedUser(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodGet, "/api/orders/mine?limit=5", nil, userID, enums.UserRoleCustomer))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if f.orders.listUser != userID {
		t.Fatalf("expected list for %s, got %s", userID, f.orders.listUser)
	}
}

func TestAdminDeliver(t *testing.T) {
	f := newFixture(t)
	orderID := uuid.New()

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodPut, "/api/admin/orders/"+orderID.String()+"/deliver", nil, uuid.New(), enums.UserRoleAdmin))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if f.orders.delivered != orderID {
		t.Fatalf("expected %s delivered, got %s", orderID, f.orders.delivered)
	}
}

func TestAdminStats(t *testing.T) {
	f := newFixture(t)

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, request(http.MethodGet, "/api/admin/stats", nil, uuid.New(), enums.UserRoleAdmin))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["products"] != float64(6) || envelope.Data["orders"] != float64(4) {
		t.Fatalf("unexpected counts %v", envelope.Data)
	}
	if envelope.Data["revenue"] != "169.50" {
		t.Fatalf("expected revenue 169.50, got %v", envelope.Data["revenue"])
	}
	if _, ok := envelope.Data["users"]; ok {
		t.Fatalf("user count is not reported: %v", envelope.Data)
	}
}

func TestAdminStatsCatalogFailure(t *testing.T) {
	failing := AdminStats(&stubOrders{}, countingCatalog{err: pkgerrors.New(pkgerrors.CodeDependency, "catalog down")}, nil)
	resp := httptest.NewRecorder()
	failing(resp, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
