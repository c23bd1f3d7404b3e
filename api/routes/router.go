package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zansmarket/storefront-backend/api/controllers"
	cartcontrollers "github.com/zansmarket/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/zansmarket/storefront-backend/api/controllers/orders"
	"github.com/zansmarket/storefront-backend/api/middleware"
	"github.com/zansmarket/storefront-backend/internal/checkout"
	"github.com/zansmarket/storefront-backend/internal/orders"
	product "github.com/zansmarket/storefront-backend/internal/products"
	"github.com/zansmarket/storefront-backend/pkg/config"
	"github.com/zansmarket/storefront-backend/pkg/enums"
	"github.com/zansmarket/storefront-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	gatherer prometheus.Gatherer,
	cartSessions cartcontrollers.Sessions,
	productService product.Service,
	checkoutService checkout.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Cart.SessionHeader, cfg.App.CORSOrigins...),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	cartHandlers := cartcontrollers.NewHandlers(cartSessions, productService, checkoutService, cfg.Cart.DefaultStockLimit, logg)
	cartSession := middleware.CartSession(cfg.Cart.SessionHeader, logg)
	authenticated := middleware.Auth(cfg.JWT, logg)

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(productService, logg))
			r.Get("/{productId}", controllers.ProductDetail(productService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(cartSession)
			r.Get("/", cartHandlers.Fetch())
			r.Delete("/", cartHandlers.Clear())
			r.Get("/summary", cartHandlers.Summary())
			r.Post("/items", cartHandlers.AddItem())
			r.Delete("/items/{productId}", cartHandlers.RemoveItem())
			r.Post("/items/{productId}/increase", cartHandlers.IncreaseItem())
			r.Post("/items/{productId}/decrease", cartHandlers.DecreaseItem())
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticated)
			r.With(cartSession).Post("/", ordercontrollers.PlaceOrder(cartSessions, checkoutService, logg))
			r.Get("/mine", ordercontrollers.Mine(ordersService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
			r.Put("/{orderId}/pay", ordercontrollers.MarkPaid(ordersService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticated)
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Get("/stats", ordercontrollers.AdminStats(ordersService, productService, logg))
			r.Get("/orders", ordercontrollers.AdminList(ordersService, logg))
			r.Put("/orders/{orderId}/deliver", ordercontrollers.AdminDeliver(ordersService, logg))
		})
	})

	return r
}
