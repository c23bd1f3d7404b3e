package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/zansmarket/storefront-backend/api/controllers"
	"github.com/zansmarket/storefront-backend/api/routes"
	"github.com/zansmarket/storefront-backend/internal/cart"
	"github.com/zansmarket/storefront-backend/internal/checkout"
	"github.com/zansmarket/storefront-backend/internal/orders"
	product "github.com/zansmarket/storefront-backend/internal/products"
	"github.com/zansmarket/storefront-backend/pkg/config"
	"github.com/zansmarket/storefront-backend/pkg/db"
	"github.com/zansmarket/storefront-backend/pkg/logger"
	"github.com/zansmarket/storefront-backend/pkg/metrics"
	"github.com/zansmarket/storefront-backend/pkg/migrate"
	"github.com/zansmarket/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	var closers []io.Closer
	closeAll := func() {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i].Close())
		}
		if err := multierr.Combine(errs...); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}
	fail := func(msg string, err error) {
		logg.Error(context.Background(), msg, err)
		closeAll()
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		fail("failed to bootstrap database", err)
	}
	closers = append(closers, dbClient)

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		fail("failed to run dev migrations", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() || cfg.Cart.Backend() == config.CartSlotRedis {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			fail("failed to bootstrap redis", err)
		}
		closers = append(closers, redisClient)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(registry)

	sessionsParams := cart.SessionsParams{
		Config:  cfg.Cart,
		DB:      dbClient.DB(),
		Logger:  logg,
		Metrics: cartMetrics,
	}
	if redisClient != nil {
		sessionsParams.Redis = redisClient
	}
	cartSessions, err := cart.NewSessions(sessionsParams)
	if err != nil {
		fail("failed to create cart sessions", err)
	}

	productService, err := product.NewService(product.NewRepository(dbClient.DB()))
	if err != nil {
		fail("failed to create product service", err)
	}

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		fail("failed to create orders service", err)
	}

	pricing, err := checkout.PricingFromConfig(cfg.Pricing)
	if err != nil {
		fail("failed to parse pricing config", err)
	}
	checkoutService, err := checkout.NewService(pricing, ordersService, logg, cartMetrics)
	if err != nil {
		fail("failed to create checkout service", err)
	}

	var redisPinger controllers.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"addr":      addr,
		"cart_slot": cfg.Cart.Backend(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisPinger, registry, cartSessions, productService, checkoutService, ordersService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail("api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(ctx, "api server shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	closeAll()
}
