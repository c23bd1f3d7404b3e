package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/zansmarket/storefront-backend/internal/orders"
	product "github.com/zansmarket/storefront-backend/internal/products"
	"github.com/zansmarket/storefront-backend/pkg/config"
	"github.com/zansmarket/storefront-backend/pkg/db"
	"github.com/zansmarket/storefront-backend/pkg/logger"
	"github.com/zansmarket/storefront-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	destroyOnly := flag.Bool("d", false, "destroy orders and products without importing")
	file := flag.String("file", "", "catalog JSON file (defaults to the bundled sample catalog)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	productService, err := product.NewService(product.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create product service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	s := &seeder{products: productService, orders: ordersService}

	if *destroyOnly {
		res, err := s.destroy(ctx)
		if err != nil {
			logg.Error(ctx, "destroy failed", err)
			os.Exit(1)
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"orders_deleted":   res.OrdersDeleted,
			"products_deleted": res.ProductsDeleted,
		}), "data destroyed")
		return
	}

	raw := sampleCatalog
	if *file != "" {
		raw, err = os.ReadFile(*file)
		if err != nil {
			logg.Error(ctx, "failed to read catalog file", err)
			os.Exit(1)
		}
	}
	inputs, err := parseCatalog(raw)
	if err != nil {
		logg.Error(ctx, "invalid catalog", err)
		os.Exit(1)
	}

	res, err := s.importCatalog(ctx, inputs)
	if err != nil {
		logg.Error(ctx, "import failed", err)
		os.Exit(1)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"orders_deleted":   res.OrdersDeleted,
		"products_deleted": res.ProductsDeleted,
		"imported":         res.Imported,
	}), "data imported")
}
