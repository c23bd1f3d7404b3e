package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"

	product "github.com/zansmarket/storefront-backend/internal/products"
)

//go:embed catalog.json
var sampleCatalog []byte

type catalogStore interface {
	Import(ctx context.Context, inputs []product.CreateProductInput) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type orderStore interface {
	DeleteAll(ctx context.Context) (int64, error)
}

type seeder struct {
	products catalogStore
	orders   orderStore
}

type seedResult struct {
	OrdersDeleted   int64
	ProductsDeleted int64
	Imported        int
}

func parseCatalog(raw []byte) ([]product.CreateProductInput, error) {
	var inputs []product.CreateProductInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return inputs, nil
}

// destroy removes orders before products. Both deletes are attempted even
// when the first one fails.
func (s *seeder) destroy(ctx context.Context) (seedResult, error) {
	var res seedResult
	var errs []error

	deleted, err := s.orders.DeleteAll(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("deleting orders: %w", err))
	}
	res.OrdersDeleted = deleted

	deleted, err = s.products.DeleteAll(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("deleting products: %w", err))
	}
	res.ProductsDeleted = deleted

	return res, multierr.Combine(errs...)
}

// importCatalog clears existing data and loads inputs.
func (s *seeder) importCatalog(ctx context.Context, inputs []product.CreateProductInput) (seedResult, error) {
	res, err := s.destroy(ctx)
	if err != nil {
		return res, err
	}
	imported, err := s.products.Import(ctx, inputs)
	if err != nil {
		return res, fmt.Errorf("importing products: %w", err)
	}
	res.Imported = imported
	return res, nil
}
