package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zansmarket/storefront-backend/internal/cart"
	"github.com/zansmarket/storefront-backend/pkg/db/models"
	pkgerrors "github.com/zansmarket/storefront-backend/pkg/errors"
	"github.com/zansmarket/storefront-backend/pkg/pagination"
)

// Service exposes catalog reads and the cart lookup.
type Service interface {
	List(ctx context.Context, params pagination.Params) (pagination.Page[ProductDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Lookup(ctx context.Context, id string) (cart.Product, error)
	Import(ctx context.Context, inputs []CreateProductInput) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name         string          `json:"name" validate:"required"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock" validate:"gte=0"`
	Rating       decimal.Decimal `json:"rating"`
	NumReviews   int             `json:"numReviews" validate:"gte=0"`
	IsFeatured   bool            `json:"isFeatured"`
}

type catalogRepository interface {
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, products []*models.Product) error
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo catalogRepository
}

// NewService builds the catalog service.
func NewService(repo catalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (pagination.Page[ProductDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[ProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, cursor, params.Limit)
	if err != nil {
		return pagination.Page[ProductDTO]{}, pkgerrors.FromStore(err, "list products")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewProductDTO(&rows[i]))
	}
	return pagination.Build(dtos, params.Limit, func(p ProductDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	}), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

// Lookup maps a catalog row into the shape accepted by the cart.
func (s *service) Lookup(ctx context.Context, id string) (cart.Product, error) {
	productID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return cart.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return cart.Product{}, err
	}
	return cart.Product{
		ID:           product.ID.String(),
		Name:         product.Name,
		Image:        product.Image,
		Price:        product.Price,
		CountInStock: product.CountInStock,
	}, nil
}

func (s *service) Import(ctx context.Context, inputs []CreateProductInput) (int, error) {
	products := make([]*models.Product, 0, len(inputs))
	for i, input := range inputs {
		if strings.TrimSpace(input.Name) == "" {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %d: name is required", i))
		}
		if input.Price.IsNegative() {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %d: price must not be negative", i))
		}
		products = append(products, &models.Product{
			Name:         strings.TrimSpace(input.Name),
			Image:        input.Image,
			Brand:        input.Brand,
			Category:     input.Category,
			Description:  input.Description,
			Price:        input.Price,
			CountInStock: input.CountInStock,
			Rating:       input.Rating,
			NumReviews:   input.NumReviews,
			IsFeatured:   input.IsFeatured,
		})
	}
	if err := s.repo.Create(ctx, products); err != nil {
		return 0, pkgerrors.FromStore(err, "create products")
	}
	return len(products), nil
}

func (s *service) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, pkgerrors.FromStore(err, "delete products")
	}
	return deleted, nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.FromStore(err, "count products")
	}
	return count, nil
}
