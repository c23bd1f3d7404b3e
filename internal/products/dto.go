package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zansmarket/storefront-backend/pkg/db/models"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"count_in_stock"`
	Rating       decimal.Decimal `json:"rating"`
	NumReviews   int             `json:"num_reviews"`
	IsFeatured   bool            `json:"is_featured"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:           product.ID,
		Name:         product.Name,
		Image:        product.Image,
		Brand:        product.Brand,
		Category:     product.Category,
		Description:  product.Description,
		Price:        product.Price,
		CountInStock: product.CountInStock,
		Rating:       product.Rating,
		NumReviews:   product.NumReviews,
		IsFeatured:   product.IsFeatured,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}
