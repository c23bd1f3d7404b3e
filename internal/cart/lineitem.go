package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one product quantity held in a cart snapshot.
type LineItem struct {
	ProductID    string          `json:"product"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"qty"`
	CountInStock int             `json:"countInStock,omitempty"`
}

// LineTotal returns price * quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// StockLimit returns the quantity ceiling shown to shoppers. Unknown stock
// (zero or negative) falls back to the provided ceiling.
func (l LineItem) StockLimit(fallback int) int {
	if l.CountInStock > 0 {
		return l.CountInStock
	}
	return fallback
}

// Product is the catalog view accepted by Add. Either identifier field may be
// populated; ID wins when both are.
type Product struct {
	ID                 string
	LegacyID           string
	Name               string
	Image              string
	Price              decimal.Decimal
	CountInStock       int
	LegacyCountInStock int
}

// ResolveID returns the canonical identifier, falling back to the legacy one.
func (p Product) ResolveID() string {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id
	}
	return strings.TrimSpace(p.LegacyID)
}

func (p Product) stock() int {
	if p.CountInStock > 0 {
		return p.CountInStock
	}
	if p.LegacyCountInStock > 0 {
		return p.LegacyCountInStock
	}
	return 0
}

func (p Product) lineItem(id string, quantity int) LineItem {
	return LineItem{
		ProductID:    id,
		Name:         p.Name,
		Image:        p.Image,
		Price:        p.Price,
		Quantity:     quantity,
		CountInStock: p.stock(),
	}
}

// Subtotal sums LineTotal over items.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
