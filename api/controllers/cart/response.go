package cart

import (
	"github.com/shopspring/decimal"

	cartsvc "github.com/zansmarket/storefront-backend/internal/cart"
)

type cartItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	MaxQty    int             `json:"max_qty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type cartResponse struct {
	SessionID string             `json:"session_id"`
	Items     []cartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	Notices   []cartsvc.Notice   `json:"notices"`
}

func newCartResponse(sessionID string, store *cartsvc.Store, notices []cartsvc.Notice, stockLimit int) cartResponse {
	items := store.Items()
	out := make([]cartItemResponse, 0, len(items))
	count := 0
	for _, item := range items {
		count += item.Quantity
		out = append(out, cartItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
			MaxQty:    item.StockLimit(stockLimit),
			LineTotal: item.LineTotal(),
		})
	}
	if notices == nil {
		notices = []cartsvc.Notice{}
	}
	return cartResponse{
		SessionID: sessionID,
		Items:     out,
		ItemCount: count,
		Subtotal:  cartsvc.Subtotal(items),
		Notices:   notices,
	}
}
