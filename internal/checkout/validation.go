package checkout

import (
	"fmt"
	"strings"

	"github.com/zansmarket/storefront-backend/internal/cart"
	pkgerrors "github.com/zansmarket/storefront-backend/pkg/errors"
	"github.com/zansmarket/storefront-backend/pkg/types"
)

// DefaultPaymentMethod is used when the shopper does not pick one.
const DefaultPaymentMethod = "Stripe"

// ItemViolationDetail describes a line that cannot be submitted.
type ItemViolationDetail struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Reason    string `json:"reason"`
}

// ValidateShippingAddress requires every address field.
func ValidateShippingAddress(address types.ShippingAddress) error {
	address = address.Trimmed()
	var missing []string
	if address.Address == "" {
		missing = append(missing, "address")
	}
	if address.City == "" {
		missing = append(missing, "city")
	}
	if address.PostalCode == "" {
		missing = append(missing, "postalCode")
	}
	if address.Country == "" {
		missing = append(missing, "country")
	}
	if len(missing) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete").WithDetails(map[string]any{
		"missing": missing,
	})
}

// ValidateItems rejects an empty cart and lines that cannot be priced.
func ValidateItems(items []cart.LineItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	var violations []ItemViolationDetail
	for _, item := range items {
		switch {
		case item.Quantity < 1:
			violations = append(violations, ItemViolationDetail{ProductID: item.ProductID, Name: item.Name, Reason: "quantity must be at least 1"})
		case item.Price.IsNegative():
			violations = append(violations, ItemViolationDetail{ProductID: item.ProductID, Name: item.Name, Reason: "price must not be negative"})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%d cart item(s) cannot be ordered", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}

func normalizePaymentMethod(method string) string {
	method = strings.TrimSpace(method)
	if method == "" {
		return DefaultPaymentMethod
	}
	return method
}
