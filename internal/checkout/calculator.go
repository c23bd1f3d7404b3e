package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/zansmarket/storefront-backend/internal/cart"
	"github.com/zansmarket/storefront-backend/pkg/config"
	"github.com/zansmarket/storefront-backend/pkg/types"
)

const pricePlaces = 2

// Pricing holds the checkout constants.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPricing ships free above 100.00, charges 10.00 otherwise and taxes at 15%.
func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromInt(100),
		FlatShippingFee:       decimal.NewFromInt(10),
		TaxRate:               decimal.RequireFromString("0.15"),
	}
}

// PricingFromConfig parses the configured constants.
func PricingFromConfig(cfg config.PricingConfig) (Pricing, error) {
	threshold, fee, rate, err := cfg.Decimals()
	if err != nil {
		return Pricing{}, err
	}
	return Pricing{
		FreeShippingThreshold: threshold,
		FlatShippingFee:       fee,
		TaxRate:               rate,
	}, nil
}

// PricedOrder is the price breakdown of a cart at checkout time.
type PricedOrder struct {
	ItemsPrice    decimal.Decimal `json:"itemsPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	TaxPrice      decimal.Decimal `json:"taxPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// Submission is the payload handed to the order collaborator.
type Submission struct {
	OrderItems      []cart.LineItem       `json:"orderItems"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	PricedOrder
}

// Price derives the breakdown for items. itemsPrice is the cart subtotal as
// is; only tax and total are rounded to cents.
func (p Pricing) Price(items []cart.LineItem) PricedOrder {
	itemsPrice := cart.Subtotal(items)

	shipping := p.FlatShippingFee
	if itemsPrice.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := itemsPrice.Mul(p.TaxRate).Round(pricePlaces)

	return PricedOrder{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    itemsPrice.Add(shipping).Add(tax).Round(pricePlaces),
	}
}

// BuildSubmission prices items and assembles the order payload.
func (p Pricing) BuildSubmission(items []cart.LineItem, address types.ShippingAddress, paymentMethod string) Submission {
	orderItems := make([]cart.LineItem, len(items))
	copy(orderItems, items)
	return Submission{
		OrderItems:      orderItems,
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
		PricedOrder:     p.Price(items),
	}
}
