package checkout

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zansmarket/storefront-backend/internal/cart"
	"github.com/zansmarket/storefront-backend/pkg/config"
	"github.com/zansmarket/storefront-backend/pkg/types"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func itemsTotalling(value string) []cart.LineItem {
	return []cart.LineItem{{ProductID: "p", Name: "p", Price: d(value), Quantity: 1}}
}

func TestPriceShippingThreshold(t *testing.T) {
	pricing := DefaultPricing()

	atThreshold := pricing.Price(itemsTotalling("100.00"))
	if !atThreshold.ShippingPrice.Equal(d("10")) {
		t.Fatalf("expected shipping 10 at 100.00, got %s", atThreshold.ShippingPrice)
	}

	above := pricing.Price(itemsTotalling("100.01"))
	if !above.ShippingPrice.IsZero() {
		t.Fatalf("expected free shipping at 100.01, got %s", above.ShippingPrice)
	}
}

func TestPriceUsesUnroundedSubtotal(t *testing.T) {
	items := itemsTotalling("100.004")
	priced := DefaultPricing().Price(items)

	if !priced.ItemsPrice.Equal(cart.Subtotal(items)) {
		t.Fatalf("expected items price %s, got %s", cart.Subtotal(items), priced.ItemsPrice)
	}
	if !priced.ShippingPrice.IsZero() {
		t.Fatalf("expected free shipping above the threshold, got %s", priced.ShippingPrice)
	}
	if !priced.TaxPrice.Equal(d("15")) {
		t.Fatalf("expected tax 15 (15.0006 rounded), got %s", priced.TaxPrice)
	}
	if !priced.TotalPrice.Equal(d("115")) {
		t.Fatalf("expected total 115 (115.004 rounded), got %s", priced.TotalPrice)
	}
}

func TestPriceScenarios(t *testing.T) {
	cases := []struct {
		name     string
		items    []cart.LineItem
		shipping string
		tax      string
		total    string
	}{
		{
			name:     "subtotal 50",
			items:    []cart.LineItem{{ProductID: "a", Price: d("25.00"), Quantity: 2}},
			shipping: "10",
			tax:      "7.50",
			total:    "67.50",
		},
		{
			name: "subtotal 150",
			items: []cart.LineItem{
				{ProductID: "a", Price: d("100.00"), Quantity: 1},
				{ProductID: "b", Price: d("25.00"), Quantity: 2},
			},
			shipping: "0",
			tax:      "22.50",
			total:    "172.50",
		},
		{
			name:     "tax rounds to cents",
			items:    []cart.LineItem{{ProductID: "a", Price: d("3.33"), Quantity: 1}},
			shipping: "10",
			tax:      "0.50",
			total:    "13.83",
		},
		{
			name:     "empty",
			items:    nil,
			shipping: "10",
			tax:      "0",
			total:    "10",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			priced := DefaultPricing().Price(tc.items)
			if !priced.ItemsPrice.Equal(cart.Subtotal(tc.items)) {
				t.Fatalf("items price %s does not match subtotal", priced.ItemsPrice)
			}
			if !priced.ShippingPrice.Equal(d(tc.shipping)) {
				t.Fatalf("expected shipping %s, got %s", tc.shipping, priced.ShippingPrice)
			}
			if !priced.TaxPrice.Equal(d(tc.tax)) {
				t.Fatalf("expected tax %s, got %s", tc.tax, priced.TaxPrice)
			}
			if !priced.TotalPrice.Equal(d(tc.total)) {
				t.Fatalf("expected total %s, got %s", tc.total, priced.TotalPrice)
			}
		})
	}
}

func TestPricingFromConfig(t *testing.T) {
	pricing, err := PricingFromConfig(config.PricingConfig{
		FreeShippingThreshold: "50",
		FlatShippingFee:       "4.99",
		TaxRate:               "0.2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	priced := pricing.Price(itemsTotalling("40"))
	if !priced.ShippingPrice.Equal(d("4.99")) || !priced.TaxPrice.Equal(d("8")) || !priced.TotalPrice.Equal(d("52.99")) {
		t.Fatalf("unexpected breakdown %+v", priced)
	}

	if _, err := PricingFromConfig(config.PricingConfig{FreeShippingThreshold: "x", FlatShippingFee: "1", TaxRate: "1"}); err == nil {
		t.Fatal("expected invalid threshold to fail")
	}
}

func TestBuildSubmissionPayload(t *testing.T) {
	items := []cart.LineItem{{ProductID: "P1", Name: "Lamp", Image: "/lamp.png", Price: d("20.00"), Quantity: 3}}
	address := types.ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}

	sub := DefaultPricing().BuildSubmission(items, address, "PayPal")
	items[0].Quantity = 99
	if sub.OrderItems[0].Quantity != 3 {
		t.Fatal("expected submission to own a copy of the items")
	}

	raw, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"orderItems", "shippingAddress", "paymentMethod", "itemsPrice", "shippingPrice", "taxPrice", "totalPrice"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected key %q in payload %s", key, raw)
		}
	}
	shipping := payload["shippingAddress"].(map[string]any)
	if shipping["postalCode"] != "12345" {
		t.Fatalf("unexpected shipping address %v", shipping)
	}
	if payload["totalPrice"] != "79" {
		t.Fatalf("expected total 79 (60 + 10 + 9), got %v", payload["totalPrice"])
	}
}
