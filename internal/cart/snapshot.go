package cart

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// snapshotRecord accepts both the current and the legacy persisted shapes.
type snapshotRecord struct {
	Product            string          `json:"product"`
	LegacyID           string          `json:"_id"`
	Name               string          `json:"name"`
	Image              string          `json:"image"`
	Price              decimal.Decimal `json:"price"`
	Qty                json.Number     `json:"qty"`
	CountInStock       json.Number     `json:"countInStock"`
	LegacyCountInStock json.Number     `json:"count_in_stock"`
}

func encodeSnapshot(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// decodeSnapshot normalizes persisted records and collapses duplicates. A
// duplicate keeps the position of its first occurrence and the data of its
// last one. Records without any identifier or with a fractional quantity are
// dropped.
func decodeSnapshot(payload []byte) ([]LineItem, error) {
	var records []snapshotRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decoding cart snapshot: %w", err)
	}

	items := make([]LineItem, 0, len(records))
	positions := make(map[string]int, len(records))
	for _, record := range records {
		id := strings.TrimSpace(record.Product)
		if id == "" {
			id = strings.TrimSpace(record.LegacyID)
		}
		if id == "" {
			continue
		}

		qty, ok := parseQuantity(record.Qty)
		if !ok {
			continue
		}

		item := LineItem{
			ProductID:    id,
			Name:         record.Name,
			Image:        record.Image,
			Price:        record.Price,
			Quantity:     qty,
			CountInStock: firstPositive(record.CountInStock, record.LegacyCountInStock),
		}
		if pos, ok := positions[id]; ok {
			items[pos] = item
			continue
		}
		positions[id] = len(items)
		items = append(items, item)
	}
	return items, nil
}

func parseQuantity(raw json.Number) (int, bool) {
	if raw == "" {
		return 1, true
	}
	qty, ok := wholeNumber(raw)
	if !ok {
		return 0, false
	}
	if qty < 1 {
		return 1, true
	}
	return int(qty), true
}

// wholeNumber accepts integral values written as floats, such as 2.0.
func wholeNumber(raw json.Number) (int64, bool) {
	value, err := decimal.NewFromString(raw.String())
	if err != nil || !value.IsInteger() {
		return 0, false
	}
	return value.IntPart(), true
}

func firstPositive(values ...json.Number) int {
	for _, value := range values {
		n, ok := wholeNumber(value)
		if ok && n > 0 {
			return int(n)
		}
	}
	return 0
}
