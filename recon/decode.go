package recon

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// rawLine carries every spelling the upstream feeds use for a line item.
// All fallback-field precedence lives in decodeLine; nowhere else may pick
// between the variants.
type rawLine struct {
	ProductName     string      `json:"product_name"`
	Name            string      `json:"name"`
	ProductCategory string      `json:"product_category"`
	Category        string      `json:"category"`
	QtyDelivered    json.Number `json:"qty_delivered"`
	Quantity        json.Number `json:"quantity"`
	PriceUnit       json.Number `json:"price_unit"`
	UnitPrice       json.Number `json:"unit_price"`
	PriceSubtotal   json.Number `json:"price_subtotal"`
	Subtotal        json.Number `json:"subtotal"`
	Color           string      `json:"color"`
	Size            string      `json:"size"`
}

// decodeLine turns one raw line into a typed LineItem or a MalformedRecordError.
//
// Field precedence (the single documented source of truth):
//   - product name:  product_name, then name
//   - category:      product_category, then category
//   - quantity:      qty_delivered, then quantity
//   - unit price:    price_unit, then unit_price
//   - subtotal:      price_subtotal, then subtotal
//
// A line with no product name or a non-positive quantity is malformed; the
// caller counts and skips it.
func decodeLine(raw json.RawMessage, externalId string) (LineItem, error) {
	var rl rawLine
	if err := json.Unmarshal(raw, &rl); err != nil {
		return LineItem{}, &MalformedRecordError{ExternalId: externalId, Reason: "invalid line json: " + err.Error()}
	}

	name := strings.TrimSpace(rl.ProductName)
	if name == "" {
		name = strings.TrimSpace(rl.Name)
	}
	if name == "" {
		return LineItem{}, &MalformedRecordError{ExternalId: externalId, Reason: "missing product name"}
	}

	category := strings.TrimSpace(rl.ProductCategory)
	if category == "" {
		category = strings.TrimSpace(rl.Category)
	}

	qty := decimalFromNumber(rl.QtyDelivered)
	if qty.IsZero() {
		qty = decimalFromNumber(rl.Quantity)
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return LineItem{}, &MalformedRecordError{ExternalId: externalId, Reason: "non-positive quantity"}
	}

	unitPrice := decimalFromNumber(rl.PriceUnit)
	if unitPrice.IsZero() {
		unitPrice = decimalFromNumber(rl.UnitPrice)
	}

	subtotal := decimalFromNumber(rl.PriceSubtotal)
	if subtotal.IsZero() {
		subtotal = decimalFromNumber(rl.Subtotal)
	}

	return LineItem{
		RawProductName: name,
		RawCategory:    category,
		Quantity:       qty,
		UnitPrice:      unitPrice,
		Subtotal:       subtotal,
		Color:          strings.TrimSpace(rl.Color),
		Size:           strings.TrimSpace(rl.Size),
	}, nil
}

// lineArray tolerates both shapes the feeds produce: an array of line objects
// or a single bare object.
func lineArray(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var single json.RawMessage
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []json.RawMessage{single}, nil
}

// decodeLines decodes a nested line payload, skipping malformed lines and
// reporting how many were dropped.
func decodeLines(raw json.RawMessage, externalId string) ([]LineItem, int) {
	items, err := lineArray(raw)
	if err != nil {
		return nil, 1
	}

	var (
		lines   []LineItem
		skipped int
	)
	for _, item := range items {
		line, err := decodeLine(item, externalId)
		if err != nil {
			skipped++
			continue
		}
		lines = append(lines, line)
	}
	return lines, skipped
}

func decimalFromNumber(num json.Number) decimal.Decimal {
	if num.String() == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(num.String()); err == nil {
		return d
	}
	return decimal.Zero
}
