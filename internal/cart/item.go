package cart

import "github.com/shopspring/decimal"

// Item is one cart line. A zero Qty means the quantity was never set and
// counts as 0 in the totals.
type Item struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
	Qty      int             `json:"qty,omitempty"`
}

// Subtotal is Price * Qty.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// TotalQty sums Qty over items.
func TotalQty(items []Item) int {
	total := 0
	for _, i := range items {
		total += i.Qty
	}
	return total
}

// TotalPrice sums Price * Qty over items.
func TotalPrice(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, i := range items {
		total = total.Add(i.Subtotal())
	}
	return total
}
