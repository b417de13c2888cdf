package model

import "github.com/shopspring/decimal"

// CartItem is one line of the server-side cart. Quantity aggregation happens
// server-side; the client never edits a line in place.
type CartItem struct {
	ID       int64   `json:"id"`
	Quantity int     `json:"quantity"`
	Product  Product `json:"product"`
}

// CartResponse is the authoritative item list every cart endpoint returns.
// The client replaces its cached cart with this list wholesale.
type CartResponse struct {
	Items []CartItem `json:"items"`
}

// MutateCartRequest identifies the product for an add or remove mutation.
type MutateCartRequest struct {
	ProductID int64 `json:"product_id"`
}

// CartTotal sums quantity × unit price over the given items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// FormatAmount renders a monetary amount with two fixed decimals, e.g. "19.98".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
