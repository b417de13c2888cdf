package model

import "github.com/shopspring/decimal"

// Product is a catalog entry. The backend serializes Price as a JSON
// string decimal; decimal.Decimal accepts both string and number forms.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image,omitempty"`
	Category    string          `json:"category"`
}

// WishlistItem is a saved product on the authenticated user's wishlist.
type WishlistItem struct {
	ID      int64   `json:"id"`
	Product Product `json:"product"`
}
