package api

import (
	"context"
	"net/http"

	"github.com/kbrands/storefront-go/internal/model"
)

// Wishlist lists the authenticated user's saved products.
func (c *Client) Wishlist(ctx context.Context) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	if err := c.do(ctx, http.MethodGet, "/api/wishlist/", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddToWishlist saves a product to the wishlist. Saving an already-present
// product is a no-op server-side.
func (c *Client) AddToWishlist(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodPost, "/api/wishlist/add/", model.MutateCartRequest{ProductID: productID}, nil)
}

// RemoveFromWishlist removes a product from the wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodPost, "/api/wishlist/remove/", model.MutateCartRequest{ProductID: productID}, nil)
}
