package api

import (
	"context"
	"net/http"

	"github.com/kbrands/storefront-go/internal/model"
)

// Cart fetches the server-authoritative cart contents.
func (c *Client) Cart(ctx context.Context) ([]model.CartItem, error) {
	var resp model.CartResponse
	if err := c.do(ctx, http.MethodGet, "/api/cart/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// AddToCart adds one unit of a product and returns the new item list.
// Quantity aggregation for an already-present product happens server-side.
func (c *Client) AddToCart(ctx context.Context, productID int64) ([]model.CartItem, error) {
	return c.mutateCart(ctx, "/api/cart/add/", productID)
}

// RemoveFromCart deletes a product's line and returns the new item list.
func (c *Client) RemoveFromCart(ctx context.Context, productID int64) ([]model.CartItem, error) {
	return c.mutateCart(ctx, "/api/cart/remove/", productID)
}

// ClearCart empties the cart and returns the (empty) item list.
func (c *Client) ClearCart(ctx context.Context) ([]model.CartItem, error) {
	var resp model.CartResponse
	if err := c.do(ctx, http.MethodPost, "/api/cart/clear/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) mutateCart(ctx context.Context, path string, productID int64) ([]model.CartItem, error) {
	var resp model.CartResponse
	err := c.do(ctx, http.MethodPost, path, model.MutateCartRequest{ProductID: productID}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}
