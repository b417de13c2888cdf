package api

import (
	"context"
	"net/http"

	"github.com/kbrands/storefront-go/internal/model"
)

// Orders lists the authenticated user's orders, newest first.
func (c *Client) Orders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Order fetches a single order by its UUID.
func (c *Client) Order(ctx context.Context, id string) (model.Order, error) {
	var order model.Order
	err := c.do(ctx, http.MethodGet, "/api/orders/"+id+"/", nil, &order)
	return order, err
}

// CreateOrder places an order for the given cart lines. The backend checks
// stock, captures unit prices, and clears the server-side cart.
func (c *Client) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.Order, error) {
	var order model.Order
	err := c.do(ctx, http.MethodPost, "/api/orders/create/", req, &order)
	return order, err
}
