package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kbrands/storefront-go/internal/model"
)

// Products lists active products, optionally filtered by a search term and
// a category name. Empty filters list everything.
func (c *Client) Products(ctx context.Context, search, category string) ([]model.Product, error) {
	path := "/api/products/"
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if category != "" {
		query.Set("category", category)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var products []model.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches a single product by ID.
func (c *Client) Product(ctx context.Context, id int64) (model.Product, error) {
	var product model.Product
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d/", id), nil, &product)
	return product, err
}
