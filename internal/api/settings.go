package api

import (
	"context"
	"net/http"

	"github.com/kbrands/storefront-go/internal/model"
)

// StoreSettings fetches the vendor's store settings.
func (c *Client) StoreSettings(ctx context.Context) (model.StoreSettings, error) {
	var settings model.StoreSettings
	err := c.do(ctx, http.MethodGet, "/api/store-settings/", nil, &settings)
	return settings, err
}

// UpdateStoreSettings sets the store name and returns the saved settings.
func (c *Client) UpdateStoreSettings(ctx context.Context, storeName string) (model.StoreSettings, error) {
	var settings model.StoreSettings
	err := c.do(ctx, http.MethodPut, "/api/store-settings/", model.StoreSettings{
		StoreName: storeName,
	}, &settings)
	return settings, err
}
