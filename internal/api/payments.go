package api

import (
	"context"
	"net/http"

	"github.com/kbrands/storefront-go/internal/model"
)

// InitiatePayment opens a payment for an order and returns the client
// secret the hosted widget needs to confirm it.
func (c *Client) InitiatePayment(ctx context.Context, orderID, method string) (model.InitiatePaymentResponse, error) {
	var resp model.InitiatePaymentResponse
	err := c.do(ctx, http.MethodPost, "/api/payments/initiate/", model.InitiatePaymentRequest{
		OrderID: orderID,
		Method:  method,
	}, &resp)
	return resp, err
}

// VerifyPayment settles a confirmed payment by reference.
func (c *Client) VerifyPayment(ctx context.Context, reference string) error {
	return c.do(ctx, http.MethodPost, "/api/payments/verify/", model.VerifyPaymentRequest{
		Reference: reference,
	}, nil)
}
