package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPGateway talks to a widget-shaped HTTP endpoint: POST /widget/
// payment-methods/ exchanges card details for a payment-method token and
// POST /widget/confirm/ confirms against a client secret. The stub server
// exposes this surface for development and tests.
type HTTPGateway struct {
	baseURL string
	http    *http.Client
}

// NewHTTPGateway creates a gateway rooted at baseURL.
func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type paymentMethodRequest struct {
	Number   string `json:"number"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	CVC      string `json:"cvc"`
	Name     string `json:"name,omitempty"`
}

type paymentMethodResponse struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

type confirmRequest struct {
	ClientSecret  string `json:"client_secret"`
	PaymentMethod string `json:"payment_method"`
}

type confirmResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// CreatePaymentMethod exchanges card details for an opaque token.
func (g *HTTPGateway) CreatePaymentMethod(ctx context.Context, card Card) (string, error) {
	var resp paymentMethodResponse
	err := g.post(ctx, "/widget/payment-methods/", paymentMethodRequest{
		Number:   card.Number,
		ExpMonth: card.ExpMonth,
		ExpYear:  card.ExpYear,
		CVC:      card.CVC,
		Name:     card.Name,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("widget returned no payment method")
	}
	return resp.ID, nil
}

// ConfirmPayment confirms a payment with the client secret and method token.
func (g *HTTPGateway) ConfirmPayment(ctx context.Context, clientSecret, paymentMethod string) error {
	var resp confirmResponse
	err := g.post(ctx, "/widget/confirm/", confirmRequest{
		ClientSecret:  clientSecret,
		PaymentMethod: paymentMethod,
	}, &resp)
	if err != nil {
		return err
	}
	if resp.Status != "succeeded" {
		return fmt.Errorf("payment not confirmed: status %q", resp.Status)
	}
	return nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding widget request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building widget request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("widget %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading widget response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var fail struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &fail) == nil && fail.Error != "" {
			return errors.New(fail.Error)
		}
		return fmt.Errorf("widget %s: status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding widget response: %w", err)
	}
	return nil
}
