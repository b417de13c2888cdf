// Package checkout orchestrates the payment handshake between the
// storefront API and a hosted card-input widget.
package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kbrands/storefront-go/internal/model"
)

// Card is the raw card input handed to the gateway widget. The client never
// sends it to the storefront API; only the opaque payment-method token
// produced by the gateway crosses that boundary.
type Card struct {
	Number   string
	ExpMonth int
	ExpYear  int
	CVC      string
	Name     string
}

// Gateway abstracts the hosted card-input widget: it turns card details
// into an opaque payment-method token and confirms a payment against a
// server-issued client secret.
type Gateway interface {
	CreatePaymentMethod(ctx context.Context, card Card) (string, error)
	ConfirmPayment(ctx context.Context, clientSecret, paymentMethod string) error
}

// API is the payments slice of the storefront client.
type API interface {
	InitiatePayment(ctx context.Context, orderID, method string) (model.InitiatePaymentResponse, error)
	VerifyPayment(ctx context.Context, reference string) error
}

// Error is a failed checkout from either the widget or the confirmation
// step, with the stage that failed.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("payment %s failed: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Service runs the checkout flow for placed orders.
type Service struct {
	api     API
	gateway Gateway
	method  string
	log     *slog.Logger
}

// NewService creates a checkout Service paying through the given gateway.
func NewService(apiClient API, gateway Gateway, opts ...ServiceOption) *Service {
	s := &Service{
		api:     apiClient,
		gateway: gateway,
		method:  "stripe",
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMethod selects the payment method name sent to the backend.
func WithMethod(method string) ServiceOption {
	return func(s *Service) { s.method = method }
}

// WithServiceLogger replaces the default slog logger.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// Pay runs the full handshake for an order: obtain a payment-method token
// from the gateway, initiate the payment for a client secret, and confirm
// with secret plus method token. Any error from either side aborts the
// checkout as a payment failure.
func (s *Service) Pay(ctx context.Context, orderID string, card Card) error {
	methodToken, err := s.gateway.CreatePaymentMethod(ctx, card)
	if err != nil {
		return &Error{Stage: "method", Err: err}
	}

	initiated, err := s.api.InitiatePayment(ctx, orderID, s.method)
	if err != nil {
		return &Error{Stage: "initiate", Err: err}
	}

	if err := s.gateway.ConfirmPayment(ctx, initiated.ClientSecret, methodToken); err != nil {
		return &Error{Stage: "confirm", Err: err}
	}

	// Settlement is server-side; a verify failure after a confirmed charge
	// is logged, not surfaced, since the backend reconciles it later.
	if initiated.Reference != "" {
		if err := s.api.VerifyPayment(ctx, initiated.Reference); err != nil {
			s.log.Warn("payment verification failed", "reference", initiated.Reference, "error", err)
		}
	}
	return nil
}
