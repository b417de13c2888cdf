// Package stub is an in-memory stand-in for the storefront backend. It
// serves the full API surface the client consumes, plus the widget-shaped
// payment endpoints, so the client can be exercised end to end in
// development and integration tests without the real services.
package stub

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kbrands/storefront-go/internal/model"
)

// Server holds the stub's state and token-signing configuration.
type Server struct {
	store   *store
	secret  string
	expiry  time.Duration
	limiter *ipRateLimiter

	authRPS   float64
	authBurst int
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAuthRateLimit overrides the per-IP limit on the auth routes. Tests
// raise it so rapid logins are not throttled.
func WithAuthRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		s.authRPS = rps
		s.authBurst = burst
	}
}

// NewServer creates an empty stub signing tokens with the given secret.
func NewServer(secret string, expiry time.Duration, opts ...ServerOption) *Server {
	s := &Server{
		store:     newStore(),
		secret:    secret,
		expiry:    expiry,
		authRPS:   5,
		authBurst: 10,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter = newIPRateLimiter(s.authRPS, s.authBurst)
	return s
}

// Close stops the rate limiter's background cleanup. Idempotent; tests
// spinning up many stubs should defer it.
func (s *Server) Close() {
	s.limiter.close()
}

// Seed loads the demo catalog and two accounts: a customer
// (testuser@example.com / password123) and a vendor
// (admin@ecommerce.com / admin123).
func (s *Server) Seed() error {
	for _, p := range []model.Product{
		{
			Name:        "Smartphone",
			Description: "Latest model smartphone with advanced features",
			Price:       decimal.RequireFromString("699.99"),
			Stock:       50,
			Category:    "Electronics",
		},
		{
			Name:        "T-Shirt",
			Description: "Comfortable cotton t-shirt",
			Price:       decimal.RequireFromString("19.99"),
			Stock:       100,
			Category:    "Clothing",
		},
		{
			Name:        "Python Programming Book",
			Description: "Comprehensive guide to Python programming",
			Price:       decimal.RequireFromString("39.99"),
			Stock:       30,
			Category:    "Books",
		},
	} {
		s.store.addProduct(p)
	}

	if err := s.registerUser(model.Profile{
		Username:  "testuser",
		Email:     "testuser@example.com",
		FirstName: "Test",
		LastName:  "User",
	}, "password123"); err != nil {
		return err
	}
	return s.registerUser(model.Profile{
		Username:  "admin",
		Email:     "admin@ecommerce.com",
		FirstName: "Admin",
		LastName:  "User",
		IsVendor:  true,
	}, "admin123")
}

// Handler builds the chi router for the whole stub API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Post("/api/auth/register/", s.handleRegister)
		r.Post("/api/auth/login/", s.handleLogin)
		r.Post("/api/auth/forgot-password/", s.handleForgotPassword)
		r.Post("/api/auth/reset-password/", s.handleResetPassword)
	})

	r.Get("/api/products/", s.handleListProducts)
	r.Get("/api/products/{id}/", s.handleGetProduct)

	r.Post("/widget/payment-methods/", s.handleCreatePaymentMethod)
	r.Post("/widget/confirm/", s.handleConfirmPayment)

	r.Group(func(r chi.Router) {
		r.Use(s.auth)

		r.Get("/api/auth/profile/", s.handleGetProfile)
		r.Put("/api/auth/profile/", s.handleUpdateProfile)

		r.Get("/api/cart/", s.handleGetCart)
		r.Post("/api/cart/add/", s.handleAddToCart)
		r.Post("/api/cart/remove/", s.handleRemoveFromCart)
		r.Post("/api/cart/clear/", s.handleClearCart)

		r.Get("/api/wishlist/", s.handleGetWishlist)
		r.Post("/api/wishlist/add/", s.handleAddToWishlist)
		r.Post("/api/wishlist/remove/", s.handleRemoveFromWishlist)

		r.Get("/api/orders/", s.handleListOrders)
		r.Get("/api/orders/{id}/", s.handleGetOrder)
		r.Post("/api/orders/create/", s.handleCreateOrder)

		r.Post("/api/payments/initiate/", s.handleInitiatePayment)
		r.Post("/api/payments/verify/", s.handleVerifyPayment)

		r.Get("/api/store-settings/", s.handleGetStoreSettings)
		r.Put("/api/store-settings/", s.handleUpdateStoreSettings)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// detailResponse is the message shape the auth endpoints use, matching the
// production backend's auth framework.
func detailResponse(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if err.Error() == "http: request body too large" {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}
