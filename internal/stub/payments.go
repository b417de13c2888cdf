package stub

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kbrands/storefront-go/internal/model"
)

// declineCardNumber simulates a declined card, the usual test-gateway trick.
const declineCardNumber = "4000000000000002"

func (s *Server) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.InitiatePaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := s.store.orderByID(userID, req.OrderID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse("Order not found"))
		return
	}

	p := &payment{
		reference:    "PAY_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10]),
		clientSecret: "cs_test_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		orderID:      order.ID,
		userID:       userID,
		method:       req.Method,
		amount:       order.TotalAmount,
		status:       "pending",
	}
	s.store.createPayment(p)

	writeJSON(w, http.StatusOK, model.InitiatePaymentResponse{
		ClientSecret: p.clientSecret,
		Reference:    p.reference,
	})
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := s.store.settlePayment(req.Reference); err != nil {
		if errors.Is(err, errPaymentNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse("Payment not found"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("Payment verification failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment verified successfully"})
}

// handleCreatePaymentMethod is the widget half of the payment boundary: it
// exchanges raw card details for an opaque payment-method token.
func (s *Server) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number   string `json:"number"`
		ExpMonth int    `json:"exp_month"`
		ExpYear  int    `json:"exp_year"`
		CVC      string `json:"cvc"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	digits := strings.ReplaceAll(req.Number, " ", "")
	if len(digits) < 12 || req.CVC == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid card details"))
		return
	}

	methodToken := "pm_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if digits == declineCardNumber {
		s.store.markDeclined(methodToken)
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": methodToken})
}

func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientSecret  string `json:"client_secret"`
		PaymentMethod string `json:"payment_method"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if !strings.HasPrefix(req.PaymentMethod, "pm_") {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid payment method"))
		return
	}
	if s.store.isDeclined(req.PaymentMethod) {
		writeJSON(w, http.StatusPaymentRequired, errorResponse("Your card was declined"))
		return
	}

	p, err := s.store.confirmPayment(req.ClientSecret)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse("unknown client secret"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "succeeded",
		"reference": p.reference,
		"amount":    p.amount.StringFixed(2),
	})
}
