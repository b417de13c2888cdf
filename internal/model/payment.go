package model

// InitiatePaymentRequest asks the backend to open a payment for an order.
type InitiatePaymentRequest struct {
	OrderID string `json:"order_id"`
	Method  string `json:"payment_method"`
}

// InitiatePaymentResponse carries the one-time client secret the hosted
// payment widget needs to confirm the charge, plus the payment reference
// used for later verification.
type InitiatePaymentResponse struct {
	ClientSecret string `json:"client_secret"`
	Reference    string `json:"reference,omitempty"`
}

// VerifyPaymentRequest settles a payment by reference after confirmation.
type VerifyPaymentRequest struct {
	Reference string `json:"reference"`
}
