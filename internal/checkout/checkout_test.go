package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/kbrands/storefront-go/internal/model"
)

type fakeGateway struct {
	methodErr  error
	confirmErr error

	gotCard    Card
	gotSecret  string
	gotMethod  string
	confirmHit bool
}

func (g *fakeGateway) CreatePaymentMethod(ctx context.Context, card Card) (string, error) {
	g.gotCard = card
	if g.methodErr != nil {
		return "", g.methodErr
	}
	return "pm_test_token", nil
}

func (g *fakeGateway) ConfirmPayment(ctx context.Context, clientSecret, paymentMethod string) error {
	g.confirmHit = true
	g.gotSecret = clientSecret
	g.gotMethod = paymentMethod
	return g.confirmErr
}

type fakeAPI struct {
	initiateErr error
	verifyErr   error

	initiateHit bool
	gotOrderID  string
	gotMethod   string
	gotRef      string
}

func (a *fakeAPI) InitiatePayment(ctx context.Context, orderID, method string) (model.InitiatePaymentResponse, error) {
	a.initiateHit = true
	a.gotOrderID = orderID
	a.gotMethod = method
	if a.initiateErr != nil {
		return model.InitiatePaymentResponse{}, a.initiateErr
	}
	return model.InitiatePaymentResponse{ClientSecret: "cs_test_secret", Reference: "PAY_ABC123"}, nil
}

func (a *fakeAPI) VerifyPayment(ctx context.Context, reference string) error {
	a.gotRef = reference
	return a.verifyErr
}

func newService(apiClient API, gateway Gateway, opts ...ServiceOption) *Service {
	opts = append([]ServiceOption{
		WithServiceLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return NewService(apiClient, gateway, opts...)
}

var testCard = Card{Number: "4242424242424242", ExpMonth: 12, ExpYear: 2030, CVC: "123", Name: "Test User"}

func TestPay_Success(t *testing.T) {
	gw := &fakeGateway{}
	backend := &fakeAPI{}
	svc := newService(backend, gw)

	if err := svc.Pay(context.Background(), "order-1", testCard); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	if gw.gotCard != testCard {
		t.Errorf("gateway saw card %+v", gw.gotCard)
	}
	if backend.gotOrderID != "order-1" || backend.gotMethod != "stripe" {
		t.Errorf("initiate got order=%q method=%q", backend.gotOrderID, backend.gotMethod)
	}
	if gw.gotSecret != "cs_test_secret" || gw.gotMethod != "pm_test_token" {
		t.Errorf("confirm got secret=%q method=%q", gw.gotSecret, gw.gotMethod)
	}
	if backend.gotRef != "PAY_ABC123" {
		t.Errorf("verify got reference %q", backend.gotRef)
	}
}

func TestPay_CardNeverReachesAPI(t *testing.T) {
	// The API side only ever sees order ID, method name, and reference.
	// Nothing in the API interface can carry the card; this test pins the
	// shape of the handshake: method token from the gateway, secret from
	// the backend.
	gw := &fakeGateway{}
	backend := &fakeAPI{}
	svc := newService(backend, gw)

	if err := svc.Pay(context.Background(), "order-1", testCard); err != nil {
		t.Fatal(err)
	}
	if gw.gotMethod != "pm_test_token" {
		t.Errorf("expected opaque method token at confirm, got %q", gw.gotMethod)
	}
}

func TestPay_MethodStage(t *testing.T) {
	gw := &fakeGateway{methodErr: errors.New("card declined")}
	backend := &fakeAPI{}
	svc := newService(backend, gw)

	err := svc.Pay(context.Background(), "order-1", testCard)
	var payErr *Error
	if !errors.As(err, &payErr) || payErr.Stage != "method" {
		t.Fatalf("expected method-stage error, got %v", err)
	}
	if backend.initiateHit {
		t.Error("initiate should not run after a widget failure")
	}
}

func TestPay_InitiateStage(t *testing.T) {
	gw := &fakeGateway{}
	backend := &fakeAPI{initiateErr: errors.New("order not found")}
	svc := newService(backend, gw)

	err := svc.Pay(context.Background(), "missing", testCard)
	var payErr *Error
	if !errors.As(err, &payErr) || payErr.Stage != "initiate" {
		t.Fatalf("expected initiate-stage error, got %v", err)
	}
	if gw.confirmHit {
		t.Error("confirm should not run after a failed initiate")
	}
}

func TestPay_ConfirmStage(t *testing.T) {
	cause := errors.New("your card was declined")
	gw := &fakeGateway{confirmErr: cause}
	svc := newService(&fakeAPI{}, gw)

	err := svc.Pay(context.Background(), "order-1", testCard)
	var payErr *Error
	if !errors.As(err, &payErr) || payErr.Stage != "confirm" {
		t.Fatalf("expected confirm-stage error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to survive unwrapping")
	}
}

func TestPay_VerifyFailureNotSurfaced(t *testing.T) {
	backend := &fakeAPI{verifyErr: errors.New("settlement pending")}
	svc := newService(backend, &fakeGateway{})

	if err := svc.Pay(context.Background(), "order-1", testCard); err != nil {
		t.Fatalf("verify failure should not fail checkout, got %v", err)
	}
	if backend.gotRef != "PAY_ABC123" {
		t.Errorf("verify got reference %q", backend.gotRef)
	}
}

func TestPay_CustomMethod(t *testing.T) {
	backend := &fakeAPI{}
	svc := newService(backend, &fakeGateway{}, WithMethod("razorpay"))

	if err := svc.Pay(context.Background(), "order-1", testCard); err != nil {
		t.Fatal(err)
	}
	if backend.gotMethod != "razorpay" {
		t.Errorf("expected razorpay, got %q", backend.gotMethod)
	}
}
