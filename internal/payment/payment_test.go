package payment

import (
	"context"
	"fmt"
	"testing"

	"github.com/GarageLink/GarageLink/internal/api"
)

type fakeBackend struct {
	order       *api.PaymentOrder
	orderErr    error
	verified    []api.VerifyPaymentInput
	verifyErr   error
	orderCalls  int
	verifyCalls int
}

func (f *fakeBackend) CreateOrder(ctx context.Context, plan string) (*api.PaymentOrder, error) {
	f.orderCalls++
	return f.order, f.orderErr
}

func (f *fakeBackend) VerifyPayment(ctx context.Context, in api.VerifyPaymentInput) error {
	f.verifyCalls++
	f.verified = append(f.verified, in)
	return f.verifyErr
}

type fakeGateway struct {
	paymentID string
	err       error
}

func (f *fakeGateway) Confirm(ctx context.Context, order *api.PaymentOrder) (string, error) {
	return f.paymentID, f.err
}

func TestMessageForCode(t *testing.T) {
	if got := MessageForCode("card_declined"); got != gatewayMessages["card_declined"] {
		t.Fatalf("unexpected message: %q", got)
	}
	// 认不出的码走兜底文案
	if got := MessageForCode("weird_new_code"); got != genericGatewayMessage {
		t.Fatalf("expected generic fallback, got %q", got)
	}
}

func TestPurchaseHappyPath(t *testing.T) {
	backend := &fakeBackend{
		order: &api.PaymentOrder{OrderID: "ord-1", Amount: 49900, Currency: "inr", ClientSecret: "pi_1_secret_x"},
	}
	gateway := &fakeGateway{paymentID: "pay-1"}
	flow := NewFlow(backend, gateway, nil)

	if err := flow.Purchase(context.Background(), "yearly"); err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if backend.verifyCalls != 1 {
		t.Fatalf("expected verify call, got %d", backend.verifyCalls)
	}
	got := backend.verified[0]
	if got.OrderID != "ord-1" || got.PaymentID != "pay-1" {
		t.Fatalf("unexpected verify payload: %#v", got)
	}
}

func TestPurchaseGatewayFailureSkipsVerify(t *testing.T) {
	backend := &fakeBackend{
		order: &api.PaymentOrder{OrderID: "ord-1", ClientSecret: "pi_1_secret_x"},
	}
	gateway := &fakeGateway{err: &GatewayError{Code: "card_declined", Message: MessageForCode("card_declined")}}
	flow := NewFlow(backend, gateway, nil)

	err := flow.Purchase(context.Background(), "yearly")
	gerr, ok := err.(*GatewayError)
	if !ok {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gerr.Code != "card_declined" {
		t.Fatalf("unexpected code: %s", gerr.Code)
	}
	if backend.verifyCalls != 0 {
		t.Fatalf("verify must not run after gateway failure")
	}
}

func TestPurchaseOrderFailure(t *testing.T) {
	backend := &fakeBackend{orderErr: fmt.Errorf("order endpoint down")}
	flow := NewFlow(backend, &fakeGateway{}, nil)

	if err := flow.Purchase(context.Background(), "yearly"); err == nil {
		t.Fatalf("expected error when order creation fails")
	}
}

func TestIntentIDFromSecret(t *testing.T) {
	if got := intentIDFromSecret("pi_abc_secret_def"); got != "pi_abc" {
		t.Fatalf("unexpected intent id: %s", got)
	}
	if got := intentIDFromSecret("pi_abc"); got != "pi_abc" {
		t.Fatalf("unexpected passthrough: %s", got)
	}
}
