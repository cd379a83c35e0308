package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/jewelmart-backend/api/middleware"
	"github.com/angelmondragon/jewelmart-backend/internal/checkout"
	"github.com/angelmondragon/jewelmart-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/jewelmart-backend/pkg/errors"
)

type stubCheckoutService struct {
	summary *checkout.Summary
	invoice *checkout.Invoice
	err     error
	last    checkout.ConfirmInput
}

func (s *stubCheckoutService) Summary(ctx context.Context, userID uuid.UUID) (*checkout.Summary, error) {
	return s.summary, s.err
}

func (s *stubCheckoutService) ConfirmPayment(ctx context.Context, input checkout.ConfirmInput) (*checkout.Invoice, error) {
	s.last = input
	return s.invoice, s.err
}

const deliveryJSON = `"delivery":{"name":"Asha","contact":"555","address":"1 Main","city":"Pune"}`

func TestCheckoutSummaryNotFound(t *testing.T) {
	userID := uuid.New()
	actor := customer(userID)
	stub := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeNotFound, "cart not found or is empty")}

	rec := serve(CheckoutSummary(stub, testLogger), newRequest(http.MethodGet, "/api/v1/checkout/"+userID.String(), nil, &actor, map[string]string{"userId": userID.String()}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestCheckoutConfirmPaymentForwardsKeyAndActor(t *testing.T) {
	userID := uuid.New()
	actor := customer(userID)
	stub := &stubCheckoutService{invoice: &checkout.Invoice{
		Message:  "Payment successful, order placed!",
		OrderDTO: orders.OrderDTO{OrderID: uuid.New(), UserID: userID, TotalAmount: decimal.NewFromInt(220)},
	}}
	body := `{"user_id":"` + userID.String() + `","discount":"30",` + deliveryJSON + `}`
	req := newRequest(http.MethodPost, "/api/v1/checkout/confirm-payment", strings.NewReader(body), &actor, nil)
	req.Header.Set(middleware.IdempotencyKeyHeader, " key-1 ")

	rec := serve(CheckoutConfirmPayment(stub, testLogger), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.last.IdempotencyKey != "key-1" {
		t.Fatalf("expected trimmed idempotency key, got %q", stub.last.IdempotencyKey)
	}
	if stub.last.Actor == nil || stub.last.Actor.UserID != userID {
		t.Fatalf("expected actor ref, got %+v", stub.last.Actor)
	}
	if stub.last.Discount == nil || !stub.last.Discount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected discount %v", stub.last.Discount)
	}

	var invoice struct {
		Message     string          `json:"message"`
		TotalAmount decimal.Decimal `json:"total_amount"`
	}
	decodeData(t, rec, &invoice)
	if invoice.Message != "Payment successful, order placed!" || !invoice.TotalAmount.Equal(decimal.NewFromInt(220)) {
		t.Fatalf("unexpected invoice %+v", invoice)
	}
}

func TestCheckoutConfirmPaymentRejectsBlankDelivery(t *testing.T) {
	userID := uuid.New()
	actor := customer(userID)
	body := `{"user_id":"` + userID.String() + `","delivery":{"name":"Asha","contact":"","address":"1 Main","city":"Pune"}}`

	rec := serve(CheckoutConfirmPayment(&stubCheckoutService{}, testLogger), newRequest(http.MethodPost, "/api/v1/checkout/confirm-payment", strings.NewReader(body), &actor, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestCheckoutConfirmPaymentForbiddenForOtherUser(t *testing.T) {
	actor := customer(uuid.New())
	body := `{"user_id":"` + uuid.NewString() + `",` + deliveryJSON + `}`

	rec := serve(CheckoutConfirmPayment(&stubCheckoutService{}, testLogger), newRequest(http.MethodPost, "/api/v1/checkout/confirm-payment", strings.NewReader(body), &actor, nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}
