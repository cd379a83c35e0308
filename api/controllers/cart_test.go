package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/jewelmart-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/jewelmart-backend/pkg/errors"
	"github.com/angelmondragon/jewelmart-backend/pkg/outbox"
)

type stubCartService struct {
	view      *cart.CartView
	found     bool
	err       error
	lastAdd   cart.AddItemInput
	lastQty   int
	clearedBy *outbox.ActorRef
}

func (s *stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cart.CartView, bool, error) {
	return s.view, s.found, s.err
}

func (s *stubCartService) Add(ctx context.Context, input cart.AddItemInput) (*cart.CartView, error) {
	s.lastAdd = input
	return s.view, s.err
}

func (s *stubCartService) Update(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cart.CartView, error) {
	s.lastQty = quantity
	return s.view, s.err
}

func (s *stubCartService) Remove(ctx context.Context, userID, productID uuid.UUID) (*cart.CartView, error) {
	return s.view, s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID, actor *outbox.ActorRef) error {
	s.clearedBy = actor
	return s.err
}

func (s *stubCartService) List(ctx context.Context) ([]cart.CartView, error) {
	return nil, s.err
}

func TestCartGetMissingCartRendersExistsFalse(t *testing.T) {
	userID := uuid.New()
	actor := customer(userID)
	req := newRequest(http.MethodGet, "/api/v1/cart/"+userID.String(), nil, &actor, map[string]string{"userId": userID.String()})

	rec := serve(CartGet(&stubCartService{found: false}, testLogger), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var view cart.CartView
	decodeData(t, rec, &view)
	if view.Exists || view.Items == nil || len(view.Items) != 0 || view.UserID != userID {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestCartAddAppliesDefaults(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	actor := customer(userID)
	stub := &stubCartService{view: &cart.CartView{UserID: userID, Exists: true}}
	body := `{"user_id":"` + userID.String() + `","product_id":"` + productID.String() + `","final_price":"99.50"}`

	rec := serve(CartAdd(stub, testLogger), newRequest(http.MethodPost, "/api/v1/cart/add", strings.NewReader(body), &actor, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.lastAdd.Quantity != 1 || !stub.lastAdd.Grams.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected quantity and grams defaults, got %+v", stub.lastAdd)
	}
	if !stub.lastAdd.FinalPrice.Equal(decimal.RequireFromString("99.50")) {
		t.Fatalf("unexpected final price %s", stub.lastAdd.FinalPrice)
	}
}

func TestCartAddRejectsOtherUsersCart(t *testing.T) {
	actor := customer(uuid.New())
	body := `{"user_id":"` + uuid.NewString() + `","product_id":"` + uuid.NewString() + `","final_price":1}`

	rec := serve(CartAdd(&stubCartService{}, testLogger), newRequest(http.MethodPost, "/api/v1/cart/add", strings.NewReader(body), &actor, nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestCartUpdateRequiresQuantity(t *testing.T) {
	userID := uuid.New()
	actor := customer(userID)
	body := `{"user_id":"` + userID.String() + `","product_id":"` + uuid.NewString() + `"}`

	rec := serve(CartUpdate(&stubCartService{}, testLogger), newRequest(http.MethodPut, "/api/v1/cart/update", strings.NewReader(body), &actor, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartUpdatePassesZeroQuantity(t *testing.T) {
	userID := uuid.New()
	actor := customer(userID)
	stub := &stubCartService{view: &cart.CartView{UserID: userID, Exists: true}, lastQty: -1}
	body := `{"user_id":"` + userID.String() + `","product_id":"` + uuid.NewString() + `","quantity":0}`

	rec := serve(CartUpdate(stub, testLogger), newRequest(http.MethodPut, "/api/v1/cart/update", strings.NewReader(body), &actor, nil))
	if rec.Code != http.StatusOK || stub.lastQty != 0 {
		t.Fatalf("expected zero quantity forwarded, got status %d qty %d", rec.Code, stub.lastQty)
	}
}

func TestCartUpdateMapsServiceErrors(t *testing.T) {
	userID := uuid.New()
	actor := customer(userID)
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no cart", pkgerrors.New(pkgerrors.CodeNotFound, "cart not found"), http.StatusNotFound},
		{"no item", pkgerrors.New(pkgerrors.CodeValidation, "product not found in cart"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"user_id":"` + userID.String() + `","product_id":"` + uuid.NewString() + `","quantity":2}`
			rec := serve(CartUpdate(&stubCartService{err: tt.err}, testLogger), newRequest(http.MethodPut, "/api/v1/cart/update", strings.NewReader(body), &actor, nil))
			if rec.Code != tt.status {
				t.Fatalf("expected %d got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestCartRemoveValidatesQuery(t *testing.T) {
	userID := uuid.New()
	actor := customer(userID)

	rec := serve(CartRemove(&stubCartService{}, testLogger), newRequest(http.MethodDelete, "/api/v1/cart/remove?user_id="+userID.String(), nil, &actor, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing product_id, got %d", rec.Code)
	}

	target := "/api/v1/cart/remove?user_id=" + userID.String() + "&product_id=" + uuid.NewString()
	rec = serve(CartRemove(&stubCartService{view: &cart.CartView{UserID: userID}}, testLogger), newRequest(http.MethodDelete, target, nil, &actor, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestCartClearPassesActor(t *testing.T) {
	userID := uuid.New()
	actor := admin()
	stub := &stubCartService{}

	rec := serve(CartClear(stub, testLogger), newRequest(http.MethodDelete, "/api/v1/cart/clear/"+userID.String(), nil, &actor, map[string]string{"userId": userID.String()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.clearedBy == nil || stub.clearedBy.UserID != actor.UserID || stub.clearedBy.Role != "admin" {
		t.Fatalf("unexpected actor ref %+v", stub.clearedBy)
	}
}
