package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartdto "github.com/angelmondragon/storefront/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront/internal/inventory"
	"github.com/angelmondragon/storefront/pkg/auth/session"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type stubInventoryService struct {
	view       *inventory.View
	err        error
	lastAdd    inventory.AddInput
	lastLine   uuid.UUID
	lastQty    int
	lastAction string
}

func (s *stubInventoryService) Reconcile(ctx context.Context, sessionID string) (*inventory.View, error) {
	s.lastAction = "reconcile"
	return s.view, s.err
}

func (s *stubInventoryService) Add(ctx context.Context, sessionID string, input inventory.AddInput) (*inventory.View, error) {
	s.lastAction = "add"
	s.lastAdd = input
	return s.view, s.err
}

func (s *stubInventoryService) Increment(ctx context.Context, sessionID string, lineID uuid.UUID) (*inventory.View, error) {
	s.lastAction = "increment"
	s.lastLine = lineID
	return s.view, s.err
}

func (s *stubInventoryService) Decrement(ctx context.Context, sessionID string, lineID uuid.UUID) (*inventory.View, error) {
	s.lastAction = "decrement"
	s.lastLine = lineID
	return s.view, s.err
}

func (s *stubInventoryService) SetQuantity(ctx context.Context, sessionID string, lineID uuid.UUID, quantity int) (*inventory.View, error) {
	s.lastAction = "set"
	s.lastLine = lineID
	s.lastQty = quantity
	return s.view, s.err
}

func (s *stubInventoryService) Remove(ctx context.Context, sessionID string, lineID uuid.UUID) (*inventory.View, error) {
	s.lastAction = "remove"
	s.lastLine = lineID
	return s.view, s.err
}

type stubClearer struct {
	cleared string
}

func (s *stubClearer) Clear(ctx context.Context, sessionID string) error {
	s.cleared = sessionID
	return nil
}

func sampleView() *inventory.View {
	lineID := uuid.New()
	return &inventory.View{
		Lines: []inventory.LineView{{
			LineID:        lineID,
			ProductID:     1,
			VariationID:   11,
			Quantity:      2,
			Title:         "Kurta",
			UnitPrice:     decimal.NewFromInt(1200),
			Subtotal:      decimal.NewFromInt(2400),
			PriceResolved: true,
			Resolved:      true,
			Stock:         5,
		}},
		Subtotal:  decimal.NewFromInt(2400),
		ItemCount: 2,
		Notices: []inventory.Notice{{
			LineID:      uuid.New(),
			VariationID: 12,
			Reason:      enums.LineRemovalProductUnavailable,
			Message:     "removed",
		}},
	}
}

func newRequest(method, target, body string, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rc := chi.NewRouteContext()
	for k, v := range params {
		rc.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
	ctx = session.WithID(ctx, "sid-1")
	return req.WithContext(ctx)
}

func decodeCart(t *testing.T, resp *httptest.ResponseRecorder) cartdto.CartView {
	t.Helper()
	var envelope struct {
		Data cartdto.CartView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestCartFetchSuccess(t *testing.T) {
	svc := &stubInventoryService{view: sampleView()}
	resp := httptest.NewRecorder()

	CartFetch(svc, nil).ServeHTTP(resp, newRequest(http.MethodGet, "/api/v1/cart", "", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	view := decodeCart(t, resp)
	if len(view.Lines) != 1 || view.ItemCount != 2 {
		t.Fatalf("unexpected cart %+v", view)
	}
	if view.FormattedSubtotal != "৳2,400.00" {
		t.Fatalf("unexpected subtotal %q", view.FormattedSubtotal)
	}
	if view.Lines[0].FormattedPrice != "৳1,200.00" {
		t.Fatalf("unexpected price %q", view.Lines[0].FormattedPrice)
	}
	if len(view.Notices) != 1 || view.Notices[0].Reason != "product_unavailable" {
		t.Fatalf("expected removal notice, got %+v", view.Notices)
	}
}

func TestCartAddItemDefaultsQuantity(t *testing.T) {
	svc := &stubInventoryService{view: sampleView()}
	resp := httptest.NewRecorder()

	CartAddItem(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"variation_id":11}`, nil))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastAdd.Quantity != 1 || svc.lastAdd.VariationID != 11 {
		t.Fatalf("unexpected add input %+v", svc.lastAdd)
	}
}

func TestCartAddItemStockExceeded(t *testing.T) {
	svc := &stubInventoryService{err: pkgerrors.New(pkgerrors.CodeStockExceeded, "Not enough items in stock.")}
	resp := httptest.NewRecorder()

	CartAddItem(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"variation_id":11,"quantity":9}`, nil))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Not enough items in stock.") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestCartLineActions(t *testing.T) {
	lineID := uuid.New()
	cases := []struct {
		name    string
		handler func(inventory.Service) http.HandlerFunc
		action  string
	}{
		{"increment", func(s inventory.Service) http.HandlerFunc { return CartIncrement(s, nil) }, "increment"},
		{"decrement", func(s inventory.Service) http.HandlerFunc { return CartDecrement(s, nil) }, "decrement"},
		{"remove", func(s inventory.Service) http.HandlerFunc { return CartRemoveItem(s, nil) }, "remove"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubInventoryService{view: sampleView()}
			resp := httptest.NewRecorder()
			tc.handler(svc).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/cart/items/x", "", map[string]string{"lineID": lineID.String()}))

			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d", resp.Code)
			}
			if svc.lastAction != tc.action || svc.lastLine != lineID {
				t.Fatalf("unexpected call %s %s", svc.lastAction, svc.lastLine)
			}
		})
	}
}

func TestCartLineActionRejectsBadLineID(t *testing.T) {
	svc := &stubInventoryService{}
	resp := httptest.NewRecorder()

	CartIncrement(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/cart/items/x", "", map[string]string{"lineID": "not-a-uuid"}))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.lastAction != "" {
		t.Fatalf("service should not be called")
	}
}

func TestCartSetQuantity(t *testing.T) {
	lineID := uuid.New()
	svc := &stubInventoryService{view: sampleView()}
	resp := httptest.NewRecorder()

	CartSetQuantity(svc, nil).ServeHTTP(resp, newRequest(http.MethodPut, "/api/v1/cart/items/x", `{"quantity":4}`, map[string]string{"lineID": lineID.String()}))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastQty != 4 || svc.lastLine != lineID {
		t.Fatalf("unexpected set call %d %s", svc.lastQty, svc.lastLine)
	}

	resp = httptest.NewRecorder()
	CartSetQuantity(svc, nil).ServeHTTP(resp, newRequest(http.MethodPut, "/api/v1/cart/items/x", `{"quantity":0}`, map[string]string{"lineID": lineID.String()}))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity got %d", resp.Code)
	}
}

func TestCartClear(t *testing.T) {
	clearer := &stubClearer{}
	resp := httptest.NewRecorder()

	CartClear(clearer, nil).ServeHTTP(resp, newRequest(http.MethodDelete, "/api/v1/cart", "", nil))

	if resp.Code != http.StatusOK || clearer.cleared != "sid-1" {
		t.Fatalf("expected cart cleared, got %d %q", resp.Code, clearer.cleared)
	}
	view := decodeCart(t, resp)
	if len(view.Lines) != 0 || view.ItemCount != 0 {
		t.Fatalf("expected empty cart %+v", view)
	}
}
