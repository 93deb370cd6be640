package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ordermesh/internal/orders"
)

type fakeService struct {
	createErr error
	cancelErr error
	order     orders.Order
	list      []orders.Order
}

func (f *fakeService) CreateOrder(ctx context.Context, userID, cartID int64) (orders.Order, error) {
	if f.createErr != nil {
		return orders.Order{}, f.createErr
	}
	return f.order, nil
}

func (f *fakeService) CancelOrder(ctx context.Context, orderID int64) (orders.Order, error) {
	if f.cancelErr != nil {
		return orders.Order{}, f.cancelErr
	}
	return f.order, nil
}

func (f *fakeService) GetOrder(ctx context.Context, id int64) (orders.Order, error) {
	if f.order.ID != id {
		return orders.Order{}, fmt.Errorf("%w: %d", orders.ErrOrderNotFound, id)
	}
	return f.order, nil
}

func (f *fakeService) GetOrdersByUser(ctx context.Context, userID int64) ([]orders.Order, error) {
	return f.list, nil
}

func (f *fakeService) ListOrders(ctx context.Context) ([]orders.Order, error) {
	return f.list, nil
}

func newTestRouter(svc *fakeService) http.Handler {
	return NewRouter(NewHandler(svc, nil, nil), Extras{})
}

func TestCreateOrder_Created(t *testing.T) {
	svc := &fakeService{order: orders.Order{ID: 5, UserID: 101, CartID: 1, PaymentStatus: orders.PaymentSuccess}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"userId":101,"cartId":1}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var got orders.Order
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 5 || got.PaymentStatus != orders.PaymentSuccess {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestCreateOrder_BadRequest(t *testing.T) {
	router := newTestRouter(&fakeService{})

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"userId":`},
		{"missing ids", `{}`},
		{"negative user", `{"userId":-1,"cartId":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"cart unavailable", fmt.Errorf("%w: boom", orders.ErrCartUnavailable), http.StatusBadGateway},
		{"upstream", fmt.Errorf("%w: boom", orders.ErrUpstream), http.StatusBadGateway},
		{"cart empty", fmt.Errorf("%w: cart 1", orders.ErrCartEmpty), http.StatusUnprocessableEntity},
		{"owner mismatch", fmt.Errorf("%w: cart 1", orders.ErrCartOwnerMismatch), http.StatusUnprocessableEntity},
		{"persistence", fmt.Errorf("%w: boom", orders.ErrPersistence), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeService{createErr: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"userId":101,"cartId":1}`))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestCancelOrder_Conflict(t *testing.T) {
	svc := &fakeService{cancelErr: fmt.Errorf("%w: order 5", orders.ErrAlreadyCanceled)}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/cancel", strings.NewReader(`{"orderId":5}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error != "order_already_canceled" {
		t.Fatalf("unexpected error code: %s", body.Error)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	router := newTestRouter(&fakeService{order: orders.Order{ID: 1}})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/99", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestGetOrder_BadID(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListOrders_EmptyIsArray(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Fatalf("expected empty array, got %s", got)
	}
}

func TestGetOrdersByUser(t *testing.T) {
	svc := &fakeService{list: []orders.Order{{ID: 1, UserID: 101}, {ID: 2, UserID: 101}}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/user/101", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var got []orders.Order
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(got))
	}
}
