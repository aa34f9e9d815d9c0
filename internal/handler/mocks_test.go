package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/idempotency"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/middleware"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, buyer model.Principal, req *model.CreateOrderRequest) (*model.OrderDetail, error) {
	args := m.Called(ctx, buyer, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

func (m *MockOrderService) GetOrderDetail(ctx context.Context, buyer model.Principal, orderNumber string) (*model.OrderDetail, error) {
	args := m.Called(ctx, buyer, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

func (m *MockOrderService) GetMyOrders(ctx context.Context, buyer model.Principal) ([]model.OrderSummary, error) {
	args := m.Called(ctx, buyer)
	return args.Get(0).([]model.OrderSummary), args.Error(1)
}

func (m *MockOrderService) GetAllOrders(ctx context.Context) ([]model.OrderSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.OrderSummary), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, orderNumber string, req *model.UpdateOrderStatusRequest) error {
	args := m.Called(ctx, orderNumber, req)
	return args.Error(0)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, user model.Principal) (*model.CartView, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, user model.Principal, req *model.AddCartItemRequest) (*model.CartView, error) {
	args := m.Called(ctx, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) UpdateItem(ctx context.Context, user model.Principal, productID int64, req *model.UpdateCartItemRequest) (*model.CartView, error) {
	args := m.Called(ctx, user, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, user model.Principal, productID int64) error {
	return m.Called(ctx, user, productID).Error(0)
}

func (m *MockCartService) ClearCart(ctx context.Context, user model.Principal) error {
	return m.Called(ctx, user).Error(0)
}

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of idempotency.Store.
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, userID int64, key, fingerprint string) (idempotency.Claim, error) {
	args := m.Called(ctx, userID, key, fingerprint)
	return args.Get(0).(idempotency.Claim), args.Error(1)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, userID int64, key, fingerprint, orderNumber string) error {
	return m.Called(ctx, userID, key, fingerprint, orderNumber).Error(0)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, userID int64, key string) error {
	return m.Called(ctx, userID, key).Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

var testBuyer = model.Principal{UserID: 42, Role: model.RoleUser}

// newRequest builds a request as the router would hand it to a handler:
// authenticated as p (when non-nil) and with chi URL params set.
func newRequest(t *testing.T, method, path string, body any, p *model.Principal, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if p != nil {
		ctx = middleware.WithPrincipal(ctx, *p)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}
