package service

import (
	"context"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/jackc/pgx/v5"
)

// ProductService defines read operations on the catalog.
type ProductService interface {
	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID. Fails with NotFound when absent.
	GetByID(ctx context.Context, id int64) (*model.Product, error)
}

// OrderService defines operations for order management. Every operation
// that acts on behalf of a user takes the caller's principal explicitly.
type OrderService interface {
	// CreateOrder reserves stock, snapshots prices and persists the order in
	// one transaction, then removes the ordered products from the buyer's cart.
	CreateOrder(ctx context.Context, buyer model.Principal, req *model.CreateOrderRequest) (*model.OrderDetail, error)

	// GetOrderDetail returns one of the buyer's orders.
	GetOrderDetail(ctx context.Context, buyer model.Principal, orderNumber string) (*model.OrderDetail, error)

	// GetMyOrders returns the buyer's orders, newest first.
	GetMyOrders(ctx context.Context, buyer model.Principal) ([]model.OrderSummary, error)

	// GetAllOrders returns every order, newest first.
	GetAllOrders(ctx context.Context) ([]model.OrderSummary, error)

	// UpdateOrderStatus changes the status and/or payment status of an order.
	UpdateOrderStatus(ctx context.Context, orderNumber string, req *model.UpdateOrderStatusRequest) error
}

// CartService defines operations on a user's cart.
type CartService interface {
	GetCart(ctx context.Context, user model.Principal) (*model.CartView, error)
	AddItem(ctx context.Context, user model.Principal, req *model.AddCartItemRequest) (*model.CartView, error)
	UpdateItem(ctx context.Context, user model.Principal, productID int64, req *model.UpdateCartItemRequest) (*model.CartView, error)
	RemoveItem(ctx context.Context, user model.Principal, productID int64) error
	ClearCart(ctx context.Context, user model.Principal) error
}

// CartReconciler removes ordered products from a cart inside the order
// transaction.
type CartReconciler interface {
	// Reconcile deletes the user's cart rows for productIDs and returns how
	// many rows were removed. Rows of other products or users are untouched.
	Reconcile(ctx context.Context, tx pgx.Tx, userID int64, productIDs []int64) (int64, error)
}
