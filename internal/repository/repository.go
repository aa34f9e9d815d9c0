package repository

import (
	"context"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil if absent.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// FindByIDs retrieves the products with the given IDs inside tx, ordered
	// by ID. Unknown IDs are simply missing from the result.
	FindByIDs(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.Product, error)

	// Upsert inserts or updates products keyed by SKU and returns how many
	// rows were written.
	Upsert(ctx context.Context, products []model.Product) (int, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// FindByUser returns the user's cart rows joined with their products,
	// oldest first.
	FindByUser(ctx context.Context, userID int64) ([]model.CartItem, error)

	// Get returns one cart row or nil.
	Get(ctx context.Context, userID, productID int64) (*model.CartItem, error)

	// Save sets the quantity of a cart row, creating it when needed.
	Save(ctx context.Context, userID, productID int64, quantity int) error

	// Delete removes one cart row. Missing rows are not an error.
	Delete(ctx context.Context, userID, productID int64) error

	// DeleteAll removes every cart row of the user.
	DeleteAll(ctx context.Context, userID int64) (int64, error)

	// DeleteByProductIDs removes the user's rows for the given products
	// inside tx and returns how many rows were deleted.
	DeleteByProductIDs(ctx context.Context, tx pgx.Tx, userID int64, productIDs []int64) (int64, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order header within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByOrderNumber retrieves an order with its items. Returns nil if absent.
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)

	// LockByOrderNumber is GetByOrderNumber with the order row locked FOR UPDATE in tx.
	LockByOrderNumber(ctx context.Context, tx pgx.Tx, orderNumber string) (*model.Order, error)

	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)

	// ListAll returns every order, newest first.
	ListAll(ctx context.Context) ([]model.Order, error)

	// UpdateStatus writes status and payment status of an order within tx.
	UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error
}

// StockRepository is the storage side of the inventory ledger.
type StockRepository interface {
	// LockStock reads the stock of a product and locks its row FOR UPDATE
	// until tx ends. found is false when the product does not exist.
	LockStock(ctx context.Context, tx pgx.Tx, productID int64) (stock int, found bool, err error)

	// SetStock writes a new stock quantity within tx.
	SetStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error

	// AddStock increases the stock of a product within tx. found is false
	// when the product does not exist.
	AddStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) (found bool, err error)
}
