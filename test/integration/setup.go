// Package integration exercises the assembled application against a real
// PostgreSQL container.
package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/config"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/database/dbtest"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/events"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/handler"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/idempotency"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/inventory"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/middleware"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/ordernumber"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/repository"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/router"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TestEnv is the application wired the way cmd/api wires it.
type TestEnv struct {
	Pool     *pgxpool.Pool
	Products repository.ProductRepository
	Carts    service.CartService
	Orders   service.OrderService
	Auth     *middleware.Authenticator
	Server   http.Handler
}

// SetupTestEnv starts PostgreSQL and builds every layer on top of it.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool := dbtest.Start(t)
	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)

	carts := service.NewCartService(cartRepo, productRepo, logger)
	orders := service.NewOrderService(
		repository.NewOrderRepository(pool, logger),
		productRepo,
		inventory.NewLedger(repository.NewStockRepository(pool, logger), logger),
		service.NewCartReconciler(cartRepo, logger),
		ordernumber.New(),
		events.NewNop(),
		config.OrderConfig{TxTimeout: 5 * time.Second, MaxRetries: 5, RetryBaseDelay: 5 * time.Millisecond},
		logger,
	)
	auth := middleware.NewAuthenticator(config.AuthConfig{JWTSecret: "integration-secret", Issuer: "travel-shop"}, logger)

	server := router.New(router.Handlers{
		Product: handler.NewProductHandler(service.NewProductService(productRepo, logger), logger),
		Cart:    handler.NewCartHandler(carts, logger),
		Order:   handler.NewOrderHandler(orders, idempotency.NewNop(), logger),
	}, auth, logger)

	return &TestEnv{
		Pool:     pool,
		Products: productRepo,
		Carts:    carts,
		Orders:   orders,
		Auth:     auth,
		Server:   server,
	}
}

// Reset empties every table and loads the standard catalog. It returns the
// product ids keyed by SKU.
func (e *TestEnv) Reset(t *testing.T) map[string]int64 {
	t.Helper()

	dbtest.Truncate(t, e.Pool)

	products := []model.Product{
		{SKU: "TOUR-JEJU", Name: "Jeju Island Tour", Category: "tour", Price: decimal.NewFromInt(150000),
			SalePrice: decimal.NewNullDecimal(decimal.NewFromInt(120000)), StockQuantity: 50, Status: model.ProductActive},
		{SKU: "STAY-BUSAN", Name: "Busan Haeundae Stay", Category: "stay", Price: decimal.NewFromInt(80000),
			StockQuantity: 3, Status: model.ProductActive},
		{SKU: "TOUR-LIMITED", Name: "Limited Night Cruise", Category: "tour", Price: decimal.NewFromInt(50000),
			StockQuantity: 10, Status: model.ProductActive},
		{SKU: "TOUR-OLD", Name: "Retired Tour", Category: "tour", Price: decimal.NewFromInt(10000),
			StockQuantity: 5, Status: model.ProductInactive},
	}
	if _, err := e.Products.Upsert(context.Background(), products); err != nil {
		t.Fatalf("failed to seed products: %v", err)
	}

	rows, err := e.Pool.Query(context.Background(), "SELECT id, sku FROM products")
	if err != nil {
		t.Fatalf("failed to read product ids: %v", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var sku string
		if err := rows.Scan(&id, &sku); err != nil {
			t.Fatalf("failed to scan product id: %v", err)
		}
		ids[sku] = id
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("failed to read product ids: %v", err)
	}
	return ids
}

// Stock returns the current stock of a product.
func (e *TestEnv) Stock(t *testing.T, productID int64) int {
	t.Helper()

	var stock int
	err := e.Pool.QueryRow(context.Background(),
		"SELECT stock_quantity FROM products WHERE id = $1", productID).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock of product %d: %v", productID, err)
	}
	return stock
}

// CountOrders returns the number of persisted orders.
func (e *TestEnv) CountOrders(t *testing.T) int {
	t.Helper()

	var n int
	if err := e.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM orders").Scan(&n); err != nil {
		t.Fatalf("failed to count orders: %v", err)
	}
	return n
}

// Token issues a bearer token for p.
func (e *TestEnv) Token(t *testing.T, p model.Principal) string {
	t.Helper()

	token, err := e.Auth.IssueToken(p, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}
