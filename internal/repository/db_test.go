package repository

import (
	"context"
	"testing"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/database/dbtest"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// setupTestDB starts a migrated PostgreSQL container for this test.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return dbtest.Start(t)
}

// seedProduct inserts a product and returns its ID.
func seedProduct(t *testing.T, pool *pgxpool.Pool, p model.Product) int64 {
	t.Helper()

	if p.Status == "" {
		p.Status = model.ProductActive
	}

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO products (sku, name, category, price, sale_price, stock_quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, p.SKU, p.Name, p.Category, p.Price, p.SalePrice, p.StockQuantity, p.Status).Scan(&id)
	require.NoError(t, err)

	return id
}

func testProduct(sku string, price int64, stock int) model.Product {
	return model.Product{
		SKU:           sku,
		Name:          "Product " + sku,
		Category:      "tour",
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
		Status:        model.ProductActive,
	}
}

func stockOf(t *testing.T, pool *pgxpool.Pool, productID int64) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock)
	require.NoError(t, err)
	return stock
}
