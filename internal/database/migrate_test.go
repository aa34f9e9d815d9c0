package database_test

import (
	"context"
	"testing"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/config"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/database"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/database/dbtest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesSchemaAndIsIdempotent(t *testing.T) {
	pool := dbtest.Start(t)
	ctx := context.Background()

	// Start already migrated once; a second run must be a no-op.
	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	for _, table := range []string{"products", "cart_items", "orders", "order_items"} {
		var exists bool
		err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist", table)
	}
}

func TestMigrate_StockCannotGoNegative(t *testing.T) {
	pool := dbtest.Start(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		"INSERT INTO products (sku, name, price, stock_quantity) VALUES ('SKU-1', 'Tour', 1000, -1)")

	require.Error(t, err)
	assert.True(t, database.IsCheckViolation(err))
}

func TestNewPool_InvalidConnection(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      config.DatabaseConfig
		errMatch string
	}{
		{
			name: "Cannot connect to database",
			cfg: config.DatabaseConfig{
				Host: "invalid-host.invalid", Port: 5432, User: "user", Password: "pass",
				Database: "testdb", MaxConnections: 2, MinConnections: 1, MaxConnLifetime: 60,
			},
			errMatch: "failed to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := database.NewPool(ctx, tt.cfg, zerolog.Nop())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMatch)
			assert.Nil(t, pool)
		})
	}

	_, err := database.NewPoolFromURL(ctx, "invalid connection string", database.PoolOptions{}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database config")
}
