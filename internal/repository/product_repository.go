package repository

import (
	"context"
	"fmt"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, sku, name, category, price, sale_price, stock_quantity, status, created_at, updated_at`

// productRepository implements ProductRepository and StockRepository using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// NewStockRepository creates the stock accessor backing the inventory ledger.
func NewStockRepository(pool *pgxpool.Pool, logger zerolog.Logger) StockRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stock").Logger(),
	}
}

func scanProduct(row rowScanner, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.Category,
		&p.Price,
		&p.SalePrice,
		&p.StockQuantity,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *productRepository) queryProducts(ctx context.Context, q querier, query string, args ...any) ([]model.Product, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetAll retrieves products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	products, err := r.queryProducts(ctx, r.pool, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list products")
		return nil, err
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	var p model.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, id), &p); err != nil {
		if isNoRows(err) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// FindByIDs retrieves the products with the given IDs inside tx.
func (r *productRepository) FindByIDs(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
	`

	products, err := r.queryProducts(ctx, tx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, err
	}
	return products, nil
}

// Upsert inserts or updates products keyed by SKU.
func (r *productRepository) Upsert(ctx context.Context, products []model.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO products (sku, name, category, price, sale_price, stock_quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			sale_price = EXCLUDED.sale_price,
			stock_quantity = EXCLUDED.stock_quantity,
			status = EXCLUDED.status,
			updated_at = NOW()
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(query, p.SKU, p.Name, p.Category, p.Price, p.SalePrice, p.StockQuantity, p.Status)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range products {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.logger.Error().Err(err).Str("sku", products[i].SKU).Msg("failed to upsert product")
			return 0, fmt.Errorf("failed to upsert product %s: %w", products[i].SKU, err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to upsert products: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit product upsert: %w", err)
	}

	r.logger.Info().Int("count", len(products)).Msg("products upserted")
	return len(products), nil
}

// LockStock reads the stock of a product and locks its row until tx ends.
func (r *productRepository) LockStock(ctx context.Context, tx pgx.Tx, productID int64) (int, bool, error) {
	var stock int
	err := tx.QueryRow(ctx,
		`SELECT stock_quantity FROM products WHERE id = $1 FOR UPDATE`, productID,
	).Scan(&stock)
	if err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to lock product stock")
		return 0, false, fmt.Errorf("failed to lock stock of product %d: %w", productID, err)
	}
	return stock, true, nil
}

// SetStock writes a new stock quantity within tx.
func (r *productRepository) SetStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error {
	_, err := tx.Exec(ctx,
		`UPDATE products SET stock_quantity = $2, updated_at = NOW() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to write product stock")
		return fmt.Errorf("failed to write stock of product %d: %w", productID, err)
	}
	return nil
}

// AddStock increases the stock of a product within tx.
func (r *productRepository) AddStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = NOW() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to restore product stock")
		return false, fmt.Errorf("failed to restore stock of product %d: %w", productID, err)
	}
	return tag.RowsAffected() == 1, nil
}
