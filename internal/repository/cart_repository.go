package repository

import (
	"context"
	"fmt"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// FindByUser returns the user's cart rows joined with their products.
func (r *cartRepository) FindByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		       p.id, p.sku, p.name, p.category, p.price, p.sale_price, p.stock_quantity, p.status, p.created_at, p.updated_at
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var (
			item model.CartItem
			p    model.Product
		)
		err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
			&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.SalePrice, &p.StockQuantity, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		item.Product = &p
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Get returns one cart row or nil.
func (r *cartRepository) Get(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`

	var item model.CartItem
	err := r.pool.QueryRow(ctx, query, userID, productID).Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("user_id", userID).Int64("product_id", productID).Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}

	return &item, nil
}

// Save sets the quantity of a cart row, creating it when needed.
func (r *cartRepository) Save(ctx context.Context, userID, productID int64, quantity int) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT cart_items_user_product_key
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, userID, productID, quantity); err != nil {
		r.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Int64("product_id", productID).
			Int("quantity", quantity).
			Msg("failed to save cart item")
		return fmt.Errorf("failed to save cart item: %w", err)
	}

	return nil
}

// Delete removes one cart row.
func (r *cartRepository) Delete(ctx context.Context, userID, productID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Int64("product_id", productID).Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}

// DeleteAll removes every cart row of the user.
func (r *cartRepository) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to clear cart")
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByProductIDs removes the user's rows for the given products inside tx.
func (r *cartRepository) DeleteByProductIDs(ctx context.Context, tx pgx.Tx, userID int64, productIDs []int64) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = ANY($2)`, userID, productIDs)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Int("product_count", len(productIDs)).
			Msg("failed to reconcile cart")
		return 0, fmt.Errorf("failed to delete cart items: %w", err)
	}

	r.logger.Debug().
		Int64("user_id", userID).
		Int64("deleted", tag.RowsAffected()).
		Msg("cart items removed")

	return tag.RowsAffected(), nil
}
