// Package inventory owns product stock. Every change to a stock quantity
// goes through a Ledger inside the caller's transaction.
package inventory

import (
	"context"
	"fmt"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Ledger reserves and restores stock.
type Ledger interface {
	// Reserve takes quantity units of a product. The product row stays
	// locked until tx ends, so concurrent reservations of the same product
	// are serialised. Fails with InsufficientStock without writing when the
	// stock cannot cover the quantity.
	Reserve(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error

	// Restore gives quantity units back to a product. Fails with a
	// NotFound error when the product no longer exists.
	Restore(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error
}

type ledger struct {
	stock  repository.StockRepository
	logger zerolog.Logger
}

// NewLedger creates a ledger on top of the given stock store.
func NewLedger(stock repository.StockRepository, logger zerolog.Logger) Ledger {
	return &ledger{
		stock:  stock,
		logger: logger.With().Str("component", "inventory").Logger(),
	}
}

func (l *ledger) Reserve(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	current, found, err := l.stock.LockStock(ctx, tx, productID)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	if !found {
		return model.NewProductNotFoundError(productID)
	}

	remaining := current - quantity
	if remaining < 0 {
		l.logger.Warn().
			Int64("product_id", productID).
			Int("available", current).
			Int("requested", quantity).
			Msg("insufficient stock")
		return model.NewInsufficientStockError(productID, current, quantity)
	}

	if err := l.stock.SetStock(ctx, tx, productID, remaining); err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	l.logger.Debug().
		Int64("product_id", productID).
		Int("reserved", quantity).
		Int("remaining", remaining).
		Msg("stock reserved")

	return nil
}

func (l *ledger) Restore(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	found, err := l.stock.AddStock(ctx, tx, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	if !found {
		return model.NewProductNotFoundError(productID)
	}

	l.logger.Debug().
		Int64("product_id", productID).
		Int("restored", quantity).
		Msg("stock restored")

	return nil
}
