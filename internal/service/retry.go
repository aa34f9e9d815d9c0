package service

import (
	"context"
	"time"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/config"
)

const maxRetryDelay = time.Second

// RetryConfig configures exponential backoff for transactions that lose a
// conflict with a concurrent transaction.
type RetryConfig struct {
	MaxRetries int           // Total attempts, including the first
	BaseDelay  time.Duration // Delay before the second attempt
	MaxDelay   time.Duration // Upper bound for any delay
	Multiplier float64       // Growth factor between delays
}

// NewRetryConfig derives the retry policy from the order settings.
func NewRetryConfig(cfg config.OrderConfig) RetryConfig {
	return RetryConfig{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay,
		MaxDelay:   maxRetryDelay,
		Multiplier: 2,
	}
}

// retryWithBackoff runs fn until it succeeds, returns an error that
// retryable rejects, or MaxRetries attempts have been made. Retry stops on
// context cancellation.
func retryWithBackoff[T any](ctx context.Context, cfg RetryConfig, retryable func(error) bool, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.MaxRetries, 1)
	backoff := cfg.BaseDelay

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) {
			return zero, err
		}

		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * cfg.Multiplier)
				if cfg.MaxDelay > 0 && backoff > cfg.MaxDelay {
					backoff = cfg.MaxDelay
				}
			}
		}
	}

	return zero, lastErr
}
