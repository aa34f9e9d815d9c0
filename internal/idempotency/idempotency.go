// Package idempotency remembers which order a client supplied
// Idempotency-Key produced, so that a retried submission does not place a
// second order.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix    = "travel-shop:idempotency"
	pendingValue = "PENDING"
)

// State is the outcome of claiming a key.
type State int

const (
	// StateNew means the caller now owns the key and must Complete or Release it.
	StateNew State = iota
	// StatePending means another request holding the key is still running.
	StatePending
	// StateCompleted means the key already produced an order.
	StateCompleted
	// StateMismatch means the key was first used with a different request.
	StateMismatch
)

// Claim is the result of Store.Claim.
type Claim struct {
	State       State
	OrderNumber string
}

// Store records idempotency keys per user. Each key remembers the
// fingerprint of the request that claimed it.
type Store interface {
	// Claim reserves key for userID unless it is already known.
	Claim(ctx context.Context, userID int64, key, fingerprint string) (Claim, error)

	// Complete binds a claimed key to the order it produced.
	Complete(ctx context.Context, userID int64, key, fingerprint, orderNumber string) error

	// Release forgets a claimed key so the request can be submitted again.
	Release(ctx context.Context, userID int64, key string) error

	Close() error
}

type redisStore struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
	logger     zerolog.Logger
}

// NewRedisStore connects to Redis at redisURL. A claimed key expires after
// pendingTTL unless it is completed, which keeps it for ttl.
func NewRedisStore(ctx context.Context, redisURL string, ttl, pendingTTL time.Duration, logger zerolog.Logger) (Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &redisStore{
		client:     client,
		ttl:        ttl,
		pendingTTL: pendingTTL,
		logger:     logger.With().Str("component", "idempotency").Logger(),
	}, nil
}

func redisKey(userID int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, userID, key)
}

// Values are stored as "<fingerprint>|<PENDING or order number>".
func encodeValue(fingerprint, state string) string {
	return fingerprint + "|" + state
}

func (s *redisStore) Claim(ctx context.Context, userID int64, key, fingerprint string) (Claim, error) {
	k := redisKey(userID, key)

	ok, err := s.client.SetNX(ctx, k, encodeValue(fingerprint, pendingValue), s.pendingTTL).Result()
	if err != nil {
		return Claim{}, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if ok {
		return Claim{State: StateNew}, nil
	}

	value, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Expired or released between the two commands.
		return s.Claim(ctx, userID, key, fingerprint)
	}
	if err != nil {
		return Claim{}, fmt.Errorf("failed to read idempotency key: %w", err)
	}

	stored, state, _ := strings.Cut(value, "|")
	if stored != fingerprint {
		s.logger.Warn().
			Int64("user_id", userID).
			Msg("idempotency key reused with a different request")
		return Claim{State: StateMismatch}, nil
	}

	if state == pendingValue {
		return Claim{State: StatePending}, nil
	}

	s.logger.Debug().
		Int64("user_id", userID).
		Str("order_number", state).
		Msg("idempotency key replayed")

	return Claim{State: StateCompleted, OrderNumber: state}, nil
}

func (s *redisStore) Complete(ctx context.Context, userID int64, key, fingerprint, orderNumber string) error {
	if err := s.client.Set(ctx, redisKey(userID, key), encodeValue(fingerprint, orderNumber), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

func (s *redisStore) Release(ctx context.Context, userID int64, key string) error {
	if err := s.client.Del(ctx, redisKey(userID, key)).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

type nopStore struct{}

// NewNop returns a store that never remembers anything, used when Redis is
// disabled. Every claim is new.
func NewNop() Store {
	return nopStore{}
}

func (nopStore) Claim(context.Context, int64, string, string) (Claim, error) {
	return Claim{State: StateNew}, nil
}
func (nopStore) Complete(context.Context, int64, string, string, string) error { return nil }
func (nopStore) Release(context.Context, int64, string) error                  { return nil }
func (nopStore) Close() error                                                  { return nil }
