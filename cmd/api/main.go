package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/config"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/database"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/events"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/handler"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/idempotency"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/inventory"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/middleware"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/ordernumber"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/repository"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/router"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting travel shop API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Repositories
	productRepo := repository.NewProductRepository(pool, logger)
	stockRepo := repository.NewStockRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)

	publisher, err := newPublisher(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	idempotencyStore, err := newIdempotencyStore(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer idempotencyStore.Close()

	// Services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(
		orderRepo,
		productRepo,
		inventory.NewLedger(stockRepo, logger),
		service.NewCartReconciler(cartRepo, logger),
		ordernumber.New(),
		publisher,
		cfg.Order,
		logger,
	)

	mux := router.New(router.Handlers{
		Product: handler.NewProductHandler(productService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(orderService, idempotencyStore, logger),
	}, middleware.NewAuthenticator(cfg.Auth, logger), logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

func newPublisher(cfg config.KafkaConfig, logger zerolog.Logger) (events.Publisher, error) {
	if !cfg.Enabled {
		logger.Info().Msg("order events disabled (Kafka disabled)")
		return events.NewNop(), nil
	}
	publisher, err := events.NewKafkaPublisher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Kafka publisher: %w", err)
	}
	return publisher, nil
}

func newIdempotencyStore(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (idempotency.Store, error) {
	if !cfg.Enabled {
		logger.Info().Msg("Idempotency-Key header ignored (Redis disabled)")
		return idempotency.NewNop(), nil
	}
	store, err := idempotency.NewRedisStore(ctx, cfg.URL, cfg.IdempotencyTTL, cfg.PendingTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize idempotency store: %w", err)
	}
	return store, nil
}
