// Command seed imports gzipped catalog CSV files into the products table.
// Files are read from S3 when enabled, falling back to the local disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/catalog"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/config"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/database"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/repository"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	migrate := fs.Bool("migrate", true, "apply database migrations before importing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	files := fs.Args()
	if len(files) == 0 {
		files = cfg.Catalog.SeedFiles
	}
	if len(files) == 0 {
		return fmt.Errorf("no seed files given (pass paths or set CATALOG_SEED_FILES)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if *migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	fileLoader := catalog.NewFileLoader(logger)
	var s3Loader catalog.Loader
	if cfg.S3.Enabled {
		s3Loader, err = catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	} else {
		logger.Info().Msg("using local file system for seed files (S3 disabled)")
	}
	loader := catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

	importer := catalog.NewImporter(loader, repository.NewProductRepository(pool, logger), logger)
	n, err := importer.Import(ctx, files)
	if err != nil {
		return err
	}

	logger.Info().Int("products", n).Strs("files", files).Msg("catalog seeded")
	return nil
}
