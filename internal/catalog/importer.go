package catalog

import (
	"context"
	"fmt"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Importer loads seed files concurrently and upserts their products.
type Importer struct {
	loader   Loader
	products repository.ProductRepository
	logger   zerolog.Logger
}

// NewImporter creates a new catalog importer.
func NewImporter(loader Loader, products repository.ProductRepository, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:   loader,
		products: products,
		logger:   logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import loads every file and writes the products keyed by SKU. When a SKU
// appears more than once, the row from the later file wins. Nothing is
// written if any file fails to load.
func (i *Importer) Import(ctx context.Context, files []string) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}

	i.logger.Info().Int("file_count", len(files)).Msg("importing catalog")

	loaded := make([][]model.Product, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for idx, path := range files {
		g.Go(func() error {
			products, err := i.loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			loaded[idx] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		i.logger.Error().Err(err).Msg("catalog import aborted")
		return 0, err
	}

	merged := mergeBySKU(loaded)
	if len(merged) == 0 {
		return 0, nil
	}

	n, err := i.products.Upsert(ctx, merged)
	if err != nil {
		i.logger.Error().Err(err).Int("products", len(merged)).Msg("failed to upsert products")
		return 0, fmt.Errorf("failed to import catalog: %w", err)
	}

	i.logger.Info().Int("products_written", n).Msg("catalog imported")
	return n, nil
}

func mergeBySKU(batches [][]model.Product) []model.Product {
	index := make(map[string]int)
	var merged []model.Product
	for _, batch := range batches {
		for _, p := range batch {
			if at, ok := index[p.SKU]; ok {
				merged[at] = p
				continue
			}
			index[p.SKU] = len(merged)
			merged = append(merged, p)
		}
	}
	return merged
}
