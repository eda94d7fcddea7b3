package catalog

import (
	"context"
	"fmt"
	"time"

	"luxe/internal/repository"

	"github.com/rs/zerolog"
)

const importBatchSize = 500

// Importer loads a product feed and upserts it into the catalog tables.
type Importer struct {
	loader      Loader
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewImporter creates a new catalog importer.
func NewImporter(loader Loader, productRepo repository.ProductRepository, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:      loader,
		productRepo: productRepo,
		logger:      logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import reads the feed identified by source and upserts its products in
// batches. Products already present keep their stock adjustments only if the
// feed carries no stock figure for them.
func (i *Importer) Import(ctx context.Context, source string) (int, error) {
	start := time.Now()

	products, err := i.loader.Load(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("failed to load product feed: %w", err)
	}

	if len(products) == 0 {
		i.logger.Warn().Str("source", source).Msg("product feed is empty, nothing to import")
		return 0, nil
	}

	imported := 0
	for offset := 0; offset < len(products); offset += importBatchSize {
		end := offset + importBatchSize
		if end > len(products) {
			end = len(products)
		}

		if err := i.productRepo.Upsert(ctx, products[offset:end]); err != nil {
			i.logger.Error().
				Err(err).
				Int("imported", imported).
				Int("batch_start", offset).
				Msg("failed to upsert product batch")
			return imported, fmt.Errorf("failed to upsert product batch starting at %d: %w", offset, err)
		}
		imported = end
	}

	i.logger.Info().
		Str("source", source).
		Int("products_imported", imported).
		Dur("elapsed", time.Since(start)).
		Msg("catalog import complete")

	return imported, nil
}
