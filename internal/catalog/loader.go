package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"luxe/internal/model"

	"github.com/rs/zerolog"
)

// Loader reads a product feed from some source into catalog entries.
type Loader interface {
	// Load reads a gzipped JSON-lines product feed. One product per line.
	Load(ctx context.Context, source string) ([]model.Product, error)
}

// fileLoader implements Loader for local gzipped feed files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based feed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a gzipped product feed file.
func (l *fileLoader) Load(ctx context.Context, path string) ([]model.Product, error) {
	l.logger.Info().Str("file", path).Msg("loading product feed")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open feed file")
		return nil, fmt.Errorf("failed to open feed file %s: %w", path, err)
	}
	defer file.Close()

	products, err := parseFeed(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("products_loaded", len(products)).
		Msg("product feed loaded")

	return products, nil
}

// parseFeed decompresses and decodes a JSON-lines product feed.
func parseFeed(ctx context.Context, r io.Reader) ([]model.Product, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var products []model.Product
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p model.Product
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("invalid product on line %d: %w", lineNo, err)
		}
		if p.ID == "" {
			return nil, fmt.Errorf("product on line %d has no id", lineNo)
		}
		products = append(products, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading feed: %w", err)
	}

	return products, nil
}
