package repository

import (
	"context"
	"fmt"

	"luxe/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
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

const productColumns = `id, title, price, sale_price, category, image, stock_quantity, is_active, created_at, updated_at`

// GetAll retrieves active products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE is_active = TRUE
		ORDER BY title
		LIMIT $1 OFFSET $2
	`, productColumns)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Price, &p.SalePrice, &p.Category, &p.Image,
		&p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM products WHERE id = ANY($1)", productColumns)

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// AdjustStock applies an increment, decrement or set operation to a product's
// stock. Decrements clamp at zero; a decrement can never produce an error for
// insufficient stock.
func (r *productRepository) AdjustStock(ctx context.Context, id string, op model.StockAdjustOp, quantity int) (*model.Product, error) {
	var query string
	switch op {
	case model.StockOpIncrement:
		query = `
			UPDATE products
			SET stock_quantity = COALESCE(stock_quantity, 0) + $2, updated_at = NOW()
			WHERE id = $1
		`
	case model.StockOpDecrement:
		query = `
			UPDATE products
			SET stock_quantity = GREATEST(0, COALESCE(stock_quantity, 0) - $2), updated_at = NOW()
			WHERE id = $1
		`
	case model.StockOpSet:
		query = `
			UPDATE products
			SET stock_quantity = $2, updated_at = NOW()
			WHERE id = $1
		`
	default:
		return nil, fmt.Errorf("unknown stock operation: %s", op)
	}

	tag, err := r.pool.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", id).
			Str("op", string(op)).
			Int("quantity", quantity).
			Msg("failed to adjust stock")
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Upsert inserts or updates catalog entries from a product feed.
func (r *productRepository) Upsert(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	query := `
		INSERT INTO products (id, title, price, sale_price, category, image, stock_quantity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			sale_price = EXCLUDED.sale_price,
			category = EXCLUDED.category,
			image = EXCLUDED.image,
			stock_quantity = EXCLUDED.stock_quantity,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(query, p.ID, p.Title, p.Price, p.SalePrice, p.Category, p.Image, p.StockQuantity, p.IsActive)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range products {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Int("count", len(products)).Msg("failed to upsert products")
			return fmt.Errorf("failed to upsert products: %w", err)
		}
	}

	r.logger.Info().Int("count", len(products)).Msg("products upserted")
	return nil
}

func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(
			&p.ID, &p.Title, &p.Price, &p.SalePrice, &p.Category, &p.Image,
			&p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
