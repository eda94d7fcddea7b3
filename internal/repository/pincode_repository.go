package repository

import (
	"context"
	"fmt"

	"luxe/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// pincodeRepository implements the PincodeRepository interface using PostgreSQL.
type pincodeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPincodeRepository creates a new PostgreSQL-backed pincode repository.
func NewPincodeRepository(pool *pgxpool.Pool, logger zerolog.Logger) PincodeRepository {
	return &pincodeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "pincode").Logger(),
	}
}

// GetByPincode retrieves a serviceability record. Returns nil, nil when the
// pincode is not serviceable.
func (r *pincodeRepository) GetByPincode(ctx context.Context, pincode string) (*model.Pincode, error) {
	query := `
		SELECT pincode, city, state, cod_available, delivery_days
		FROM pincodes
		WHERE pincode = $1
	`

	var p model.Pincode
	err := r.pool.QueryRow(ctx, query, pincode).Scan(
		&p.Pincode, &p.City, &p.State, &p.CODAvailable, &p.DeliveryDays,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("pincode", pincode).Msg("pincode not serviceable")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("pincode", pincode).Msg("failed to query pincode")
		return nil, fmt.Errorf("failed to query pincode: %w", err)
	}

	return &p, nil
}
