package service

import (
	"context"
	"fmt"

	"luxe/internal/model"
	"luxe/internal/repository"

	"github.com/rs/zerolog"
)

// pincodeService implements PincodeService.
type pincodeService struct {
	pincodeRepo repository.PincodeRepository
	logger      zerolog.Logger
}

// NewPincodeService creates a new pincode service.
func NewPincodeService(pincodeRepo repository.PincodeRepository, logger zerolog.Logger) PincodeService {
	return &pincodeService{
		pincodeRepo: pincodeRepo,
		logger:      logger.With().Str("service", "pincode").Logger(),
	}
}

// Lookup returns serviceability details for a pincode. An unknown pincode is
// simply not serviceable, not an error.
func (s *pincodeService) Lookup(ctx context.Context, pincode string) (*model.PincodeLookupResponse, error) {
	if pincode == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Pincode is required")
	}

	record, err := s.pincodeRepo.GetByPincode(ctx, pincode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up pincode: %w", err)
	}
	if record == nil {
		return &model.PincodeLookupResponse{Serviceable: false}, nil
	}

	return &model.PincodeLookupResponse{
		Serviceable:  true,
		CODAvailable: record.CODAvailable,
		DeliveryDays: record.DeliveryDays,
		City:         record.City,
		State:        record.State,
	}, nil
}
