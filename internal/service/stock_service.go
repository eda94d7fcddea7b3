package service

import (
	"context"
	"fmt"

	"luxe/internal/model"
	"luxe/internal/repository"

	"github.com/rs/zerolog"
)

// failOpenStock is the stock figure reported when the real quantity cannot
// be read. Large enough that no sane cart is blocked.
const failOpenStock = 999

// stockService implements StockService.
type stockService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewStockService creates a new stock service.
func NewStockService(productRepo repository.ProductRepository, logger zerolog.Logger) StockService {
	return &stockService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "stock").Logger(),
	}
}

// CheckAvailability runs the fail-open batch availability check.
//
// The policy is fail open throughout: a store read error reports every item
// available, a product missing from the store is treated as untracked and
// available. Only an explicit non-null stock_quantity <= 0 or is_active =
// false marks an item unavailable. The same policy is applied again,
// authoritatively, at order-creation time.
func (s *stockService) CheckAvailability(ctx context.Context, items []model.StockCheckItem) *model.StockCheckResponse {
	resp := &model.StockCheckResponse{
		AllAvailable: true,
		Items:        make([]model.StockCheckResult, 0, len(items)),
	}
	if len(items) == 0 {
		return resp
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		// Fail open: never block checkout on our own infrastructure.
		s.logger.Warn().Err(err).Int("item_count", len(items)).
			Msg("stock lookup failed, reporting all items available")
		for _, item := range items {
			resp.Items = append(resp.Items, model.StockCheckResult{
				ProductID: item.ProductID,
				Available: true,
				Stock:     failOpenStock,
			})
		}
		return resp
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range items {
		result := availabilityOf(byID, item.ProductID)
		if !result.Available {
			resp.AllAvailable = false
		}
		resp.Items = append(resp.Items, result)
	}

	return resp
}

// availabilityOf applies the fail-open rules to a single product.
func availabilityOf(byID map[string]model.Product, productID string) model.StockCheckResult {
	p, ok := byID[productID]
	if !ok {
		// Unknown products are assumed untracked or newly added.
		return model.StockCheckResult{ProductID: productID, Available: true, Stock: failOpenStock}
	}
	if !p.IsActive {
		return model.StockCheckResult{ProductID: productID, Available: false, Stock: 0}
	}
	if p.StockQuantity == nil {
		return model.StockCheckResult{ProductID: productID, Available: true, Stock: failOpenStock}
	}
	if *p.StockQuantity <= 0 {
		return model.StockCheckResult{ProductID: productID, Available: false, Stock: 0}
	}
	return model.StockCheckResult{ProductID: productID, Available: true, Stock: *p.StockQuantity}
}

// AdjustStock applies an admin increment/decrement/set operation. Returns
// nil, nil when the product does not exist.
func (s *stockService) AdjustStock(ctx context.Context, productID string, req *model.StockAdjustRequest) (*model.Product, error) {
	if productID == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Product ID is required")
	}

	switch req.Op {
	case model.StockOpIncrement, model.StockOpDecrement:
		if req.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
	case model.StockOpSet:
		if req.Quantity < 0 {
			return nil, model.ErrInvalidQuantity
		}
	default:
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Stock operation must be increment, decrement or set")
	}

	product, err := s.productRepo.AdjustStock(ctx, productID, req.Op, req.Quantity)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("product_id", productID).
			Str("op", string(req.Op)).
			Msg("failed to adjust stock")
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	if product == nil {
		return nil, nil
	}

	s.logger.Info().
		Str("product_id", productID).
		Str("op", string(req.Op)).
		Int("quantity", req.Quantity).
		Msg("stock adjusted")

	return product, nil
}
