package handler

import (
	"net/http"
	"strings"

	"luxe/internal/model"
	"luxe/internal/service"

	"github.com/rs/zerolog"
)

// StockHandler handles the batch availability check and admin stock updates.
type StockHandler struct {
	service service.StockService
	logger  zerolog.Logger
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(service service.StockService, logger zerolog.Logger) *StockHandler {
	return &StockHandler{
		service: service,
		logger:  logger.With().Str("handler", "stock").Logger(),
	}
}

// Check handles POST /api/stock/check requests. Advisory only: the
// authoritative gate runs again at order-creation time.
func (h *StockHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.StockCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.service.CheckAvailability(r.Context(), req.Items))
}

// Adjust handles PATCH /api/stock/{productId} requests (admin only).
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	productID := strings.TrimPrefix(r.URL.Path, "/api/stock/")
	if productID == "" || productID == "check" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	var req model.StockAdjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	product, err := h.service.AdjustStock(r.Context(), productID, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}
