package handler

import (
	"net/http"
	"strings"

	"luxe/internal/model"
	"luxe/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler serves the back-office order management surface.
type AdminHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.OrderService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// ListOrders handles GET /api/admin/orders requests.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	orders, total, err := h.service.ListOrders(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"total":  total,
	})
}

// UpdateStatus handles PATCH /api/admin/orders/{orderNumber}/status requests:
// fulfillment advances and cancellations.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/admin/orders/")
	orderNumber := strings.TrimSuffix(path, "/status")
	if orderNumber == "" || orderNumber == path {
		writeError(w, http.StatusNotFound, "not found", h.logger)
		return
	}

	var req model.UpdateFulfillmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required", h.logger)
		return
	}

	order, err := h.service.UpdateFulfillment(r.Context(), orderNumber, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
