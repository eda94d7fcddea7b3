package handler

import (
	"net/http"
	"strings"

	"luxe/internal/model"
	"luxe/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles storefront order requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	resp, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetByNumber handles GET /api/orders/{orderNumber} requests.
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderNumber := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	if orderNumber == "" {
		writeError(w, http.StatusBadRequest, "order number is required", h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderNumber)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Find handles GET /api/orders?phone= and GET /api/orders?ids= requests.
// The phone lookup is authoritative; the ids lookup serves the client-side
// cookie cache and is a convenience only.
func (h *OrderHandler) Find(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	if phone := r.URL.Query().Get("phone"); phone != "" {
		orders, err := h.service.FindOrdersByPhone(r.Context(), phone)
		if err != nil {
			writeDomainError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
		return
	}

	if rawIDs := r.URL.Query().Get("ids"); rawIDs != "" {
		var ids []uuid.UUID
		for _, raw := range strings.Split(rawIDs, ",") {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
				return
			}
			ids = append(ids, id)
		}
		orders, err := h.service.FindOrdersByIDs(r.Context(), ids)
		if err != nil {
			writeDomainError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
		return
	}

	writeError(w, http.StatusBadRequest, "phone or ids query parameter is required", h.logger)
}
