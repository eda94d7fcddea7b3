package handler

import (
	"net/http"

	"luxe/internal/model"
	"luxe/internal/service"

	"github.com/rs/zerolog"
)

// PaymentHandler handles the client-side payment callback endpoints.
type PaymentHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.OrderService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Verify handles POST /api/payments/verify requests.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.VerifyPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if req.OrderNumber == "" || req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		writeError(w, http.StatusBadRequest, "orderNumber, razorpayOrderId, razorpayPaymentId and razorpaySignature are required", h.logger)
		return
	}

	order, err := h.service.VerifyPayment(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Failed handles POST /api/payments/failed requests. This path is fire-and-
// forget from the client; the response only acknowledges receipt.
func (h *PaymentHandler) Failed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.PaymentFailedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if req.OrderNumber == "" {
		writeError(w, http.StatusBadRequest, "orderNumber is required", h.logger)
		return
	}

	if err := h.service.MarkPaymentFailed(r.Context(), req.OrderNumber); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}
