package handler

import (
	"io"
	"net/http"

	"luxe/internal/razorpay"
	"luxe/internal/service"

	"github.com/rs/zerolog"
)

// maxWebhookBody caps webhook payload size.
const maxWebhookBody = 1 << 20

// WebhookHandler receives asynchronous gateway notifications.
type WebhookHandler struct {
	service service.OrderService
	gateway razorpay.Gateway
	logger  zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service service.OrderService, gateway razorpay.Gateway, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		gateway: gateway,
		logger:  logger.With().Str("handler", "webhook").Logger(),
	}
}

// Handle handles POST /api/webhooks/razorpay requests. The signature is
// computed over the raw body, so the body must be read before any decoding.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", h.logger)
		return
	}

	signature := r.Header.Get("x-razorpay-signature")
	if signature == "" || !h.gateway.VerifyWebhookSignature(body, signature) {
		h.logger.Warn().Msg("webhook signature rejected")
		writeError(w, http.StatusUnauthorized, "invalid webhook signature", h.logger)
		return
	}

	event, err := razorpay.ParseWebhookEvent(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed webhook payload", h.logger)
		return
	}

	if err := h.service.ProcessWebhookEvent(r.Context(), event); err != nil {
		// Non-2xx makes the gateway redeliver; processing is idempotent, so
		// that is safe.
		h.logger.Error().Err(err).Str("event", event.Event).Msg("webhook processing failed")
		writeError(w, http.StatusInternalServerError, "webhook processing failed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
