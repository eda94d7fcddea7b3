package handler

import (
	"net/http"
	"strings"

	"luxe/internal/service"

	"github.com/rs/zerolog"
)

// PincodeHandler answers delivery serviceability lookups.
type PincodeHandler struct {
	service service.PincodeService
	logger  zerolog.Logger
}

// NewPincodeHandler creates a new pincode handler.
func NewPincodeHandler(service service.PincodeService, logger zerolog.Logger) *PincodeHandler {
	return &PincodeHandler{
		service: service,
		logger:  logger.With().Str("handler", "pincode").Logger(),
	}
}

// Lookup handles GET /api/pincodes/{pincode} requests.
func (h *PincodeHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	pincode := strings.TrimPrefix(r.URL.Path, "/api/pincodes/")
	if pincode == "" {
		writeError(w, http.StatusBadRequest, "pincode is required", h.logger)
		return
	}

	resp, err := h.service.Lookup(r.Context(), pincode)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
