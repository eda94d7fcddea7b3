package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"luxe/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// writeDomainError maps business-rule failures onto HTTP responses. Out-of-
// stock failures carry a structured payload so the caller can react to the
// specific product.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var oos *model.OutOfStockError
	if errors.As(err, &oos) {
		logger.Warn().Str("product_id", oos.ProductID).Msg("order blocked by stock gate")
		code := model.ErrCodeOutOfStock
		if oos.Inactive {
			code = model.ErrCodeProductInactive
		}
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:      err.Error(),
			Code:       code,
			OutOfStock: true,
			ProductID:  oos.ProductID,
		})
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		if domainErr.Code == model.ErrCodeOrderNotFound {
			status = http.StatusNotFound
		}
		logger.Warn().Str("code", domainErr.Code).Str("error", domainErr.Message).Msg("domain error")
		writeJSON(w, status, model.ErrorResponse{Error: domainErr.Message, Code: domainErr.Code})
		return
	}

	logger.Error().Err(err).Msg("unexpected handler error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error: "something went wrong, try again",
		Code:  model.ErrCodeInternalError,
	})
}

// decodeJSON decodes a request body, rejecting malformed payloads uniformly.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "Invalid request body")
	}
	return nil
}
