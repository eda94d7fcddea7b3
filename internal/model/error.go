package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	OutOfStock bool   `json:"outOfStock,omitempty"`
	ProductID  string `json:"productId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeOutOfStock         = "OUT_OF_STOCK"
	ErrCodeProductInactive    = "PRODUCT_INACTIVE"
	ErrCodeCODMinimum         = "COD_MINIMUM_NOT_MET"
	ErrCodeUnserviceable      = "UNSERVICEABLE_PINCODE"
	ErrCodeInvalidSignature   = "INVALID_SIGNATURE"
	ErrCodePaymentNotCaptured = "PAYMENT_NOT_CAPTURED"
	ErrCodeInvalidTransition  = "INVALID_STATUS_TRANSITION"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure with a machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrCODMinimum        = NewDomainError(ErrCodeCODMinimum, "Order subtotal is below the cash-on-delivery minimum")
	ErrUnserviceable     = NewDomainError(ErrCodeUnserviceable, "Delivery is not available for this pincode")
	ErrInvalidSignature  = NewDomainError(ErrCodeInvalidSignature, "Payment signature verification failed")
	ErrPaymentNotCapture = NewDomainError(ErrCodePaymentNotCaptured, "Payment is not captured or authorized")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Requested status transition is not allowed")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
)

// OutOfStockError identifies the specific product that blocked an order so
// the caller can react (for example, remove the item from the cart).
type OutOfStockError struct {
	ProductID string
	Inactive  bool
}

func (e *OutOfStockError) Error() string {
	if e.Inactive {
		return fmt.Sprintf("product %s is no longer available", e.ProductID)
	}
	return fmt.Sprintf("product %s is out of stock", e.ProductID)
}
