package service

import (
	"context"

	"luxe/internal/model"
	"luxe/internal/razorpay"

	"github.com/google/uuid"
)

// ProductService defines read operations for the storefront catalog.
type ProductService interface {
	// GetAll retrieves active products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderService is the order lifecycle controller: creation, payment
// verification, webhook reconciliation and fulfillment transitions.
type OrderService interface {
	// CreateOrder validates the cart and shipping pincode, re-runs the
	// stock gate, computes totals, persists the order and, for gateway
	// payments, creates the remote gateway order.
	CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error)

	// VerifyPayment handles the client-side payment callback: signature
	// check, secondary status fetch, then the idempotent mark-paid step.
	VerifyPayment(ctx context.Context, req *model.VerifyPaymentRequest) (*model.Order, error)

	// MarkPaymentFailed is the best-effort cancel path when the customer
	// dismisses the widget or the gateway reports a client-side failure.
	// Only gateway orders are affected; COD orders ignore it.
	MarkPaymentFailed(ctx context.Context, orderNumber string) error

	// ProcessWebhookEvent consumes an asynchronous gateway notification.
	// Confirmation events reach the same idempotent mark-paid step as
	// VerifyPayment and produce the identical end state.
	ProcessWebhookEvent(ctx context.Context, event *razorpay.WebhookEvent) error

	// GetOrder retrieves an order by its order number.
	GetOrder(ctx context.Context, orderNumber string) (*model.Order, error)

	// FindOrdersByPhone retrieves a customer's orders by phone number.
	FindOrdersByPhone(ctx context.Context, phone string) ([]model.Order, error)

	// FindOrdersByIDs retrieves orders by internal ids (the cookie-cache
	// convenience lookup; phone and order-number lookups are authoritative).
	FindOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Order, error)

	// ListOrders retrieves a page of orders plus the total count for the
	// admin dashboard.
	ListOrders(ctx context.Context, limit, offset int) ([]model.Order, int64, error)

	// UpdateFulfillment applies an admin fulfillment change: a single
	// forward step or a cancellation.
	UpdateFulfillment(ctx context.Context, orderNumber string, req *model.UpdateFulfillmentRequest) (*model.Order, error)
}

// StockService is the stock validation gate and admin stock ledger.
type StockService interface {
	// CheckAvailability runs the fail-open batch availability check.
	CheckAvailability(ctx context.Context, items []model.StockCheckItem) *model.StockCheckResponse

	// AdjustStock applies an admin increment/decrement/set operation.
	AdjustStock(ctx context.Context, productID string, req *model.StockAdjustRequest) (*model.Product, error)
}

// PincodeService answers delivery serviceability questions.
type PincodeService interface {
	// Lookup returns serviceability details for a pincode.
	Lookup(ctx context.Context, pincode string) (*model.PincodeLookupResponse, error)
}
