package repository

import (
	"context"

	"luxe/internal/model"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create inserts a new order and its line items in a single transaction.
	// When decrementStock is true (COD orders, which are confirmed upfront),
	// tracked stock for each line item is decremented in the same transaction.
	Create(ctx context.Context, order *model.Order, decrementStock bool) error

	// GetByID retrieves an order with its line items by internal id.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByOrderNumber retrieves an order with its line items by the
	// human-facing order number.
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)

	// GetByGatewayOrderID retrieves the order holding the given remote
	// gateway order id. Used by the webhook confirmation path.
	GetByGatewayOrderID(ctx context.Context, razorpayOrderID string) (*model.Order, error)

	// GetByPaymentID retrieves the order holding the given gateway payment
	// id. Used by the refund webhook path.
	GetByPaymentID(ctx context.Context, razorpayPaymentID string) (*model.Order, error)

	// FindByPhone retrieves all orders placed with the given phone number,
	// newest first.
	FindByPhone(ctx context.Context, phone string) ([]model.Order, error)

	// FindByIDs retrieves orders matching the given internal ids.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Order, error)

	// List retrieves orders for the admin dashboard, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// Count returns the total number of orders.
	Count(ctx context.Context) (int64, error)

	// SetGatewayOrder stores the remote gateway order id on a pending order.
	SetGatewayOrder(ctx context.Context, id uuid.UUID, razorpayOrderID string) error

	// MarkPaid atomically flips payment_status to paid and status to confirmed,
	// decrementing tracked stock for each line item in the same transaction.
	// The update is conditional on payment_status not already being paid, so
	// racing confirmation paths apply the stock side effect exactly once.
	// Returns false with no error when the order was already paid.
	MarkPaid(ctx context.Context, id uuid.UUID, paymentID, signature string) (bool, error)

	// MarkPaymentFailed moves a still-pending payment to failed and cancels
	// the order. Returns false when the payment had already left pending.
	MarkPaymentFailed(ctx context.Context, id uuid.UUID) (bool, error)

	// MarkRefunded moves a paid order's payment status to refunded.
	MarkRefunded(ctx context.Context, id uuid.UUID) (bool, error)

	// UpdateFulfillment sets the fulfillment status and optional tracking
	// fields, stamping shipped_at/delivered_at on entering those states.
	UpdateFulfillment(ctx context.Context, id uuid.UUID, status model.OrderStatus, trackingNumber, trackingURL *string) error

	// Delete removes an order row and its items. Used only as the
	// compensating action when remote gateway order creation fails.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines the interface for product and stock data access.
type ProductRepository interface {
	// GetAll retrieves active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil, nil when
	// the product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs. Missing IDs are
	// simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// AdjustStock applies an increment, decrement or set operation to a
	// product's stock. Decrements clamp at zero.
	AdjustStock(ctx context.Context, id string, op model.StockAdjustOp, quantity int) (*model.Product, error)

	// Upsert inserts or updates catalog entries from a product feed.
	Upsert(ctx context.Context, products []model.Product) error
}

// PincodeRepository defines the interface for serviceability lookups.
type PincodeRepository interface {
	// GetByPincode retrieves a serviceability record. Returns nil, nil when
	// the pincode is not serviceable.
	GetByPincode(ctx context.Context, pincode string) (*model.Pincode, error)
}
