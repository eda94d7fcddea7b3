package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod identifies how an order is paid for.
type PaymentMethod string

// Supported payment methods.
const (
	PaymentMethodCOD      PaymentMethod = "cod"
	PaymentMethodRazorpay PaymentMethod = "razorpay"
)

// PaymentStatus tracks the payment side of an order, independent of fulfillment.
type PaymentStatus string

// Payment statuses.
const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// OrderStatus tracks fulfillment progress.
type OrderStatus string

// Order statuses.
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// fulfillmentRank orders the forward fulfillment chain. Pending and cancelled
// sit outside the chain and are handled separately.
var fulfillmentRank = map[OrderStatus]int{
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

// CanAdvanceTo reports whether an admin may move fulfillment from s to next.
// Only single forward steps along confirmed -> processing -> shipped -> delivered
// are allowed.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	from, ok := fulfillmentRank[s]
	if !ok {
		return false
	}
	to, ok := fulfillmentRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// IsTerminal reports whether no further status change is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Order represents a single purchase attempt.
//
// All monetary fields are integer paise; TotalAmount == Subtotal +
// ShippingCharges + CODCharges holds at creation time and is never
// recalculated afterwards. Line items are snapshotted at creation and
// immutable from then on.
type Order struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderNumber string    `json:"orderNumber" db:"order_number"`

	CustomerName    string          `json:"customerName" db:"customer_name"`
	CustomerPhone   string          `json:"customerPhone" db:"customer_phone"`
	CustomerEmail   string          `json:"customerEmail,omitempty" db:"customer_email"`
	ShippingAddress ShippingAddress `json:"shippingAddress" db:"shipping_address"`

	Items []OrderLineItem `json:"items"`

	Subtotal        int64 `json:"subtotal" db:"subtotal"`
	ShippingCharges int64 `json:"shippingCharges" db:"shipping_charges"`
	CODCharges      int64 `json:"codCharges" db:"cod_charges"`
	TotalAmount     int64 `json:"totalAmount" db:"total_amount"`

	PaymentMethod     PaymentMethod `json:"paymentMethod" db:"payment_method"`
	PaymentStatus     PaymentStatus `json:"paymentStatus" db:"payment_status"`
	RazorpayOrderID   *string       `json:"razorpayOrderId,omitempty" db:"razorpay_order_id"`
	RazorpayPaymentID *string       `json:"razorpayPaymentId,omitempty" db:"razorpay_payment_id"`
	RazorpaySignature *string       `json:"-" db:"razorpay_signature"`

	Status         OrderStatus `json:"status" db:"status"`
	TrackingNumber *string     `json:"trackingNumber,omitempty" db:"tracking_number"`
	TrackingURL    *string     `json:"trackingUrl,omitempty" db:"tracking_url"`
	ShippedAt      *time.Time  `json:"shippedAt,omitempty" db:"shipped_at"`
	DeliveredAt    *time.Time  `json:"deliveredAt,omitempty" db:"delivered_at"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderLineItem is a line item snapshotted at order-creation time. Prices are
// copied from the catalog so later catalog edits do not affect past orders.
type OrderLineItem struct {
	ProductID string  `json:"productId" db:"product_id"`
	Title     string  `json:"title" db:"title"`
	UnitPrice int64   `json:"unitPrice" db:"unit_price"`
	SalePrice *int64  `json:"salePrice,omitempty" db:"sale_price"`
	Quantity  int     `json:"quantity" db:"quantity"`
	Size      *string `json:"size,omitempty" db:"size"`
	Image     string  `json:"image,omitempty" db:"image"`
}

// EffectivePrice returns the price actually charged per unit.
func (i OrderLineItem) EffectivePrice() int64 {
	if i.SalePrice != nil {
		return *i.SalePrice
	}
	return i.UnitPrice
}

// ShippingAddress is the validated delivery address stored on an order.
type ShippingAddress struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Items           []OrderLineItem `json:"items"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
}

// CreateOrderResponse is returned on successful order creation. For Razorpay
// orders it carries the gateway order id the client needs to open the widget.
type CreateOrderResponse struct {
	OrderID         uuid.UUID `json:"orderId"`
	OrderNumber     string    `json:"orderNumber"`
	TotalAmount     int64     `json:"totalAmount"`
	RazorpayOrderID string    `json:"razorpayOrderId,omitempty"`
}

// VerifyPaymentRequest is the client-side payment callback payload.
type VerifyPaymentRequest struct {
	OrderNumber       string `json:"orderNumber"`
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
}

// PaymentFailedRequest is the fire-and-forget notification sent when the
// customer dismisses the widget or the gateway reports a client-side failure.
type PaymentFailedRequest struct {
	OrderNumber string `json:"orderNumber"`
	Reason      string `json:"reason,omitempty"`
}

// UpdateFulfillmentRequest is the admin payload for fulfillment changes.
type UpdateFulfillmentRequest struct {
	Status         OrderStatus `json:"status"`
	TrackingNumber *string     `json:"trackingNumber,omitempty"`
	TrackingURL    *string     `json:"trackingUrl,omitempty"`
}
