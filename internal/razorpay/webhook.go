package razorpay

import (
	"encoding/json"
	"fmt"
)

// Webhook event names the order flow reacts to. Anything else is logged and
// acknowledged without action.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventOrderPaid       = "order.paid"
	EventRefundCreated   = "refund.created"
	EventRefundProcessed = "refund.processed"
)

// WebhookEvent is the JSON envelope delivered to the webhook endpoint.
type WebhookEvent struct {
	Event   string         `json:"event"`
	Payload WebhookPayload `json:"payload"`
}

// WebhookPayload carries the entity relevant to the event type.
type WebhookPayload struct {
	Payment *EntityWrapper[Payment]     `json:"payment,omitempty"`
	Order   *EntityWrapper[RemoteOrder] `json:"order,omitempty"`
	Refund  *EntityWrapper[Refund]      `json:"refund,omitempty"`
}

// EntityWrapper matches the gateway's {"entity": {...}} nesting.
type EntityWrapper[T any] struct {
	Entity T `json:"entity"`
}

// Refund is the gateway's refund record.
type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// ParseWebhookEvent decodes a webhook envelope from the raw request body.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}
	if event.Event == "" {
		return nil, fmt.Errorf("webhook event name is empty")
	}
	return &event, nil
}

// GatewayOrderID extracts the gateway order id referenced by the event,
// from whichever entity the payload carries.
func (e *WebhookEvent) GatewayOrderID() string {
	if e.Payload.Payment != nil && e.Payload.Payment.Entity.OrderID != "" {
		return e.Payload.Payment.Entity.OrderID
	}
	if e.Payload.Order != nil {
		return e.Payload.Order.Entity.ID
	}
	return ""
}

// PaymentID extracts the gateway payment id referenced by the event, if any.
func (e *WebhookEvent) PaymentID() string {
	if e.Payload.Payment != nil {
		return e.Payload.Payment.Entity.ID
	}
	if e.Payload.Refund != nil {
		return e.Payload.Refund.Entity.PaymentID
	}
	return ""
}
