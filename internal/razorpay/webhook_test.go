package razorpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhookEvent_PaymentCaptured(t *testing.T) {
	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_abc123",
					"order_id": "order_xyz789",
					"amount": 149900,
					"currency": "INR",
					"status": "captured",
					"method": "upi"
				}
			}
		}
	}`)

	event, err := ParseWebhookEvent(body)

	require.NoError(t, err)
	assert.Equal(t, EventPaymentCaptured, event.Event)
	assert.Equal(t, "order_xyz789", event.GatewayOrderID())
	assert.Equal(t, "pay_abc123", event.PaymentID())

	require.NotNil(t, event.Payload.Payment)
	assert.True(t, event.Payload.Payment.Entity.IsSettled())
}

func TestParseWebhookEvent_OrderPaid(t *testing.T) {
	body := []byte(`{
		"event": "order.paid",
		"payload": {
			"order": {
				"entity": {
					"id": "order_xyz789",
					"amount": 149900,
					"status": "paid"
				}
			}
		}
	}`)

	event, err := ParseWebhookEvent(body)

	require.NoError(t, err)
	assert.Equal(t, EventOrderPaid, event.Event)
	assert.Equal(t, "order_xyz789", event.GatewayOrderID())
	assert.Empty(t, event.PaymentID())
}

func TestParseWebhookEvent_RefundProcessed(t *testing.T) {
	body := []byte(`{
		"event": "refund.processed",
		"payload": {
			"refund": {
				"entity": {
					"id": "rfnd_123",
					"payment_id": "pay_abc123",
					"amount": 149900,
					"status": "processed"
				}
			}
		}
	}`)

	event, err := ParseWebhookEvent(body)

	require.NoError(t, err)
	assert.Equal(t, EventRefundProcessed, event.Event)
	assert.Empty(t, event.GatewayOrderID())
	assert.Equal(t, "pay_abc123", event.PaymentID())
}

func TestParseWebhookEvent_PaymentEntityWinsOverOrder(t *testing.T) {
	// payment.captured deliveries can carry both entities; the payment's
	// order_id is the one to trust.
	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {"entity": {"id": "pay_1", "order_id": "order_from_payment"}},
			"order": {"entity": {"id": "order_from_order"}}
		}
	}`)

	event, err := ParseWebhookEvent(body)

	require.NoError(t, err)
	assert.Equal(t, "order_from_payment", event.GatewayOrderID())
}

func TestParseWebhookEvent_InvalidJSON(t *testing.T) {
	event, err := ParseWebhookEvent([]byte(`{not json`))

	require.Error(t, err)
	assert.Nil(t, event)
	assert.Contains(t, err.Error(), "failed to decode webhook event")
}

func TestParseWebhookEvent_MissingEventName(t *testing.T) {
	event, err := ParseWebhookEvent([]byte(`{"payload":{}}`))

	require.Error(t, err)
	assert.Nil(t, event)
	assert.Contains(t, err.Error(), "event name is empty")
}

func TestPayment_IsSettled(t *testing.T) {
	assert.True(t, (&Payment{Status: "captured"}).IsSettled())
	assert.True(t, (&Payment{Status: "authorized"}).IsSettled())

	assert.False(t, (&Payment{Status: "created"}).IsSettled())
	assert.False(t, (&Payment{Status: "failed"}).IsSettled())
	assert.False(t, (&Payment{Status: "refunded"}).IsSettled())
}
