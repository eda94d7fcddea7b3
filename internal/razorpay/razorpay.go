package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Gateway is the payment gateway surface the order flow depends on.
type Gateway interface {
	// CreateOrder creates a remote gateway order prior to presenting the
	// payment widget. Amount is in paise.
	CreateOrder(ctx context.Context, amount int64, receipt string, notes map[string]string) (*RemoteOrder, error)

	// FetchPayment retrieves a payment's current state by id.
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)

	// VerifyPaymentSignature checks the checkout-widget signature for an
	// order/payment pair.
	VerifyPaymentSignature(orderID, paymentID, signature string) bool

	// VerifyWebhookSignature checks the webhook signature over the raw
	// request body, using the webhook-specific secret.
	VerifyWebhookSignature(body []byte, signature string) bool
}

// RemoteOrder is a gateway-side order record.
type RemoteOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Payment is the gateway's view of a payment.
type Payment struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Method      string `json:"method"`
	ErrorCode   string `json:"error_code,omitempty"`
	ErrorReason string `json:"error_reason,omitempty"`
}

// IsSettled reports whether the gateway considers the charge successful.
// Authorized payments are auto-captured later, so both states count.
func (p *Payment) IsSettled() bool {
	return p.Status == "captured" || p.Status == "authorized"
}

// APIError is a structured error response from the gateway.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("razorpay: %s (%s, http %d)", e.Description, e.Code, e.StatusCode)
}

// Config holds gateway credentials and endpoint configuration.
type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
	Timeout       time.Duration
}

// client implements Gateway against the Razorpay REST API.
type client struct {
	httpClient    *http.Client
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	logger        zerolog.Logger
}

// NewClient creates a new gateway client.
func NewClient(cfg Config, logger zerolog.Logger) Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       cfg.BaseURL,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		logger:        logger.With().Str("component", "razorpay").Logger(),
	}
}

// CreateOrder creates a remote gateway order.
func (c *client) CreateOrder(ctx context.Context, amount int64, receipt string, notes map[string]string) (*RemoteOrder, error) {
	payload := map[string]any{
		"amount":   amount,
		"currency": "INR",
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		payload["notes"] = notes
	}

	var order RemoteOrder
	if err := c.do(ctx, http.MethodPost, "/v1/orders", payload, &order); err != nil {
		c.logger.Error().
			Err(err).
			Int64("amount", amount).
			Str("receipt", receipt).
			Msg("failed to create gateway order")
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	c.logger.Info().
		Str("gateway_order_id", order.ID).
		Int64("amount", order.Amount).
		Str("receipt", receipt).
		Msg("gateway order created")

	return &order, nil
}

// FetchPayment retrieves a payment's current state by id.
func (c *client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var payment Payment
	path := "/v1/payments/" + url.PathEscape(paymentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &payment); err != nil {
		c.logger.Error().Err(err).Str("payment_id", paymentID).Msg("failed to fetch payment")
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	return &payment, nil
}

// do performs a single authenticated API call and decodes the response.
func (c *client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		}
		// Best effort decode; the status code alone is enough to fail.
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        envelope.Error.Code,
			Description: envelope.Error.Description,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
