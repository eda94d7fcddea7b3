package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyPaymentSignature checks the checkout-widget signature: hex
// HMAC-SHA256 over "{orderID}|{paymentID}" with the API key secret.
func (c *client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMAC([]byte(orderID+"|"+paymentID), signature, c.keySecret)
}

// VerifyWebhookSignature checks the x-razorpay-signature header: hex
// HMAC-SHA256 over the raw request body with the webhook secret.
func (c *client) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMAC(body, signature, c.webhookSecret)
}

// verifyHMAC compares in constant time. Signatures of the wrong length are
// rejected without leaking where the mismatch is.
func verifyHMAC(message []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
