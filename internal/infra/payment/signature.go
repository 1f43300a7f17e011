package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"subscription-billing/internal/domain/ports/adapter"
)

var _ adapter.SignatureVerifier = (*HMACVerifier)(nil)

// HMACVerifier checks Razorpay order signatures: HMAC-SHA256 over
// "<order_id>|<payment_id>" with the key secret, hex encoded.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Verify recomputes the signature and compares in constant time. Any
// structural malformation (bad hex, empty fields) returns false rather than
// an error so callers treat every non-match uniformly.
func (v *HMACVerifier) Verify(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hmac.Equal(mac.Sum(nil), supplied)
}
