//go:build !integration

package payment_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"subscription-billing/internal/infra/payment"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHMACVerifier(t *testing.T) {
	const secret = "test_key_secret"
	v := payment.NewHMACVerifier(secret)

	t.Run("accepts a correctly signed confirmation", func(t *testing.T) {
		sig := sign(secret, "order_abc", "pay_123")
		if !v.Verify("order_abc", "pay_123", sig) {
			t.Error("valid signature rejected")
		}
	})

	t.Run("rejects a signature for a different order", func(t *testing.T) {
		sig := sign(secret, "order_abc", "pay_123")
		if v.Verify("order_other", "pay_123", sig) {
			t.Error("signature accepted for wrong order")
		}
		if v.Verify("order_abc", "pay_other", sig) {
			t.Error("signature accepted for wrong payment")
		}
	})

	t.Run("rejects a single flipped bit", func(t *testing.T) {
		sig := sign(secret, "order_abc", "pay_123")
		raw, err := hex.DecodeString(sig)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		raw[0] ^= 0x01
		if v.Verify("order_abc", "pay_123", hex.EncodeToString(raw)) {
			t.Error("tampered signature accepted")
		}
	})

	t.Run("rejects the wrong secret", func(t *testing.T) {
		sig := sign("other_secret", "order_abc", "pay_123")
		if v.Verify("order_abc", "pay_123", sig) {
			t.Error("signature under a different secret accepted")
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		sig := sign(secret, "order_abc", "pay_123")
		cases := []struct {
			name                         string
			orderID, paymentID, signature string
		}{
			{"empty order id", "", "pay_123", sig},
			{"empty payment id", "order_abc", "", sig},
			{"empty signature", "order_abc", "pay_123", ""},
			{"non-hex signature", "order_abc", "pay_123", "not-hex!!"},
			{"odd-length hex", "order_abc", "pay_123", sig[:len(sig)-1]},
		}
		for _, tc := range cases {
			if v.Verify(tc.orderID, tc.paymentID, tc.signature) {
				t.Errorf("%s: accepted", tc.name)
			}
		}
	})
}

func TestNoopGateway(t *testing.T) {
	g := payment.NewNoopGateway()
	ctx := context.Background()

	first, err := g.CreateOrder(ctx, 199900, "INR", "recp_1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	second, err := g.CreateOrder(ctx, 499900, "INR", "recp_2")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if first.ID == second.ID {
		t.Errorf("order ids not unique: %q", first.ID)
	}
	if first.Amount != 199900 || first.Currency != "INR" || first.Receipt != "recp_1" {
		t.Errorf("order echo mismatch: %+v", first)
	}
}
