package model

import (
	"time"

	"github.com/shopspring/decimal"

	"subscription-billing/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusCreated PaymentStatus = "created" // order created at gateway, not yet paid
	PaymentStatusSuccess PaymentStatus = "success" // signature verified, subscription granted
	PaymentStatusFailed  PaymentStatus = "failed"  // verification failed or order abandoned
)

// Payment records one gateway order and its lifecycle. Rows are never
// deleted; they are the financial audit trail. Status moves created->success
// or created->failed, never backwards.
type Payment struct {
	ID               string          // UUID
	OrderID          string          // gateway-issued order id, unique, immutable once set
	UserID           string          // UUID of owning user
	Amount           decimal.Decimal // major units (rupees)
	Currency         string          // "INR"
	Status           PaymentStatus
	GatewayPaymentID *string // set on confirmation
	GatewaySignature *string // set on confirmation
	Receipt          string  // our receipt id sent to the gateway
	SubscriptionID   *string // set once a subscription is granted
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewPayment constructs a pending payment for a freshly created gateway order.
func NewPayment(id, orderID, userID, receipt string, amount decimal.Decimal, currency string) (*Payment, error) {
	if id == "" || orderID == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Payment{
		ID:        id,
		OrderID:   orderID,
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		Status:    PaymentStatusCreated,
		Receipt:   receipt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Confirmation is the client-submitted tuple asserting a payment completed.
type Confirmation struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// Complete reports whether all three fields are present.
func (c Confirmation) Complete() bool {
	return c.OrderID != "" && c.PaymentID != "" && c.Signature != ""
}
