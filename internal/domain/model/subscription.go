package model

import (
	"time"

	"github.com/shopspring/decimal"

	"subscription-billing/internal/domain"
)

// Subscription is one user's entitlement window. At most one subscription
// with Active=true exists per user at any instant; a new purchase deactivates
// the previous one in the same transaction.
type Subscription struct {
	ID        string          // UUID
	UserID    string          // UUID of owning user
	PlanName  string          // "1 Month", "3 Months", ...
	Amount    decimal.Decimal // amount that funded it, major units
	StartAt   time.Time
	EndAt     time.Time
	Active    bool
	PaymentID string // Payment that funded it
	CreatedAt time.Time
}

// NewSubscription starts a subscription now, ending after the plan duration.
func NewSubscription(id, userID, paymentID string, plan Plan, amount decimal.Decimal, now time.Time) (*Subscription, error) {
	if id == "" || userID == "" || paymentID == "" || plan.DurationMonths <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		ID:        id,
		UserID:    userID,
		PlanName:  plan.Name,
		Amount:    amount,
		StartAt:   now,
		EndAt:     now.AddDate(0, plan.DurationMonths, 0),
		Active:    true,
		PaymentID: paymentID,
		CreatedAt: now,
	}, nil
}

// Expired reports whether the window has closed as of t.
func (s *Subscription) Expired(t time.Time) bool {
	return !s.EndAt.After(t)
}

// Entitlement is the read-side answer to "is this user currently entitled".
type Entitlement struct {
	Active  bool      `json:"active"`
	Plan    string    `json:"plan,omitempty"`
	StartAt time.Time `json:"start_at,omitempty"`
	EndAt   time.Time `json:"end_at,omitempty"`
}
