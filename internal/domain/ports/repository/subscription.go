package repository

import (
	"context"

	"subscription-billing/internal/domain/model"
)

// SubscriptionRepository persists entitlement windows.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	FindActiveByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	// DeactivateActiveByUser flips the user's active subscription (if any) to
	// inactive. Returns the number of rows changed.
	DeactivateActiveByUser(ctx context.Context, tx Tx, userID string) (int, error)
	// DeactivateIfActive flips one subscription to inactive only if it is
	// still active — the optimistic guard for lazy expiry, so a read-path
	// deactivation cannot clobber a newer subscription. Returns false when
	// the row was already inactive.
	DeactivateIfActive(ctx context.Context, tx Tx, id string) (bool, error)
}
