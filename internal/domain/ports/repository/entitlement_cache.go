package repository

import (
	"context"
	"time"

	"subscription-billing/internal/domain/model"
)

// EntitlementCache is a read-through cache for entitlement lookups. It is an
// optimization only: misses and errors fall back to the database, and writers
// invalidate after every state transition.
type EntitlementCache interface {
	Get(ctx context.Context, userID string) (model.Entitlement, bool, error)
	Set(ctx context.Context, userID string, e model.Entitlement, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}
