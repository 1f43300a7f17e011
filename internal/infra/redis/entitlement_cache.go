package redis

import (
	"context"
	"encoding/json"
	"time"

	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
)

var _ repository.EntitlementCache = (*EntitlementCache)(nil)

// EntitlementCache caches entitlement answers per user. Writers invalidate
// after every payment confirmation, so the TTL only bounds staleness of the
// expiry edge.
type EntitlementCache struct {
	cli RedisClient
}

func NewEntitlementCache(cli RedisClient) *EntitlementCache {
	return &EntitlementCache{cli: cli}
}

func entitlementKey(userID string) string { return "entitlement:" + userID }

func (c *EntitlementCache) Get(ctx context.Context, userID string) (model.Entitlement, bool, error) {
	raw, err := c.cli.Get(ctx, entitlementKey(userID))
	if err != nil {
		if IsNil(err) {
			return model.Entitlement{}, false, nil
		}
		return model.Entitlement{}, false, err
	}
	var ent model.Entitlement
	if err := json.Unmarshal([]byte(raw), &ent); err != nil {
		// Corrupt entry: drop it and treat as a miss.
		_ = c.cli.Del(ctx, entitlementKey(userID))
		return model.Entitlement{}, false, nil
	}
	return ent, true, nil
}

func (c *EntitlementCache) Set(ctx context.Context, userID string, e model.Entitlement, ttl time.Duration) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.cli.Set(ctx, entitlementKey(userID), raw, ttl)
}

func (c *EntitlementCache) Invalidate(ctx context.Context, userID string) error {
	return c.cli.Del(ctx, entitlementKey(userID))
}
