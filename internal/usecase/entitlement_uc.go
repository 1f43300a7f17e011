package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/metrics"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// EntitlementUseCase answers "is this user currently entitled". Reads double
// as expiry sweeps: an expired subscription found on the read path is
// deactivated lazily, there is no scheduled sweep for subscriptions.
type EntitlementUseCase interface {
	Entitlement(ctx context.Context, userID string) (model.Entitlement, error)
}

type entitlementUC struct {
	subs     repository.SubscriptionRepository
	cache    repository.EntitlementCache
	cacheTTL time.Duration
	log      *zerolog.Logger
}

func NewEntitlementUseCase(subs repository.SubscriptionRepository, cache repository.EntitlementCache, cacheTTL time.Duration, logger *zerolog.Logger) *entitlementUC {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	l := logger.With().Str("component", "EntitlementUC").Logger()
	return &entitlementUC{subs: subs, cache: cache, cacheTTL: cacheTTL, log: &l}
}

func (u *entitlementUC) Entitlement(ctx context.Context, userID string) (model.Entitlement, error) {
	if userID == "" {
		return model.Entitlement{}, domain.ErrInvalidArgument
	}

	if ent, ok, err := u.cache.Get(ctx, userID); err == nil && ok {
		metrics.IncEntitlementLookup("cache_hit")
		return ent, nil
	}

	sub, err := u.subs.FindActiveByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncEntitlementLookup("none")
			return model.Entitlement{Active: false}, nil
		}
		return model.Entitlement{}, err
	}

	now := time.Now()
	if sub.Expired(now) {
		// Lazy deactivation, guarded so a concurrent purchase that already
		// superseded this row is left alone.
		changed, err := u.subs.DeactivateIfActive(ctx, repository.NoTX, sub.ID)
		if err != nil {
			return model.Entitlement{}, err
		}
		if changed {
			metrics.IncSubscriptionExpired()
			u.log.Info().
				Str("user_id", userID).
				Str("subscription_id", sub.ID).
				Time("end_at", sub.EndAt).
				Msg("expired subscription deactivated on read")
		}
		if err := u.cache.Invalidate(ctx, userID); err != nil {
			u.log.Warn().Err(err).Str("user_id", userID).Msg("entitlement cache invalidation failed")
		}
		metrics.IncEntitlementLookup("expired")
		return model.Entitlement{Active: false}, nil
	}

	ent := model.Entitlement{
		Active:  true,
		Plan:    sub.PlanName,
		StartAt: sub.StartAt,
		EndAt:   sub.EndAt,
	}
	ttl := u.cacheTTL
	if remaining := time.Until(sub.EndAt); remaining < ttl {
		ttl = remaining
	}
	if ttl > 0 {
		if err := u.cache.Set(ctx, userID, ent, ttl); err != nil {
			u.log.Warn().Err(err).Str("user_id", userID).Msg("entitlement cache write failed")
		}
	}
	metrics.IncEntitlementLookup("active")
	return ent, nil
}
