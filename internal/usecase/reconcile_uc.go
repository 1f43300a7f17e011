package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/adapter"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/metrics"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileUseCase is the payment-to-subscription state machine. Confirm
// authenticates a client-submitted confirmation and, exactly once per order,
// advances the payment to success and materializes the subscription.
type ReconcileUseCase interface {
	Confirm(ctx context.Context, c model.Confirmation, userID string) (*model.Subscription, error)
}

type reconcileUC struct {
	payments repository.PaymentRepository
	subs     repository.SubscriptionRepository
	catalog  *model.Catalog
	verifier adapter.SignatureVerifier
	tm       repository.TransactionManager
	cache    repository.EntitlementCache
	log      *zerolog.Logger
}

func NewReconcileUseCase(
	payments repository.PaymentRepository,
	subs repository.SubscriptionRepository,
	catalog *model.Catalog,
	verifier adapter.SignatureVerifier,
	tm repository.TransactionManager,
	cache repository.EntitlementCache,
	logger *zerolog.Logger,
) *reconcileUC {
	l := logger.With().Str("component", "ReconcileUC").Logger()
	return &reconcileUC{
		payments: payments,
		subs:     subs,
		catalog:  catalog,
		verifier: verifier,
		tm:       tm,
		cache:    cache,
		log:      &l,
	}
}

// Confirm runs the confirmation state machine:
//
//	completeness -> signature -> lookup -> ownership -> idempotency -> grant
//
// The signature is checked before the payment lookup so rejected callers
// learn nothing about which order ids exist. The lookup takes a row lock on
// the unique order id, which serializes racing confirmations for the same
// order; the whole transition commits atomically or not at all.
func (u *reconcileUC) Confirm(ctx context.Context, c model.Confirmation, userID string) (*model.Subscription, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !c.Complete() {
		return nil, domain.ErrMalformedConfirmation
	}
	if !u.verifier.Verify(c.OrderID, c.PaymentID, c.Signature) {
		metrics.IncConfirmRejected("signature_mismatch")
		return nil, domain.ErrSignatureMismatch
	}

	var (
		granted *model.Subscription
		replay  bool
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByOrderID(ctx, tx, c.OrderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				metrics.IncConfirmRejected("payment_not_found")
				return domain.ErrPaymentNotFound
			}
			return err
		}

		if p.UserID != userID {
			// Possible cross-account replay; logged distinctly, reported to
			// the caller identically to a missing payment.
			u.log.Warn().
				Str("order_id", c.OrderID).
				Str("payment_owner", p.UserID).
				Str("caller", userID).
				Msg("ownership violation on payment confirmation")
			metrics.IncConfirmRejected("ownership_violation")
			return domain.ErrOwnershipViolation
		}

		switch p.Status {
		case model.PaymentStatusSuccess:
			// Duplicate confirmation: return the snapshot already granted.
			if p.SubscriptionID == nil {
				return fmt.Errorf("payment %s succeeded without subscription link: %w", p.ID, domain.ErrOperationFailed)
			}
			existing, err := u.subs.FindByID(ctx, tx, *p.SubscriptionID)
			if err != nil {
				return err
			}
			granted = existing
			replay = true
			return nil
		case model.PaymentStatusFailed:
			metrics.IncConfirmRejected("already_failed")
			return domain.ErrPaymentAlreadyFailed
		}

		// The amount of record was fixed at order creation; the confirmation
		// payload is never trusted for money.
		plan, err := u.catalog.Resolve(p.Amount)
		if err != nil {
			return err
		}

		now := time.Now()
		sub, err := model.NewSubscription(uuid.NewString(), userID, p.ID, plan, p.Amount, now)
		if err != nil {
			return err
		}

		if _, err := u.subs.DeactivateActiveByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := u.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		ok, err := u.payments.MarkSuccessIfCreated(ctx, tx, p.ID, c.PaymentID, c.Signature, sub.ID)
		if err != nil {
			return err
		}
		if !ok {
			// Unreachable while the row lock is held; fail loudly rather
			// than risk a double grant.
			return fmt.Errorf("payment %s left status created mid-transaction: %w", p.ID, domain.ErrOperationFailed)
		}
		granted = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !replay {
		metrics.IncPayment(string(model.PaymentStatusSuccess))
		metrics.AddPaymentRevenue("INR", granted.Amount.InexactFloat64())
		metrics.IncSubscriptionActivated(granted.PlanName)
		if err := u.cache.Invalidate(ctx, userID); err != nil {
			u.log.Warn().Err(err).Str("user_id", userID).Msg("entitlement cache invalidation failed")
		}
		u.log.Info().
			Str("user_id", userID).
			Str("order_id", c.OrderID).
			Str("plan", granted.PlanName).
			Time("end_at", granted.EndAt).
			Msg("payment confirmed, subscription granted")
	} else {
		u.log.Info().
			Str("user_id", userID).
			Str("order_id", c.OrderID).
			Msg("duplicate confirmation, returning existing subscription")
	}
	return granted, nil
}
