package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, user_id, plan_name, amount::text, start_at, end_at, active, payment_id, created_at`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, user_id, plan_name, amount, start_at, end_at, active, payment_id, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  plan_name=$3, amount=$4, start_at=$5, end_at=$6, active=$7, payment_id=$8;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.PlanName, s.Amount.StringFixed(2), s.StartAt, s.EndAt, s.Active, s.PaymentID, s.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionColumns + `
  FROM subscriptions
 WHERE user_id=$1 AND active
 ORDER BY created_at DESC
 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) DeactivateActiveByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	const q = `UPDATE subscriptions SET active=false WHERE user_id=$1 AND active;`
	cmd, err := execSQL(ctx, r.pool, tx, q, userID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return 0, err
		default:
			return 0, domain.ErrOperationFailed
		}
	}
	return int(cmd.RowsAffected()), nil
}

// DeactivateIfActive is the optimistic lazy-expiry write: it only touches the
// row read, so it cannot clobber a newer subscription created concurrently.
func (r *subscriptionRepo) DeactivateIfActive(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `UPDATE subscriptions SET active=false WHERE id=$1 AND active;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return false, err
		default:
			return false, domain.ErrOperationFailed
		}
	}
	return cmd.RowsAffected() >= 1, nil
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	var amount string
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanName, &amount, &s.StartAt, &s.EndAt, &s.Active, &s.PaymentID, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	s.Amount = d
	return s, nil
}
