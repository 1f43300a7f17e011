package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

// paymentColumns keeps SELECT lists in one place; amount is cast to text so
// it round-trips through decimal without float conversion.
const paymentColumns = `id, order_id, user_id, amount::text, currency, status, gateway_payment_id, gateway_signature, receipt, subscription_id, created_at, updated_at`

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (
  id, order_id, user_id, amount, currency, status, gateway_payment_id, gateway_signature, receipt, subscription_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  status=$6, gateway_payment_id=$7, gateway_signature=$8, subscription_id=$10, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.OrderID, p.UserID, p.Amount.StringFixed(2), p.Currency, p.Status,
		p.GatewayPaymentID, p.GatewaySignature, p.Receipt, p.SubscriptionID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// FindByOrderID looks a payment up by its unique gateway order id. Inside a
// transaction the row is locked, serializing concurrent confirmations for
// the same order.
func (r *paymentRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) MarkSuccessIfCreated(ctx context.Context, tx repository.Tx, id string, gatewayPaymentID, gatewaySignature, subscriptionID string) (bool, error) {
	const q = `
UPDATE payments
   SET status='success',
       gateway_payment_id=$2,
       gateway_signature=$3,
       subscription_id=$4,
       updated_at=NOW()
 WHERE id=$1
   AND status='created';`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, gatewayPaymentID, gatewaySignature, subscriptionID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) MarkFailedIfCreated(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `UPDATE payments SET status='failed', updated_at=NOW() WHERE id=$1 AND status='created';`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) ListCreatedOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE status='created' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	var amount string
	if err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &amount, &p.Currency, &p.Status,
		&p.GatewayPaymentID, &p.GatewaySignature, &p.Receipt, &p.SubscriptionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	p.Amount = d
	return p, nil
}
