package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

// userRepo reads the users table owned by the auth service. No writes here.
type userRepo struct{ pool *pgxpool.Pool }

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

const userColumns = `id, full_name, email, phone_number, created_at`

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, email)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return u, nil
}
