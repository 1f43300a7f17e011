package repository

import (
	"context"

	"subscription-billing/internal/domain/model"
)

// UserRepository resolves identities owned by the auth service.
type UserRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
}
