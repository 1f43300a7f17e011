package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// The concrete type is infra-defined (pgx.Tx for Postgres); repositories
// accept nil for the non-transactional path.
type Tx interface{}

// NoTX marks the non-transactional path explicitly at call sites.
var NoTX Tx

// TransactionManager executes fn inside one database transaction, passing
// the transaction handle via tx. fn returning an error rolls back; otherwise
// the transaction commits. Keeps use-case signatures free of driver types.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
