package repository

import (
	"context"
	"time"

	"subscription-billing/internal/domain/model"
)

// PaymentRepository persists gateway orders. Implementations must treat
// OrderID as unique and immutable; FindByOrderID inside a transaction takes
// a row lock so concurrent confirmations of the same order serialize.
type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.Payment, error)
	// MarkSuccessIfCreated advances created->success, recording the gateway
	// payment id, signature and subscription link. Returns false when the
	// payment was no longer in status created (idempotent re-confirmation).
	MarkSuccessIfCreated(ctx context.Context, tx Tx, id string, gatewayPaymentID, gatewaySignature, subscriptionID string) (bool, error)
	// MarkFailedIfCreated advances created->failed. Returns false when the
	// payment had already left status created.
	MarkFailedIfCreated(ctx context.Context, tx Tx, id string) (bool, error)
	// ListCreatedOlderThan returns stale unconfirmed payments for the sweeper.
	ListCreatedOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
}
