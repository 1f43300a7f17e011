package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/adapter"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/metrics"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

// minorUnitFactor converts major-unit rupees to paise.
var minorUnitFactor = decimal.NewFromInt(100)

type OrderUseCase interface {
	// CreateOrder creates a gateway order for amount on behalf of userID and
	// persists the pending payment. The amount must match a catalog tier
	// exactly; the catalog is checked before any gateway call.
	CreateOrder(ctx context.Context, userID string, amount decimal.Decimal) (*model.Payment, error)
}

type orderUC struct {
	payments repository.PaymentRepository
	users    repository.UserRepository
	catalog  *model.Catalog
	gateway  adapter.PaymentGateway
	log      *zerolog.Logger
}

func NewOrderUseCase(payments repository.PaymentRepository, users repository.UserRepository, catalog *model.Catalog, gateway adapter.PaymentGateway, logger *zerolog.Logger) *orderUC {
	l := logger.With().Str("component", "OrderUC").Logger()
	return &orderUC{payments: payments, users: users, catalog: catalog, gateway: gateway, log: &l}
}

func (u *orderUC) CreateOrder(ctx context.Context, userID string, amount decimal.Decimal) (*model.Payment, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	minor, err := toMinorUnits(amount)
	if err != nil {
		return nil, err
	}
	if _, err := u.catalog.Resolve(amount); err != nil {
		return nil, err
	}
	// Token subjects can outlive their user row; reject before charging.
	if _, err := u.users.FindByID(ctx, repository.NoTX, userID); err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	receipt := "recp_" + ulid.Make().String()
	order, err := u.gateway.CreateOrder(ctx, minor, "INR", receipt)
	if err != nil {
		// Nothing persisted; retry policy belongs to the caller.
		u.log.Warn().Err(err).Str("user_id", userID).Msg("gateway order creation failed")
		return nil, err
	}

	p, err := model.NewPayment(uuid.NewString(), order.ID, userID, receipt, amount, "INR")
	if err != nil {
		return nil, err
	}
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}

	metrics.IncPayment(string(model.PaymentStatusCreated))
	u.log.Info().
		Str("user_id", userID).
		Str("order_id", order.ID).
		Str("amount", amount.StringFixed(2)).
		Msg("order created")
	return p, nil
}

// toMinorUnits converts a major-unit amount to paise, rejecting non-positive
// amounts and amounts with sub-paisa precision.
func toMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, domain.ErrInvalidAmount
	}
	minor := amount.Mul(minorUnitFactor)
	if !minor.IsInteger() {
		return 0, domain.ErrInvalidAmount
	}
	return minor.IntPart(), nil
}
