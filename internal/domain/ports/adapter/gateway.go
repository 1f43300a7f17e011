package adapter

import "context"

// GatewayOrder is the provider-side order created for a charge.
type GatewayOrder struct {
	ID       string // provider order id, stable and unique
	Amount   int64  // minor units as echoed by the provider
	Currency string
	Receipt  string
}

// PaymentGateway is the hex port for the external payment provider.
// CreateOrder either fails cleanly or returns a stable unique order id; no
// partial orders. Amounts are in the provider's minor unit.
type PaymentGateway interface {
	Name() string
	CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (GatewayOrder, error)
}
