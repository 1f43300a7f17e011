package payment

import (
	"context"
	"fmt"
	"sync"

	"subscription-billing/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway is a simple in-memory gateway for dev mode and tests.
type NoopGateway struct {
	mu     sync.Mutex
	seq    int64
	orders map[string]int64 // order id -> amount in minor units
}

func NewNoopGateway() *NoopGateway {
	return &NoopGateway{orders: make(map[string]int64)}
}

func (g *NoopGateway) Name() string { return "noop" }

func (g *NoopGateway) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (adapter.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	id := fmt.Sprintf("order_noop%d", g.seq)
	g.orders[id] = amountMinorUnits
	return adapter.GatewayOrder{
		ID:       id,
		Amount:   amountMinorUnits,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}
