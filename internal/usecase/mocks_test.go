//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/adapter"
	"subscription-billing/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// --- Payment repository mock ---

type MockPaymentRepo struct {
	mu       sync.Mutex
	store    map[string]*model.Payment // by payment id
	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) error
}

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, tx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.OrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentRepo) MarkSuccessIfCreated(ctx context.Context, tx repository.Tx, id string, gatewayPaymentID, gatewaySignature, subscriptionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Status != model.PaymentStatusCreated {
		return false, nil
	}
	p.Status = model.PaymentStatusSuccess
	p.GatewayPaymentID = &gatewayPaymentID
	p.GatewaySignature = &gatewaySignature
	p.SubscriptionID = &subscriptionID
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockPaymentRepo) MarkFailedIfCreated(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Status != model.PaymentStatusCreated {
		return false, nil
	}
	p.Status = model.PaymentStatusFailed
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockPaymentRepo) ListCreatedOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusCreated && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// Get returns the stored payment for assertions.
func (m *MockPaymentRepo) Get(id string) *model.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// --- User repository mock ---

type MockUserRepo struct {
	mu    sync.Mutex
	store map[string]*model.User // by user id
}

func NewMockUserRepo(users ...*model.User) *MockUserRepo {
	m := &MockUserRepo{store: make(map[string]*model.User)}
	for _, u := range users {
		m.store[u.ID] = u
	}
	return m
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// --- Subscription repository mock ---

type MockSubscriptionRepo struct {
	mu       sync.Mutex
	store    map[string]*model.Subscription // by subscription id
	SaveFunc func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
}

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, tx, s); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.store {
		if s.UserID == userID && s.Active {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) DeactivateActiveByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.store {
		if s.UserID == userID && s.Active {
			s.Active = false
			n++
		}
	}
	return n, nil
}

func (m *MockSubscriptionRepo) DeactivateIfActive(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok || !s.Active {
		return false, nil
	}
	s.Active = false
	return true, nil
}

// ActiveCount counts active subscriptions for a user, for assertions.
func (m *MockSubscriptionRepo) ActiveCount(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.store {
		if s.UserID == userID && s.Active {
			n++
		}
	}
	return n
}

// Count returns the total number of stored subscriptions.
func (m *MockSubscriptionRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// --- Transaction manager mock ---

// MockTxManager runs the callback without a real transaction; the in-memory
// repos are already atomic per call.
type MockTxManager struct {
	Calls int
}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.Calls++
	return fn(ctx, repository.NoTX)
}

// --- Entitlement cache mock ---

type MockEntitlementCache struct {
	mu          sync.Mutex
	store       map[string]model.Entitlement
	Sets        int
	Invalidates int
	GetErr      error
}

func NewMockEntitlementCache() *MockEntitlementCache {
	return &MockEntitlementCache{store: make(map[string]model.Entitlement)}
}

func (m *MockEntitlementCache) Get(ctx context.Context, userID string) (model.Entitlement, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return model.Entitlement{}, false, m.GetErr
	}
	e, ok := m.store[userID]
	return e, ok, nil
}

func (m *MockEntitlementCache) Set(ctx context.Context, userID string, e model.Entitlement, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	m.store[userID] = e
	return nil
}

func (m *MockEntitlementCache) Invalidate(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidates++
	delete(m.store, userID)
	return nil
}

// --- Gateway mock ---

type MockPaymentGateway struct {
	mu              sync.Mutex
	seq             int64
	Calls           int
	CreateOrderFunc func(ctx context.Context, amountMinorUnits int64, currency, receipt string) (adapter.GatewayOrder, error)
}

func (g *MockPaymentGateway) Name() string { return "mock" }

func (g *MockPaymentGateway) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (adapter.GatewayOrder, error) {
	g.mu.Lock()
	g.Calls++
	g.mu.Unlock()
	if g.CreateOrderFunc != nil {
		return g.CreateOrderFunc(ctx, amountMinorUnits, currency, receipt)
	}
	g.mu.Lock()
	g.seq++
	id := fmt.Sprintf("order_mock%d", g.seq)
	g.mu.Unlock()
	return adapter.GatewayOrder{ID: id, Amount: amountMinorUnits, Currency: currency, Receipt: receipt}, nil
}

// --- Signature verifier mock ---

type MockVerifier struct {
	Result     bool
	VerifyFunc func(orderID, paymentID, signature string) bool
}

func (v *MockVerifier) Verify(orderID, paymentID, signature string) bool {
	if v.VerifyFunc != nil {
		return v.VerifyFunc(orderID, paymentID, signature)
	}
	return v.Result
}
