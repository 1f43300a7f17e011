//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
)

func TestPaymentRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewPaymentRepo(testPool)
	userID := uuid.NewString()

	setup := func(t *testing.T) {
		cleanup(t)
		seedUser(t, userID, "payer@example.com")
	}

	newPayment := func(t *testing.T, orderID string) *model.Payment {
		t.Helper()
		p, err := model.NewPayment(uuid.NewString(), orderID, userID, "recp_test", decimal.NewFromInt(4999), "INR")
		if err != nil {
			t.Fatalf("NewPayment: %v", err)
		}
		return p
	}

	t.Run("should save and find a payment by order id", func(t *testing.T) {
		setup(t)
		p := newPayment(t, "order_find")
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Save: %v", err)
		}

		found, err := repo.FindByOrderID(ctx, nil, "order_find")
		if err != nil {
			t.Fatalf("FindByOrderID: %v", err)
		}
		if found.ID != p.ID || found.Status != model.PaymentStatusCreated {
			t.Fatalf("found %+v", found)
		}
		if !found.Amount.Equal(decimal.NewFromInt(4999)) {
			t.Errorf("amount = %s, want 4999", found.Amount)
		}
	})

	t.Run("unknown order id maps to not found", func(t *testing.T) {
		setup(t)
		if _, err := repo.FindByOrderID(ctx, nil, "order_absent"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("mark success only from created", func(t *testing.T) {
		setup(t)
		p := newPayment(t, "order_mark")
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Save: %v", err)
		}
		subID := uuid.NewString()
		seedSubscriptionRow(t, subID, userID, p.ID, false)

		ok, err := repo.MarkSuccessIfCreated(ctx, nil, p.ID, "pay_1", "sig_1", subID)
		if err != nil {
			t.Fatalf("MarkSuccessIfCreated: %v", err)
		}
		if !ok {
			t.Fatal("first transition did not apply")
		}

		// Second attempt finds the row no longer in created.
		ok, err = repo.MarkSuccessIfCreated(ctx, nil, p.ID, "pay_2", "sig_2", subID)
		if err != nil {
			t.Fatalf("second MarkSuccessIfCreated: %v", err)
		}
		if ok {
			t.Fatal("transition applied twice")
		}

		found, err := repo.FindByOrderID(ctx, nil, "order_mark")
		if err != nil {
			t.Fatalf("FindByOrderID: %v", err)
		}
		if found.Status != model.PaymentStatusSuccess {
			t.Errorf("status = %q", found.Status)
		}
		if found.GatewayPaymentID == nil || *found.GatewayPaymentID != "pay_1" {
			t.Error("first confirmation's gateway id not preserved")
		}
	})

	t.Run("mark failed only from created", func(t *testing.T) {
		setup(t)
		p := newPayment(t, "order_fail")
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Save: %v", err)
		}

		ok, err := repo.MarkFailedIfCreated(ctx, nil, p.ID)
		if err != nil || !ok {
			t.Fatalf("MarkFailedIfCreated: ok=%v err=%v", ok, err)
		}
		ok, err = repo.MarkFailedIfCreated(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("second MarkFailedIfCreated: %v", err)
		}
		if ok {
			t.Fatal("transition applied twice")
		}
	})

	t.Run("lists stale created payments only", func(t *testing.T) {
		setup(t)
		stale := newPayment(t, "order_stale")
		stale.CreatedAt = time.Now().Add(-2 * time.Hour)
		fresh := newPayment(t, "order_fresh")
		for _, p := range []*model.Payment{stale, fresh} {
			if err := repo.Save(ctx, nil, p); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}

		got, err := repo.ListCreatedOlderThan(ctx, nil, time.Now().Add(-time.Hour), 10)
		if err != nil {
			t.Fatalf("ListCreatedOlderThan: %v", err)
		}
		if len(got) != 1 || got[0].ID != stale.ID {
			t.Fatalf("got %d rows, want only the stale payment", len(got))
		}
	})

	t.Run("duplicate order id is rejected", func(t *testing.T) {
		setup(t)
		if err := repo.Save(ctx, nil, newPayment(t, "order_dup")); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := repo.Save(ctx, nil, newPayment(t, "order_dup")); err == nil {
			t.Fatal("second payment with the same order id saved")
		}
	})
}

// seedSubscriptionRow inserts a subscription row directly so payments can
// reference it before the repo under test is exercised.
func seedSubscriptionRow(t *testing.T, id, userID, paymentID string, active bool) {
	t.Helper()
	now := time.Now()
	_, err := testPool.Exec(context.Background(), `
		INSERT INTO subscriptions (id, user_id, plan_name, amount, start_at, end_at, active, payment_id, created_at)
		VALUES ($1, $2, '3 Months', 4999.00, $3, $4, $5, $6, $3)
	`, id, userID, now, now.AddDate(0, 3, 0), active, paymentID)
	if err != nil {
		t.Fatalf("failed to seed subscription: %v", err)
	}
}
