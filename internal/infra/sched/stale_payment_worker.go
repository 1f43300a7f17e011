package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/metrics"
)

// StalePaymentWorker periodically fails created-status payments whose
// checkout was abandoned. The conditional update keeps it safe against a
// confirmation racing the sweep: a payment that went to success in between
// is simply skipped.
type StalePaymentWorker struct {
	interval time.Duration
	maxAge   time.Duration
	payments repository.PaymentRepository
	log      *zerolog.Logger
}

func NewStalePaymentWorker(interval, maxAge time.Duration, payments repository.PaymentRepository, logger *zerolog.Logger) *StalePaymentWorker {
	l := logger.With().Str("component", "StalePaymentWorker").Logger()
	return &StalePaymentWorker{
		interval: interval,
		maxAge:   maxAge,
		payments: payments,
		log:      &l,
	}
}

func (w *StalePaymentWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting stale payment worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping stale payment worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.sweep(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("stale payment sweep error")
			}
			if n > 0 {
				metrics.AddStalePaymentsFailed(n)
				w.log.Info().Int("count", n).Msg("stale payments marked failed")
			}
		}
	}
}

func (w *StalePaymentWorker) sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-w.maxAge)
	stale, err := w.payments.ListCreatedOlderThan(ctx, repository.NoTX, cutoff, 100)
	if err != nil {
		return 0, err
	}
	failed := 0
	for _, p := range stale {
		ok, err := w.payments.MarkFailedIfCreated(ctx, repository.NoTX, p.ID)
		if err != nil {
			w.log.Error().Err(err).Str("payment_id", p.ID).Msg("failed to mark stale payment")
			continue
		}
		if ok {
			failed++
		}
	}
	return failed, nil
}
