package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"subscription-billing/internal/config"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/adapter"
	pg "subscription-billing/internal/infra/db/postgres"
	"subscription-billing/internal/infra/logging"
	"subscription-billing/internal/infra/metrics"
	pay "subscription-billing/internal/infra/payment"
	red "subscription-billing/internal/infra/redis"
	"subscription-billing/internal/infra/sched"
	"subscription-billing/internal/infra/web"
	"subscription-billing/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	entCache := red.NewEntitlementCache(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	payRepo := pg.NewPaymentRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Plan catalog ----
	catalog, err := buildCatalog(cfg.Plans)
	if err != nil {
		logger.Fatal().Err(err).Msg("plan catalog")
	}

	// ---- Gateway + verifier ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev && cfg.Razorpay.KeyID == "" {
		gateway = pay.NewNoopGateway()
		logger.Warn().Msg("using noop payment gateway")
	} else {
		gateway = pay.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL, cfg.Razorpay.Timeout)
	}
	verifier := pay.NewHMACVerifier(cfg.Razorpay.KeySecret)

	// ---- Use cases ----
	orderUC := usecase.NewOrderUseCase(payRepo, userRepo, catalog, gateway, logger)
	reconcileUC := usecase.NewReconcileUseCase(payRepo, subRepo, catalog, verifier, tm, entCache, logger)
	entUC := usecase.NewEntitlementUseCase(subRepo, entCache, cfg.Redis.TTL, logger)

	// ---- Background sweeper ----
	sweeper := sched.NewStalePaymentWorker(cfg.Limits.SweepInterval, cfg.Limits.StalePaymentAge, payRepo, logger)
	go func() {
		if err := sweeper.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("stale payment worker stopped")
		}
	}()

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret)
	server := web.NewServer(orderUC, reconcileUC, entUC, auth, rateLimiter, cfg.Limits.ConfirmPerMinute, logger)
	go func() {
		if err := server.Start(cfg.HTTP.Port); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}

// buildCatalog turns configured tiers into the plan catalog, falling back to
// the stock table when none are configured.
func buildCatalog(tiers []config.PlanTier) (*model.Catalog, error) {
	if len(tiers) == 0 {
		return model.DefaultCatalog(), nil
	}
	out := make([]model.CatalogTier, 0, len(tiers))
	for _, t := range tiers {
		amount, err := decimal.NewFromString(t.Amount)
		if err != nil {
			return nil, err
		}
		out = append(out, model.CatalogTier{
			Amount: amount,
			Plan:   model.Plan{Name: t.Name, DurationMonths: t.DurationMonths},
		})
	}
	return model.NewCatalog(out)
}
