package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"subscription-billing/internal/infra/redis"
	"subscription-billing/internal/usecase"
)

// Server exposes the three core operations over JSON plus health and metrics.
type Server struct {
	orderUC     usecase.OrderUseCase
	reconcileUC usecase.ReconcileUseCase
	entUC       usecase.EntitlementUseCase
	auth        *AuthManager
	limiter     *redis.RateLimiter
	limitPerMin int
	log         *zerolog.Logger
	server      *http.Server
}

func NewServer(
	orderUC usecase.OrderUseCase,
	reconcileUC usecase.ReconcileUseCase,
	entUC usecase.EntitlementUseCase,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	limitPerMin int,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		orderUC:     orderUC,
		reconcileUC: reconcileUC,
		entUC:       entUC,
		auth:        auth,
		limiter:     limiter,
		limitPerMin: limitPerMin,
		log:         &l,
	}
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(s.auth))
		r.Post("/api/v1/payment/create-order", createOrderHandler(s.orderUC))
		r.Post("/api/v1/payment/verify", verifyHandler(s.reconcileUC, s.limiter, s.limitPerMin))
		r.Get("/api/v1/subscription/status", statusHandler(s.entUC))
	})

	return r
}

func (s *Server) Start(port int) error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Router(),
	}
	s.log.Info().Int("port", port).Msg("http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
