package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/infra/redis"
	"subscription-billing/internal/usecase"
)

type createOrderRequest struct {
	Amount string `json:"amount"` // decimal string, major units
}

type createOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

func createOrderHandler(orderUC usecase.OrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, ok := UserIDFrom(ctx)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			writeDomainError(w, domain.ErrInvalidAmount)
			return
		}

		p, err := orderUC.CreateOrder(ctx, userID, amount)
		if err != nil {
			// A valid token whose subject no longer exists.
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, createOrderResponse{
			OrderID:  p.OrderID,
			Amount:   p.Amount.StringFixed(2),
			Currency: p.Currency,
			Receipt:  p.Receipt,
		})
	}
}

type verifyResponse struct {
	Plan    string    `json:"plan"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

func verifyHandler(reconcileUC usecase.ReconcileUseCase, limiter *redis.RateLimiter, limitPerMinute int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, ok := UserIDFrom(ctx)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if limiter != nil {
			allowed, err := limiter.Allow(ctx, redis.UserActionKey(userID, "verify"), limitPerMinute, time.Minute)
			// Limiter outages must not block reconciliation.
			if err == nil && !allowed {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
		}

		var c model.Confirmation
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		sub, err := reconcileUC.Confirm(ctx, c, userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, verifyResponse{
			Plan:    sub.PlanName,
			StartAt: sub.StartAt,
			EndAt:   sub.EndAt,
		})
	}
}

func statusHandler(entUC usecase.EntitlementUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, ok := UserIDFrom(ctx)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ent, err := entUC.Entitlement(ctx, userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps domain errors to HTTP statuses. PaymentNotFound and
// OwnershipViolation are deliberately indistinguishable to the caller so a
// rejected confirmation confirms nothing about which order ids exist.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrUnknownPlanAmount),
		errors.Is(err, domain.ErrMalformedConfirmation),
		errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrSignatureMismatch),
		errors.Is(err, domain.ErrPaymentAlreadyFailed):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrOwnershipViolation):
		http.Error(w, domain.ErrPaymentNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrGatewayUnavailable):
		http.Error(w, "Payment gateway unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
