package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		confirmRejectedTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status (created/success/failed).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of successful payments, labeled by currency.",
		},
		[]string{"currency"},
	)

	confirmRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_confirm_rejected_total",
			Help: "Rejected payment confirmations by reason.",
		},
		[]string{"reason"},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amount float64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(amount)
}

func IncConfirmRejected(reason string) {
	confirmRejectedTotal.WithLabelValues(norm(reason)).Inc()
}
