package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(stalePaymentsFailed)
}

var stalePaymentsFailed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stale_payments_failed_total",
		Help: "Abandoned created-status payments marked failed by the sweeper.",
	},
)

func AddStalePaymentsFailed(n int) {
	stalePaymentsFailed.Add(float64(n))
}
