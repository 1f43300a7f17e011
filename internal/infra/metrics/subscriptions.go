package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsActivated,
		subscriptionsExpired,
		entitlementLookups,
	)
}

var (
	subscriptionsActivated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_activated_total",
			Help: "Subscriptions granted on successful payment, by plan.",
		},
		[]string{"plan"},
	)

	subscriptionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Subscriptions deactivated lazily on the read path.",
		},
	)

	entitlementLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlement_lookups_total",
			Help: "Entitlement reads by outcome (cache_hit/active/expired/none).",
		},
		[]string{"outcome"},
	)
)

func IncSubscriptionActivated(plan string) {
	subscriptionsActivated.WithLabelValues(norm(plan)).Inc()
}

func IncSubscriptionExpired() {
	subscriptionsExpired.Inc()
}

func IncEntitlementLookup(outcome string) {
	entitlementLookups.WithLabelValues(norm(outcome)).Inc()
}
