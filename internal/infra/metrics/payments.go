package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		checkoutsTotal,
		webhooksTotal,
		reconciliationsTotal,
		webhookDuration,
	)
}

var (
	// Checkout preference creations by plan and result (ok|invalid_plan|gateway_error).
	checkoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Payment preference creations by plan and result.",
		},
		[]string{"plan", "result"},
	)

	// Inbound webhook notifications by signature outcome (valid|invalid|malformed|skipped).
	webhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Inbound gateway notifications by signature outcome.",
		},
		[]string{"signature"},
	)

	// Reconciliation outcomes.
	// result: granted|duplicate|missing_reference|unrecognized_plan|profile_not_found|persistence_error
	reconciliationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlement_reconciliations_total",
			Help: "Payment-to-entitlement reconciliations by plan and result.",
		},
		[]string{"plan", "result"},
	)

	webhookDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_webhook_duration_seconds",
			Help:    "Duration of webhook handling in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncCheckout(plan, result string) {
	checkoutsTotal.WithLabelValues(norm(plan), norm(result)).Inc()
}

func IncWebhook(signature string) {
	webhooksTotal.WithLabelValues(norm(signature)).Inc()
}

func IncReconciliation(plan, result string) {
	reconciliationsTotal.WithLabelValues(norm(plan), norm(result)).Inc()
}

func ObserveWebhookDuration(result string, seconds float64) {
	webhookDuration.WithLabelValues(norm(result)).Observe(seconds)
}
