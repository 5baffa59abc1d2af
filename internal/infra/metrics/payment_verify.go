package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		CallbackRequests,
		CallbackDuration,
		PaymentNotifyTotal,
	)
}

var (
	// Count of gateway callbacks grouped by outcome.
	// outcome: applied|duplicate|ignored_terminal|lost_race|bad_signature|bad_order_id|not_found|error
	CallbackRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callback_requests_total",
			Help: "Count of payment gateway callbacks by outcome.",
		},
		[]string{"outcome"},
	)

	// Latency of the callback handler grouped by HTTP status class.
	CallbackDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_callback_duration_seconds",
			Help:    "Duration of the payment callback handler in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"code"},
	)

	// Payment-success notifications by channel and delivery status.
	// status: sent|error|skipped
	PaymentNotifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_notify_total",
			Help: "Payment success notifications by channel and delivery status.",
		},
		[]string{"channel", "status"},
	)
)

func IncCallback(outcome string) {
	CallbackRequests.WithLabelValues(norm(outcome)).Inc()
}

func IncNotify(channel, status string) {
	PaymentNotifyTotal.WithLabelValues(norm(channel), norm(status)).Inc()
}
