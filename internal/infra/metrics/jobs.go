package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(outboxEventsTotal, activationDuration, voucherChecksTotal) }

var (
	outboxEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_events_total",
			Help: "Outbox events processed, labeled by kind and result.",
		},
		[]string{"kind", "result"}, // 'delivered', 'retry', 'failed', 'skipped'
	)

	activationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "activation_duration_seconds",
			Help:    "Duration of transaction activation calls.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	voucherChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voucher_checks_total",
			Help: "Voucher quote requests by result.",
		},
		[]string{"result"}, // 'valid', 'rejected', 'error'
	)
)

func IncOutboxEvent(kind, result string) {
	outboxEventsTotal.WithLabelValues(norm(kind), norm(result)).Inc()
}

func ObserveActivation(seconds float64) {
	activationDuration.Observe(seconds)
}

func IncVoucherCheck(result string) {
	voucherChecksTotal.WithLabelValues(norm(result)).Inc()
}
