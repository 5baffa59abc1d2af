package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentTransitionsTotal,
		paymentsRevenueTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments created at checkout, by provider.",
		},
		[]string{"provider"},
	)

	paymentTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_transitions_total",
			Help: "Committed payment status transitions.",
		},
		[]string{"from", "to", "source"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of paid transactions, labeled by currency.",
		},
		[]string{"currency"},
	)
)

func IncPayment(provider string) {
	paymentsTotal.WithLabelValues(norm(provider)).Inc()
}

func IncTransition(from, to, source string) {
	paymentTransitionsTotal.WithLabelValues(norm(from), norm(to), norm(source)).Inc()
}

func AddPaymentRevenue(currency string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}
