package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbConns, dbMaxConns) }

var (
	dbConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reseller_db_pool_connections",
			Help: "Postgres pool connections by state (total, idle, in_use).",
		},
		[]string{"state"},
	)
	dbMaxConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reseller_db_pool_max_connections",
			Help: "Configured upper bound of the Postgres pool.",
		},
	)
)

// SetDBPoolStats publishes one pool snapshot. A pool pinned at max with no
// idle connections means callbacks are queuing for a connection.
func SetDBPoolStats(total, idle, inUse, maxConns int32) {
	dbConns.WithLabelValues("total").Set(float64(total))
	dbConns.WithLabelValues("idle").Set(float64(idle))
	dbConns.WithLabelValues("in_use").Set(float64(inUse))
	dbMaxConns.Set(float64(maxConns))
}
