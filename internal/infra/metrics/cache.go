package metrics

import "github.com/prometheus/client_golang/prometheus"

// Catalog cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error" // redis unavailable; the lookup fell through to Postgres
)

func init() { register(catalogCacheLookups) }

var catalogCacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reseller_catalog_cache_lookups_total",
		Help: "Package catalog cache lookups by entry kind (package, package_list) and result.",
	},
	[]string{"entry", "result"},
)

func IncCacheRequest(entry, result string) {
	switch result = norm(result); result {
	case CacheHit, CacheMiss, CacheError:
	default:
		result = "other"
	}
	catalogCacheLookups.WithLabelValues(norm(entry), result).Inc()
}
