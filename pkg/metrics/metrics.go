// Package metrics exposes the Prometheus metrics of the response cache.
// All metrics are defined in their respective packages (cache, httpcache)
// and registered via promauto on the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the /metrics endpoint for the default registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - webcache_hits_total{prefix} (Counter): Lookups answered from the store
//   - webcache_misses_total{prefix} (Counter): Lookups with no stored entry
//   - webcache_stores_total{prefix} (Counter): Responses written to the store
//   - webcache_stored_bytes{prefix} (Histogram): Body size of stored responses
//   - webcache_cleaned_keys_total{prefix} (Counter): Keys deleted by Clean
//   - webcache_errors_total{operation} (Counter): Storage errors (lookup, refresh, store, clean)
//
// Middleware Metrics (pkg/httpcache):
//   - webcache_bypassed_requests_total{prefix, reason} (Counter): Requests not eligible (path, method)
//   - webcache_shared_responses_total{prefix} (Counter): Followers served by a concurrent miss
//   - webcache_abandoned_requests_total{prefix} (Counter): Requests that ended while waiting for a concurrent miss
//   - webcache_uncacheable_responses_total{prefix, reason} (Counter): Responses not stored (status, empty, aborted)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(webcache_hits_total[5m])) /
//   (sum(rate(webcache_hits_total[5m])) + sum(rate(webcache_misses_total[5m])))
//
//   # Storage Error Rate
//   sum by (operation) (rate(webcache_errors_total[5m]))
//
//   # Stampedes absorbed by single-flight
//   rate(webcache_shared_responses_total[5m])
//
//   # P95 Stored Body Size
//   histogram_quantile(0.95, rate(webcache_stored_bytes_bucket[5m]))
