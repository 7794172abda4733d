package httpcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the caching middleware.
var (
	requestsBypassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webcache_bypassed_requests_total",
		Help: "Requests passed straight to the handler by the matcher",
	}, []string{"prefix", "reason"}) // "path", "method"

	responsesShared = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webcache_shared_responses_total",
		Help: "Requests answered from a concurrent in-flight handler invocation",
	}, []string{"prefix"})

	requestsAbandoned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webcache_abandoned_requests_total",
		Help: "Requests that ended while waiting for a concurrent miss",
	}, []string{"prefix"})

	responsesUncacheable = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webcache_uncacheable_responses_total",
		Help: "Handler responses not stored, by reason",
	}, []string{"prefix", "reason"}) // "status", "empty", "aborted"
)
