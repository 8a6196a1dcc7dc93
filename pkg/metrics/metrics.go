// Package metrics exposes the Prometheus registry restext metrics are
// registered with. All metrics are defined in their respective packages
// (keyconstructor, conditional, cache, precondition) to maintain
// modularity and avoid circular dependencies.
//
// This package provides the scrape handler and the metric catalogue.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer restext metrics use.
// All metrics are registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the source Handler serves.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics of Gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Key Metrics (pkg/keyconstructor):
//   - restext_key_constructions_total{memoized} (Counter): Key constructor invocations, "true" when served from the request memo
//
// Conditional Metrics (pkg/conditional):
//   - restext_conditional_responses_total{status} (Counter): 304 and 412 short-circuits
//
// Precondition Metrics (pkg/precondition):
//   - restext_precondition_required_total{method} (Counter): Requests rejected with 428
//
// Cache Metrics (pkg/cache):
//   - restext_cache_hits_total{backend} (Counter): Replayed responses by backend
//   - restext_cache_misses_total{backend} (Counter): Misses by backend
//   - restext_cache_stores_total{backend} (Counter): Stored responses by backend
//   - restext_cache_skipped_errors_total (Counter): Error responses not stored
//   - restext_cache_errors_total{operation} (Counter): Backend errors (open, get, set, delete)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(restext_cache_hits_total[5m])) /
//   (sum(rate(restext_cache_hits_total[5m])) + sum(rate(restext_cache_misses_total[5m])))
//
//   # Not Modified Rate
//   rate(restext_conditional_responses_total{status="304"}[5m])
//
//   # Memoization Share
//   sum(rate(restext_key_constructions_total{memoized="true"}[5m])) /
//   sum(rate(restext_key_constructions_total[5m]))
