// Package metrics exposes the Prometheus registry the Flickr client
// registers into and the HTTP handler serving it.
//
// The metrics themselves are defined in the packages that record them,
// registered through promauto.With(Registry).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry receives every metric of the client, cache and upload packages.
	Registry prometheus.Registerer = prometheus.DefaultRegisterer

	// Gatherer is what Handler serves. It must collect from Registry.
	Gatherer prometheus.Gatherer = prometheus.DefaultGatherer
)

// Handler serves Gatherer in the Prometheus text format and counts its own
// scrapes in Registry.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(Registry, promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}))
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - flickr_requests_total{method, status} (Counter): requests by API method; status is ok, cache_hit or an error class
//   - flickr_request_duration_seconds{method} (Histogram): request duration including cache lookups
//   - flickr_errors_total{class} (Counter): errors by class (transport, auth, decode, service)
//
// Cache Metrics (pkg/cache):
//   - flickr_cache_hits_total{backend} (Counter)
//   - flickr_cache_misses_total{backend} (Counter)
//   - flickr_cache_stored_bytes_total{backend} (Counter): response bytes written
//   - flickr_cache_errors_total{backend, operation} (Counter): get, set, delete and prune failures
//
// Upload Metrics (pkg/upload):
//   - flickr_uploads_total{endpoint, status} (Counter): upload and replace requests
//   - flickr_upload_duration_seconds{endpoint} (Histogram)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(flickr_cache_hits_total[5m])) /
//   (sum(rate(flickr_cache_hits_total[5m])) + sum(rate(flickr_cache_misses_total[5m])))
//
//   # Auth failures (expired or revoked tokens)
//   rate(flickr_errors_total{class="auth"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(flickr_request_duration_seconds_bucket[5m]))
