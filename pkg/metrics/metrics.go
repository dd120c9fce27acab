// Package metrics provides the centralized Prometheus registry reference
// for the wanted-missing client. Metrics are defined in their respective
// packages (sonarr, cache, wanted) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/sonarr):
//   - sonarr_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - sonarr_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - sonarr_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Retry Metrics (pkg/sonarr):
//   - sonarr_retries_total{error_class} (Counter): Retry attempts by error class
//   - sonarr_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - sonarr_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - sonarr_cache_hits_total (Counter): Page cache hits
//   - sonarr_cache_misses_total (Counter): Page cache misses
//   - sonarr_cache_errors_total{operation} (Counter): Cache operation errors
//
// Aggregation Metrics (pkg/wanted):
//   - sonarr_wanted_pages_fetched_total (Counter): Listing pages fetched
//   - sonarr_wanted_records_emitted_total (Counter): Normalized records emitted
//   - sonarr_wanted_records_skipped_total{reason} (Counter): Records skipped (limit, invalid)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(sonarr_cache_hits_total[5m])) /
//   (sum(rate(sonarr_cache_hits_total[5m])) + sum(rate(sonarr_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(sonarr_errors_total[5m])
//
//   # Share of records dropped by the per-series cap
//   rate(sonarr_wanted_records_skipped_total{reason="limit"}[5m]) /
//   rate(sonarr_wanted_records_emitted_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(sonarr_request_duration_seconds_bucket[5m]))
