// Package metrics exposes the Prometheus registry used by the MCP packages.
// All metrics are defined in their respective packages (client, cache,
// serialization) to maintain modularity and avoid circular dependencies.
//
// This package provides the scrape handler and a reference for all
// available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the Prometheus registerer the MCP packages register with.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the counterpart of Registry used for scraping.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler serving Gatherer in the Prometheus
// exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - mcp_cache_hits_total{layer} (Counter): Cache hits by layer (memory, redis)
//   - mcp_cache_misses_total{layer} (Counter): Cache misses by layer
//   - mcp_cache_expired_total{layer} (Counter): Expired entries removed on read
//   - mcp_cache_entries{layer} (Gauge): Entries held by the memory store
//   - mcp_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - mcp_http_requests_total{method, status} (Counter): Upstream requests by method and HTTP status
//   - mcp_http_request_duration_seconds{method} (Histogram): Upstream request duration
//   - mcp_http_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//   - mcp_http_deduplicated_total (Counter): GETs served by a concurrent identical request
//
// Retry Metrics (pkg/client):
//   - mcp_http_retries_total{error_class} (Counter): Retry attempts by error class
//   - mcp_http_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - mcp_http_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Serialization Metrics (pkg/serialization):
//   - mcp_serialized_payloads_total{encoding} (Counter): Negotiated payloads by encoding (gzip, identity)
//   - mcp_serialized_payload_bytes{encoding} (Histogram): Payload size on the wire
//   - mcp_compression_saved_bytes_total (Counter): Bytes saved by gzip
//
// Gateway Metrics (internal/gateway):
//   - mcp_gateway_requests_total{route, status} (Counter): Gateway requests by chi route pattern and status
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(mcp_cache_hits_total[5m])) /
//   (sum(rate(mcp_cache_hits_total[5m])) + sum(rate(mcp_cache_misses_total[5m])))
//
//   # Upstream Server Error Rate
//   rate(mcp_http_errors_total{class="server"}[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(mcp_http_request_duration_seconds_bucket[5m]))
//
//   # Share of Compressed Responses
//   rate(mcp_serialized_payloads_total{encoding="gzip"}[5m]) / rate(mcp_serialized_payloads_total[5m])
