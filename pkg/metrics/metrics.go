// Package metrics provides the centralized Prometheus registry handle
// for the Dune client. All metrics are defined in their respective
// packages (client, poller, pagination) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Dune client.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - dune_requests_total{operation, status} (Counter): Total requests by
//     API operation and HTTP status ("network_error" for transport failures)
//   - dune_request_duration_seconds{operation} (Histogram): Request
//     duration by API operation
//   - dune_errors_total{kind} (Counter): Client errors by kind
//     (request, parse, encoding, query_not_finished, query_status, protocol)
//
// Poller Metrics (pkg/poller):
//   - dune_poll_ticks_total{state} (Counter): Poll ticks by observed
//     execution state
//   - dune_poll_duration_seconds (Histogram): Wall-clock time from first
//     probe to terminal status
//
// Pagination Metrics (pkg/pagination):
//   - dune_result_pages_fetched_total (Counter): Result pages fetched
//   - dune_result_rows_fetched_total (Counter): Result rows fetched
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(dune_errors_total[5m])
//
//   # P95 Request Latency per Operation
//   histogram_quantile(0.95, rate(dune_request_duration_seconds_bucket[5m]))
//
//   # Average Rows per Page
//   rate(dune_result_rows_fetched_total[5m]) /
//   rate(dune_result_pages_fetched_total[5m])
//
//   # Executions Stuck in Pending
//   rate(dune_poll_ticks_total{state="QUERY_STATE_PENDING"}[15m])
