// Package metrics provides Prometheus metrics for fetches, exports and the
// HTTP server.
//
// All metrics live in a dedicated registry owned by the Collector and are
// exposed by Collector.Handler, normally mounted at /metrics:
//
//	converter_fetches_total{source,status}
//	converter_fetch_duration_seconds{source}
//	converter_records_loaded
//	converter_exports_total{format,status}
//	converter_export_duration_seconds{format}
//	converter_export_pages
//	converter_export_size_bytes{format}
//	converter_http_requests_total{route,method,status}
//	converter_http_request_duration_seconds{route}
//
// Collector methods are nil-safe, so a component built without metrics
// simply holds a nil *Collector.
package metrics
