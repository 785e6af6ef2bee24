package metrics

import (
	"time"

	"mercator-hq/converter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values for fetches and exports.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusBusy    = "busy"
	StatusEmpty   = "empty"
)

// Collector owns every converter metric. All methods are safe on a nil
// receiver and are no-ops when metrics are disabled, so components can hold
// a *Collector unconditionally.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	fetch  *FetchMetrics
	export *ExportMetrics
	http   *HTTPMetrics
}

// NewCollector creates a collector and registers its metrics with registry.
// If registry is nil, a new registry is created.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	opts := *cfg
	if opts.Namespace == "" {
		opts.Namespace = config.DefaultMetricsNamespace
	}
	if len(opts.DurationBuckets) == 0 {
		opts.DurationBuckets = config.DefaultDurationBuckets
	}

	return &Collector{
		config:   &opts,
		registry: registry,
		fetch:    NewFetchMetrics(&opts, registry),
		export:   NewExportMetrics(&opts, registry),
		http:     NewHTTPMetrics(&opts, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordFetch records a completed fetch.
//
// Parameters:
//   - source: source type ("sample", "http", "file", "sql")
//   - status: "success", "error" or "busy"
//   - duration: time spent in the source
//   - records: number of records loaded, 0 on failure
func (c *Collector) RecordFetch(source, status string, duration time.Duration, records int) {
	if !c.enabled() {
		return
	}
	c.fetch.Record(source, status, duration, records)
}

// RecordExport records a completed export.
//
// Parameters:
//   - format: export format ("xlsx", "pdf", "csv", "json", "html")
//   - status: "success", "empty", "error" or "busy"
//   - duration: render time
//   - pages: document pages, 0 for non-paged formats
//   - bytes: output size
func (c *Collector) RecordExport(format, status string, duration time.Duration, pages int, bytes int64) {
	if !c.enabled() {
		return
	}
	c.export.Record(format, status, duration, pages, bytes)
}

// RecordHTTPRequest records a served HTTP request.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.http.Record(route, method, status, duration)
}

// Registry returns the Prometheus registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Enabled reports whether metrics are being collected.
func (c *Collector) Enabled() bool {
	return c.enabled()
}
