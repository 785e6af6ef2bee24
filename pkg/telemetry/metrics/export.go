package metrics

import (
	"time"

	"mercator-hq/converter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ExportMetrics tracks spreadsheet and document exports.
//
// Metrics:
//   - converter_exports_total: export count by format and status
//   - converter_export_duration_seconds: render duration by format
//   - converter_export_pages: pages per document export
//   - converter_export_size_bytes: output size by format
type ExportMetrics struct {
	exportsTotal   *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	exportPages    prometheus.Histogram
	exportSize     *prometheus.HistogramVec
}

// NewExportMetrics creates and registers export metrics.
func NewExportMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExportMetrics {
	em := &ExportMetrics{
		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "exports_total",
				Help:      "Total number of exports by format and status",
			},
			[]string{"format", "status"},
		),
		exportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "export_duration_seconds",
				Help:      "Duration of export rendering in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"format"},
		),
		exportPages: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "export_pages",
				Help:      "Number of pages per document export",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),
		exportSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "export_size_bytes",
				Help:      "Size of export output in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KB to 16MB
			},
			[]string{"format"},
		),
	}

	registry.MustRegister(em.exportsTotal, em.exportDuration, em.exportPages, em.exportSize)
	return em
}

// Record records one export. Size and page histograms only observe
// successful exports.
func (em *ExportMetrics) Record(format, status string, duration time.Duration, pages int, bytes int64) {
	em.exportsTotal.WithLabelValues(format, status).Inc()
	if status != StatusSuccess {
		return
	}
	em.exportDuration.WithLabelValues(format).Observe(duration.Seconds())
	em.exportSize.WithLabelValues(format).Observe(float64(bytes))
	if pages > 0 {
		em.exportPages.Observe(float64(pages))
	}
}
