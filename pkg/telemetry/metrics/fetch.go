package metrics

import (
	"time"

	"mercator-hq/converter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// FetchMetrics tracks data source fetches.
//
// Metrics:
//   - converter_fetches_total: fetch count by source and status
//   - converter_fetch_duration_seconds: fetch duration by source
//   - converter_records_loaded: records in the currently held set
type FetchMetrics struct {
	fetchesTotal  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	recordsLoaded prometheus.Gauge
}

// NewFetchMetrics creates and registers fetch metrics.
func NewFetchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FetchMetrics {
	fm := &FetchMetrics{
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fetches_total",
				Help:      "Total number of record set fetches",
			},
			[]string{"source", "status"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of record set fetches in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"source"},
		),
		recordsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "records_loaded",
				Help:      "Number of records in the currently held record set",
			},
		),
	}

	registry.MustRegister(fm.fetchesTotal, fm.fetchDuration, fm.recordsLoaded)
	return fm
}

// Record records one fetch. The records gauge only moves on success, since
// a failed fetch leaves the held set unchanged.
func (fm *FetchMetrics) Record(source, status string, duration time.Duration, records int) {
	fm.fetchesTotal.WithLabelValues(source, status).Inc()
	if status == StatusBusy {
		return
	}
	fm.fetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if status == StatusSuccess {
		fm.recordsLoaded.Set(float64(records))
	}
}
