// Package telemetry groups the observability packages of the converter.
//
// # Components
//
//   - logging: slog-based structured logging with customer-data redaction
//   - metrics: Prometheus collector for fetches, exports and HTTP requests
//   - tracing: OpenTelemetry spans around fetch, export and API requests
//   - health: liveness and readiness probes and version information
//
// Each is configured from the telemetry section of the configuration and
// is safe to use when disabled: a nil metrics Collector and a disabled
// Tracer turn every call into a no-op.
//
// # Usage
//
//	cfg := config.GetConfig()
//	logger, _ := logging.New(logging.FromConfig(&cfg.Telemetry.Logging, os.Stderr))
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(context.Background())
package telemetry
