// Package tracing provides OpenTelemetry spans for fetches and exports.
//
// When telemetry.tracing.enabled is false, New returns a tracer that hands
// out noop spans. When enabled, spans are batched to an OTLP gRPC collector:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: "localhost:4317"
//	    insecure: true
//	    sample_ratio: 0.25
//
// Span names used by the converter:
//
//	source.fetch    one fetch through the source adapter
//	export.<format> one export, with export.rasterize and export.paginate
//	                children for raster documents
//
// Trace context is propagated to http sources with InjectHTTP and accepted
// from callers of the HTTP API with ExtractHTTP.
package tracing
