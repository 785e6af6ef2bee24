package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys use the "converter.*" namespace.
const (
	AttrSource      = "converter.source"
	AttrRecords     = "converter.records"
	AttrFields      = "converter.fields"
	AttrFormat      = "converter.export.format"
	AttrLayout      = "converter.export.layout"
	AttrPages       = "converter.export.pages"
	AttrBytes       = "converter.export.bytes"
	AttrExportID    = "converter.export.id"
	AttrRasterWidth = "converter.raster.width"
	AttrRasterHigh  = "converter.raster.height"
)

// SetFetchAttributes records the outcome of a fetch on span.
func SetFetchAttributes(span trace.Span, source string, records, fields int) {
	span.SetAttributes(
		attribute.String(AttrSource, source),
		attribute.Int(AttrRecords, records),
		attribute.Int(AttrFields, fields),
	)
}

// SetExportAttributes records the outcome of an export on span.
func SetExportAttributes(span trace.Span, format string, records, pages int, bytes int64) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrFormat, format),
		attribute.Int(AttrRecords, records),
		attribute.Int64(AttrBytes, bytes),
	}
	if pages > 0 {
		attrs = append(attrs, attribute.Int(AttrPages, pages))
	}
	span.SetAttributes(attrs...)
}

// SetRasterAttributes records the pixel size of a rasterized table.
func SetRasterAttributes(span trace.Span, width, height int) {
	span.SetAttributes(
		attribute.Int(AttrRasterWidth, width),
		attribute.Int(AttrRasterHigh, height),
	)
}
