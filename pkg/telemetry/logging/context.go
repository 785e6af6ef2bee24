package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for HTTP request IDs.
	RequestIDKey contextKey = "request_id"

	// ExportIDKey is the context key for export IDs.
	ExportIDKey contextKey = "export_id"

	// SourceKey is the context key for the data source type.
	SourceKey contextKey = "source"

	// FormatKey is the context key for the export format.
	FormatKey contextKey = "format"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// WithExportID adds an export ID to the context.
func WithExportID(ctx context.Context, exportID string) context.Context {
	return context.WithValue(ctx, ExportIDKey, exportID)
}

// GetExportID retrieves the export ID from the context.
func GetExportID(ctx context.Context) string {
	return stringValue(ctx, ExportIDKey)
}

// WithSource adds a source type to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// GetSource retrieves the source type from the context.
func GetSource(ctx context.Context) string {
	return stringValue(ctx, SourceKey)
}

// WithFormat adds an export format to the context.
func WithFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, FormatKey, format)
}

// GetFormat retrieves the export format from the context.
func GetFormat(ctx context.Context) string {
	return stringValue(ctx, FormatKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// extractContextFields returns the context fields as key/value pairs in a
// fixed order.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	for _, key := range []contextKey{RequestIDKey, ExportIDKey, SourceKey, FormatKey} {
		if v := stringValue(ctx, key); v != "" {
			fields = append(fields, string(key), v)
		}
	}
	return fields
}
