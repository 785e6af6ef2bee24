package config

import "time"

// Config is the root configuration structure for the converter.
// It contains the HTTP server, data source, export, history and telemetry
// sections.
type Config struct {
	// Server contains HTTP server configuration for the preview page and API.
	Server ServerConfig `yaml:"server"`

	// Source selects and configures the backend that produces record sets.
	Source SourceConfig `yaml:"source"`

	// Export contains spreadsheet and document export settings.
	Export ExportConfig `yaml:"export"`

	// History configures the log of completed and failed exports.
	History HistoryConfig `yaml:"history"`

	// Secrets configures resolution of ${secret:name} references in source
	// credentials.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Watch enables hot reload of this configuration file.
	// Default: false
	Watch bool `yaml:"watch"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Document exports are rendered before the first byte is
	// written, so this bounds render time as well.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists allowed origins. Use ["*"] to allow all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists allowed request headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders lists headers readable by the client.
	// Default: ["X-Request-ID", "Content-Disposition"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// SourceConfig selects the data source.
type SourceConfig struct {
	// Type is the registered source type.
	// Options: "sample", "http", "file", "sql"
	// Default: "sample"
	Type string `yaml:"type"`

	// FetchDelay is the simulated latency of the sample source.
	// Default: 1s
	FetchDelay time.Duration `yaml:"fetch_delay"`

	// HTTP configures the http source.
	HTTP HTTPSourceConfig `yaml:"http"`

	// File configures the file source.
	File FileSourceConfig `yaml:"file"`

	// SQL configures the sql source.
	SQL SQLSourceConfig `yaml:"sql"`

	// Refresh configures periodic re-fetching.
	Refresh RefreshConfig `yaml:"refresh"`
}

// HTTPSourceConfig configures a JSON-over-HTTP backend.
type HTTPSourceConfig struct {
	// URL is the backend endpoint. ${secret:name} references are allowed
	// in the path and query.
	URL string `yaml:"url"`

	// Method is the HTTP method, GET or POST.
	// Default: "GET"
	Method string `yaml:"method"`

	// Headers are sent with every request. Values may contain
	// ${secret:name} references.
	Headers map[string]string `yaml:"headers"`

	// DataPath is a dot-separated path to the record array inside the
	// response body (e.g., "data.customers"). Empty means the body itself.
	DataPath string `yaml:"data_path"`

	// Timeout bounds the whole request.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// FileSourceConfig configures a local file backend.
type FileSourceConfig struct {
	// Path is a .json or .csv file.
	Path string `yaml:"path"`
}

// SQLSourceConfig configures a database backend.
type SQLSourceConfig struct {
	// Driver is the database driver.
	// Options: "sqlite", "postgres", "mysql"
	Driver string `yaml:"driver"`

	// DSN is the driver-specific connection string. It may contain
	// ${secret:name} references.
	DSN string `yaml:"dsn"`

	// Query selects the records. Column order becomes field order.
	Query string `yaml:"query"`

	// Timeout bounds the query.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// RefreshConfig configures the refresh scheduler.
type RefreshConfig struct {
	// Schedule is a standard 5-field cron expression. Empty disables
	// scheduled refresh.
	Schedule string `yaml:"schedule"`
}

// ExportConfig contains export settings shared by all formats.
type ExportConfig struct {
	// OutputDir is where the CLI writes exported files.
	// Default: "."
	OutputDir string `yaml:"output_dir"`

	// FilenamePrefix is joined with the export date to name files.
	// Default: "customer_data"
	FilenamePrefix string `yaml:"filename_prefix"`

	// SheetName is the spreadsheet worksheet name.
	// Default: "Customer Data"
	SheetName string `yaml:"sheet_name"`

	// MinColumnWidth is the spreadsheet column width floor in characters.
	// Default: 15
	MinColumnWidth int `yaml:"min_column_width"`

	// Placeholder is shown in previews for empty values.
	// Default: "EMPTY"
	Placeholder string `yaml:"placeholder"`

	// PDF contains document export settings.
	PDF PDFConfig `yaml:"pdf"`
}

// PDFConfig contains document export settings.
type PDFConfig struct {
	// Layout selects how the table is placed on pages.
	// Options: "raster" (rasterized image sliced across pages),
	// "table" (native text table with repeated header)
	// Default: "raster"
	Layout string `yaml:"layout"`

	// ColumnUnit is the render width per field in layout units.
	// Default: 120
	ColumnUnit int `yaml:"column_unit"`

	// MinWidth is the minimum render width in layout units.
	// Default: 1000
	MinWidth int `yaml:"min_width"`

	// Scale is the rasterization pixel density.
	// Default: 2
	Scale int `yaml:"scale"`

	// PageHeightMM is the page height used for pagination.
	// Default: 295
	PageHeightMM float64 `yaml:"page_height_mm"`

	// ImageWidthMM is the placed image width.
	// Default: 210
	ImageWidthMM float64 `yaml:"image_width_mm"`

	// FontPath is a TrueType font used to draw table text in both layouts.
	// Empty uses the first installed system font found (DejaVu Sans, Noto
	// Sans, Liberation Sans, Arial), else the embedded Go Regular. Go Regular
	// also draws any rune the chosen font lacks in the raster layout.
	FontPath string `yaml:"font_path"`

	// MaxRasterPixels caps the scaled raster size (width x height). Larger
	// tables fail with a render error instead of exhausting memory; the
	// table layout has no such limit.
	// Default: 100000000
	MaxRasterPixels int `yaml:"max_raster_pixels"`
}

// HistoryConfig configures the export history store.
type HistoryConfig struct {
	// Enabled controls whether exports are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the store.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Limit caps the entries kept by the memory store and returned by listings.
	// Default: 100
	Limit int `yaml:"limit"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite-specific settings.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// BusyTimeout is the SQLite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`
}

// SecretsConfig configures where ${secret:name} references in
// source.http.url, source.http.headers and source.sql.dsn are looked up.
// Providers are tried in order: environment, then files.
type SecretsConfig struct {
	// EnvPrefix is prepended to the upper-cased secret name to form the
	// environment variable, so "backend-token" reads
	// CONVERTER_SECRET_BACKEND_TOKEN.
	// Default: "CONVERTER_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir is a directory holding one file per secret, named after the
	// secret, with mode 0600 or 0400. Empty disables file secrets.
	Dir string `yaml:"dir"`

	// CacheTTL is how long a resolved secret is reused. A negative value
	// disables caching.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII masks subscriber identifiers, e-mails and secrets in logs.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "converter"
	Namespace string `yaml:"namespace"`

	// Subsystem is inserted between namespace and metric name.
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets are histogram buckets in seconds.
	// Default: [0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address (e.g., "localhost:4317").
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces to sample.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "converter"
	ServiceName string `yaml:"service_name"`
}
