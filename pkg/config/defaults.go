package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultCORSMaxAge      = 3600

	// Source defaults
	DefaultSourceType  = "sample"
	DefaultFetchDelay  = time.Second
	DefaultHTTPMethod  = "GET"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultSQLTimeout  = 30 * time.Second

	// Export defaults
	DefaultOutputDir      = "."
	DefaultFilenamePrefix = "customer_data"
	DefaultSheetName      = "Customer Data"
	DefaultMinColumnWidth = 15
	DefaultPlaceholder    = "EMPTY"
	DefaultPDFLayout      = "raster"
	DefaultPDFColumnUnit  = 120
	DefaultPDFMinWidth    = 1000
	DefaultPDFScale       = 2
	DefaultPDFPageHeight  = 295.0
	DefaultPDFImageWidth  = 210.0

	DefaultPDFMaxRasterPixels = 100_000_000

	// History defaults
	DefaultHistoryEnabled    = true
	DefaultHistoryBackend    = "memory"
	DefaultHistoryLimit      = 100
	DefaultHistorySQLitePath = "data/history.db"
	DefaultSQLiteBusyTimeout = 5 * time.Second
	DefaultSQLiteWALMode     = true

	// Secrets defaults
	DefaultSecretsEnvPrefix = "CONVERTER_SECRET_"
	DefaultSecretsCacheTTL  = 5 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultLoggingRedactPII    = true
	DefaultMetricsEnabled      = true
	DefaultPrometheusPath      = "/metrics"
	DefaultMetricsNamespace    = "converter"
	DefaultTracingEnabled      = false
	DefaultTracingSamplingRate = 1.0
	DefaultTracingServiceName  = "converter"
)

// DefaultDurationBuckets are the default histogram buckets in seconds.
var DefaultDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// NewDefaultConfig returns a Config with every default applied, including
// boolean defaults that ApplyDefaults cannot infer from zero values.
// Files are decoded on top of it so omitted keys keep their defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.History.Enabled = DefaultHistoryEnabled
	cfg.History.SQLite.WALMode = DefaultSQLiteWALMode
	cfg.Telemetry.Logging.RedactPII = DefaultLoggingRedactPII
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Enabled = DefaultTracingEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	applyCORSDefaults(&cfg.Server.CORS)

	// Source defaults
	if cfg.Source.Type == "" {
		cfg.Source.Type = DefaultSourceType
	}
	if cfg.Source.FetchDelay == 0 {
		cfg.Source.FetchDelay = DefaultFetchDelay
	}
	if cfg.Source.HTTP.Method == "" {
		cfg.Source.HTTP.Method = DefaultHTTPMethod
	}
	if cfg.Source.HTTP.Timeout == 0 {
		cfg.Source.HTTP.Timeout = DefaultHTTPTimeout
	}
	if cfg.Source.SQL.Timeout == 0 {
		cfg.Source.SQL.Timeout = DefaultSQLTimeout
	}

	applyExportDefaults(&cfg.Export)

	// History defaults
	if cfg.History.Backend == "" {
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.Limit == 0 {
		cfg.History.Limit = DefaultHistoryLimit
	}
	if cfg.History.SQLite.Path == "" {
		cfg.History.SQLite.Path = DefaultHistorySQLitePath
	}
	if cfg.History.SQLite.BusyTimeout == 0 {
		cfg.History.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Secrets defaults
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	if cfg.Secrets.CacheTTL == 0 {
		cfg.Secrets.CacheTTL = DefaultSecretsCacheTTL
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}

func applyExportDefaults(cfg *ExportConfig) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.FilenamePrefix == "" {
		cfg.FilenamePrefix = DefaultFilenamePrefix
	}
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if cfg.MinColumnWidth == 0 {
		cfg.MinColumnWidth = DefaultMinColumnWidth
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = DefaultPlaceholder
	}

	pdf := &cfg.PDF
	if pdf.Layout == "" {
		pdf.Layout = DefaultPDFLayout
	}
	if pdf.ColumnUnit == 0 {
		pdf.ColumnUnit = DefaultPDFColumnUnit
	}
	if pdf.MinWidth == 0 {
		pdf.MinWidth = DefaultPDFMinWidth
	}
	if pdf.Scale == 0 {
		pdf.Scale = DefaultPDFScale
	}
	if pdf.PageHeightMM == 0 {
		pdf.PageHeightMM = DefaultPDFPageHeight
	}
	if pdf.ImageWidthMM == 0 {
		pdf.ImageWidthMM = DefaultPDFImageWidth
	}
	if pdf.MaxRasterPixels == 0 {
		pdf.MaxRasterPixels = DefaultPDFMaxRasterPixels
	}
}

// applyCORSDefaults fills list defaults. Enabled stays as configured.
func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID", "Content-Disposition"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
