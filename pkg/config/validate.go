package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Known option values.
var (
	SourceTypes   = []string{"sample", "http", "file", "sql"}
	SQLDrivers    = []string{"sqlite", "postgres", "mysql"}
	PDFLayouts    = []string{"raster", "table"}
	HistoryStores = []string{"memory", "sqlite"}
)

var envPrefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Excel rejects these characters in worksheet names.
const invalidSheetChars = `[]:*?/\`

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateSource(&cfg.Source)...)
	errs = append(errs, validateExport(&cfg.Export)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateSecrets(&cfg.Secrets)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "read timeout must be positive"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "write timeout must be positive"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.idle_timeout", Message: "idle timeout must be positive"})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{Field: "server.cors.max_age", Message: "max age must be non-negative"})
	}

	return errs
}

func validateSource(cfg *SourceConfig) []FieldError {
	var errs []FieldError

	if !contains(SourceTypes, cfg.Type) {
		errs = append(errs, FieldError{
			Field:   "source.type",
			Message: fmt.Sprintf("invalid source type %q: must be one of %s", cfg.Type, strings.Join(SourceTypes, ", ")),
		})
	}

	if cfg.FetchDelay < 0 {
		errs = append(errs, FieldError{Field: "source.fetch_delay", Message: "fetch delay must be non-negative"})
	}

	switch cfg.Type {
	case "http":
		errs = append(errs, validateHTTPSource(&cfg.HTTP)...)
	case "file":
		if cfg.File.Path == "" {
			errs = append(errs, FieldError{Field: "source.file.path", Message: "file path is required for file source"})
		} else if ext := strings.ToLower(filepath.Ext(cfg.File.Path)); ext != ".json" && ext != ".csv" {
			errs = append(errs, FieldError{
				Field:   "source.file.path",
				Message: fmt.Sprintf("unsupported file extension %q: must be .json or .csv", ext),
			})
		}
	case "sql":
		if !contains(SQLDrivers, cfg.SQL.Driver) {
			errs = append(errs, FieldError{
				Field:   "source.sql.driver",
				Message: fmt.Sprintf("invalid driver %q: must be one of %s", cfg.SQL.Driver, strings.Join(SQLDrivers, ", ")),
			})
		}
		if cfg.SQL.DSN == "" {
			errs = append(errs, FieldError{Field: "source.sql.dsn", Message: "dsn is required for sql source"})
		}
		if strings.TrimSpace(cfg.SQL.Query) == "" {
			errs = append(errs, FieldError{Field: "source.sql.query", Message: "query is required for sql source"})
		}
		if cfg.SQL.Timeout < 0 {
			errs = append(errs, FieldError{Field: "source.sql.timeout", Message: "timeout must be non-negative"})
		}
	}

	if cfg.Refresh.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Refresh.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "source.refresh.schedule",
				Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.Refresh.Schedule, err),
			})
		}
	}

	return errs
}

func validateHTTPSource(cfg *HTTPSourceConfig) []FieldError {
	var errs []FieldError

	if cfg.URL == "" {
		errs = append(errs, FieldError{Field: "source.http.url", Message: "url is required for http source"})
	} else if u, err := url.Parse(cfg.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "source.http.url",
			Message: fmt.Sprintf("invalid url %q: must be an absolute http or https URL", cfg.URL),
		})
	}

	method := strings.ToUpper(cfg.Method)
	if method != "GET" && method != "POST" {
		errs = append(errs, FieldError{
			Field:   "source.http.method",
			Message: fmt.Sprintf("invalid method %q: must be GET or POST", cfg.Method),
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "source.http.timeout", Message: "timeout must be non-negative"})
	}

	return errs
}

func validateExport(cfg *ExportConfig) []FieldError {
	var errs []FieldError

	if cfg.FilenamePrefix == "" {
		errs = append(errs, FieldError{Field: "export.filename_prefix", Message: "filename prefix is required"})
	} else if strings.ContainsAny(cfg.FilenamePrefix, `/\`) {
		errs = append(errs, FieldError{
			Field:   "export.filename_prefix",
			Message: "filename prefix must not contain path separators",
		})
	}

	switch n := utf8.RuneCountInString(cfg.SheetName); {
	case n == 0:
		errs = append(errs, FieldError{Field: "export.sheet_name", Message: "sheet name is required"})
	case n > 31:
		errs = append(errs, FieldError{Field: "export.sheet_name", Message: "sheet name must be at most 31 characters"})
	}
	if strings.ContainsAny(cfg.SheetName, invalidSheetChars) {
		errs = append(errs, FieldError{
			Field:   "export.sheet_name",
			Message: fmt.Sprintf("sheet name must not contain any of %s", invalidSheetChars),
		})
	}

	if cfg.MinColumnWidth < 1 || cfg.MinColumnWidth > 255 {
		errs = append(errs, FieldError{
			Field:   "export.min_column_width",
			Message: "min column width must be between 1 and 255",
		})
	}

	pdf := &cfg.PDF
	if !contains(PDFLayouts, pdf.Layout) {
		errs = append(errs, FieldError{
			Field:   "export.pdf.layout",
			Message: fmt.Sprintf("invalid layout %q: must be 'raster' or 'table'", pdf.Layout),
		})
	}
	if pdf.ColumnUnit <= 0 {
		errs = append(errs, FieldError{Field: "export.pdf.column_unit", Message: "column unit must be positive"})
	}
	if pdf.MinWidth <= 0 {
		errs = append(errs, FieldError{Field: "export.pdf.min_width", Message: "min width must be positive"})
	}
	if pdf.Scale < 1 || pdf.Scale > 4 {
		errs = append(errs, FieldError{Field: "export.pdf.scale", Message: "scale must be between 1 and 4"})
	}
	if pdf.PageHeightMM <= 0 {
		errs = append(errs, FieldError{Field: "export.pdf.page_height_mm", Message: "page height must be positive"})
	}
	if pdf.ImageWidthMM <= 0 {
		errs = append(errs, FieldError{Field: "export.pdf.image_width_mm", Message: "image width must be positive"})
	}
	if pdf.MaxRasterPixels < 0 {
		errs = append(errs, FieldError{Field: "export.pdf.max_raster_pixels", Message: "max raster pixels must be non-negative"})
	}
	if pdf.FontPath != "" {
		if info, err := os.Stat(pdf.FontPath); err != nil {
			errs = append(errs, FieldError{Field: "export.pdf.font_path", Message: fmt.Sprintf("cannot access font: %v", err)})
		} else if !info.Mode().IsRegular() {
			errs = append(errs, FieldError{Field: "export.pdf.font_path", Message: "path is not a regular file"})
		}
	}

	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	if !contains(HistoryStores, cfg.Backend) {
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{Field: "history.sqlite.path", Message: "path is required for sqlite backend"})
	}
	if cfg.Limit < 0 {
		errs = append(errs, FieldError{Field: "history.limit", Message: "limit must be non-negative"})
	}
	if cfg.SQLite.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "history.sqlite.busy_timeout", Message: "busy timeout must be non-negative"})
	}

	return errs
}

func validateSecrets(cfg *SecretsConfig) []FieldError {
	var errs []FieldError

	if cfg.EnvPrefix != "" && !envPrefixPattern.MatchString(cfg.EnvPrefix) {
		errs = append(errs, FieldError{
			Field:   "secrets.env_prefix",
			Message: fmt.Sprintf("invalid prefix %q: use upper-case letters, digits and underscores", cfg.EnvPrefix),
		})
	}
	if cfg.Dir != "" {
		info, err := os.Stat(cfg.Dir)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: "secrets.dir", Message: fmt.Sprintf("cannot access directory: %v", err)})
		case !info.IsDir():
			errs = append(errs, FieldError{Field: "secrets.dir", Message: "path is not a directory"})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		field := fmt.Sprintf("telemetry.logging.redact_patterns[%d]", i)
		if p.Name == "" {
			errs = append(errs, FieldError{Field: field + ".name", Message: "pattern name is required"})
		}
		if _, err := regexp.Compile(p.Pattern); err != nil || p.Pattern == "" {
			errs = append(errs, FieldError{Field: field + ".pattern", Message: "pattern must be a valid regular expression"})
		}
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
	}
	for i := 1; i < len(cfg.Metrics.DurationBuckets); i++ {
		if cfg.Metrics.DurationBuckets[i] <= cfg.Metrics.DurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
