package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "CONVERTER_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of the defaults, so omitted keys keep their
// default values. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CONVERTER_SECTION_FIELD (e.g., CONVERTER_SERVER_LISTEN_ADDRESS).
//
// The loading sequence is:
// 1. Start from defaults
// 2. Decode the YAML file on top
// 3. Apply environment variable overrides
// 4. Validate final configuration
//
// An empty path skips step 2.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if cfg, err = parse(data); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ResolvePath returns path if the file exists. When the file is missing and
// optional is true, it returns "" so loading falls back to defaults.
func ResolvePath(path string, optional bool) (string, error) {
	if path == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("configuration file %q: %w", path, err)
	}
	return path, nil
}

func parse(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Malformed values are ignored and the file value is kept.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envInt("SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)
	envBool("SERVER_CORS_ENABLED", &cfg.Server.CORS.Enabled)

	// Source overrides
	envString("SOURCE_TYPE", &cfg.Source.Type)
	envDuration("SOURCE_FETCH_DELAY", &cfg.Source.FetchDelay)
	envString("SOURCE_HTTP_URL", &cfg.Source.HTTP.URL)
	envString("SOURCE_HTTP_METHOD", &cfg.Source.HTTP.Method)
	envString("SOURCE_HTTP_DATA_PATH", &cfg.Source.HTTP.DataPath)
	envDuration("SOURCE_HTTP_TIMEOUT", &cfg.Source.HTTP.Timeout)
	envString("SOURCE_FILE_PATH", &cfg.Source.File.Path)
	envString("SOURCE_SQL_DRIVER", &cfg.Source.SQL.Driver)
	envString("SOURCE_SQL_DSN", &cfg.Source.SQL.DSN)
	envString("SOURCE_SQL_QUERY", &cfg.Source.SQL.Query)
	envDuration("SOURCE_SQL_TIMEOUT", &cfg.Source.SQL.Timeout)
	envString("SOURCE_REFRESH_SCHEDULE", &cfg.Source.Refresh.Schedule)

	// Export overrides
	envString("EXPORT_OUTPUT_DIR", &cfg.Export.OutputDir)
	envString("EXPORT_FILENAME_PREFIX", &cfg.Export.FilenamePrefix)
	envString("EXPORT_SHEET_NAME", &cfg.Export.SheetName)
	envInt("EXPORT_MIN_COLUMN_WIDTH", &cfg.Export.MinColumnWidth)
	envString("EXPORT_PLACEHOLDER", &cfg.Export.Placeholder)
	envString("EXPORT_PDF_LAYOUT", &cfg.Export.PDF.Layout)
	envInt("EXPORT_PDF_SCALE", &cfg.Export.PDF.Scale)
	envString("EXPORT_PDF_FONT_PATH", &cfg.Export.PDF.FontPath)
	envInt("EXPORT_PDF_MAX_RASTER_PIXELS", &cfg.Export.PDF.MaxRasterPixels)

	// History overrides
	envBool("HISTORY_ENABLED", &cfg.History.Enabled)
	envString("HISTORY_BACKEND", &cfg.History.Backend)
	envInt("HISTORY_LIMIT", &cfg.History.Limit)
	envString("HISTORY_SQLITE_PATH", &cfg.History.SQLite.Path)

	// Secrets overrides
	envString("SECRETS_ENV_PREFIX", &cfg.Secrets.EnvPrefix)
	envString("SECRETS_DIR", &cfg.Secrets.Dir)
	envDuration("SECRETS_CACHE_TTL", &cfg.Secrets.CacheTTL)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_LOGGING_REDACT_PII", &cfg.Telemetry.Logging.RedactPII)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envBool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
	envFloat("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)

	envBool("WATCH", &cfg.Watch)
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envFloat(key string, dst *float64) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}
