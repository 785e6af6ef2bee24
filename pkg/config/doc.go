// Package config provides configuration management for the converter.
//
// Configuration is read from a YAML file, overlaid with environment
// variables and validated. Every field has a default, so the converter runs
// with no file at all: the sample source, XLSX and raster PDF export,
// in-memory export history and JSON logs.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("config.yaml")              // file + defaults
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml") // + environment
//	cfg, err := config.LoadConfigWithEnvOverrides("")          // defaults + environment
//
// The file is decoded on top of NewDefaultConfig, so omitted keys, including
// booleans such as history.enabled, keep their defaults. Unknown keys are
// rejected.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CONVERTER_SECTION_FIELD:
//
//   - CONVERTER_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - CONVERTER_SOURCE_TYPE overrides source.type
//   - CONVERTER_EXPORT_PDF_LAYOUT overrides export.pdf.layout
//   - CONVERTER_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
// Malformed values (e.g., a duration that does not parse) are ignored.
//
// # Process-wide Instance
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//	    return err
//	}
//	config.SetConfig(cfg)
//
// ReloadConfig swaps the global instance only when the new file validates.
// FileWatcher calls it on every debounced change when watch is enabled.
// RestartRequired reports which changed sections the running process
// cannot apply.
//
// # Validation
//
// Validate collects every FieldError into a single ValidationError:
// source-type specific requirements (URL for http, path for file, driver,
// DSN and query for sql), cron syntax for source.refresh.schedule, Excel
// sheet name rules, PDF geometry, the secrets prefix and directory, and
// telemetry options.
package config
