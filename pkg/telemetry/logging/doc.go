// Package logging provides structured logging with PII redaction.
//
// The logger wraps log/slog. Its handler adds context fields (request_id,
// export_id, source, format) to every record logged with a context, and
// redacts values before they reach the output:
//
//   - values under customer-data keys (MSISDN, IMEI, FULL NAME, ...) are
//     masked entirely
//   - 8 to 15 digit runs keep only their last four digits
//   - e-mails keep the first character and the domain
//   - bearer tokens, passwords and DSN credentials are replaced
//
// Install it as the process default so package-level slog calls are covered:
//
//	logger, err := logging.New(logging.FromConfig(&cfg.Telemetry.Logging, os.Stderr))
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithExportID(ctx, id)
//	slog.InfoContext(ctx, "export completed", "format", "pdf")
package logging
