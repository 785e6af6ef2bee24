package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/converter/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid JSON config", Config{Level: "info", Format: "json", RedactPII: true}, false},
		{"valid text config", Config{Level: "debug", Format: "text"}, false},
		{"valid console config", Config{Level: "warn", Format: "console", RedactPII: true}, false},
		{"empty values default", Config{}, false},
		{"invalid log level", Config{Level: "invalid", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "invalid"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", line, err)
	}
	return entry
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "warn", Format: "json", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
	if logger.Level() != slog.LevelWarn {
		t.Errorf("Level() = %v, want warn", logger.Level())
	}
}

func TestLogger_RedactsCustomerFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", RedactPII: true, Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("records loaded",
		"MSISDN", "96899961669",
		"FULL NAME", "Maryam Ahmad",
		"note", "contact 96899961669 or maryam@example.com",
		"records", 1,
	)

	entry := decodeLine(t, buf)
	if entry["MSISDN"] != "96***" {
		t.Errorf("MSISDN = %v, want masked", entry["MSISDN"])
	}
	if entry["FULL NAME"] != "Ma***" {
		t.Errorf("FULL NAME = %v, want masked", entry["FULL NAME"])
	}
	note := entry["note"].(string)
	if strings.Contains(note, "96899961669") || strings.Contains(note, "maryam@") {
		t.Errorf("note not redacted: %q", note)
	}
	if !strings.Contains(note, "1669") {
		t.Errorf("expected last four digits kept: %q", note)
	}
	if entry["records"] != float64(1) {
		t.Errorf("records = %v, want 1", entry["records"])
	}
}

func TestLogger_RedactsErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", RedactPII: true, Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Error("fetch failed", "error", errors.New("dial postgres://app:hunter2@db:5432/crm"))

	entry := decodeLine(t, buf)
	if strings.Contains(entry["error"].(string), "hunter2") {
		t.Errorf("password leaked: %v", entry["error"])
	}
}

func TestLogger_NoRedaction(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", RedactPII: false, Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("raw", "MSISDN", "96899961669")
	if entry := decodeLine(t, buf); entry["MSISDN"] != "96899961669" {
		t.Errorf("MSISDN = %v, want unredacted", entry["MSISDN"])
	}
}

func TestLogger_ContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithExportID(ctx, "exp-9")
	logger.InfoContext(ctx, "export started")

	entry := decodeLine(t, buf)
	if entry["request_id"] != "req-123" || entry["export_id"] != "exp-9" {
		t.Errorf("missing context fields: %v", entry)
	}
}

func TestLogger_WithContextAndSlogDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", RedactPII: true, Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	child := logger.WithContext(WithSource(context.Background(), "sample")).With("component", "test")
	child.Info("hello", "IMEI", "32023201072783")

	entry := decodeLine(t, buf)
	if entry["source"] != "sample" || entry["component"] != "test" {
		t.Errorf("missing bound fields: %v", entry)
	}
	if entry["IMEI"] == "32023201072783" {
		t.Error("IMEI should be redacted")
	}

	// Logging through the slog.Logger takes the same path.
	buf.Reset()
	logger.Slog().With("IMSI", "422023201072783").Info("via slog")
	if entry := decodeLine(t, buf); entry["IMSI"] == "422023201072783" {
		t.Error("IMSI bound with With should be redacted")
	}
}

func TestLogger_ConsoleDropsTime(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "console", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("ready")
	if strings.Contains(buf.String(), "time=") {
		t.Errorf("console format should omit time: %q", buf.String())
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.LoggingConfig{
		Level:     "debug",
		Format:    "text",
		RedactPII: true,
		RedactPatterns: []config.RedactPattern{
			{Name: "ticket", Pattern: `TCK-\d+`, Replacement: "TCK-***"},
		},
	}

	lc := FromConfig(cfg, nil)
	if lc.Level != "debug" || lc.Format != "text" || !lc.RedactPII || len(lc.RedactPatterns) != 1 {
		t.Errorf("unexpected config: %+v", lc)
	}
}
