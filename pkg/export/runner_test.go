package export

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/history"
	"mercator-hq/converter/pkg/records"
	"mercator-hq/converter/pkg/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

var exportDay = time.Date(2024, 1, 23, 13, 16, 0, 0, time.UTC)

func newTestRunner(t *testing.T, holder *records.Holder, opts ...RunnerOption) (*Runner, *history.MemoryStore) {
	t.Helper()
	store := history.NewMemoryStore(10)
	base := []RunnerOption{
		WithHistory(store),
		WithClock(func() time.Time { return exportDay }),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	}
	return NewRunner(defaultExportConfig(), holder, append(base, opts...)...), store
}

func TestRunner_Export(t *testing.T) {
	holder := records.NewHolder()
	holder.Replace(customerSet(1))
	runner, store := newTestRunner(t, holder)

	out, err := runner.Export(context.Background(), "xlsx")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Filename != "customer_data_2024-01-23.xlsx" {
		t.Errorf("filename = %q", out.Filename)
	}
	if out.Bytes != int64(len(out.Data)) || out.Records != 1 {
		t.Errorf("unexpected output: records=%d bytes=%d data=%d", out.Records, out.Bytes, len(out.Data))
	}
	if runner.Exporting() {
		t.Error("export flag should be cleared")
	}

	entries, _ := store.List(context.Background(), 0)
	if len(entries) != 1 || entries[0].Status != history.StatusSuccess || entries[0].ID != out.ID {
		t.Errorf("unexpected history: %+v", entries)
	}
	if entries[0].Source != "sample" {
		t.Errorf("history source = %q", entries[0].Source)
	}
}

func TestRunner_EmptyInput(t *testing.T) {
	collector := metrics.NewCollector(&config.MetricsConfig{
		Enabled:         true,
		Path:            "/metrics",
		Namespace:       "test",
		DurationBuckets: []float64{0.1, 1},
	}, nil)
	runner, store := newTestRunner(t, records.NewHolder(), WithMetrics(collector))
	dir := t.TempDir()

	for _, format := range []string{"xlsx", "pdf"} {
		_, _, err := runner.ExportToDir(context.Background(), format, dir)
		if !errors.Is(err, records.ErrEmptyInput) {
			t.Fatalf("%s: expected ErrEmptyInput, got %v", format, err)
		}
	}

	files, _ := os.ReadDir(dir)
	if len(files) != 0 {
		t.Errorf("empty export left files behind: %v", files)
	}

	entries, _ := store.List(context.Background(), 0)
	if len(entries) != 2 || entries[0].Status != history.StatusEmpty {
		t.Errorf("unexpected history: %+v", entries)
	}

	expected := `
# HELP test_exports_total Total number of exports by format and status
# TYPE test_exports_total counter
test_exports_total{format="pdf",status="empty"} 1
test_exports_total{format="xlsx",status="empty"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "test_exports_total"); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestRunner_ExportToDir(t *testing.T) {
	holder := records.NewHolder()
	holder.Replace(customerSet(1))
	runner, store := newTestRunner(t, holder)
	dir := filepath.Join(t.TempDir(), "exports")

	first, out, err := runner.ExportToDir(context.Background(), "pdf", dir)
	if err != nil {
		t.Fatalf("ExportToDir failed: %v", err)
	}
	if filepath.Base(first) != "customer_data_2024-01-23.pdf" {
		t.Errorf("path = %q", first)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	if !bytes.Equal(data, out.Data) {
		t.Error("file contents differ from output")
	}

	// A second export on the same day replaces the file.
	second, _, err := runner.ExportToDir(context.Background(), "pdf", dir)
	if err != nil {
		t.Fatalf("second export failed: %v", err)
	}
	if second != first {
		t.Errorf("same day should reuse the filename: %q vs %q", second, first)
	}

	files, _ := os.ReadDir(dir)
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", f.Name())
		}
	}
	if len(files) != 1 {
		t.Errorf("expected one file, got %d", len(files))
	}

	entries, _ := store.List(context.Background(), 1)
	if entries[0].Path != first || entries[0].Pages != 1 {
		t.Errorf("unexpected history entry: %+v", entries[0])
	}
}

func TestRunner_Busy(t *testing.T) {
	holder := records.NewHolder()
	holder.Replace(customerSet(1))
	runner, store := newTestRunner(t, holder)

	release, err := holder.BeginExport()
	if err != nil {
		t.Fatalf("BeginExport failed: %v", err)
	}

	if _, err := runner.Export(context.Background(), "csv"); !errors.Is(err, records.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	entries, _ := store.List(context.Background(), 0)
	if len(entries) != 0 {
		t.Error("rejected export should not be recorded")
	}

	release()
	if _, err := runner.Export(context.Background(), "csv"); err != nil {
		t.Errorf("export after release failed: %v", err)
	}
}

func TestRunner_UnknownFormat(t *testing.T) {
	runner, _ := newTestRunner(t, records.NewHolder())
	if _, err := runner.Export(context.Background(), "docx"); err == nil {
		t.Error("expected error for unknown format")
	}
	if runner.Exporting() {
		t.Error("unknown format must not hold the export flag")
	}
}

func TestRunner_Reconfigure(t *testing.T) {
	holder := records.NewHolder()
	holder.Replace(customerSet(1))
	runner, _ := newTestRunner(t, holder)

	cfg := defaultExportConfig()
	cfg.FilenamePrefix = "subscribers"
	runner.Reconfigure(cfg)

	out, err := runner.Export(context.Background(), "json")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Filename != "subscribers_2024-01-23.json" {
		t.Errorf("filename = %q", out.Filename)
	}
}

func TestRunner_RasterTooLarge(t *testing.T) {
	holder := records.NewHolder()
	holder.Replace(customerSet(2000))
	runner, store := newTestRunner(t, holder)

	cfg := defaultExportConfig()
	cfg.PDF.MaxRasterPixels = 1_000_000
	runner.Reconfigure(cfg)
	dir := t.TempDir()

	_, _, err := runner.ExportToDir(context.Background(), "pdf", dir)
	if !errors.Is(err, records.ErrRenderFailure) || !errors.Is(err, ErrRasterTooLarge) {
		t.Fatalf("expected raster-too-large render failure, got %v", err)
	}
	if runner.Exporting() {
		t.Error("export flag should be cleared after failure")
	}

	files, _ := os.ReadDir(dir)
	if len(files) != 0 {
		t.Errorf("failed export left files behind: %v", files)
	}

	entries, _ := store.List(context.Background(), 0)
	if len(entries) != 1 || entries[0].Status != history.StatusFailed {
		t.Errorf("unexpected history: %+v", entries)
	}
}
