package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/history"
	"mercator-hq/converter/pkg/records"
	"mercator-hq/converter/pkg/telemetry/logging"
	"mercator-hq/converter/pkg/telemetry/metrics"
	"mercator-hq/converter/pkg/telemetry/tracing"

	"github.com/google/uuid"
)

// Output is a completed, fully buffered export.
type Output struct {
	Result

	// ID identifies the export in logs and history.
	ID string

	// Filename is the suggested file name.
	Filename string

	// ContentType is the MIME type of Data.
	ContentType string

	// Data holds the encoded document.
	Data []byte
}

// Runner exports the record set held by a holder. Only one export runs at a
// time; a concurrent call returns records.ErrBusy.
type Runner struct {
	holder  *records.Holder
	history history.Store
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *slog.Logger
	now     func() time.Time

	mu  sync.RWMutex
	cfg config.ExportConfig
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithHistory records every export attempt in store.
func WithHistory(store history.Store) RunnerOption {
	return func(r *Runner) { r.history = store }
}

// WithMetrics records export metrics on c.
func WithMetrics(c *metrics.Collector) RunnerOption {
	return func(r *Runner) { r.metrics = c }
}

// WithTracer creates a span per export.
func WithTracer(t *tracing.Tracer) RunnerOption {
	return func(r *Runner) { r.tracer = t }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithClock overrides the time source used for filenames.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a runner exporting from holder.
func NewRunner(cfg *config.ExportConfig, holder *records.Holder, opts ...RunnerOption) *Runner {
	r := &Runner{
		holder:  holder,
		history: history.NopStore{},
		now:     time.Now,
		cfg:     *cfg,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "export")
	}
	return r
}

// Reconfigure applies a reloaded export configuration to later exports.
func (r *Runner) Reconfigure(cfg *config.ExportConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = *cfg
}

// Config returns the current export configuration.
func (r *Runner) Config() config.ExportConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Exporting reports whether an export is in flight.
func (r *Runner) Exporting() bool {
	return r.holder.Exporting()
}

// Export encodes the held set in format and returns the buffered output.
func (r *Runner) Export(ctx context.Context, format string) (*Output, error) {
	return r.run(ctx, format, nil)
}

// ExportToDir encodes the held set and writes it to dir under the export
// filename. The file is written to a temporary name and renamed on success,
// so a failed export leaves no file behind. It returns the final path.
func (r *Runner) ExportToDir(ctx context.Context, format, dir string) (string, *Output, error) {
	var path string
	out, err := r.run(ctx, format, func(out *Output) (string, error) {
		p, err := writeFileAtomic(dir, out.Filename, out.Data)
		path = p
		return p, err
	})
	if err != nil {
		return "", nil, err
	}
	return path, out, nil
}

// run holds the export flag from encoding until sink returns.
func (r *Runner) run(ctx context.Context, format string, sink func(*Output) (string, error)) (*Output, error) {
	cfg := r.Config()

	exporter, err := New(format, &cfg, r.tracer)
	if err != nil {
		return nil, err
	}

	release, err := r.holder.BeginExport()
	if err != nil {
		r.metrics.RecordExport(format, metrics.StatusBusy, 0, 0, 0)
		r.logger.WarnContext(ctx, "export rejected, another export is running", "format", format)
		return nil, err
	}
	defer release()

	id := uuid.NewString()
	ctx = logging.WithExportID(logging.WithFormat(ctx, format), id)
	ctx, span := r.tracer.Start(ctx, "export."+format)

	set := r.holder.Current()
	filename := Filename(cfg.FilenamePrefix, exporter.Extension(), r.now())
	entry := &history.Entry{
		ID:       id,
		Format:   format,
		Filename: filename,
		Source:   set.Source,
		Records:  set.Len(),
	}

	start := time.Now()
	var buf bytes.Buffer
	result, err := exporter.Export(ctx, set, &buf)

	var path string
	if err == nil && sink != nil {
		out := &Output{Result: *result, ID: id, Filename: filename, ContentType: exporter.ContentType(), Data: buf.Bytes()}
		if path, err = sink(out); err != nil {
			err = records.NewRenderError(format, set.Len(), err)
		}
	}
	duration := time.Since(start)
	entry.Duration = duration
	entry.Path = path

	if err != nil {
		status := metrics.StatusError
		entry.Status = history.StatusFailed
		if errors.Is(err, records.ErrEmptyInput) {
			status = metrics.StatusEmpty
			entry.Status = history.StatusEmpty
			r.logger.WarnContext(ctx, "nothing to export, fetch data first")
		} else {
			r.logger.ErrorContext(ctx, "export failed", "duration", duration, "error", err)
		}
		entry.Error = err.Error()
		r.metrics.RecordExport(format, status, duration, 0, 0)
		r.recordHistory(ctx, entry)
		tracing.End(span, err)
		return nil, err
	}

	result.Bytes = int64(buf.Len())
	entry.Status = history.StatusSuccess
	entry.Pages = result.Pages
	entry.Bytes = result.Bytes

	r.metrics.RecordExport(format, metrics.StatusSuccess, duration, result.Pages, result.Bytes)
	r.recordHistory(ctx, entry)
	tracing.SetExportAttributes(span, format, result.Records, result.Pages, result.Bytes)
	tracing.End(span, nil)

	r.logger.InfoContext(ctx, "export completed",
		"filename", filename,
		"records", result.Records,
		"pages", result.Pages,
		"bytes", result.Bytes,
		"duration", duration,
	)

	return &Output{
		Result:      *result,
		ID:          id,
		Filename:    filename,
		ContentType: exporter.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func (r *Runner) recordHistory(ctx context.Context, entry *history.Entry) {
	if err := r.history.Record(ctx, entry); err != nil {
		r.logger.WarnContext(ctx, "failed to record export history", "error", err)
	}
}

// History returns up to limit recent export entries.
func (r *Runner) History(ctx context.Context, limit int) ([]history.Entry, error) {
	return r.history.List(ctx, limit)
}

// writeFileAtomic writes data to dir/name through a temporary file.
func writeFileAtomic(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return path, nil
}
