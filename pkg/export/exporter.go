package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/records"
	"mercator-hq/converter/pkg/telemetry/tracing"
)

// Exporter encodes a record set in one format.
type Exporter interface {
	// Format is the format name, e.g. "xlsx".
	Format() string

	// Extension is the filename extension without the dot.
	Extension() string

	// ContentType is the MIME type of the output.
	ContentType() string

	// Export writes set to w. It returns records.ErrEmptyInput (wrapped in
	// *records.ExportError) if set is empty.
	Export(ctx context.Context, set records.RecordSet, w io.Writer) (*Result, error)
}

// Result summarizes a completed export.
type Result struct {
	Format  string `json:"format"`
	Records int    `json:"records"`
	Pages   int    `json:"pages,omitempty"`
	Bytes   int64  `json:"bytes"`
}

// Formats lists the supported export formats.
var Formats = []string{"xlsx", "pdf", "csv", "json", "html"}

// New creates the exporter for format. The tracer may be nil.
func New(format string, cfg *config.ExportConfig, tracer *tracing.Tracer) (Exporter, error) {
	switch format {
	case "xlsx":
		return NewXLSXExporter(cfg.SheetName, cfg.MinColumnWidth), nil
	case "pdf":
		return NewPDFExporter(cfg.PDF, tracer), nil
	case "csv":
		return NewCSVExporter(true), nil
	case "json":
		return NewJSONExporter(true), nil
	case "html":
		return NewHTMLExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// Filename returns "<prefix>_<YYYY-MM-DD>.<ext>" for the UTC date of now.
func Filename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.UTC().Format("2006-01-02"), ext)
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
