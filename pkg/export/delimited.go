package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"

	"mercator-hq/converter/pkg/records"
)

// CSVExporter writes a header row and one row per record.
type CSVExporter struct {
	// IncludeHeader includes a header row with the field names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Format implements Exporter.
func (e *CSVExporter) Format() string { return "csv" }

// Extension implements Exporter.
func (e *CSVExporter) Extension() string { return "csv" }

// ContentType implements Exporter.
func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

// Export implements Exporter.
func (e *CSVExporter) Export(ctx context.Context, set records.RecordSet, w io.Writer) (*Result, error) {
	if set.IsEmpty() {
		return nil, records.NewEmptyInputError(e.Format())
	}

	cw := &countingWriter{w: w}
	writer := csv.NewWriter(cw)

	if e.IncludeHeader {
		if err := writer.Write(set.Headers()); err != nil {
			return nil, records.NewRenderError(e.Format(), set.Len(), err)
		}
	}
	for _, row := range set.Rows() {
		if err := writer.Write(row); err != nil {
			return nil, records.NewRenderError(e.Format(), set.Len(), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, records.NewRenderError(e.Format(), set.Len(), err)
	}
	return &Result{Format: e.Format(), Records: set.Len(), Bytes: cw.n}, nil
}

// JSONExporter writes an array of objects with keys in field order.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Format implements Exporter.
func (e *JSONExporter) Format() string { return "json" }

// Extension implements Exporter.
func (e *JSONExporter) Extension() string { return "json" }

// ContentType implements Exporter.
func (e *JSONExporter) ContentType() string { return "application/json" }

// Export implements Exporter.
func (e *JSONExporter) Export(ctx context.Context, set records.RecordSet, w io.Writer) (*Result, error) {
	if set.IsEmpty() {
		return nil, records.NewEmptyInputError(e.Format())
	}

	var (
		data []byte
		err  error
	)
	if e.Pretty {
		data, err = json.MarshalIndent(set.Records, "", "  ")
	} else {
		data, err = json.Marshal(set.Records)
	}
	if err != nil {
		return nil, records.NewRenderError(e.Format(), set.Len(), err)
	}

	n, err := w.Write(append(data, '\n'))
	if err != nil {
		return nil, records.NewRenderError(e.Format(), set.Len(), err)
	}
	return &Result{Format: e.Format(), Records: set.Len(), Bytes: int64(n)}, nil
}
