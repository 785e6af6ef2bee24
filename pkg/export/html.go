package export

import (
	"bytes"
	"context"
	"html/template"
	"io"

	"mercator-hq/converter/pkg/records"
)

// Raster styling shared by the HTML table and the rasterizer.
const (
	HeaderBackground = "#2980b9"
	HeaderPadding    = 10
	CellPadding      = 8
)

var tableTemplate = template.Must(template.New("table").Parse(
	`<table style="border-collapse: collapse; width: {{.Width}}px; font-family: Arial, sans-serif;">
<thead><tr>{{range .Headers}}<th style="border: 1px solid #000; padding: {{$.HeaderPadding}}px; background-color: {{$.Background}}; color: #fff; text-align: left;">{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td style="border: 1px solid #000; padding: {{$.CellPadding}}px;">{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>`))

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Customer Data</title></head>
<body>
{{.}}
</body>
</html>
`))

type tableData struct {
	Width         int
	Headers       []string
	Rows          [][]string
	Background    string
	HeaderPadding int
	CellPadding   int
}

// HTMLTable renders set as a styled table of the given pixel width. Empty
// values render as empty cells.
func HTMLTable(set records.RecordSet, width int) (template.HTML, error) {
	var buf bytes.Buffer
	err := tableTemplate.Execute(&buf, tableData{
		Width:         width,
		Headers:       set.Headers(),
		Rows:          set.Rows(),
		Background:    HeaderBackground,
		HeaderPadding: HeaderPadding,
		CellPadding:   CellPadding,
	})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// RenderWidth returns max(fields*unit, minWidth).
func RenderWidth(fields, unit, minWidth int) int {
	return max(fields*unit, minWidth)
}

// HTMLExporter writes a standalone HTML document containing the table.
type HTMLExporter struct {
	// ColumnUnit and MinWidth size the table like the raster layout.
	ColumnUnit int
	MinWidth   int
}

// NewHTMLExporter creates an HTML exporter with the default table sizing.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{ColumnUnit: 120, MinWidth: 1000}
}

// Format implements Exporter.
func (e *HTMLExporter) Format() string { return "html" }

// Extension implements Exporter.
func (e *HTMLExporter) Extension() string { return "html" }

// ContentType implements Exporter.
func (e *HTMLExporter) ContentType() string { return "text/html; charset=utf-8" }

// Export implements Exporter.
func (e *HTMLExporter) Export(ctx context.Context, set records.RecordSet, w io.Writer) (*Result, error) {
	if set.IsEmpty() {
		return nil, records.NewEmptyInputError(e.Format())
	}

	table, err := HTMLTable(set, RenderWidth(len(set.Headers()), e.ColumnUnit, e.MinWidth))
	if err != nil {
		return nil, records.NewRenderError(e.Format(), set.Len(), err)
	}

	cw := &countingWriter{w: w}
	if err := documentTemplate.Execute(cw, table); err != nil {
		return nil, records.NewRenderError(e.Format(), set.Len(), err)
	}
	return &Result{Format: e.Format(), Records: set.Len(), Bytes: cw.n}, nil
}
