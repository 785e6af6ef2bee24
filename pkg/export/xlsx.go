package export

import (
	"context"
	"io"
	"unicode/utf8"

	"mercator-hq/converter/pkg/records"

	"github.com/xuri/excelize/v2"
)

// XLSXExporter writes a single-sheet workbook.
type XLSXExporter struct {
	// SheetName names the only worksheet.
	SheetName string

	// MinColumnWidth is the column width floor in characters.
	MinColumnWidth int
}

// NewXLSXExporter creates a spreadsheet exporter.
func NewXLSXExporter(sheetName string, minColumnWidth int) *XLSXExporter {
	return &XLSXExporter{SheetName: sheetName, MinColumnWidth: minColumnWidth}
}

// Format implements Exporter.
func (e *XLSXExporter) Format() string { return "xlsx" }

// Extension implements Exporter.
func (e *XLSXExporter) Extension() string { return "xlsx" }

// ContentType implements Exporter.
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export writes the header row from the first record's field names and one
// row per record in the same column order.
func (e *XLSXExporter) Export(ctx context.Context, set records.RecordSet, w io.Writer) (*Result, error) {
	if set.IsEmpty() {
		return nil, records.NewEmptyInputError(e.Format())
	}
	fail := func(err error) (*Result, error) {
		return nil, records.NewRenderError(e.Format(), set.Len(), err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := e.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fail(err)
	}

	headers := set.Headers()
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fail(err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fail(err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fail(err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fail(err)
	}

	for i, row := range set.Rows() {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fail(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fail(err)
		}
	}

	for i, width := range ColumnWidths(headers, e.MinColumnWidth) {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fail(err)
		}
		if err := f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return fail(err)
		}
	}

	cw := &countingWriter{w: w}
	if _, err := f.WriteTo(cw); err != nil {
		return fail(err)
	}

	return &Result{Format: e.Format(), Records: set.Len(), Bytes: cw.n}, nil
}

// ColumnWidths returns max(len(header), floor) in characters per column.
func ColumnWidths(headers []string, floor int) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(utf8.RuneCountInString(h), floor)
	}
	return widths
}
