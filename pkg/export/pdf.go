package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"strings"
	"sync"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/records"
	"mercator-hq/converter/pkg/telemetry/tracing"

	"github.com/go-pdf/fpdf"
)

// ErrRasterTooLarge is returned when the raster would exceed
// export.pdf.max_raster_pixels.
var ErrRasterTooLarge = errors.New("raster too large")

const (
	rasterImageName = "table"
	tableFontFamily = "body"

	tableMargin   = 10.0
	tableLineH    = 4.0
	tableCellPad  = 1.0
	tableFontSize = 8.0
)

// rasterPool holds the buffers that carry the encoded raster between
// rasterization and page assembly.
var rasterPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// PDFExporter writes a landscape A4 document.
type PDFExporter struct {
	config config.PDFConfig
	tracer *tracing.Tracer
}

// NewPDFExporter creates a document exporter. The tracer may be nil.
func NewPDFExporter(cfg config.PDFConfig, tracer *tracing.Tracer) *PDFExporter {
	return &PDFExporter{config: cfg, tracer: tracer}
}

// Format implements Exporter.
func (e *PDFExporter) Format() string { return "pdf" }

// Extension implements Exporter.
func (e *PDFExporter) Extension() string { return "pdf" }

// ContentType implements Exporter.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Export implements Exporter using the configured layout.
func (e *PDFExporter) Export(ctx context.Context, set records.RecordSet, w io.Writer) (*Result, error) {
	if set.IsEmpty() {
		return nil, records.NewEmptyInputError(e.Format())
	}

	fonts, err := LoadFonts(e.config.FontPath)
	if err != nil {
		return nil, records.NewRenderError(e.Format(), set.Len(), err)
	}

	var doc *fpdf.Fpdf
	switch e.config.Layout {
	case "table":
		doc, err = e.tableDocument(set, fonts)
	default:
		doc, err = e.rasterDocument(ctx, set, fonts)
	}
	if err != nil {
		return nil, records.NewRenderError(e.Format(), set.Len(), err)
	}

	pages := doc.PageCount()
	cw := &countingWriter{w: w}
	if err := doc.Output(cw); err != nil {
		return nil, records.NewRenderError(e.Format(), set.Len(), err)
	}

	return &Result{Format: e.Format(), Records: set.Len(), Pages: pages, Bytes: cw.n}, nil
}

// rasterDocument lays the table out at RenderWidth, rasterizes it at the
// configured scale and slices the image across pages.
func (e *PDFExporter) rasterDocument(ctx context.Context, set records.RecordSet, fonts *Fonts) (*fpdf.Fpdf, error) {
	headers := set.Headers()
	width := RenderWidth(len(headers), e.config.ColumnUnit, e.config.MinWidth)

	face, err := fonts.Face(rasterFontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	layout := LayoutTable(face, headers, set.Rows(), width)
	if limit := e.config.MaxRasterPixels; limit > 0 && layout.Pixels(e.config.Scale) > int64(limit) {
		return nil, fmt.Errorf("%w: %dx%d px at scale %d exceeds max_raster_pixels %d, use the table layout",
			ErrRasterTooLarge, layout.Width*e.config.Scale, layout.Height*e.config.Scale, e.config.Scale, limit)
	}

	buf := rasterPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		rasterPool.Put(buf)
	}()

	_, span := e.tracer.Start(ctx, "export.rasterize")
	img := Rasterize(face, layout, e.config.Scale)
	err = png.Encode(buf, img)
	tracing.SetRasterAttributes(span, img.Bounds().Dx(), img.Bounds().Dy())
	tracing.End(span, err)
	if err != nil {
		return nil, fmt.Errorf("failed to encode raster: %w", err)
	}

	_, span = e.tracer.Start(ctx, "export.paginate")
	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(rasterImageName, opt, bytes.NewReader(buf.Bytes()))

	imgHeight := ImageHeight(img.Bounds().Dx(), img.Bounds().Dy(), e.config.ImageWidthMM)
	for _, offset := range PageOffsets(imgHeight, e.config.PageHeightMM) {
		doc.AddPage()
		doc.ImageOptions(rasterImageName, 0, offset, e.config.ImageWidthMM, imgHeight, false, opt, 0, "")
	}

	err = doc.Error()
	tracing.End(span, err)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble document: %w", err)
	}
	return doc, nil
}

// tableDocument writes the table as text cells with the primary font,
// repeating the header row on every page.
func (e *PDFExporter) tableDocument(set records.RecordSet, fonts *Fonts) (*fpdf.Fpdf, error) {
	headers := set.Headers()

	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(tableMargin, tableMargin, tableMargin)
	doc.AddUTF8FontFromBytes(tableFontFamily, "", fonts.TrueType())
	doc.SetFont(tableFontFamily, "", tableFontSize)
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("failed to load font %s: %w", fonts.Name, err)
	}

	pageW, pageH := doc.GetPageSize()
	colW := (pageW - 2*tableMargin) / float64(len(headers))

	rowHeight := func(cells []string) float64 {
		lines := 1
		for _, c := range cells {
			lines = max(lines, len(doc.SplitText(pdfText(c), colW)))
		}
		return float64(lines)*tableLineH + 2*tableCellPad
	}

	drawRow := func(cells []string, y float64, header bool) float64 {
		if header {
			doc.SetFillColor(41, 128, 185)
			doc.SetTextColor(255, 255, 255)
		} else {
			doc.SetTextColor(0, 0, 0)
		}

		h := rowHeight(cells)
		style := "D"
		if header {
			style = "FD"
		}
		for i, c := range cells {
			x := tableMargin + float64(i)*colW
			doc.Rect(x, y, colW, h, style)
			doc.SetXY(x, y+tableCellPad)
			doc.MultiCell(colW, tableLineH, pdfText(c), "", "L", false)
		}
		return h
	}

	doc.AddPage()
	y := tableMargin + drawRow(headers, tableMargin, true)

	for _, row := range set.Rows() {
		if y+rowHeight(row) > pageH-tableMargin {
			doc.AddPage()
			y = tableMargin + drawRow(headers, tableMargin, true)
		}
		y += drawRow(row, y, false)
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("failed to assemble document: %w", err)
	}
	return doc, nil
}

// pdfText replaces runes outside the Basic Multilingual Plane, which the PDF
// writer's width table cannot index.
func pdfText(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return '\uFFFD'
		}
		return r
	}, s)
}
