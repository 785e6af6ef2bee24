package export

import (
	"image"
	"image/color"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var (
	headerFill = color.RGBA{R: 41, G: 128, B: 185, A: 255}
	borderLine = color.Black
	bodyText   = color.Black
	headerText = color.White
)

// TableLayout is a table laid out in pixels at 1x density.
type TableLayout struct {
	Width  int
	Height int

	// ColumnX holds the left edge of every column plus the right edge of
	// the last one.
	ColumnX []int

	// RowY holds the top edge of the header, of every body row, and the
	// bottom edge of the last row.
	RowY []int

	// Cells holds the wrapped lines of every cell; row 0 is the header.
	Cells [][][]string
}

// Pixels returns the pixel count of the layout rasterized at scale.
func (l TableLayout) Pixels(scale int) int64 {
	scale = max(scale, 1)
	return int64(l.Width) * int64(scale) * int64(l.Height) * int64(scale)
}

// LayoutTable lays out headers and rows across width pixels using face.
// Columns share the width equally; text wraps on spaces and long words break
// anywhere.
func LayoutTable(face font.Face, headers []string, rows [][]string, width int) TableLayout {
	lineHeight := face.Metrics().Height.Ceil()
	cols := max(len(headers), 1)

	layout := TableLayout{Width: width, ColumnX: make([]int, cols+1)}
	for i := 0; i <= cols; i++ {
		layout.ColumnX[i] = i * (width - 1) / cols
	}

	all := append([][]string{headers}, rows...)
	y := 0
	for r, row := range all {
		pad := CellPadding
		if r == 0 {
			pad = HeaderPadding
		}

		lines := 1
		cells := make([][]string, cols)
		for c := 0; c < cols; c++ {
			text := ""
			if c < len(row) {
				text = row[c]
			}
			inner := layout.ColumnX[c+1] - layout.ColumnX[c] - 2*pad
			cells[c] = wrapText(face, text, inner)
			lines = max(lines, len(cells[c]))
		}

		layout.RowY = append(layout.RowY, y)
		layout.Cells = append(layout.Cells, cells)
		y += lines*lineHeight + 2*pad
	}
	layout.RowY = append(layout.RowY, y)
	layout.Height = y + 1
	return layout
}

// Rasterize draws layout with the face it was laid out with and scales it by
// scale with nearest-neighbour sampling.
func Rasterize(face font.Face, layout TableLayout, scale int) *image.RGBA {
	base := image.NewRGBA(image.Rect(0, 0, layout.Width, layout.Height))
	draw.Draw(base, base.Bounds(), image.White, image.Point{}, draw.Src)

	lineHeight := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	for r, cells := range layout.Cells {
		top, bottom := layout.RowY[r], layout.RowY[r+1]
		pad := CellPadding
		fg := image.NewUniform(bodyText)
		if r == 0 {
			pad = HeaderPadding
			fg = image.NewUniform(headerText)
			draw.Draw(base, image.Rect(0, top, layout.Width, bottom), image.NewUniform(headerFill), image.Point{}, draw.Src)
		}

		for c, lines := range cells {
			left := layout.ColumnX[c]
			d := &font.Drawer{Dst: base, Src: fg, Face: face}
			for i, line := range lines {
				d.Dot = fixed.P(left+pad, top+pad+ascent+i*lineHeight)
				d.DrawString(line)
			}
		}
	}

	for _, x := range layout.ColumnX {
		fillRect(base, image.Rect(x, 0, x+1, layout.Height))
	}
	for _, y := range layout.RowY {
		fillRect(base, image.Rect(0, y, layout.Width, y+1))
	}

	if scale <= 1 {
		return base
	}
	scaled := image.NewRGBA(image.Rect(0, 0, layout.Width*scale, layout.Height*scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), base, base.Bounds(), draw.Src, nil)
	return scaled
}

func fillRect(dst *image.RGBA, r image.Rectangle) {
	draw.Draw(dst, r, image.NewUniform(borderLine), image.Point{}, draw.Src)
}

// wrapText splits text into lines no wider than width pixels.
func wrapText(face font.Face, text string, width int) []string {
	if text == "" {
		return []string{""}
	}
	limit := fixed.I(max(width, 1))

	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if font.MeasureString(face, candidate) <= limit {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		for font.MeasureString(face, word) > limit {
			n := fitPrefix(face, word, limit)
			lines = append(lines, word[:n])
			word = word[n:]
		}
		line = word
	}
	if line != "" || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}

// fitPrefix returns the byte length of the longest prefix of s that fits in
// limit, and at least one rune.
func fitPrefix(face font.Face, s string, limit fixed.Int26_6) int {
	var width fixed.Int26_6
	prev := rune(-1)
	for i, r := range s {
		if prev >= 0 {
			width += face.Kern(prev, r)
		}
		adv, _ := face.GlyphAdvance(r)
		width += adv
		if width > limit {
			if i == 0 {
				_, size := utf8.DecodeRuneInString(s)
				return size
			}
			return i
		}
		prev = r
	}
	return len(s)
}
