package export

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// rasterFontSize is the text size in pixels at 1x density.
const rasterFontSize = 11

// SystemFontPaths are probed in order when no font is configured.
var SystemFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	`C:\Windows\Fonts\arial.ttf`,
}

// Fonts is a parsed font chain. The first font draws every rune it has a
// glyph for; Go Regular is always last.
type Fonts struct {
	// Name identifies the primary font, a path or "goregular".
	Name string

	primary []byte
	fonts   []*sfnt.Font
}

var (
	fontsMu    sync.Mutex
	fontsCache = map[string]*Fonts{}
)

// LoadFonts returns the chain for path, parsing each path once per process.
// An empty path probes SystemFontPaths.
func LoadFonts(path string) (*Fonts, error) {
	fontsMu.Lock()
	defer fontsMu.Unlock()

	if f, ok := fontsCache[path]; ok {
		return f, nil
	}
	f, err := loadFonts(path)
	if err != nil {
		return nil, err
	}
	fontsCache[path] = f
	return f, nil
}

func loadFonts(path string) (*Fonts, error) {
	fallback, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}

	if path != "" {
		data, parsed, err := readFont(path)
		if err != nil {
			return nil, err
		}
		return &Fonts{Name: path, primary: data, fonts: []*sfnt.Font{parsed, fallback}}, nil
	}

	for _, candidate := range SystemFontPaths {
		data, parsed, err := readFont(candidate)
		if err != nil {
			continue
		}
		return &Fonts{Name: candidate, primary: data, fonts: []*sfnt.Font{parsed, fallback}}, nil
	}
	return &Fonts{Name: "goregular", primary: goregular.TTF, fonts: []*sfnt.Font{fallback}}, nil
}

func readFont(path string) ([]byte, *sfnt.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read font: %w", err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return data, parsed, nil
}

// TrueType returns the bytes of the primary font for embedding in a PDF.
func (f *Fonts) TrueType() []byte {
	return f.primary
}

// Covers reports whether some font in the chain has a glyph for r.
func (f *Fonts) Covers(r rune) bool {
	var buf sfnt.Buffer
	for _, fnt := range f.fonts {
		if x, err := fnt.GlyphIndex(&buf, r); err == nil && x != 0 {
			return true
		}
	}
	return false
}

// Face returns a face drawing text at size pixels. Faces are not safe for
// concurrent use; create one per rasterization.
func (f *Fonts) Face(size float64) (font.Face, error) {
	c := &chainFace{fonts: f.fonts}
	for _, fnt := range f.fonts {
		face, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create font face: %w", err)
		}
		c.faces = append(c.faces, face)
	}
	return c, nil
}

// chainFace draws each rune with the first face whose font has a glyph for
// it, and with the primary face's missing-glyph box otherwise.
type chainFace struct {
	fonts []*sfnt.Font
	faces []font.Face
	buf   sfnt.Buffer
}

func (c *chainFace) pick(r rune) font.Face {
	for i, fnt := range c.fonts {
		if x, err := fnt.GlyphIndex(&c.buf, r); err == nil && x != 0 {
			return c.faces[i]
		}
	}
	return c.faces[0]
}

func (c *chainFace) Close() error {
	var errs []error
	for _, f := range c.faces {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

func (c *chainFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	return c.pick(r).Glyph(dot, r)
}

func (c *chainFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	return c.pick(r).GlyphBounds(r)
}

func (c *chainFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	return c.pick(r).GlyphAdvance(r)
}

func (c *chainFace) Kern(r0, r1 rune) fixed.Int26_6 {
	f := c.pick(r0)
	if f != c.pick(r1) {
		return 0
	}
	return f.Kern(r0, r1)
}

// Metrics returns the primary metrics widened to fit every face.
func (c *chainFace) Metrics() font.Metrics {
	m := c.faces[0].Metrics()
	for _, f := range c.faces[1:] {
		o := f.Metrics()
		m.Height = max(m.Height, o.Height)
		m.Ascent = max(m.Ascent, o.Ascent)
		m.Descent = max(m.Descent, o.Descent)
	}
	return m
}
