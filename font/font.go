// Package font implements the engine's embedded 1-bpp bitmap font and a
// registry for loaded TheDraw/FIGlet fonts layered on top of it. The
// glyph storage shape — a fixed-height grid of MSB-first packed rows
// indexed by codepoint offset, with an explicit fallback glyph for
// anything outside the covered range — is grounded on
// cmd/font-editor/main.go's glyph editor and the bitmap lookup in
// render/renderer/splash.go (`asset.SplashFont[char-32]`,
// `asset.SplashFontFallback` for out-of-range runes).
package font

import "github.com/phosphor-art/phosphor/phosphorerr"

// GlyphRows is the fixed bitmap height of a built-in glyph.
const GlyphRows = 16

// GlyphCols is the fixed bitmap width of a built-in glyph.
const GlyphCols = 8

// MinRune and MaxRune bound the embedded font's printable ASCII range.
const (
	MinRune = 32
	MaxRune = 126
)

// Glyph is one character's bitmap: GlyphRows entries, each row's high
// GlyphCols bits set for an "on" pixel (MSB-first, bit GlyphRows-1 of
// the row is column 0).
type Glyph [GlyphRows]uint16

// Font is a named collection of glyphs addressed by rune, with a
// fallback glyph rendered for any rune the font doesn't cover.
type Font struct {
	Name     string
	Rows     int
	Cols     int
	glyphs   map[rune]Glyph
	fallback Glyph
}

// New creates an empty font of the given cell size with a blank
// fallback glyph.
func New(name string, rows, cols int) *Font {
	return &Font{Name: name, Rows: rows, Cols: cols, glyphs: make(map[rune]Glyph)}
}

// SetGlyph stores the bitmap for r.
func (f *Font) SetGlyph(r rune, g Glyph) { f.glyphs[r] = g }

// SetFallback sets the glyph rendered for runes the font doesn't cover.
func (f *Font) SetFallback(g Glyph) { f.fallback = g }

// Glyph returns r's bitmap, or the fallback if r isn't covered.
func (f *Font) Glyph(r rune) Glyph {
	if g, ok := f.glyphs[r]; ok {
		return g
	}
	return f.fallback
}

// Covers reports whether the font has an explicit glyph for r.
func (f *Font) Covers(r rune) bool {
	_, ok := f.glyphs[r]
	return ok
}

// RuneCount returns the number of explicitly covered runes.
func (f *Font) RuneCount() int { return len(f.glyphs) }

// Bit reports whether glyph g's pixel at (row, col) is set. Rows are
// packed MSB-first: bit 15 of a row is column 0, matching the engine's
// splash-renderer bitmap convention.
func Bit(g Glyph, row, col, cols int) bool {
	if row < 0 || row >= GlyphRows || col < 0 || col >= cols || col >= 16 {
		return false
	}
	return g[row]&(1<<uint(15-col)) != 0
}

// Builtin returns the engine's embedded default font: 16x8 glyphs over
// the printable ASCII range, MinRune..MaxRune.
func Builtin() *Font {
	f := New("builtin-16x8", GlyphRows, GlyphCols)
	for r := rune(MinRune); r <= MaxRune; r++ {
		f.SetGlyph(r, builtinGlyphs[r-MinRune])
	}
	f.SetFallback(fallbackGlyph)
	return f
}

// Registry holds fonts by name, with the built-in font always present
// under "builtin".
type Registry struct {
	fonts map[string]*Font
}

// NewRegistry creates a registry seeded with the built-in font.
func NewRegistry() *Registry {
	r := &Registry{fonts: make(map[string]*Font)}
	r.fonts["builtin"] = Builtin()
	return r
}

// Register adds or replaces a named font.
func (r *Registry) Register(f *Font) { r.fonts[f.Name] = f }

// Lookup returns the font registered under name, if any.
func (r *Registry) Lookup(name string) (*Font, error) {
	f, ok := r.fonts[name]
	if !ok {
		return nil, phosphorerr.ErrUnsupportedFeature
	}
	return f, nil
}

// Names returns every registered font name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.fonts))
	for n := range r.fonts {
		out = append(out, n)
	}
	return out
}
