package font

import "github.com/phosphor-art/phosphor/phosphorerr"

// EmbeddedGlyphBase is the first codepoint of the private-use range a
// document's embedded bitmap font occupies. A codepoint in
// [EmbeddedGlyphBase, EmbeddedGlyphBase+GlyphCount) addresses one of the
// embedded glyphs directly; everything else falls back to the document's
// named font (a SAUCE field).
const EmbeddedGlyphBase = 0xE000

// vga9ColDupLow and vga9ColDupHigh bound the glyph index range VGA's
// 9-dot text modes duplicate column 7 into column 8 for (the box-drawing
// block), rather than blanking it.
const (
	vga9ColDupLow  = 192
	vga9ColDupHigh = 223
)

// EmbeddedFont is a document-carried 1-bpp bitmap font: GlyphCount fixed
// CellW x CellH glyphs, one byte per row (bit 7 is column 0), the same
// packing xbin.DecodeFont/EncodeFont read and write on the wire.
type EmbeddedFont struct {
	CellW      int
	CellH      int
	GlyphCount int
	VGA9ColDup bool
	Bitmap     []byte
}

// NewEmbeddedFontFromXBin wraps the raw font bytes xbin.DecodeFont
// returns into an EmbeddedFont, inferring GlyphCount from mode512 and
// defaulting to a 9-pixel VGA cell with column-7 duplication, the layout
// every XBin font payload assumes.
func NewEmbeddedFontFromXBin(bitmap []byte, fontHeight uint8, mode512 bool) (*EmbeddedFont, error) {
	glyphCount := 256
	if mode512 {
		glyphCount = 512
	}
	f := &EmbeddedFont{
		CellW:      9,
		CellH:      int(fontHeight),
		GlyphCount: glyphCount,
		VGA9ColDup: true,
		Bitmap:     append([]byte(nil), bitmap...),
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// XBinBitmap returns a copy of f's raw row bytes, the form
// xbin.EncodeFont expects.
func (f *EmbeddedFont) XBinBitmap() []byte {
	return append([]byte(nil), f.Bitmap...)
}

// Mode512 reports whether f covers the 512-glyph XBin font page, which
// xbin.PackAttr/UnpackAttr need to know to interpret the font-page bit.
func (f *EmbeddedFont) Mode512() bool { return f.GlyphCount > 256 }

// Validate reports whether f's bitmap length matches GlyphCount*CellH
// and its dimensions are within the format's bounds. xbin.ParseHeader
// enforces the same FontHeight<=32 bound on decode; Validate re-checks
// it here so an EmbeddedFont built or mutated outside that path can't
// carry a bitmap its own Row/Bit accessors would read out of bounds.
func (f *EmbeddedFont) Validate() error {
	if f == nil {
		return nil
	}
	if f.CellH <= 0 || f.CellH > 32 {
		return phosphorerr.ErrMalformedFile
	}
	if f.GlyphCount != 256 && f.GlyphCount != 512 {
		return phosphorerr.ErrMalformedFile
	}
	if len(f.Bitmap) != f.GlyphCount*f.CellH {
		return phosphorerr.ErrMalformedFile
	}
	return nil
}

// Row returns glyph g's raw row bytes at the given row, or 0 if either
// index is out of range.
func (f *EmbeddedFont) Row(glyph, row int) byte {
	if glyph < 0 || glyph >= f.GlyphCount || row < 0 || row >= f.CellH {
		return 0
	}
	return f.Bitmap[glyph*f.CellH+row]
}

// Bit reports whether glyph g's pixel at (row, col) is set. Column is
// MSB-first (bit 7 of the row byte is column 0). When VGA9ColDup is set
// and CellW is 9, column 8 of a glyph in [192,223] reads back column 7
// instead of the always-blank ninth bit, matching VGA's 9-dot text-mode
// font rendering for the box-drawing block.
func (f *EmbeddedFont) Bit(glyph, row, col int) bool {
	if col < 0 || col >= f.CellW {
		return false
	}
	if f.VGA9ColDup && f.CellW == 9 && col == 8 {
		if glyph >= vga9ColDupLow && glyph <= vga9ColDupHigh {
			col = 7
		} else {
			return false
		}
	}
	if col > 7 {
		return false
	}
	return f.Row(glyph, row)&(1<<uint(7-col)) != 0
}

// IsEmbeddedGlyphRune is the centralized test for "does this codepoint
// address one of the document's embedded bitmap glyphs rather than the
// document's named font." Every caller that needs to tell the two
// glyph sources apart goes through this rather than re-deriving the
// range check.
func IsEmbeddedGlyphRune(f *EmbeddedFont, r rune) bool {
	if f == nil {
		return false
	}
	return r >= EmbeddedGlyphBase && int(r-EmbeddedGlyphBase) < f.GlyphCount
}

// EmbeddedGlyphIndex returns r's glyph index into f.Bitmap and true, or
// (0, false) if r doesn't address an embedded glyph.
func EmbeddedGlyphIndex(f *EmbeddedFont, r rune) (int, bool) {
	if !IsEmbeddedGlyphRune(f, r) {
		return 0, false
	}
	return int(r - EmbeddedGlyphBase), true
}

// EmbeddedGlyphRune returns the codepoint addressing glyph index idx, or
// (0, false) if idx is outside f's glyph range.
func EmbeddedGlyphRune(f *EmbeddedFont, idx int) (rune, bool) {
	if f == nil || idx < 0 || idx >= f.GlyphCount {
		return 0, false
	}
	return EmbeddedGlyphBase + rune(idx), true
}
