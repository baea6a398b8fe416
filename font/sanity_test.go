package font

import (
	"testing"

	"github.com/phosphor-art/phosphor/glyphart"
)

// blankSource is a glyphart.Source whose every glyph renders empty,
// standing in for a font whose decode silently produced nothing.
type blankSource struct{ height int }

func (blankSource) HasGlyph(ch rune) bool { return true }
func (s blankSource) Glyph(ch rune) (glyphart.Glyph, bool) {
	return glyphart.Glyph{Width: 1, Height: s.height}, true
}
func (blankSource) SpaceFallbackWidth() int { return 1 }

// inkSource renders every glyph as a single 'X' cell, so probeText
// produces visible ink.
type inkSource struct{}

func (inkSource) HasGlyph(ch rune) bool { return true }
func (inkSource) Glyph(ch rune) (glyphart.Glyph, bool) {
	return glyphart.Glyph{Width: 1, Height: 1, Parts: []glyphart.Part{{Kind: glyphart.PartChar, Ch: 'X'}}}, true
}
func (inkSource) SpaceFallbackWidth() int { return 1 }

func TestCheckGlyphSourceFlagsBlankFont(t *testing.T) {
	res := CheckGlyphSource(blankSource{height: 1})
	if res.OK {
		t.Error("expected a font that renders no ink to fail")
	}
}

func TestCheckGlyphSourceAcceptsInkyFont(t *testing.T) {
	res := CheckGlyphSource(inkSource{})
	if !res.OK {
		t.Errorf("expected a font with ink to pass, got reasons: %v", res.Reasons)
	}
}

func TestCheckEmbeddedFontFlagsMostlyBlankPage(t *testing.T) {
	bitmap := make([]byte, 256*16) // every glyph all-zero
	f := &EmbeddedFont{CellW: 9, CellH: 16, GlyphCount: 256, Bitmap: bitmap}
	res := CheckEmbeddedFont(f)
	if res.OK {
		t.Error("expected an entirely blank font page to fail")
	}
}

func TestCheckEmbeddedFontAcceptsNormalFont(t *testing.T) {
	f := &EmbeddedFont{CellW: 9, CellH: 16, GlyphCount: 256, Bitmap: box9x16Bitmap(256)}
	res := CheckEmbeddedFont(f)
	if !res.OK {
		t.Errorf("expected a fully-inked font to pass, got reasons: %v", res.Reasons)
	}
}

func TestFingerprintIsOrderIndependent(t *testing.T) {
	a := Fingerprint([]string{"flf:a", "tdf:b"})
	b := Fingerprint([]string{"tdf:b", "flf:a"})
	if a != b {
		t.Error("expected fingerprint to be independent of input order")
	}
}

func TestSanityCacheValidateMarksComplete(t *testing.T) {
	c := NewSanityCache()
	sources := map[string]glyphart.Source{
		"flf:good": inkSource{},
		"flf:bad":  blankSource{height: 1},
	}
	fp := Fingerprint([]string{"flf:good", "flf:bad"})
	c.Validate(sources, fp)

	if !c.Complete {
		t.Fatal("expected cache to be marked complete after Validate")
	}
	if c.Stale(fp) {
		t.Error("expected cache to not be stale against the fingerprint it was validated with")
	}
	if !c.IsBroken("flf:bad") {
		t.Error("expected flf:bad to be recorded broken")
	}
	if c.IsBroken("flf:good") {
		t.Error("expected flf:good to not be recorded broken")
	}
}

func TestSanityCacheStaleOnFingerprintChange(t *testing.T) {
	c := NewSanityCache()
	c.Validate(map[string]glyphart.Source{"flf:a": inkSource{}}, Fingerprint([]string{"flf:a"}))
	if c.Stale(Fingerprint([]string{"flf:a"})) {
		t.Error("expected cache to be fresh against its own fingerprint")
	}
	if !c.Stale(Fingerprint([]string{"flf:a", "flf:b"})) {
		t.Error("expected cache to be stale once the font set changes")
	}
}
