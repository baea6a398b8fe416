package tdf

import (
	"encoding/binary"
	"testing"

	"github.com/phosphor-art/phosphor/glyphart"
)

// buildBundle assembles a minimal single-font TDF bundle with one glyph
// (for '!', the first lookup slot) whose body is "AB" on one row.
func buildBundle(t *testing.T, ftype byte, glyphBody []byte) []byte {
	t.Helper()
	var b []byte
	b = append(b, idLen)
	b = append(b, []byte(idString)...)
	b = append(b, ctrlZ)

	// record
	ind := make([]byte, 4)
	binary.LittleEndian.PutUint32(ind, fontIndicator)
	b = append(b, ind...)
	name := "TESTFONT"
	b = append(b, byte(len(name)))
	nameField := make([]byte, 12)
	copy(nameField, name)
	b = append(b, nameField...)
	b = append(b, 0, 0, 0, 0) // reserved
	b = append(b, ftype)
	b = append(b, 1) // spacing

	// block: glyph 0 ('!') at offset 0, rest invalid (0xFFFF)
	glyph := append([]byte{byte(len("AB")), 1}, glyphBody...) // width, height, body
	glyph = append(glyph, 0)                                  // terminator
	block := glyph

	blockSize := make([]byte, 2)
	binary.LittleEndian.PutUint16(blockSize, uint16(len(block)))
	b = append(b, blockSize...)

	lookup := make([]byte, charTableSize*2)
	for i := 0; i < charTableSize; i++ {
		binary.LittleEndian.PutUint16(lookup[i*2:i*2+2], invalidGlyph)
	}
	binary.LittleEndian.PutUint16(lookup[0:2], 0) // '!' -> offset 0
	b = append(b, lookup...)

	b = append(b, block...)
	b = append(b, 0) // bundle terminator
	return b
}

func TestParseBundleBlockGlyph(t *testing.T) {
	data := buildBundle(t, 1, []byte("AB"))
	fonts, err := ParseBundle(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(fonts) != 1 {
		t.Fatalf("expected 1 font, got %d", len(fonts))
	}
	f := fonts[0]
	if f.Name != "TESTFONT" {
		t.Errorf("name: got %q", f.Name)
	}
	if f.Type != TypeBlock {
		t.Errorf("expected block type")
	}
	if !f.HasGlyph('!') {
		t.Fatal("expected '!' glyph present")
	}
	g, ok := f.Glyph('!')
	if !ok {
		t.Fatal("expected glyph decode to succeed")
	}
	if g.Width != 2 || g.Height != 1 {
		t.Errorf("dims: got %dx%d", g.Width, g.Height)
	}
	var chars []rune
	for _, p := range g.Parts {
		if p.Kind == glyphart.PartChar {
			chars = append(chars, p.Ch)
		}
	}
	if string(chars) != "AB" {
		t.Errorf("expected glyph chars AB, got %q", string(chars))
	}
}

func TestHasGlyphFalseOutsideRange(t *testing.T) {
	data := buildBundle(t, 1, []byte("AB"))
	fonts, err := ParseBundle(data)
	if err != nil {
		t.Fatal(err)
	}
	f := fonts[0]
	if f.HasGlyph('a') {
		t.Error("expected no glyph for uncovered rune")
	}
}

func TestInvalidIndicatorRejected(t *testing.T) {
	data := buildBundle(t, 1, []byte("AB"))
	data[20] ^= 0xFF
	if _, err := ParseBundle(data); err == nil {
		t.Error("expected error for corrupted indicator")
	}
}

func TestTruncatedHeaderRejected(t *testing.T) {
	if _, err := ParseBundle([]byte("short")); err == nil {
		t.Error("expected error for truncated header")
	}
}
