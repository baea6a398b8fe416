package xbin

import (
	"testing"

	"github.com/phosphor-art/phosphor/color"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Width: 80, Height: 25, FontHeight: 16, HasPalette: true, Compressed: true, NonBlink: true}
	data := EncodeHeader(h)
	got, n, err := ParseHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	if n != 11 {
		t.Errorf("expected 11 bytes consumed, got %d", n)
	}
	if got != h {
		t.Errorf("header round trip mismatch: got %+v want %+v", got, h)
	}
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	data := append([]byte("NOPE!"), make([]byte, 10)...)
	if _, _, err := ParseHeader(data); err == nil {
		t.Error("expected error for bad magic")
	}
}

func TestPaletteRoundTrip6Bit(t *testing.T) {
	var pal [16]color.Color32
	for i := range pal {
		pal[i] = color.RGB(uint8(i*16), uint8(255-i*16), 128)
	}
	data := EncodePalette(pal)
	got, n, err := DecodePalette(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 48 {
		t.Errorf("expected 48 bytes consumed, got %d", n)
	}
	// 6-bit quantization means exact equality isn't guaranteed; check the
	// round trip is at least within one 6-bit step per channel.
	for i := range pal {
		r0, g0, b0 := pal[i].Channels()
		r1, g1, b1 := got[i].Channels()
		if absDiff(r0, r1) > 4 || absDiff(g0, g1) > 4 || absDiff(b0, b1) > 4 {
			t.Errorf("palette entry %d drifted too far: got (%d,%d,%d) want (%d,%d,%d)", i, r1, g1, b1, r0, g0, b0)
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestImageRoundTripUncompressed(t *testing.T) {
	width, height := 3, 2
	cp := []byte{'A', 'B', 'X', 'C', 'D', 'X'}
	attrs := []byte{0x07, 0x09, 0x07, 0x47, 0x49, 0x47}

	encoded := EncodeImage(cp, attrs, width, height, false)
	gotCP, gotAttrs, _, err := DecodeImage(encoded, 0, width, height, false)
	if err != nil {
		t.Fatal(err)
	}
	if string(gotCP) != string(cp) {
		t.Errorf("cp mismatch: got %v want %v", gotCP, cp)
	}
	if string(gotAttrs) != string(attrs) {
		t.Errorf("attrs mismatch: got %v want %v", gotAttrs, attrs)
	}
}

func TestImageRoundTripCompressed(t *testing.T) {
	width, height := 10, 3
	cp := make([]byte, width*height)
	attrs := make([]byte, width*height)
	for i := range cp {
		cp[i] = 'A' + byte(i%5)
		attrs[i] = byte(i % 3)
	}
	// Force some genuine repeats within a row to exercise RLE runs.
	for i := 0; i < width; i++ {
		cp[i] = 'Z'
		attrs[i] = 0x47
	}

	encoded := EncodeImage(cp, attrs, width, height, true)
	gotCP, gotAttrs, _, err := DecodeImage(encoded, 0, width, height, true)
	if err != nil {
		t.Fatal(err)
	}
	if string(gotCP) != string(cp) {
		t.Errorf("cp mismatch after RLE round trip")
	}
	if string(gotAttrs) != string(attrs) {
		t.Errorf("attrs mismatch after RLE round trip")
	}
}

func TestPackUnpackAttrNonBlink(t *testing.T) {
	a := PackAttr(9, 7, true, false)
	fg, bg, page := UnpackAttr(a, true, false)
	if fg != 9 || bg != 7 || page != 0 {
		t.Errorf("got fg=%d bg=%d page=%d, want fg=9 bg=7 page=0", fg, bg, page)
	}
}

func TestPackUnpackAttrMode512LimitsForeground(t *testing.T) {
	a := PackAttr(15, 5, true, true)
	fg, _, _ := UnpackAttr(a, true, true)
	if fg > 7 {
		t.Errorf("expected mode512 foreground clamped to 0..7, got %d", fg)
	}
}

// Scenario 5: XBin round trip (spec.md §8).
func TestXBinFullDocumentRoundTrip(t *testing.T) {
	h := Header{Width: 3, Height: 2, FontHeight: 16, NonBlink: true}
	cp := []byte{'A', 'B', ' ', 'C', 'D', ' '}
	attrs := []byte{
		PackAttr(7, 0, true, false), PackAttr(9, 0, true, false), 0,
		PackAttr(7, 4, true, false), PackAttr(9, 4, true, false), 0,
	}
	doc := &Document{Header: h, CP: cp, Attrs: attrs}

	encoded := Encode(doc)
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Header.Width != 3 || decoded.Header.Height != 2 {
		t.Fatalf("unexpected dims w=%d h=%d", decoded.Header.Width, decoded.Header.Height)
	}
	if decoded.Header.HasPalette {
		t.Error("expected palette absent")
	}
	if !decoded.Header.NonBlink {
		t.Error("expected nonblink flag preserved")
	}
	if string(decoded.CP) != string(cp) {
		t.Errorf("cp mismatch: got %v want %v", decoded.CP, cp)
	}
	for i := range attrs {
		if decoded.Attrs[i] != attrs[i] {
			t.Errorf("attr %d mismatch: got 0x%02X want 0x%02X", i, decoded.Attrs[i], attrs[i])
		}
	}
	fg, bg, _ := UnpackAttr(decoded.Attrs[0], true, false)
	if fg != 7 || bg != 0 {
		t.Errorf("cell 0 indices: got fg=%d bg=%d want fg=7 bg=0", fg, bg)
	}
}
