package main

import (
	"testing"

	"github.com/phosphor-art/phosphor/document"
	"github.com/phosphor-art/phosphor/font"
)

func TestDocumentXBinFontRoundTrip(t *testing.T) {
	doc := document.New(4, 2)
	bitmap := make([]byte, 256*16)
	bitmap[65*16] = 0xFF
	if err := doc.SetEmbeddedFont(&font.EmbeddedFont{CellW: 9, CellH: 16, GlyphCount: 256, VGA9ColDup: true, Bitmap: bitmap}); err != nil {
		t.Fatal(err)
	}

	xdoc := documentToXBin(doc)
	if !xdoc.Header.HasFont {
		t.Fatal("expected HasFont to be set once the document carries an embedded font")
	}
	if xdoc.Header.FontHeight != 16 {
		t.Errorf("expected font height 16, got %d", xdoc.Header.FontHeight)
	}

	back := xbinToDocument(xdoc)
	if back.Font == nil {
		t.Fatal("expected the embedded font to survive xbin -> document conversion")
	}
	if back.Font.Bitmap[65*16] != 0xFF {
		t.Errorf("expected glyph 65's bitmap byte to round-trip, got %#x", back.Font.Bitmap[65*16])
	}
}

func TestDocumentXBinNoFontWhenDocumentHasNone(t *testing.T) {
	doc := document.New(4, 2)
	xdoc := documentToXBin(doc)
	if xdoc.Header.HasFont {
		t.Error("expected HasFont to stay clear when the document carries no embedded font")
	}
}
