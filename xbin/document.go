package xbin

import "github.com/phosphor-art/phosphor/color"

// Document is a fully decoded (or about-to-be-encoded) XBin file: its
// header, optional palette, optional font bitmap, and the flat
// width*height image planes.
type Document struct {
	Header  Header
	Palette [16]color.Color32
	Font    []byte
	CP      []byte
	Attrs   []byte
}

// Decode parses a complete XBin byte stream into a Document.
func Decode(data []byte) (*Document, error) {
	h, off, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	doc := &Document{Header: h}
	if h.HasPalette {
		pal, next, err := DecodePalette(data, off)
		if err != nil {
			return nil, err
		}
		doc.Palette = pal
		off = next
	}
	if h.HasFont {
		font, next, err := DecodeFont(data, off, h.FontHeight, h.Mode512)
		if err != nil {
			return nil, err
		}
		doc.Font = font
		off = next
	}
	cp, attrs, _, err := DecodeImage(data, off, h.Width, h.Height, h.Compressed)
	if err != nil {
		return nil, err
	}
	doc.CP = cp
	doc.Attrs = attrs
	return doc, nil
}

// Encode serializes doc to a complete XBin byte stream. The header's
// HasPalette/HasFont/Compressed flags control which sections are
// written; doc.Palette/doc.Font are ignored when the corresponding flag
// is clear.
func Encode(doc *Document) []byte {
	out := EncodeHeader(doc.Header)
	if doc.Header.HasPalette {
		out = append(out, EncodePalette(doc.Palette)...)
	}
	if doc.Header.HasFont {
		out = append(out, EncodeFont(doc.Font)...)
	}
	out = append(out, EncodeImage(doc.CP, doc.Attrs, doc.Header.Width, doc.Header.Height, doc.Header.Compressed)...)
	return out
}
