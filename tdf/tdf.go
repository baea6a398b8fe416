// Package tdf loads TheDraw font (.tdf) bundles: a one-line header, then a
// sequence of fixed-layout font records each carrying a 94-entry rune
// lookup table ('!'..'~') and a block of variable-length glyph byte
// streams. Glyph bodies are decoded lazily and cached per rune, mirroring
// the bundle's own on-demand layout.
package tdf

import (
	"encoding/binary"

	"github.com/phosphor-art/phosphor/cp437"
	"github.com/phosphor-art/phosphor/glyphart"
	"github.com/phosphor-art/phosphor/phosphorerr"
)

const (
	fontIndicator uint32 = 0xFF00AA55
	invalidGlyph  uint16 = 0xFFFF
	charTableSize        = 94 // '!'..'~'
	idLen          byte  = 0x13
	idString              = "TheDraw FONTS file"
	ctrlZ          byte  = 0x1A
)

// Type distinguishes the three glyph-body encodings a TDF record can use.
type Type int

const (
	TypeOutline Type = iota
	TypeBlock
	TypeColor
)

// Font is one decoded bundle record: its metadata plus the raw bundle
// bytes needed to lazily expand a glyph body on first use.
type Font struct {
	Name    string
	Type    Type
	Spacing int

	bytes          []byte
	glyphBlockBase int
	glyphBlockEnd  int
	lookup         [charTableSize]uint16
	cache          map[int]glyphart.Glyph
}

// index maps a printable-range rune to its slot in the 94-entry lookup
// table; TDF fonts only ever define '!'..'~'.
func index(ch rune) (int, bool) {
	if ch > 0xFF {
		return 0, false
	}
	b := byte(ch)
	if b < '!' || b > '~' {
		return 0, false
	}
	return int(b - '!'), true
}

// HasGlyph reports whether the font defines ch.
func (f *Font) HasGlyph(ch rune) bool {
	i, ok := index(ch)
	if !ok {
		return false
	}
	return f.lookup[i] != invalidGlyph
}

// SpaceFallbackWidth is the column width substituted when a line contains
// a space and the font has no glyph for it.
func (f *Font) SpaceFallbackWidth() int {
	if f.Spacing < 1 {
		return 1
	}
	return f.Spacing
}

// Glyph returns the decoded glyph for ch, decoding and caching it on first
// request.
func (f *Font) Glyph(ch rune) (glyphart.Glyph, bool) {
	i, ok := index(ch)
	if !ok || f.lookup[i] == invalidGlyph {
		return glyphart.Glyph{}, false
	}
	if g, ok := f.cache[i]; ok {
		return g, true
	}
	g := f.decodeGlyph(i)
	f.cache[i] = g
	return g, true
}

// decodeGlyph expands the byte stream for lookup slot idx into a glyph's
// part sequence, per the record's font type.
func (f *Font) decodeGlyph(idx int) glyphart.Glyph {
	var g glyphart.Glyph
	off := int(f.lookup[idx])
	p := f.glyphBlockBase + off
	if p+2 > f.glyphBlockEnd || p+2 > len(f.bytes) {
		return g
	}
	g.Width = int(f.bytes[p])
	g.Height = int(f.bytes[p+1])
	p += 2

	for p < f.glyphBlockEnd && p < len(f.bytes) {
		b := f.bytes[p]
		p++
		if b == 0 {
			break
		}
		if b == 13 {
			g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartNewLine})
			continue
		}
		if b == '&' {
			g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartEndMarker})
			continue
		}

		switch f.Type {
		case TypeColor:
			if p >= f.glyphBlockEnd || p >= len(f.bytes) {
				break
			}
			attr := f.bytes[p]
			p++
			fg := attr & 0x0F
			bg := (attr >> 4) & 0x07
			blink := attr&0x80 != 0
			if b == 0xFF {
				g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartHardBlank})
			} else {
				g.Parts = append(g.Parts, glyphart.Part{
					Kind: glyphart.PartAnsiChar, Ch: cp437.ToRune(b), Fg: fg, Bg: bg, Blink: blink,
				})
			}
		case TypeBlock:
			if b == 0xFF {
				g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartHardBlank})
			} else {
				g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartChar, Ch: cp437.ToRune(b)})
			}
		default: // TypeOutline
			switch {
			case b == '@':
				g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartFillMarker})
			case b == 'O':
				g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartOutlineHole})
			case b >= 'A' && b <= 'R':
				g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartOutlinePlaceholder, Placeholder: b})
			case b == ' ':
				g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartChar, Ch: ' '})
			default:
				g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartChar, Ch: cp437.ToRune(b)})
			}
		}
	}
	return g
}

// ParseBundle decodes every font record in a .tdf bundle, tolerating the
// common "trailer plus zero padding" and SAUCE-suffixed variants seen in
// the wild in place of a clean 0x00 terminator.
func ParseBundle(data []byte) ([]*Font, error) {
	if len(data) < 20 {
		return nil, phosphorerr.ErrMalformedFile
	}
	o := 0
	if data[o] != idLen {
		return nil, phosphorerr.ErrMalformedFile
	}
	o++
	if o+18 > len(data) || string(data[o:o+18]) != idString {
		return nil, phosphorerr.ErrMalformedFile
	}
	o += 18

	if o < len(data) && data[o] == 0x00 {
		o++
	}
	if o >= len(data) || data[o] != ctrlZ {
		return nil, phosphorerr.ErrMalformedFile
	}
	o++

	isAllZeroFrom := func(start int) bool {
		for i := start; i < len(data); i++ {
			if data[i] != 0 {
				return false
			}
		}
		return true
	}
	saucePos := -1
	if len(data) >= 128 {
		pos := len(data) - 128
		if string(data[pos:pos+7]) == "SAUCE00" {
			saucePos = pos
		}
	}

	var fonts []*Font
	for o < len(data) {
		if saucePos >= 0 && (o == saucePos || o+1 == saucePos) {
			break
		}
		if data[o] == 0 {
			break
		}
		if o+4 > len(data) {
			return nil, phosphorerr.ErrMalformedFile
		}
		indicator := binary.LittleEndian.Uint32(data[o : o+4])
		if indicator != fontIndicator {
			if len(fonts) > 0 {
				if saucePos >= 0 && (o == saucePos || o+1 == saucePos) {
					break
				}
				if o+4 <= len(data) && isAllZeroFrom(o+4) {
					break
				}
				if isAllZeroFrom(o) {
					break
				}
			}
			return nil, phosphorerr.ErrMalformedFile
		}
		o += 4

		if o >= len(data) {
			return nil, phosphorerr.ErrMalformedFile
		}
		origLen := int(data[o])
		o++
		if o+12 > len(data) {
			return nil, phosphorerr.ErrMalformedFile
		}
		nameLen := origLen
		if nameLen > 16 {
			nameLen = 16
		}
		if nameLen > 12 {
			nameLen = 12
		}
		for i := 0; i < nameLen; i++ {
			if data[o+i] == 0 {
				nameLen = i
				break
			}
		}
		name := string(data[o : o+nameLen])
		o += 12

		if o+4 > len(data) {
			return nil, phosphorerr.ErrMalformedFile
		}
		o += 4 // reserved magic bytes

		if o >= len(data) {
			return nil, phosphorerr.ErrMalformedFile
		}
		var ftype Type
		switch data[o] {
		case 0:
			ftype = TypeOutline
		case 1:
			ftype = TypeBlock
		case 2:
			ftype = TypeColor
		default:
			return nil, phosphorerr.ErrMalformedFile
		}
		o++

		if o >= len(data) {
			return nil, phosphorerr.ErrMalformedFile
		}
		spacing := int(data[o])
		o++

		if o+2 > len(data) {
			return nil, phosphorerr.ErrMalformedFile
		}
		blockSize := int(binary.LittleEndian.Uint16(data[o : o+2]))
		o += 2

		if o+charTableSize*2 > len(data) {
			return nil, phosphorerr.ErrMalformedFile
		}
		var lookup [charTableSize]uint16
		for i := 0; i < charTableSize; i++ {
			lookup[i] = binary.LittleEndian.Uint16(data[o : o+2])
			o += 2
		}

		if o+blockSize > len(data) {
			return nil, phosphorerr.ErrMalformedFile
		}
		for _, off16 := range lookup {
			if off16 == invalidGlyph {
				continue
			}
			if int(off16) >= blockSize {
				return nil, phosphorerr.ErrMalformedFile
			}
		}

		if name == "" {
			name = "tdf"
		}
		fonts = append(fonts, &Font{
			Name:           name,
			Type:           ftype,
			Spacing:        spacing,
			bytes:          data,
			glyphBlockBase: o,
			glyphBlockEnd:  o + blockSize,
			lookup:         lookup,
			cache:          make(map[int]glyphart.Glyph),
		})
		o += blockSize
	}

	if len(fonts) == 0 {
		return nil, phosphorerr.ErrMalformedFile
	}
	return fonts, nil
}
