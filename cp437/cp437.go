// Package cp437 maps between IBM Code Page 437 byte values and the
// Unicode runes the document engine works with internally. All decoding
// and encoding runs through gdamore/encoding's CP437 charmap (the same
// package tcell, the teacher's terminal layer, pulls in for codepage
// support) instead of a hand-rolled 256-entry table.
package cp437

import "github.com/gdamore/encoding"

// charmap is the shared CP437 codec, resolved once at package init.
var charmap = encoding.CP437

// ToRune decodes a single CP437 byte to its Unicode rune.
func ToRune(b byte) rune {
	dec := charmap.NewDecoder()
	out, _, err := dec.Bytes([]byte{b})
	if err != nil || len(out) == 0 {
		return '�'
	}
	r := []rune(string(out))
	if len(r) == 0 {
		return '�'
	}
	return r[0]
}

// FromRune encodes r to its CP437 byte value. ok is false if r has no
// CP437 representation.
func FromRune(r rune) (b byte, ok bool) {
	enc := charmap.NewEncoder()
	out, _, err := enc.Bytes([]byte(string(r)))
	if err != nil || len(out) != 1 {
		return 0, false
	}
	return out[0], true
}

// DecodeBytes decodes a full CP437 byte slice into runes, substituting
// U+FFFD for any byte without a mapping.
func DecodeBytes(data []byte) []rune {
	out := make([]rune, 0, len(data))
	for _, b := range data {
		out = append(out, ToRune(b))
	}
	return out
}

// EncodeRunes encodes runes to CP437 bytes, substituting 0x00 for any
// rune without a mapping (callers that must reject unmappable runes
// should call FromRune directly and check ok).
func EncodeRunes(runes []rune) []byte {
	out := make([]byte, 0, len(runes))
	for _, r := range runes {
		b, ok := FromRune(r)
		if !ok {
			b = 0
		}
		out = append(out, b)
	}
	return out
}
