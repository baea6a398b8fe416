// Package figlet loads classic FIGlet ".flf" fonts: a single "flf2a"
// header line declaring the hardblank rune and glyph height, a handful of
// comment lines, then one fixed-height block of lines per printable
// character terminated by '@' (or "@@" on a glyph's last line). Glyphs are
// decoded lazily, mirroring the original format's line-oriented layout.
package figlet

import (
	"strconv"
	"strings"

	"github.com/phosphor-art/phosphor/glyphart"
	"github.com/phosphor-art/phosphor/phosphorerr"
)

// Font is a parsed .flf file: header metadata plus the byte ranges of each
// glyph's source lines, expanded to glyphart.Glyph on first use.
type Font struct {
	Name       string
	Header     string
	Comments   []string
	HardBlank  rune
	Height     int
	AvgWidth   int
	hasAvgWidth bool

	source     string
	lineRanges []lineRange
	glyphStart map[int]int // rune -> index into glyphLines
	glyphLen   map[int]int
	glyphLines []lineRange
	cache      map[int]glyphart.Glyph
}

type lineRange struct {
	start, end int
}

// HasGlyph reports whether the font defines ch.
func (f *Font) HasGlyph(ch rune) bool {
	if ch > 255 {
		return false
	}
	_, ok := f.glyphStart[int(ch)]
	return ok
}

// SpaceFallbackWidth is the column width substituted when a line contains
// a space and the font has no glyph for it.
func (f *Font) SpaceFallbackWidth() int {
	if f.hasAvgWidth && f.AvgWidth > 0 {
		return f.AvgWidth
	}
	return 1
}

// Glyph returns the decoded glyph for ch (0..255 only; FIGlet fonts never
// define anything above Latin-1), decoding and caching it on first
// request.
func (f *Font) Glyph(ch rune) (glyphart.Glyph, bool) {
	if ch > 255 {
		return glyphart.Glyph{}, false
	}
	idx := int(ch)
	if _, ok := f.glyphStart[idx]; !ok {
		return glyphart.Glyph{}, false
	}
	if g, ok := f.cache[idx]; ok {
		return g, true
	}
	g := f.decodeGlyph(idx)
	f.cache[idx] = g
	return g, true
}

func (f *Font) decodeGlyph(idx int) glyphart.Glyph {
	var g glyphart.Glyph
	start, ok := f.glyphStart[idx]
	if !ok {
		return g
	}
	length := f.glyphLen[idx]
	g.Height = length
	if length <= 0 {
		return g
	}

	for row := 0; row < length; row++ {
		if row > 0 {
			g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartNewLine})
		}
		lr := f.glyphLines[start+row]
		lineWidth := 0
		for _, cp := range []rune(f.bytesSlice(lr)) {
			if cp == f.HardBlank {
				g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartHardBlank})
			} else {
				g.Parts = append(g.Parts, glyphart.Part{Kind: glyphart.PartChar, Ch: cp})
			}
			lineWidth++
		}
		if lineWidth > g.Width {
			g.Width = lineWidth
		}
	}
	return g
}

func (f *Font) bytesSlice(lr lineRange) string {
	return f.source[lr.start:lr.end]
}

// Parse decodes a complete .flf file.
func Parse(data []byte) (*Font, error) {
	f := &Font{
		HardBlank:  '$',
		glyphStart: make(map[int]int),
		glyphLen:   make(map[int]int),
		cache:      make(map[int]glyphart.Glyph),
		Name:       "figlet",
	}
	f.source = string(data)

	ranges := computeLineRanges(data)
	if len(ranges) == 0 {
		return nil, phosphorerr.ErrMalformedFile
	}
	f.lineRanges = ranges

	lineIdx := 0
	hdr := ranges[lineIdx]
	lineIdx++
	headerLine := f.source[hdr.start:hdr.end]
	if len(headerLine) < 5 || headerLine[:5] != "flf2a" {
		return nil, phosphorerr.ErrMalformedFile
	}
	if len(headerLine) >= 6 {
		f.HardBlank = rune(headerLine[5])
	}
	f.Header = headerLine

	fields := strings.Fields(headerLine)
	if len(fields) < 6 {
		return nil, phosphorerr.ErrMalformedFile
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil || height <= 0 {
		return nil, phosphorerr.ErrMalformedFile
	}
	f.Height = height

	commentCount, _ := strconv.Atoi(fields[5])
	if commentCount < 0 {
		commentCount = 0
	}
	for c := 0; c < commentCount && lineIdx < len(ranges); c++ {
		lr := ranges[lineIdx]
		lineIdx++
		f.Comments = append(f.Comments, f.source[lr.start:lr.end])
	}

	sumWidth := 0
	count := 0
	for ch := 32; ch <= 126; ch++ {
		rs, err := readCharacterRanges(f, &lineIdx)
		if err != nil {
			return nil, err
		}
		start := len(f.glyphLines)
		maxW := 0
		for _, r := range rs {
			if w := r.end - r.start; w > maxW {
				maxW = w
			}
		}
		f.glyphLines = append(f.glyphLines, rs...)
		f.glyphStart[ch] = start
		f.glyphLen[ch] = len(f.glyphLines) - start
		sumWidth += maxW
		count++
	}

	// Best-effort extra glyph (often 127, DEL-as-house-icon convention).
	if rs, err := readCharacterRanges(f, &lineIdx); err == nil {
		start := len(f.glyphLines)
		maxW := 0
		for _, r := range rs {
			if w := r.end - r.start; w > maxW {
				maxW = w
			}
		}
		f.glyphLines = append(f.glyphLines, rs...)
		f.glyphStart[127] = start
		f.glyphLen[127] = len(f.glyphLines) - start
		sumWidth += maxW
		count++
	}

	if count > 0 {
		f.AvgWidth = sumWidth / count
		f.hasAvgWidth = true
	}
	return f, nil
}

func computeLineRanges(data []byte) []lineRange {
	var out []lineRange
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			end := i
			if end > start && data[end-1] == '\r' {
				end--
			}
			out = append(out, lineRange{start, end})
			start = i + 1
		}
	}
	if start <= len(data) {
		end := len(data)
		if end > start && data[end-1] == '\r' {
			end--
		}
		if start != end {
			out = append(out, lineRange{start, end})
		}
	}
	return out
}

// readCharacterRanges consumes f.Height lines starting at *lineIdx, each
// one representing a row of the current glyph, stripping the '@' (or "@@"
// on the final row) end-of-row marker.
func readCharacterRanges(f *Font, lineIdx *int) ([]lineRange, error) {
	out := make([]lineRange, 0, f.Height)
	for row := 0; row < f.Height; row++ {
		if *lineIdx >= len(f.lineRanges) {
			return nil, phosphorerr.ErrMalformedFile
		}
		lr := f.lineRanges[*lineIdx]
		*lineIdx++
		if lr.end < lr.start {
			return nil, phosphorerr.ErrMalformedFile
		}
		length := lr.end - lr.start
		line := f.source[lr.start:lr.end]
		if length >= 2 && line[length-2] == '@' && line[length-1] == '@' {
			out = append(out, lineRange{lr.start, lr.end - 2})
			break
		}
		if length >= 1 && line[length-1] == '@' {
			out = append(out, lineRange{lr.start, lr.end - 1})
			continue
		}
		return nil, phosphorerr.ErrMalformedFile
	}
	return out, nil
}
