// Package glyphart holds the glyph representation and line-composition
// pipeline shared by the tdf and figlet loaders (spec.md §6.4): a glyph is
// a flat sequence of typed parts (plain char, hard blank, newline, and for
// TheDraw's outline/color variants a few extra marker kinds), and a line of
// text renders by looking up each codepoint's glyph, falling back through
// opposite-case and then '?', and compositing glyphs left to right with the
// line height pinned to the tallest glyph actually used.
package glyphart

import (
	phcolor "github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/palette"
)

// PartKind distinguishes the handful of glyph-cell shapes a TDF or FIGlet
// glyph can produce.
type PartKind int

const (
	PartChar PartKind = iota
	PartNewLine
	PartEndMarker
	PartHardBlank
	PartFillMarker
	PartOutlineHole
	PartOutlinePlaceholder
	PartAnsiChar
)

// Part is one emitted unit of a glyph's byte stream, decoded to its
// semantic meaning. Ch and the color fields are meaningful only for the
// kinds that use them (PartChar, PartAnsiChar).
type Part struct {
	Kind        PartKind
	Ch          rune
	Fg, Bg      uint8
	Blink       bool
	Placeholder byte
}

// Glyph is a decoded character definition: a width/height hint plus the
// part stream that, read in order, lays out its cells row by row.
type Glyph struct {
	Width, Height int
	Parts         []Part
}

// Source is implemented by both tdf.Font and figlet.Font so RenderLine can
// treat either uniformly.
type Source interface {
	HasGlyph(ch rune) bool
	Glyph(ch rune) (Glyph, bool)
	SpaceFallbackWidth() int
}

// Mode selects how ambiguous glyph parts (end markers, hard blanks, outline
// placeholders) render: Display renders the artwork as it would actually
// appear, Edit exposes the font's editing notation instead.
type Mode int

const (
	ModeDisplay Mode = iota
	ModeEdit
)

// OutlineStyle maps a TheDraw outline placeholder byte ('A'..'R') to the
// line-drawing rune it represents in display mode. A nil style renders the
// raw placeholder byte instead.
type OutlineStyle func(b byte) rune

// Options configures one RenderLine call.
type Options struct {
	Mode          Mode
	IceColors     bool
	UseFontColors bool
	OutlineStyle  OutlineStyle
	DefaultFg     uint8
	DefaultBg     uint8
}

// Cell is one composited output cell: a codepoint plus optional foreground
// and background colors (nil means "no color contribution from the font").
type Cell struct {
	Ch     rune
	Fg, Bg *phcolor.Color32
}

// oppositeCase returns the opposite-case rune when the font defines it,
// otherwise ch unchanged.
func oppositeCase(src Source, ch rune) rune {
	if ch >= 'a' && ch <= 'z' {
		up := ch - 'a' + 'A'
		if src.HasGlyph(up) {
			return up
		}
	}
	if ch >= 'A' && ch <= 'Z' {
		lo := ch - 'A' + 'a'
		if src.HasGlyph(lo) {
			return lo
		}
	}
	return ch
}

// RenderLine composes one line of text (no embedded newlines) into a
// row-major grid of cells, sized lineHeight rows by the summed glyph
// widths. Unknown codepoints fall back to '?' and finally to a single
// blank column.
func RenderLine(src Source, text []rune, opt Options, registry *palette.Registry) (rows [][]Cell, width, height int) {
	lineHeight := 1
	for _, ch := range text {
		if ch == '\n' || ch == '\r' || (ch == ' ' && !src.HasGlyph(' ')) {
			continue
		}
		g, ok := src.Glyph(oppositeCase(src, ch))
		if !ok || g.Width <= 0 || g.Height <= 0 {
			g, ok = src.Glyph('?') // the render loop below draws '?' here
		}
		if ok && g.Height > lineHeight {
			lineHeight = g.Height
		}
	}

	rows = make([][]Cell, lineHeight)
	for i := range rows {
		rows[i] = make([]Cell, 0, len(text)*4)
	}
	appendBlank := func(w int) {
		for y := 0; y < lineHeight; y++ {
			for i := 0; i < w; i++ {
				rows[y] = append(rows[y], Cell{Ch: ' '})
			}
		}
	}

	for _, ch := range text {
		if ch == '\r' {
			continue
		}
		if ch == ' ' && !src.HasGlyph(' ') {
			appendBlank(src.SpaceFallbackWidth())
			continue
		}

		ch = oppositeCase(src, ch)
		g, ok := src.Glyph(ch)
		if !ok || g.Width <= 0 || g.Height <= 0 {
			fallback := rune('?')
			if !src.HasGlyph(fallback) {
				appendBlank(1)
				continue
			}
			g, ok = src.Glyph(fallback)
			if !ok || g.Width <= 0 || g.Height <= 0 {
				appendBlank(1)
				continue
			}
		}

		cells := renderGlyph(g, opt, registry)
		for y := 0; y < lineHeight; y++ {
			if y < g.Height {
				rows[y] = append(rows[y], cells[y]...)
			} else {
				for i := 0; i < g.Width; i++ {
					rows[y] = append(rows[y], Cell{Ch: ' '})
				}
			}
		}
	}

	width = 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	return rows, width, lineHeight
}

// renderGlyph expands one glyph's part stream into a row-major Width x
// Height cell grid.
func renderGlyph(g Glyph, opt Options, registry *palette.Registry) [][]Cell {
	out := make([][]Cell, g.Height)
	for i := range out {
		out[i] = make([]Cell, g.Width)
		for x := range out[i] {
			out[i][x] = Cell{Ch: ' '}
		}
	}
	x, y := 0, 0
	put := func(ch rune, fg, bg *phcolor.Color32) {
		if x >= 0 && x < g.Width && y >= 0 && y < g.Height {
			out[y][x] = Cell{Ch: ch, Fg: fg, Bg: bg}
		}
		x++
	}

	for _, part := range g.Parts {
		if y >= g.Height {
			break
		}
		switch part.Kind {
		case PartNewLine:
			y++
			x = 0
		case PartEndMarker:
			if opt.Mode == ModeEdit {
				put('&', nil, nil)
			}
		case PartHardBlank:
			if opt.Mode == ModeEdit {
				put(0x00FF, nil, nil)
			} else {
				put(' ', nil, nil)
			}
		case PartFillMarker:
			if opt.Mode == ModeEdit {
				put('@', nil, nil)
			} else {
				put(' ', nil, nil)
			}
		case PartOutlineHole:
			if opt.Mode == ModeEdit {
				put('O', nil, nil)
			} else {
				put(' ', nil, nil)
			}
		case PartOutlinePlaceholder:
			cp := rune(' ')
			if opt.Mode == ModeEdit {
				cp = rune(part.Placeholder)
			} else if opt.OutlineStyle != nil {
				cp = opt.OutlineStyle(part.Placeholder)
			} else {
				cp = rune(part.Placeholder)
			}
			put(cp, nil, nil)
		case PartChar:
			put(part.Ch, nil, nil)
		case PartAnsiChar:
			fgIdx := clamp(int(part.Fg), 0, 15)
			bgIdx := clamp(int(part.Bg), 0, 7)
			if part.Blink && opt.IceColors {
				bgIdx = clamp(bgIdx+8, 0, 15)
			}
			if !opt.UseFontColors || registry == nil {
				put(part.Ch, nil, nil)
				continue
			}
			ref := palette.Ref{Kind: palette.KindBuiltin, Builtin: palette.Xterm16}
			fg := registry.IndexToColor32(ref, phcolor.PaletteIndex(fgIdx))
			bg := registry.IndexToColor32(ref, phcolor.PaletteIndex(bgIdx))
			put(part.Ch, &fg, &bg)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
