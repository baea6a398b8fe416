// Package compositor implements the read-only composite view over a
// grid.Store's layer stack (spec.md §4.2). It is pure and monotone in
// layer order: reordering a layer can only change which layer wins a
// given cell, never introduce a side effect.
package compositor

import (
	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/grid"
)

// Cell is the observable composite result for one (row, col).
type Cell struct {
	CP    rune
	FG    color.Color32
	BG    color.Color32
	Attrs color.Attrs
}

// GetCompositeCell computes the visible cell at (row, col): the
// background plane is the first visible layer's bg from the top down
// that is non-unset, and the glyph/fg/attrs come from the first visible
// layer's cell from the top down whose codepoint isn't a space. Space
// cells never contribute foreground or attrs even if attrs are set on
// that cell (spec.md §4.2 — deliberately asymmetric, flagged in
// DESIGN.md as a carried-over editorial choice, not a bug).
func GetCompositeCell(s *grid.Store, row, col int) Cell {
	if row < 0 || col < 0 || col >= s.Cols || row >= s.Rows {
		return Cell{CP: ' '}
	}

	var bg color.Color32
	for i := len(s.Layers) - 1; i >= 0; i-- {
		l := s.Layers[i]
		if !l.Visible {
			continue
		}
		_, _, cellBG, _, ok := s.GetCell(i, row, col)
		if !ok {
			continue
		}
		if cellBG != color.Unset {
			bg = cellBG
			break
		}
	}

	result := Cell{CP: ' ', BG: bg}
	for i := len(s.Layers) - 1; i >= 0; i-- {
		l := s.Layers[i]
		if !l.Visible {
			continue
		}
		cellCP, cellFG, _, cellAttrs, ok := s.GetCell(i, row, col)
		if !ok {
			continue
		}
		if cellCP != ' ' {
			result.CP = cellCP
			result.FG = cellFG
			result.Attrs = cellAttrs
			break
		}
	}
	return result
}

// CopyRegion reads a w x h rectangle through the compositor starting at
// (x, y), used by clipboard "copy composite" (spec.md §4.3).
func CopyRegion(s *grid.Store, x, y, w, h int) (cp []rune, fg, bg []color.Color32) {
	n := w * h
	cp = make([]rune, n)
	fg = make([]color.Color32, n)
	bg = make([]color.Color32, n)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			c := GetCompositeCell(s, y+j, x+i)
			idx := j*w + i
			cp[idx] = c.CP
			fg[idx] = c.FG
			bg[idx] = c.BG
		}
	}
	return cp, fg, bg
}
