// Package selection implements the rectangular selection, the
// process-global clipboard, and the floating-move lifecycle described in
// spec.md §4.3. The selection rectangle and floating-move payload are
// generalized from the teacher's terminal/tui editor_state.go pattern of
// holding a selection rectangle alongside mutable buffer content;
// clipboard is the teacher's "process-global scratch" idiom (core
// package-level state, explicit reset) applied to a rectangular cell
// grid instead of a single string.
package selection

import (
	"go.uber.org/zap"

	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/compositor"
	"github.com/phosphor-art/phosphor/grid"
	"github.com/phosphor-art/phosphor/phosphorerr"
)

// Rect is a selection/clipboard rectangle in canvas coordinates.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies within the rectangle.
func (r Rect) Contains(x, y int) bool {
	return r.W > 0 && r.H > 0 && x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// State holds the document's current selection and any in-progress
// floating move. The zero value is "no selection".
type State struct {
	Rect   Rect
	Active bool
	Move   *Move
}

// HasSelection reports whether a non-empty selection rectangle exists.
func (s *State) HasSelection() bool {
	return s.Active && s.Rect.W > 0 && s.Rect.H > 0
}

// SetCorners produces the min..max rectangle on each axis from two
// arbitrary corners, clipped to the document's columns; negative rows
// clip to zero. An empty result clears the selection (and cancels any
// floating move, spec.md §4.3).
func (s *State) SetCorners(cols int, x0, y0, x1, y1 int) {
	minX, maxX := minMax(x0, x1)
	minY, maxY := minMax(y0, y1)
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > cols {
		maxX = cols
	}
	w := maxX - minX
	h := maxY - minY
	if w <= 0 || h <= 0 {
		s.Clear()
		return
	}
	s.Rect = Rect{X: minX, Y: minY, W: w, H: h}
	s.Active = true
}

// Clear empties the selection and cancels any floating move in progress.
func (s *State) Clear() {
	s.Active = false
	s.Rect = Rect{}
	s.Move = nil
}

func minMax(a, b int) (int, int) {
	if a <= b {
		return a, b
	}
	return b, a
}

// layerTarget resolves a caller-supplied layer index, defaulting to the
// store's active layer when negative (spec.md §4.3 "layer target
// defaults to active layer").
func layerTarget(s *grid.Store, layer int) int {
	if layer < 0 {
		return s.ActiveLayer
	}
	return layer
}

// CopyLayerRegion reads a w x h rectangle from the target layer's
// translated local cells; cells outside the layer's bounds copy as
// transparent.
func CopyLayerRegion(s *grid.Store, layer, x, y, w, h int) (cp []rune, fg, bg []color.Color32) {
	idx := layerTarget(s, layer)
	n := w * h
	cp = make([]rune, n)
	fg = make([]color.Color32, n)
	bg = make([]color.Color32, n)
	for i := range cp {
		cp[i] = ' '
	}
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			gotCP, gotFG, gotBG, _, ok := s.GetCell(idx, y+j, x+i)
			if !ok {
				continue
			}
			off := j*w + i
			cp[off], fg[off], bg[off] = gotCP, gotFG, gotBG
		}
	}
	return cp, fg, bg
}

// CopyCompositeRegion reads a w x h rectangle through the compositor.
func CopyCompositeRegion(s *grid.Store, x, y, w, h int) (cp []rune, fg, bg []color.Color32) {
	return compositor.CopyRegion(s, x, y, w, h)
}

// ClearRegion writes transparent cells (space, fg=unset, bg=unset) across
// a w x h rectangle, subject to the layer's transparency lock.
func ClearRegion(s *grid.Store, layer, x, y, w, h int) {
	idx := layerTarget(s, layer)
	space := ' '
	unset := color.Unset
	fields := grid.WriteFields{CP: &space, FG: &unset, BG: &unset}
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			_ = s.SetCell(idx, y+j, x+i, fields)
		}
	}
}

// PasteMode selects which planes a paste writes.
type PasteMode int

const (
	PasteBoth PasteMode = iota
	PasteCharOnly
	PasteColorOnly
)

// Paste writes a previously captured rectangle at (x, y) on the target
// layer according to mode and the transparentSpaces flag (spec.md §4.3);
// it sets the selection to the pasted rectangle.
func (s *State) Paste(store *grid.Store, layer, x, y, w, h int, cp []rune, fg, bg []color.Color32, mode PasteMode, transparentSpaces bool) {
	idx := layerTarget(store, layer)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			off := j*w + i
			srcCP := cp[off]
			if transparentSpaces && srcCP == ' ' {
				store.Logger().Warn("paste skipped transparent cell",
					zap.Int("row", y+j), zap.Int("col", x+i))
				continue
			}
			var fields grid.WriteFields
			switch mode {
			case PasteCharOnly:
				fields.CP = &srcCP
			case PasteColorOnly:
				fields.FG = &fg[off]
				fields.BG = &bg[off]
			default:
				fields.CP = &srcCP
				fields.FG = &fg[off]
				fields.BG = &bg[off]
			}
			_ = store.SetCell(idx, y+j, x+i, fields)
		}
	}
	s.Rect = Rect{X: x, Y: y, W: w, H: h}
	s.Active = true
}

// CutLayerRegion copies then clears a rectangle on the target layer,
// returning the copied planes (spec.md §4.3 "cut = copy then delete").
func CutLayerRegion(s *grid.Store, layer, x, y, w, h int) (cp []rune, fg, bg []color.Color32) {
	cp, fg, bg = CopyLayerRegion(s, layer, x, y, w, h)
	ClearRegion(s, layer, x, y, w, h)
	return cp, fg, bg
}

// Copy captures the current selection into clip, reading from the target
// layer if composite is false, or through the compositor if true.
func (s *State) Copy(store *grid.Store, clip *Clipboard, layer int, composite bool) error {
	if !s.HasSelection() {
		return phosphorerr.ErrNoSelection
	}
	var cp []rune
	var fg, bg []color.Color32
	if composite {
		cp, fg, bg = CopyCompositeRegion(store, s.Rect.X, s.Rect.Y, s.Rect.W, s.Rect.H)
	} else {
		cp, fg, bg = CopyLayerRegion(store, layer, s.Rect.X, s.Rect.Y, s.Rect.W, s.Rect.H)
	}
	clip.Set(s.Rect.W, s.Rect.H, cp, fg, bg)
	return nil
}

// Cut copies the selection then clears it on the target layer.
func (s *State) Cut(store *grid.Store, clip *Clipboard, layer int) error {
	if !s.HasSelection() {
		return phosphorerr.ErrNoSelection
	}
	cp, fg, bg := CutLayerRegion(store, layer, s.Rect.X, s.Rect.Y, s.Rect.W, s.Rect.H)
	clip.Set(s.Rect.W, s.Rect.H, cp, fg, bg)
	return nil
}

// Delete clears the selection on the target layer without touching the
// clipboard.
func (s *State) Delete(store *grid.Store, layer int) error {
	if !s.HasSelection() {
		return phosphorerr.ErrNoSelection
	}
	ClearRegion(store, layer, s.Rect.X, s.Rect.Y, s.Rect.W, s.Rect.H)
	return nil
}

// PasteFromClipboard pastes clip's contents at (x, y) on the target layer.
func (s *State) PasteFromClipboard(store *grid.Store, clip *Clipboard, layer, x, y int, mode PasteMode, transparentSpaces bool) error {
	if !clip.HasContent() {
		return phosphorerr.ErrClipboardEmpty
	}
	w, h, cp, fg, bg := clip.Get()
	s.Paste(store, layer, x, y, w, h, cp, fg, bg, mode, transparentSpaces)
	return nil
}
