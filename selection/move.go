package selection

import (
	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/grid"
	"github.com/phosphor-art/phosphor/phosphorerr"
)

// Payload is the captured source cells held outside any layer while a
// floating move is in progress.
type Payload struct {
	W, H int
	CP   []rune
	FG   []color.Color32
	BG   []color.Color32
}

// Move is the floating-move state described in spec.md §4.3: a saved
// grid, its source/destination origins, the grab offset within the
// payload, and whether the source was cleared (cut) when the move began.
type Move struct {
	Payload      Payload
	SourceOrigin grid.Point
	DestOrigin   grid.Point
	GrabDX       int
	GrabDY       int
	Layer        int
	Cut          bool
}

// BeginMove starts a floating move. It is valid only when (grabX, grabY)
// lies inside the current selection. If the target layer has
// LockTransparency set, copy is forced to true regardless of the
// requested value (spec.md §4.3 policy), and the source is never
// cleared.
func (s *State) BeginMove(store *grid.Store, grabX, grabY int, copy bool, layer int) error {
	if !s.HasSelection() {
		return phosphorerr.ErrNoSelection
	}
	if !s.Rect.Contains(grabX, grabY) {
		return phosphorerr.ErrGrabOutsideSelection
	}
	idx := layerTarget(store, layer)
	if store.Layers[idx].LockTransparency {
		copy = true
	}

	cp, fg, bg := CopyLayerRegion(store, idx, s.Rect.X, s.Rect.Y, s.Rect.W, s.Rect.H)
	if !copy {
		ClearRegion(store, idx, s.Rect.X, s.Rect.Y, s.Rect.W, s.Rect.H)
	}

	s.Move = &Move{
		Payload:      Payload{W: s.Rect.W, H: s.Rect.H, CP: cp, FG: fg, BG: bg},
		SourceOrigin: grid.Point{Row: s.Rect.Y, Col: s.Rect.X},
		DestOrigin:   grid.Point{Row: s.Rect.Y, Col: s.Rect.X},
		GrabDX:       grabX - s.Rect.X,
		GrabDY:       grabY - s.Rect.Y,
		Layer:        idx,
		Cut:          !copy,
	}
	return nil
}

// UpdateMove recomputes the destination origin from a new grab position,
// clamped on X to stay within [0, Cols-W].
func (s *State) UpdateMove(store *grid.Store, x, y int) error {
	if s.Move == nil {
		return phosphorerr.ErrNoActiveMove
	}
	destX := x - s.Move.GrabDX
	destY := y - s.Move.GrabDY
	maxX := store.Cols - s.Move.Payload.W
	if maxX < 0 {
		maxX = 0
	}
	if destX < 0 {
		destX = 0
	}
	if destX > maxX {
		destX = maxX
	}
	s.Move.DestOrigin = grid.Point{Row: destY, Col: destX}
	return nil
}

// CommitMove writes the payload at the current destination (subject to
// transparency-lock rules) and sets the selection to the destination
// rectangle.
func (s *State) CommitMove(store *grid.Store) error {
	if s.Move == nil {
		return phosphorerr.ErrNoActiveMove
	}
	m := s.Move
	writePayload(store, m.Layer, m.DestOrigin.Col, m.DestOrigin.Row, m.Payload)
	s.Rect = Rect{X: m.DestOrigin.Col, Y: m.DestOrigin.Row, W: m.Payload.W, H: m.Payload.H}
	s.Active = true
	s.Move = nil
	return nil
}

// CancelMove restores the payload to the source origin if the move was a
// cut, and returns the selection to the source rectangle. For a copy
// move, it simply clears the floating state.
func (s *State) CancelMove(store *grid.Store) error {
	if s.Move == nil {
		return phosphorerr.ErrNoActiveMove
	}
	m := s.Move
	if m.Cut {
		writePayload(store, m.Layer, m.SourceOrigin.Col, m.SourceOrigin.Row, m.Payload)
	}
	s.Rect = Rect{X: m.SourceOrigin.Col, Y: m.SourceOrigin.Row, W: m.Payload.W, H: m.Payload.H}
	s.Active = true
	s.Move = nil
	return nil
}

// IsMoving reports whether a floating move is currently in progress.
func (s *State) IsMoving() bool {
	return s.Move != nil
}

func writePayload(store *grid.Store, layer, x, y int, p Payload) {
	for j := 0; j < p.H; j++ {
		for i := 0; i < p.W; i++ {
			off := j*p.W + i
			cp := p.CP[off]
			fg := p.FG[off]
			bg := p.BG[off]
			_ = store.SetCell(layer, y+j, x+i, grid.WriteFields{CP: &cp, FG: &fg, BG: &bg})
		}
	}
}
