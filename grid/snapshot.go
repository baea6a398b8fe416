package grid

import "github.com/phosphor-art/phosphor/color"

// LayerSnapshot is a full copy of one layer's metadata and planes.
type LayerSnapshot struct {
	Name             string
	Visible          bool
	LockTransparency bool
	OffsetX          int
	OffsetY          int
	CP               []rune
	FG               []color.Color32
	BG               []color.Color32
	Attrs            []color.Attrs
}

// DocSnapshot is a full copy of a Store's dimensions, caret, active
// layer, and every layer (spec.md §4.4 "Snapshot entry").
type DocSnapshot struct {
	Cols        int
	Rows        int
	ActiveLayer int
	Caret       Point
	Layers      []LayerSnapshot
}

// Snapshot captures the full current state of the store.
func (s *Store) Snapshot() DocSnapshot {
	snap := DocSnapshot{Cols: s.Cols, Rows: s.Rows, ActiveLayer: s.ActiveLayer, Caret: s.Caret}
	n := s.Cols * s.Rows
	snap.Layers = make([]LayerSnapshot, len(s.Layers))
	for i, l := range s.Layers {
		snap.Layers[i] = LayerSnapshot{
			Name:             l.Name,
			Visible:          l.Visible,
			LockTransparency: l.LockTransparency,
			OffsetX:          l.OffsetX,
			OffsetY:          l.OffsetY,
			CP:               append([]rune(nil), l.cp[:n]...),
			FG:               append([]color.Color32(nil), l.fg[:n]...),
			BG:               append([]color.Color32(nil), l.bg[:n]...),
			Attrs:            append([]color.Attrs(nil), l.attrs[:n]...),
		}
	}
	return snap
}

// Restore replaces the store's entire state (dimensions, caret, active
// layer, every layer's metadata and planes) with a previously captured
// snapshot.
func (s *Store) Restore(snap DocSnapshot) {
	s.Cols, s.Rows, s.ActiveLayer, s.Caret = snap.Cols, snap.Rows, snap.ActiveLayer, snap.Caret
	s.Layers = make([]*Layer, len(snap.Layers))
	for i, ls := range snap.Layers {
		l := &Layer{
			Name:             ls.Name,
			Visible:          ls.Visible,
			LockTransparency: ls.LockTransparency,
			OffsetX:          ls.OffsetX,
			OffsetY:          ls.OffsetY,
			rowCap:           snap.Rows,
		}
		l.cp = append([]rune(nil), ls.CP...)
		l.fg = append([]color.Color32(nil), ls.FG...)
		l.bg = append([]color.Color32(nil), ls.BG...)
		l.attrs = append([]color.Attrs(nil), ls.Attrs...)
		s.Layers[i] = l
	}
}

// LayerMeta is the non-plane, non-geometry metadata of a layer that a
// patch entry restores independently of cell content.
type LayerMeta struct {
	Name             string
	Visible          bool
	LockTransparency bool
	OffsetX          int
	OffsetY          int
}

// LayerMetaAt returns layer idx's metadata.
func (s *Store) LayerMetaAt(idx int) LayerMeta {
	l := s.Layers[idx]
	return LayerMeta{Name: l.Name, Visible: l.Visible, LockTransparency: l.LockTransparency, OffsetX: l.OffsetX, OffsetY: l.OffsetY}
}

// SetLayerMetaAt overwrites layer idx's metadata without touching its planes.
func (s *Store) SetLayerMetaAt(idx int, m LayerMeta) {
	l := s.Layers[idx]
	l.Name, l.Visible, l.LockTransparency, l.OffsetX, l.OffsetY = m.Name, m.Visible, m.LockTransparency, m.OffsetX, m.OffsetY
}

// CapturePage copies up to pageRows consecutive rows of layer layerIdx
// starting at pageIndex*pageRows, clipped to the store's current row
// count. rowCount reports how many rows were actually captured (the
// bottom page of a layer may be shorter than pageRows).
func (s *Store) CapturePage(layerIdx, pageIndex, pageRows int) (rowCount int, cp []rune, fg, bg []color.Color32, attrs []color.Attrs) {
	l := s.Layers[layerIdx]
	startRow := pageIndex * pageRows
	if startRow >= s.Rows {
		return 0, nil, nil, nil, nil
	}
	rowCount = pageRows
	if startRow+rowCount > s.Rows {
		rowCount = s.Rows - startRow
	}
	n := rowCount * s.Cols
	base := startRow * s.Cols
	cp = append([]rune(nil), l.cp[base:base+n]...)
	fg = append([]color.Color32(nil), l.fg[base:base+n]...)
	bg = append([]color.Color32(nil), l.bg[base:base+n]...)
	attrs = append([]color.Attrs(nil), l.attrs[base:base+n]...)
	return rowCount, cp, fg, bg, attrs
}

// RestorePage overwrites rowCount rows of layer layerIdx starting at
// pageIndex*pageRows with previously captured plane fragments. The
// store's shape must already match the shape the page was captured
// under (patch restoration always restores cols/rows first).
func (s *Store) RestorePage(layerIdx, pageIndex, pageRows, rowCount int, cp []rune, fg, bg []color.Color32, attrs []color.Attrs) {
	l := s.Layers[layerIdx]
	startRow := pageIndex * pageRows
	if startRow >= s.Rows {
		return
	}
	if startRow+rowCount > s.Rows {
		rowCount = s.Rows - startRow
	}
	n := rowCount * s.Cols
	base := startRow * s.Cols
	copy(l.cp[base:base+n], cp[:n])
	copy(l.fg[base:base+n], fg[:n])
	copy(l.bg[base:base+n], bg[:n])
	copy(l.attrs[base:base+n], attrs[:n])
}

// LayerCount returns the number of layers in the store.
func (s *Store) LayerCount() int { return len(s.Layers) }
