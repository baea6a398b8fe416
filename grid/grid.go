// Package grid holds the layered cell grid: the ordered sequence of
// layers and the bounded mutations described in spec.md §4.1. It
// generalizes core/buffer.go's single 2D Buffer into an ordered stack of
// layers, each with parallel codepoint/fg/bg/attrs planes and a signed
// integer offset, all sharing one document-wide cols x rows shape.
package grid

import (
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/phosphorerr"
)

// MaxCols is the engine-enforced upper bound on document width.
const MaxCols = 4096

// growthSlack is the fractional extra capacity reserved when a layer's
// rows grow, to amortize repeated one-row growth (spec.md §5).
const growthSlack = 0.125

// Point is a 2D integer coordinate (row, col) or (x, y) depending on
// context; callers name their own fields via the functions below.
type Point struct {
	Row, Col int
}

// Layer is one entry in the document's layer stack. All four planes have
// the same length, at least cols*rows for the document's current
// dimensions (row growth over-allocates; see rowCap).
type Layer struct {
	Name             string
	Visible          bool
	LockTransparency bool
	OffsetX          int
	OffsetY          int

	cp    []rune
	fg    []color.Color32
	bg    []color.Color32
	attrs []color.Attrs

	rowCap int // allocated row capacity, >= rows, for growth amortization
}

func newLayer(name string, cols, rows int) *Layer {
	l := &Layer{Name: name, Visible: true, rowCap: rows}
	l.allocate(cols, rows)
	return l
}

func (l *Layer) allocate(cols, rows int) {
	n := cols * rows
	l.cp = make([]rune, n)
	l.fg = make([]color.Color32, n)
	l.bg = make([]color.Color32, n)
	l.attrs = make([]color.Attrs, n)
	for i := range l.cp {
		l.cp[i] = ' '
	}
}

// CellAt returns the raw local-plane cell at (row, col) local coordinates.
// The caller is responsible for offset translation and bounds checks.
func (l *Layer) CellAt(cols, row, col int) (cp rune, fg, bg color.Color32, attrs color.Attrs) {
	i := row*cols + col
	return l.cp[i], l.fg[i], l.bg[i], l.attrs[i]
}

// IsTransparent reports whether the local cell is transparent: space
// codepoint, fg unset, bg unset.
func (l *Layer) IsTransparent(cols, row, col int) bool {
	cp, fg, bg, _ := l.CellAt(cols, row, col)
	return cp == ' ' && fg == color.Unset && bg == color.Unset
}

// RuneDisplayWidth reports how many terminal columns r would occupy on a
// real terminal. The grid itself always stores exactly one codepoint per
// cell regardless of this value; callers accepting pasted or typed UTF-8
// text use it to decide whether a wide rune should advance the caret by
// more than one column to keep the document's layout matching what a
// real terminal preview would show.
func RuneDisplayWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// WriteFields describes which planes a SetCell call should overwrite;
// an unset pointer field means "preserve current value" (spec.md §4.1).
type WriteFields struct {
	CP    *rune
	FG    *color.Color32
	BG    *color.Color32
	Attrs *color.Attrs
}

// Store is the ordered layer stack plus document-wide dimensions and
// caret/active-layer state. It corresponds to the layer-store portion of
// spec.md's Document type; selection, undo, palette identity, and SAUCE
// live in the composing document.Document.
type Store struct {
	Cols        int
	Rows        int
	ActiveLayer int
	Layers      []*Layer
	Caret       Point

	// MirrorMode, when true and Cols > 1, replicates every SetCell at
	// column c onto column Cols-1-c (spec.md §4.1). It is toggled by the
	// tool runtime for the duration of a single tool invocation.
	MirrorMode bool

	mirroring bool // re-entrancy guard so mirror writes never recurse

	logger *zap.Logger
}

// NewStore creates a store with one empty "Base" layer, default 80
// columns unless cols is non-zero.
func NewStore(cols, rows int) *Store {
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 1
	}
	s := &Store{Cols: cols, Rows: rows, logger: zap.NewNop()}
	s.Layers = append(s.Layers, newLayer("Base", cols, rows))
	return s
}

// SetLogger installs the logger used for Warn-level notices on
// transparency-lock rejections and per-cell paste skips. A nil logger
// is treated as zap.NewNop().
func (s *Store) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
}

// Logger returns the store's current logger, defaulting to a no-op
// logger for stores constructed without SetLogger.
func (s *Store) Logger() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

// CreateLayer appends a new layer sized to the document, clears it to
// spaces, and makes it active. Never fails.
func (s *Store) CreateLayer(name string) int {
	l := newLayer(name, s.Cols, s.Rows)
	s.Layers = append(s.Layers, l)
	idx := len(s.Layers) - 1
	s.ActiveLayer = idx
	return idx
}

// RemoveLayer deletes the layer at index. It fails if only one layer
// remains.
func (s *Store) RemoveLayer(index int) error {
	if len(s.Layers) <= 1 {
		return phosphorerr.ErrLayerCountFloor
	}
	if index < 0 || index >= len(s.Layers) {
		return phosphorerr.ErrLayerNotFound
	}
	wasActive := s.ActiveLayer
	s.Layers = append(s.Layers[:index], s.Layers[index+1:]...)
	switch {
	case wasActive == index:
		if index >= len(s.Layers) {
			index = len(s.Layers) - 1
		}
		s.ActiveLayer = index
	case wasActive > index:
		s.ActiveLayer = wasActive - 1
	default:
		s.ActiveLayer = wasActive
	}
	return nil
}

// MoveLayer reorders the layer stack, keeping the same logical layer
// active afterward.
func (s *Store) MoveLayer(from, to int) error {
	if from < 0 || from >= len(s.Layers) || to < 0 || to >= len(s.Layers) {
		return phosphorerr.ErrLayerNotFound
	}
	activeLayer := s.Layers[s.ActiveLayer]
	moving := s.Layers[from]
	rest := append(append([]*Layer{}, s.Layers[:from]...), s.Layers[from+1:]...)
	newLayers := make([]*Layer, 0, len(s.Layers))
	newLayers = append(newLayers, rest[:to]...)
	newLayers = append(newLayers, moving)
	newLayers = append(newLayers, rest[to:]...)
	s.Layers = newLayers
	for i, l := range s.Layers {
		if l == activeLayer {
			s.ActiveLayer = i
			break
		}
	}
	return nil
}

// SetCell translates canvas (row, col) into layer-local coordinates via
// the layer's offset, applies the transparency-lock policy, and writes
// only the fields present in fields. It silently rejects writes whose
// local column falls outside [0, cols) or whose local row is negative;
// it grows Rows (amortized) when the local row is beyond the current
// bound. When Store.MirrorMode is enabled it also mirrors the write to
// column Cols-1-col, skipping the mirror when it would land on the same
// column (spec.md §9, odd-width canvases).
func (s *Store) SetCell(layerIdx, row, col int, fields WriteFields) error {
	if layerIdx < 0 || layerIdx >= len(s.Layers) {
		return phosphorerr.ErrLayerNotFound
	}
	l := s.Layers[layerIdx]
	localRow := row - l.OffsetY
	localCol := col - l.OffsetX
	if localCol < 0 || localCol >= s.Cols {
		return nil
	}
	if localRow < 0 {
		return nil
	}
	if localRow >= s.Rows {
		s.ensureRows(localRow + 1)
	}
	s.writeLocal(l, localRow, localCol, fields)

	if s.MirrorMode && s.Cols > 1 && !s.mirroring {
		mirrorCol := s.Cols - 1 - col
		if mirrorCol != col {
			s.mirroring = true
			_ = s.SetCell(layerIdx, row, mirrorCol, fields)
			s.mirroring = false
		}
	}
	return nil
}

func (s *Store) writeLocal(l *Layer, row, col int, fields WriteFields) {
	i := row*s.Cols + col
	wasTransparent := l.cp[i] == ' ' && l.fg[i] == color.Unset && l.bg[i] == color.Unset

	newCP, newFG, newBG, newAttrs := l.cp[i], l.fg[i], l.bg[i], l.attrs[i]
	if fields.CP != nil {
		newCP = *fields.CP
	}
	if fields.FG != nil {
		newFG = *fields.FG
	}
	if fields.BG != nil {
		newBG = *fields.BG
	}
	if fields.Attrs != nil {
		newAttrs = *fields.Attrs
	}
	nowTransparent := newCP == ' ' && newFG == color.Unset && newBG == color.Unset

	if l.LockTransparency && wasTransparent != nowTransparent {
		s.Logger().Warn("transparency lock rejected cell write",
			zap.String("layer", l.Name), zap.Int("row", row), zap.Int("col", col))
		return
	}
	l.cp[i], l.fg[i], l.bg[i], l.attrs[i] = newCP, newFG, newBG, newAttrs
}

// GetCell reads the local-plane cell of layer layerIdx at canvas (row,
// col), applying the layer's offset. ok is false if translated
// coordinates fall outside the layer's bounds.
func (s *Store) GetCell(layerIdx, row, col int) (cp rune, fg, bg color.Color32, attrs color.Attrs, ok bool) {
	if layerIdx < 0 || layerIdx >= len(s.Layers) {
		return 0, 0, 0, 0, false
	}
	l := s.Layers[layerIdx]
	localRow := row - l.OffsetY
	localCol := col - l.OffsetX
	if localCol < 0 || localCol >= s.Cols || localRow < 0 || localRow >= s.Rows {
		return 0, 0, 0, 0, false
	}
	cp, fg, bg, attrs = l.CellAt(s.Cols, localRow, localCol)
	return cp, fg, bg, attrs, true
}

// SetCaret moves the caret, clamping col to [0, Cols) and growing Rows
// on demand to keep row within bounds; it never grows Cols.
func (s *Store) SetCaret(row, col int) {
	if col < 0 {
		col = 0
	}
	if col >= s.Cols {
		col = s.Cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= s.Rows {
		s.ensureRows(row + 1)
	}
	s.Caret = Point{Row: row, Col: col}
}

// ensureRows is the only site allowed to grow each layer's row count; it
// reserves growthSlack extra capacity to amortize repeated growth.
func (s *Store) ensureRows(minRows int) {
	if minRows <= s.Rows {
		return
	}
	for _, l := range s.Layers {
		if minRows <= l.rowCap {
			continue
		}
		newCap := minRows + int(float64(minRows)*growthSlack) + 1
		grown := make([]rune, s.Cols*newCap)
		grownFG := make([]color.Color32, s.Cols*newCap)
		grownBG := make([]color.Color32, s.Cols*newCap)
		grownAttrs := make([]color.Attrs, s.Cols*newCap)
		copy(grown, l.cp)
		copy(grownFG, l.fg)
		copy(grownBG, l.bg)
		copy(grownAttrs, l.attrs)
		for i := len(l.cp); i < len(grown); i++ {
			grown[i] = ' '
		}
		l.cp, l.fg, l.bg, l.attrs = grown, grownFG, grownBG, grownAttrs
		l.rowCap = newCap
	}
	s.Rows = minRows
}

// ResizeColumns copies each layer's planes into new-shape buffers,
// preserving (row, col) for col < min(oldCols, newCols). Pads new
// columns with spaces. Clamps the caret.
func (s *Store) ResizeColumns(newCols int) error {
	if newCols <= 0 || newCols > MaxCols {
		return phosphorerr.ErrInvalidDimensions
	}
	oldCols := s.Cols
	for _, l := range s.Layers {
		s.resizeLayerPlanes(l, oldCols, s.Rows, newCols, s.Rows)
		l.rowCap = s.Rows
	}
	s.Cols = newCols
	if s.Caret.Col >= newCols {
		s.Caret.Col = newCols - 1
	}
	if s.Caret.Col < 0 {
		s.Caret.Col = 0
	}
	return nil
}

// ResizeRows grows or shrinks every layer's row count, preserving
// content for row < min(oldRows, newRows). Clamps the caret.
func (s *Store) ResizeRows(newRows int) error {
	if newRows <= 0 {
		return phosphorerr.ErrInvalidDimensions
	}
	oldRows := s.Rows
	for _, l := range s.Layers {
		s.resizeLayerPlanes(l, s.Cols, oldRows, s.Cols, newRows)
		l.rowCap = newRows
	}
	s.Rows = newRows
	if s.Caret.Row >= newRows {
		s.Caret.Row = newRows - 1
	}
	if s.Caret.Row < 0 {
		s.Caret.Row = 0
	}
	return nil
}

func (s *Store) resizeLayerPlanes(l *Layer, oldCols, oldRows, newCols, newRows int) {
	n := newCols * newRows
	newCP := make([]rune, n)
	newFG := make([]color.Color32, n)
	newBG := make([]color.Color32, n)
	newAttrs := make([]color.Attrs, n)
	for i := range newCP {
		newCP[i] = ' '
	}
	copyRows := oldRows
	if newRows < copyRows {
		copyRows = newRows
	}
	copyCols := oldCols
	if newCols < copyCols {
		copyCols = newCols
	}
	for row := 0; row < copyRows; row++ {
		srcBase := row * oldCols
		dstBase := row * newCols
		copy(newCP[dstBase:dstBase+copyCols], l.cp[srcBase:srcBase+copyCols])
		copy(newFG[dstBase:dstBase+copyCols], l.fg[srcBase:srcBase+copyCols])
		copy(newBG[dstBase:dstBase+copyCols], l.bg[srcBase:srcBase+copyCols])
		copy(newAttrs[dstBase:dstBase+copyCols], l.attrs[srcBase:srcBase+copyCols])
	}
	l.cp, l.fg, l.bg, l.attrs = newCP, newFG, newBG, newAttrs
}
