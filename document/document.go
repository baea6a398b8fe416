// Package document composes the grid store, selection state, undo
// engine, and palette reference into the single owned unit described in
// spec.md §3's Document type. It is grounded on the teacher's
// terminal/tui/editor_state.go pattern of one struct owning buffer +
// selection + undo + mode state, with thin wrapper methods that open a
// capture scope, delegate to the owned state, and close it — so callers
// never reach into undo.Engine directly.
package document

import (
	"go.uber.org/zap"

	"github.com/phosphor-art/phosphor/font"
	"github.com/phosphor-art/phosphor/grid"
	"github.com/phosphor-art/phosphor/palette"
	"github.com/phosphor-art/phosphor/selection"
	"github.com/phosphor-art/phosphor/undo"
)

// Info carries the free-text metadata a document keeps alongside its
// cell content (title/author/group are the SAUCE-derived fields a
// saved project persists; the full SAUCE record itself belongs to the
// sauce package once content is exported or imported).
type Info struct {
	Title   string
	Author  string
	Group   string
	Comment string
}

// Document is the editor's top-level owned state: the cell grid, the
// current selection/clipboard/move, the undo/redo engine, the active
// palette reference, and free-text metadata.
type Document struct {
	Grid      *grid.Store
	Selection selection.State
	Undo      *undo.Engine
	Palette   palette.Ref
	Info      Info
	Font      *font.EmbeddedFont
}

// Option configures a Document at construction time.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger attaches a logger the document's undo engine and grid store
// use for their respective Debug/Warn notices (spec.md ambient logging
// conventions). The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates a document with a fresh single-layer grid of the given
// size, an unlimited undo history, and the builtin xterm-256 palette.
func New(cols, rows int, opts ...Option) *Document {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	g := grid.NewStore(cols, rows)
	g.SetLogger(o.logger)
	return &Document{
		Grid:    g,
		Undo:    undo.NewEngine(0, undo.WithLogger(o.logger)),
		Palette: palette.Ref{Kind: palette.KindBuiltin, Builtin: palette.Xterm256},
	}
}

// StateToken returns the document's current monotonic state token, used
// by a host to detect unsaved changes.
func (d *Document) StateToken() uint64 { return d.Undo.StateToken() }

// SetEmbeddedFont attaches (or, with nil, clears) the document's
// embedded bitmap font. An invalid font (bitmap length not matching
// GlyphCount*CellH) is rejected rather than stored, since every
// consumer of d.Font assumes Validate already passed.
func (d *Document) SetEmbeddedFont(f *font.EmbeddedFont) error {
	if err := f.Validate(); err != nil {
		return err
	}
	d.Font = f
	return nil
}

// GlyphIsEmbedded reports whether r addresses one of the document's
// embedded bitmap glyphs rather than falling back to its named font.
func (d *Document) GlyphIsEmbedded(r rune) bool {
	return font.IsEmbeddedGlyphRune(d.Font, r)
}

// WriteCell opens a capture scope (if one isn't already open), notes the
// write for undo classification, applies it, and returns any grid error.
// Most interactive single-cell edits call this directly; a caller doing
// many writes under one logical gesture should instead call
// BeginGesture/EndGesture around a sequence of WriteCell calls so they
// coalesce into a single undo entry (spec.md §4.4 capture-scope
// coalescing).
func (d *Document) WriteCell(layer, row, col int, fields grid.WriteFields) error {
	standalone := !d.Undo.CaptureOpen()
	if standalone {
		d.Undo.OpenCapture()
	}
	d.Undo.NoteCellWrite(d.Grid, layer, row)
	err := d.Grid.SetCell(layer, row, col, fields)
	if standalone {
		d.Undo.CloseCapture()
	}
	return err
}

// BeginGesture opens an undo capture scope that spans multiple
// subsequent WriteCell/structural calls, coalescing them into one undo
// entry. Nested calls are idempotent (spec.md §4.4: opening an
// already-open scope is a no-op).
func (d *Document) BeginGesture() { d.Undo.OpenCapture() }

// EndGesture closes the current capture scope, pushing one undo entry
// if any mutation occurred since BeginGesture.
func (d *Document) EndGesture() { d.Undo.CloseCapture() }

// structuralMutation is the shared plumbing for every document-level
// operation that changes layer topology or geometry: it notes the
// pre-image for undo, runs fn, and closes a scope it opened itself.
func (d *Document) structuralMutation(fn func() error) error {
	standalone := !d.Undo.CaptureOpen()
	if standalone {
		d.Undo.OpenCapture()
	}
	d.Undo.NoteStructural(d.Grid)
	err := fn()
	if standalone {
		d.Undo.CloseCapture()
	}
	return err
}

// CreateLayer adds a new layer above the current stack and returns its
// index.
func (d *Document) CreateLayer(name string) int {
	var idx int
	_ = d.structuralMutation(func() error {
		idx = d.Grid.CreateLayer(name)
		return nil
	})
	return idx
}

// RemoveLayer deletes layer index from the stack.
func (d *Document) RemoveLayer(index int) error {
	return d.structuralMutation(func() error {
		return d.Grid.RemoveLayer(index)
	})
}

// MoveLayer relocates a layer within the stack.
func (d *Document) MoveLayer(from, to int) error {
	return d.structuralMutation(func() error {
		return d.Grid.MoveLayer(from, to)
	})
}

// ResizeColumns changes the document's column count.
func (d *Document) ResizeColumns(newCols int) error {
	return d.structuralMutation(func() error {
		return d.Grid.ResizeColumns(newCols)
	})
}

// ResizeRows changes the document's row count.
func (d *Document) ResizeRows(newRows int) error {
	return d.structuralMutation(func() error {
		return d.Grid.ResizeRows(newRows)
	})
}

// UndoOnce reverts the most recent undo entry.
func (d *Document) UndoOnce() error { return d.Undo.Undo(d.Grid) }

// RedoOnce reapplies the most recently undone entry.
func (d *Document) RedoOnce() error { return d.Undo.Redo(d.Grid) }
