// Package undo implements the page-granularity undo/redo engine of
// spec.md §4.4. It is grounded on the teacher's genetic/persistence DTO
// save/restore shape (capture a value, restore it later) generalized to
// two entry kinds and a page-indexed sparse capture, and on
// engine/fsm/machine.go's registry-plus-explicit-transition bookkeeping
// style for the capture-scope state machine.
package undo

import (
	"sort"

	"go.uber.org/zap"

	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/grid"
	"github.com/phosphor-art/phosphor/phosphorerr"
)

// PageRows is the fixed page height used for patch-entry capture.
const PageRows = 64

// Kind distinguishes a full-document snapshot entry from a sparse patch
// entry.
type Kind int

const (
	KindUnclassified Kind = iota
	KindSnapshot
	KindPatch
)

// pageKey identifies one captured patch page.
type pageKey struct {
	Layer int
	Page  int
}

// patchPage is one captured row-page fragment.
type patchPage struct {
	rowCount int
	cp       []rune
	fg       []color.Color32
	bg       []color.Color32
	attrs    []color.Attrs
}

// Entry is one undo/redo stack element: either a full Snapshot or a
// sparse Patch over modified row-pages.
type Entry struct {
	Kind Kind

	// Common metadata, valid for both kinds.
	Cols        int
	Rows        int
	ActiveLayer int
	Caret       grid.Point
	StateToken  uint64

	// Patch-only.
	LayerMetas []grid.LayerMeta
	PageRows   int
	pages      map[pageKey]*patchPage

	// Snapshot-only.
	Snapshot *grid.DocSnapshot
}

// Engine owns the undo/redo stacks, the currently open capture scope (if
// any), and the monotonic state token.
type Engine struct {
	undoStack []*Entry
	redoStack []*Entry
	limit     int // 0 = unlimited

	open    bool
	current *Entry

	stateToken uint64 // 0 reserved for "uninitialized"

	externalScopeOpen  bool
	externalScopeDirty bool

	logger *zap.Logger
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a logger the engine uses for Debug-level page
// capture/compaction notices. The default is a no-op logger, so callers
// that never pass this option see no log output.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine with the given undo_limit (0 = unlimited,
// spec.md §9's resolved "0 means unlimited").
func NewEngine(limit int, opts ...Option) *Engine {
	e := &Engine{limit: limit, stateToken: 1, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StateToken returns the engine's current state token.
func (e *Engine) StateToken() uint64 { return e.stateToken }

// Limit returns the engine's configured undo_limit (0 = unlimited).
func (e *Engine) Limit() int { return e.limit }

// SetLimit changes the undo_limit without touching the current stacks;
// the new limit is enforced starting with the next CloseCapture push.
func (e *Engine) SetLimit(limit int) { e.limit = limit }

// SetStateToken forcibly sets the token, used when loading a project
// file (spec.md §4.7: "assign fresh state tokens to every entry").
func (e *Engine) SetStateToken(v uint64) { e.stateToken = v }

func (e *Engine) bumpToken() uint64 {
	e.stateToken++
	return e.stateToken
}

// OpenCapture opens a capture scope if one isn't already open. No entry
// is materialized until the first mutation inside the scope.
func (e *Engine) OpenCapture() {
	if e.open {
		return
	}
	e.open = true
	e.current = nil
}

// CaptureOpen reports whether a capture scope is currently open.
func (e *Engine) CaptureOpen() bool { return e.open }

// CloseCapture closes the current scope. If any mutation occurred
// (current != nil), the entry is pushed onto the undo stack and the
// redo stack is cleared; otherwise nothing is pushed.
func (e *Engine) CloseCapture() {
	if !e.open {
		return
	}
	e.open = false
	if e.current == nil {
		return
	}
	e.undoStack = append(e.undoStack, e.current)
	if e.limit > 0 {
		for len(e.undoStack) > e.limit {
			e.undoStack = e.undoStack[1:]
			e.logger.Debug("undo stack compacted", zap.Int("limit", e.limit))
		}
	}
	e.redoStack = nil
	e.current = nil
	// The entry just pushed recorded the pre-edit token; the document now
	// holds new content, so it needs a fresh identity of its own.
	e.bumpToken()
}

// NoteCellWrite must be called before a cell-level write at (layer, row)
// on store. It classifies the open scope's entry as a Patch the first
// time it's called, and captures the target page the first time that
// page is touched within the scope. It is a no-op if no scope is open —
// callers that mutate outside a scope (e.g. project load, the tool
// runtime's external-mutation path) are expected to never call it.
func (e *Engine) NoteCellWrite(store *grid.Store, layer, row int) {
	if !e.open {
		return
	}
	if e.current == nil {
		e.current = e.newPatchEntry(store)
	}
	if e.current.Kind != KindPatch {
		// Already classified as a snapshot entry (a structural op opened
		// this scope); structural entries pre-image the whole document
		// and never need page capture.
		return
	}
	page := row / PageRows
	key := pageKey{Layer: layer, Page: page}
	if _, ok := e.current.pages[key]; ok {
		return
	}
	rowCount, cp, fg, bg, at := store.CapturePage(layer, page, PageRows)
	e.current.pages[key] = &patchPage{rowCount: rowCount, cp: cp, fg: fg, bg: bg, attrs: at}
	e.logger.Debug("undo page captured", zap.Int("layer", layer), zap.Int("page", page), zap.Int("rows", rowCount))
}

// NoteStructural must be called before a structural mutation (add/
// remove/move layer, rename, resize, bulk clear/fill, load-from-file).
// It classifies the open scope's entry as a Snapshot the first time it's
// called, capturing the pre-image immediately (before the caller applies
// the structural change).
func (e *Engine) NoteStructural(store *grid.Store) {
	if !e.open {
		return
	}
	if e.current != nil {
		// Once classified, never downgraded; a snapshot entry already
		// covers any further structural or cell mutation in this scope.
		return
	}
	snap := store.Snapshot()
	e.current = &Entry{
		Kind:        KindSnapshot,
		Cols:        store.Cols,
		Rows:        store.Rows,
		ActiveLayer: store.ActiveLayer,
		Caret:       store.Caret,
		StateToken:  e.stateToken,
		Snapshot:    &snap,
	}
}

func (e *Engine) newPatchEntry(store *grid.Store) *Entry {
	metas := make([]grid.LayerMeta, store.LayerCount())
	for i := range metas {
		metas[i] = store.LayerMetaAt(i)
	}
	return &Entry{
		Kind:        KindPatch,
		Cols:        store.Cols,
		Rows:        store.Rows,
		ActiveLayer: store.ActiveLayer,
		Caret:       store.Caret,
		StateToken:  e.stateToken,
		LayerMetas:  metas,
		PageRows:    PageRows,
		pages:       make(map[pageKey]*patchPage),
	}
}

// symmetricCapture builds the "current state" entry of the same kind and
// (for patches) the same page keys as src, used to populate the opposite
// stack during Undo/Redo. token is the state token the document holds
// right now, before src is applied — it's what a later Undo/Redo of the
// resulting entry must restore.
func symmetricCapture(store *grid.Store, src *Entry, token uint64) *Entry {
	if src.Kind == KindSnapshot {
		snap := store.Snapshot()
		return &Entry{
			Kind:        KindSnapshot,
			Cols:        store.Cols,
			Rows:        store.Rows,
			ActiveLayer: store.ActiveLayer,
			Caret:       store.Caret,
			StateToken:  token,
			Snapshot:    &snap,
		}
	}
	metas := make([]grid.LayerMeta, store.LayerCount())
	for i := range metas {
		metas[i] = store.LayerMetaAt(i)
	}
	out := &Entry{
		Kind:        KindPatch,
		Cols:        store.Cols,
		Rows:        store.Rows,
		ActiveLayer: store.ActiveLayer,
		Caret:       store.Caret,
		StateToken:  token,
		LayerMetas:  metas,
		PageRows:    src.PageRows,
		pages:       make(map[pageKey]*patchPage),
	}
	for key := range src.pages {
		rowCount, cp, fg, bg, at := store.CapturePage(key.Layer, key.Page, src.PageRows)
		out.pages[key] = &patchPage{rowCount: rowCount, cp: cp, fg: fg, bg: bg, attrs: at}
	}
	return out
}

func apply(store *grid.Store, e *Entry) {
	if e.Kind == KindSnapshot {
		store.Restore(*e.Snapshot)
		return
	}
	store.Cols = e.Cols
	store.Rows = e.Rows
	store.ActiveLayer = e.ActiveLayer
	store.Caret = e.Caret
	for i, m := range e.LayerMetas {
		if i < store.LayerCount() {
			store.SetLayerMetaAt(i, m)
		}
	}
	for key, p := range e.pages {
		store.RestorePage(key.Layer, key.Page, e.PageRows, p.rowCount, p.cp, p.fg, p.bg, p.attrs)
	}
}

// Undo pops the top undo entry, pushes its symmetric current-state
// counterpart onto the redo stack, applies the popped entry to store,
// and restores the state token from the popped entry.
func (e *Engine) Undo(store *grid.Store) error {
	if len(e.undoStack) == 0 {
		return phosphorerr.ErrNothingToUndo
	}
	top := e.undoStack[len(e.undoStack)-1]
	e.undoStack = e.undoStack[:len(e.undoStack)-1]

	redo := symmetricCapture(store, top, e.stateToken)
	e.redoStack = append(e.redoStack, redo)

	apply(store, top)
	e.stateToken = top.StateToken
	return nil
}

// Redo is the symmetric counterpart of Undo.
func (e *Engine) Redo(store *grid.Store) error {
	if len(e.redoStack) == 0 {
		return phosphorerr.ErrNothingToRedo
	}
	top := e.redoStack[len(e.redoStack)-1]
	e.redoStack = e.redoStack[:len(e.redoStack)-1]

	undo := symmetricCapture(store, top, e.stateToken)
	e.undoStack = append(e.undoStack, undo)

	apply(store, top)
	e.stateToken = top.StateToken
	return nil
}

// UndoDepth and RedoDepth report stack sizes, used by a host's dirty/
// history UI.
func (e *Engine) UndoDepth() int { return len(e.undoStack) }
func (e *Engine) RedoDepth() int { return len(e.redoStack) }

// OpenExternalMutationScope starts a non-undoable "external mutation"
// scope (spec.md §4.4 dirty-coalescing optimization): the state token
// bumps at most once for the whole scope instead of once per write.
func (e *Engine) OpenExternalMutationScope() {
	e.externalScopeOpen = true
	e.externalScopeDirty = false
}

// NoteExternalMutation marks the open external scope dirty; call this
// from each high-frequency script write instead of bumping the token
// directly.
func (e *Engine) NoteExternalMutation() {
	if e.externalScopeOpen {
		e.externalScopeDirty = true
		return
	}
	e.bumpToken()
}

// CloseExternalMutationScope bumps the token exactly once if any
// mutation occurred since OpenExternalMutationScope.
func (e *Engine) CloseExternalMutationScope() {
	if e.externalScopeOpen && e.externalScopeDirty {
		e.bumpToken()
	}
	e.externalScopeOpen = false
	e.externalScopeDirty = false
}

// BumpToken increments and returns the state token; called by ordinary
// (non-external, non-undo-entry) mutations such as caret-only moves that
// still need to invalidate a "dirty" indicator.
func (e *Engine) BumpToken() uint64 { return e.bumpToken() }

// PageData is the exported, flat form of one captured patch page. project
// persistence reads and writes history through this type instead of the
// unexported pageKey/patchPage pair.
type PageData struct {
	Layer, Page, RowCount int
	CP                    []rune
	FG, BG                []color.Color32
	Attrs                 []color.Attrs
}

// Pages returns e's captured patch pages in their flat, exported form,
// ordered by (Layer, Page) so that repeated calls and serialization of
// the same entry are deterministic despite the underlying map's
// randomized iteration order. It returns nil for a Snapshot entry.
func (e *Entry) Pages() []PageData {
	if e.Kind != KindPatch {
		return nil
	}
	out := make([]PageData, 0, len(e.pages))
	for k, p := range e.pages {
		out = append(out, PageData{Layer: k.Layer, Page: k.Page, RowCount: p.rowCount, CP: p.cp, FG: p.fg, BG: p.bg, Attrs: p.attrs})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Layer != out[j].Layer {
			return out[i].Layer < out[j].Layer
		}
		return out[i].Page < out[j].Page
	})
	return out
}

// NewEntry reconstructs an Entry from persisted fields. pages is ignored
// for a Snapshot kind; snapshot is ignored for a Patch kind.
func NewEntry(kind Kind, cols, rows, activeLayer int, caret grid.Point, token uint64, layerMetas []grid.LayerMeta, pageRows int, pages []PageData, snapshot *grid.DocSnapshot) *Entry {
	e := &Entry{
		Kind: kind, Cols: cols, Rows: rows, ActiveLayer: activeLayer, Caret: caret,
		StateToken: token, LayerMetas: layerMetas, PageRows: pageRows, Snapshot: snapshot,
	}
	if kind == KindPatch {
		e.pages = make(map[pageKey]*patchPage, len(pages))
		for _, pd := range pages {
			e.pages[pageKey{Layer: pd.Layer, Page: pd.Page}] = &patchPage{rowCount: pd.RowCount, cp: pd.CP, fg: pd.FG, bg: pd.BG, attrs: pd.Attrs}
		}
	}
	return e
}

// PushUndo and PushRedo append a reconstructed entry directly onto a
// stack. Project load is the only caller; ordinary mutation always goes
// through OpenCapture/CloseCapture instead.
func (e *Engine) PushUndo(entry *Entry) { e.undoStack = append(e.undoStack, entry) }
func (e *Engine) PushRedo(entry *Entry) { e.redoStack = append(e.redoStack, entry) }

// UndoEntries and RedoEntries expose the stacks bottom-to-top, used by
// project persistence to serialize history.
func (e *Engine) UndoEntries() []*Entry { return e.undoStack }
func (e *Engine) RedoEntries() []*Entry { return e.redoStack }
