package undo

import (
	"testing"

	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/grid"
)

func ptr[T any](v T) *T { return &v }

// Scenario 4: undo page granularity on a large document (spec.md §8).
func TestUndoPageGranularityOnLargeDocument(t *testing.T) {
	store := grid.NewStore(2000, 1000)
	e := NewEngine(0)

	e.OpenCapture()
	e.NoteCellWrite(store, 0, 500)
	ch := rune('Z')
	if err := store.SetCell(0, 500, 500, grid.WriteFields{CP: &ch}); err != nil {
		t.Fatal(err)
	}
	e.CloseCapture()

	if e.UndoDepth() != 1 {
		t.Fatalf("expected one undo entry, got %d", e.UndoDepth())
	}
	entry := e.undoStack[0]
	if entry.Kind != KindPatch {
		t.Fatalf("expected patch entry, got %v", entry.Kind)
	}
	wantKey := pageKey{Layer: 0, Page: 500 / PageRows}
	page, ok := entry.pages[wantKey]
	if !ok {
		t.Fatalf("expected page %+v captured, got keys %v", wantKey, keysOf(entry.pages))
	}
	if page.rowCount != PageRows {
		t.Errorf("expected full page of %d rows, got %d", PageRows, page.rowCount)
	}
	if len(page.cp) != PageRows*2000 {
		t.Errorf("expected %d cells captured, got %d", PageRows*2000, len(page.cp))
	}

	if err := e.Undo(store); err != nil {
		t.Fatal(err)
	}
	gotCP, _, _, _, _ := store.GetCell(0, 500, 500)
	if gotCP != ' ' {
		t.Errorf("expected cell restored to blank after undo, got %c", gotCP)
	}
	if e.RedoDepth() != 1 {
		t.Fatalf("expected one redo entry, got %d", e.RedoDepth())
	}
	redoEntry := e.redoStack[0]
	if _, ok := redoEntry.pages[wantKey]; !ok {
		t.Errorf("expected redo entry to carry the same page key %+v", wantKey)
	}

	if err := e.Redo(store); err != nil {
		t.Fatal(err)
	}
	gotCP, _, _, _, _ = store.GetCell(0, 500, 500)
	if gotCP != 'Z' {
		t.Errorf("expected cell restored to Z after redo, got %c", gotCP)
	}
}

func keysOf(m map[pageKey]*patchPage) []pageKey {
	out := make([]pageKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestUndoRedoIdentityRoundTrip(t *testing.T) {
	store := grid.NewStore(40, 20)
	e := NewEngine(0)

	red := color.RGB(255, 0, 0)
	e.OpenCapture()
	e.NoteCellWrite(store, 0, 3)
	if err := store.SetCell(0, 3, 3, grid.WriteFields{CP: ptr(rune('Q')), FG: &red}); err != nil {
		t.Fatal(err)
	}
	e.CloseCapture()

	before := store.Snapshot()

	if err := e.Undo(store); err != nil {
		t.Fatal(err)
	}
	if err := e.Redo(store); err != nil {
		t.Fatal(err)
	}

	after := store.Snapshot()
	if len(before.Layers) != len(after.Layers) {
		t.Fatalf("layer count mismatch after undo/redo round trip")
	}
	for i := range before.Layers {
		if string(before.Layers[i].CP) != string(after.Layers[i].CP) {
			t.Errorf("layer %d content diverged after undo/redo round trip", i)
		}
	}
}

func TestStructuralMutationUsesSnapshotEntry(t *testing.T) {
	store := grid.NewStore(10, 5)
	e := NewEngine(0)

	e.OpenCapture()
	e.NoteStructural(store)
	store.CreateLayer("Extra")
	e.CloseCapture()

	if e.UndoDepth() != 1 {
		t.Fatalf("expected one undo entry, got %d", e.UndoDepth())
	}
	if e.undoStack[0].Kind != KindSnapshot {
		t.Fatalf("expected snapshot entry for structural mutation")
	}
	if store.LayerCount() != 2 {
		t.Fatalf("expected 2 layers before undo, got %d", store.LayerCount())
	}

	if err := e.Undo(store); err != nil {
		t.Fatal(err)
	}
	if store.LayerCount() != 1 {
		t.Errorf("expected layer removed after undo, got %d layers", store.LayerCount())
	}

	if err := e.Redo(store); err != nil {
		t.Fatal(err)
	}
	if store.LayerCount() != 2 {
		t.Errorf("expected layer restored after redo, got %d layers", store.LayerCount())
	}
}

func TestUndoEmptyStackReturnsError(t *testing.T) {
	e := NewEngine(0)
	store := grid.NewStore(10, 5)
	if err := e.Undo(store); err == nil {
		t.Error("expected error undoing empty stack")
	}
	if err := e.Redo(store); err == nil {
		t.Error("expected error redoing empty stack")
	}
}

func TestUndoLimitTrimsOldestEntry(t *testing.T) {
	store := grid.NewStore(10, 5)
	e := NewEngine(2)

	for i := 0; i < 3; i++ {
		e.OpenCapture()
		e.NoteCellWrite(store, 0, 0)
		ch := rune('a' + i)
		_ = store.SetCell(0, 0, 0, grid.WriteFields{CP: &ch})
		e.CloseCapture()
	}
	if e.UndoDepth() != 2 {
		t.Fatalf("expected undo stack trimmed to limit 2, got %d", e.UndoDepth())
	}
}

func TestCloseCaptureWithoutMutationPushesNothing(t *testing.T) {
	e := NewEngine(0)
	e.OpenCapture()
	e.CloseCapture()
	if e.UndoDepth() != 0 {
		t.Errorf("expected no entry pushed for an empty capture scope, got %d", e.UndoDepth())
	}
}

func TestExternalMutationScopeCoalescesTokenBump(t *testing.T) {
	e := NewEngine(0)
	start := e.StateToken()
	e.OpenExternalMutationScope()
	e.NoteExternalMutation()
	e.NoteExternalMutation()
	e.NoteExternalMutation()
	e.CloseExternalMutationScope()
	if e.StateToken() != start+1 {
		t.Errorf("expected exactly one token bump for the scope, got delta %d", e.StateToken()-start)
	}
}
