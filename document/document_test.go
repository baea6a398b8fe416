package document

import (
	"testing"

	"github.com/phosphor-art/phosphor/grid"
)

func ptr[T any](v T) *T { return &v }

func TestWriteCellCoalescesUnderGesture(t *testing.T) {
	d := New(20, 10)

	d.BeginGesture()
	for i := 0; i < 5; i++ {
		ch := rune('a' + i)
		if err := d.WriteCell(0, 0, i, grid.WriteFields{CP: &ch}); err != nil {
			t.Fatal(err)
		}
	}
	d.EndGesture()

	if d.Undo.UndoDepth() != 1 {
		t.Fatalf("expected a single coalesced undo entry, got %d", d.Undo.UndoDepth())
	}

	if err := d.UndoOnce(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		cp, _, _, _, _ := d.Grid.GetCell(0, 0, i)
		if cp != ' ' {
			t.Errorf("expected cell %d reverted, got %c", i, cp)
		}
	}
}

func TestStandaloneWriteCellPushesOwnEntry(t *testing.T) {
	d := New(20, 10)

	ch := rune('X')
	if err := d.WriteCell(0, 0, 0, grid.WriteFields{CP: &ch}); err != nil {
		t.Fatal(err)
	}
	ch2 := rune('Y')
	if err := d.WriteCell(0, 0, 1, grid.WriteFields{CP: &ch2}); err != nil {
		t.Fatal(err)
	}

	if d.Undo.UndoDepth() != 2 {
		t.Fatalf("expected two independent undo entries, got %d", d.Undo.UndoDepth())
	}
}

func TestCreateLayerIsUndoable(t *testing.T) {
	d := New(20, 10)
	before := d.Grid.LayerCount()

	idx := d.CreateLayer("Extra")
	if idx != before {
		t.Fatalf("expected new layer at index %d, got %d", before, idx)
	}
	if d.Grid.LayerCount() != before+1 {
		t.Fatalf("expected layer count %d, got %d", before+1, d.Grid.LayerCount())
	}

	if err := d.UndoOnce(); err != nil {
		t.Fatal(err)
	}
	if d.Grid.LayerCount() != before {
		t.Errorf("expected layer removed after undo, got %d layers", d.Grid.LayerCount())
	}

	if err := d.RedoOnce(); err != nil {
		t.Fatal(err)
	}
	if d.Grid.LayerCount() != before+1 {
		t.Errorf("expected layer restored after redo, got %d layers", d.Grid.LayerCount())
	}
}

func TestStateTokenAdvancesOnMutation(t *testing.T) {
	d := New(20, 10)
	start := d.StateToken()

	if err := d.WriteCell(0, 0, 0, grid.WriteFields{CP: ptr(rune('Z'))}); err != nil {
		t.Fatal(err)
	}
	if d.StateToken() == start {
		t.Error("expected state token to change after a mutation")
	}
}
