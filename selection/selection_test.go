package selection

import (
	"testing"

	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/grid"
)

func ptr[T any](v T) *T { return &v }

func TestSetCornersClipsAndOrders(t *testing.T) {
	var s State
	s.SetCorners(80, 5, 5, 2, 2)
	if s.Rect != (Rect{X: 2, Y: 2, W: 3, H: 3}) {
		t.Errorf("unexpected rect %+v", s.Rect)
	}
}

func TestSetCornersEmptyClears(t *testing.T) {
	var s State
	s.SetCorners(80, 1, 1, 1, 1)
	if s.HasSelection() {
		t.Error("expected empty rect to clear selection")
	}
}

// Scenario 2: selection cut-and-paste across layers (spec.md §8).
func TestCutAndPasteAcrossLayers(t *testing.T) {
	store := grid.NewStore(80, 24)
	layer1 := store.CreateLayer("Layer1")

	red := color.RGB(255, 0, 0)
	if err := store.SetCell(0, 0, 0, grid.WriteFields{CP: ptr(rune('A')), FG: &red}); err != nil {
		t.Fatal(err)
	}

	var sel State
	sel.SetCorners(80, 0, 0, 1, 1)

	clip := &Clipboard{}
	if err := sel.Cut(store, clip, 0); err != nil {
		t.Fatal(err)
	}

	gotCP, gotFG, _, _, _ := store.GetCell(0, 0, 0)
	if gotCP != ' ' || gotFG != color.Unset {
		t.Errorf("expected source cleared, got cp=%c fg=%v", gotCP, gotFG)
	}
	w, h, cpBuf, fgBuf, _ := clip.Get()
	if w != 1 || h != 1 || cpBuf[0] != 'A' || fgBuf[0] != red {
		t.Errorf("unexpected clipboard contents w=%d h=%d cp=%v fg=%v", w, h, cpBuf, fgBuf)
	}

	if err := sel.PasteFromClipboard(store, clip, layer1, 5, 5, PasteBoth, false); err != nil {
		t.Fatal(err)
	}
	gotCP, gotFG, _, _, _ = store.GetCell(layer1, 5, 5)
	if gotCP != 'A' || gotFG != red {
		t.Errorf("expected pasted A/red at (5,5) on layer1, got cp=%c fg=%v", gotCP, gotFG)
	}
	if sel.Rect != (Rect{X: 5, Y: 5, W: 1, H: 1}) {
		t.Errorf("expected selection set to pasted rect, got %+v", sel.Rect)
	}
}

// Scenario 3: floating move with transparency lock (spec.md §8).
func TestFloatingMoveForcesCopyUnderLock(t *testing.T) {
	store := grid.NewStore(80, 24)
	l1 := store.CreateLayer("Layer1")

	for i := 0; i < 4; i++ {
		ch := rune('A' + i)
		if err := store.SetCell(l1, 10, 10+i, grid.WriteFields{CP: &ch}); err != nil {
			t.Fatal(err)
		}
	}
	store.Layers[l1].LockTransparency = true

	var sel State
	sel.SetCorners(80, 10, 10, 14, 11)

	if err := sel.BeginMove(store, 11, 10, false, l1); err != nil {
		t.Fatal(err)
	}
	if sel.Move.Cut {
		t.Error("expected Cut false: the lock forced a copy, so the source was not cleared")
	}
	// Source must remain intact because the lock forced copy=true.
	gotCP, _, _, _, _ := store.GetCell(l1, 10, 10)
	if gotCP != 'A' {
		t.Errorf("expected source untouched under lock, got %c", gotCP)
	}

	if err := sel.UpdateMove(store, 15, 10); err != nil {
		t.Fatal(err)
	}
	if err := sel.CommitMove(store); err != nil {
		t.Fatal(err)
	}

	gotCP, _, _, _, _ = store.GetCell(l1, 10, 10)
	if gotCP != 'A' {
		t.Errorf("expected source cells to remain after commit, got %c", gotCP)
	}
	gotCP, _, _, _, _ = store.GetCell(l1, 10, 14)
	if gotCP != 'A' {
		t.Errorf("expected payload written at destination, got %c", gotCP)
	}
	if sel.Rect != (Rect{X: 14, Y: 10, W: 4, H: 1}) {
		t.Errorf("unexpected final selection %+v", sel.Rect)
	}
}

func TestTransparentSpacesPasteSkipsSpaces(t *testing.T) {
	store := grid.NewStore(10, 10)
	_ = store.SetCell(0, 0, 0, grid.WriteFields{CP: ptr(rune('X'))})

	var sel State
	cp := []rune{' '}
	fg := []color.Color32{0}
	bg := []color.Color32{0}
	sel.Paste(store, 0, 0, 0, 1, 1, cp, fg, bg, PasteBoth, true)

	gotCP, _, _, _, _ := store.GetCell(0, 0, 0)
	if gotCP != 'X' {
		t.Errorf("expected destination preserved when source is space, got %c", gotCP)
	}
}
