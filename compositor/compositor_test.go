package compositor

import (
	"testing"

	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/grid"
)

func ptr[T any](v T) *T { return &v }

func TestTopLayerWins(t *testing.T) {
	s := grid.NewStore(10, 10)
	topIdx := s.CreateLayer("Top")
	_ = s.SetCell(0, 0, 0, grid.WriteFields{CP: ptr(rune('A')), FG: ptr(color.RGB(255, 0, 0))})
	_ = s.SetCell(topIdx, 0, 0, grid.WriteFields{CP: ptr(rune('B')), FG: ptr(color.RGB(0, 255, 0))})

	c := GetCompositeCell(s, 0, 0)
	if c.CP != 'B' || c.FG != color.RGB(0, 255, 0) {
		t.Errorf("expected top layer B/green to win, got %c %v", c.CP, c.FG)
	}
}

func TestSpaceNeverContributesFG(t *testing.T) {
	s := grid.NewStore(10, 10)
	topIdx := s.CreateLayer("Top")
	_ = s.SetCell(0, 0, 0, grid.WriteFields{CP: ptr(rune('A')), FG: ptr(color.RGB(255, 0, 0))})
	// Top layer cell is a space with attrs set, but must not shadow the bottom glyph's fg/attrs.
	_ = s.SetCell(topIdx, 0, 0, grid.WriteFields{Attrs: ptr(color.AttrUnderline)})

	c := GetCompositeCell(s, 0, 0)
	if c.CP != 'A' || c.FG != color.RGB(255, 0, 0) {
		t.Errorf("expected bottom glyph to show through space, got %c %v", c.CP, c.FG)
	}
}

func TestInvisibleLayerSkipped(t *testing.T) {
	s := grid.NewStore(10, 10)
	topIdx := s.CreateLayer("Top")
	_ = s.SetCell(0, 0, 0, grid.WriteFields{CP: ptr(rune('A'))})
	_ = s.SetCell(topIdx, 0, 0, grid.WriteFields{CP: ptr(rune('B'))})
	s.Layers[topIdx].Visible = false

	c := GetCompositeCell(s, 0, 0)
	if c.CP != 'A' {
		t.Errorf("expected invisible top layer skipped, got %c", c.CP)
	}
}

func TestOutOfBoundsTransparent(t *testing.T) {
	s := grid.NewStore(10, 10)
	c := GetCompositeCell(s, -1, -1)
	if c.CP != ' ' {
		t.Errorf("expected out-of-bounds transparent, got %c", c.CP)
	}
}

func TestMonotoneLayerOrder(t *testing.T) {
	s := grid.NewStore(10, 10)
	topIdx := s.CreateLayer("Top")
	_ = s.SetCell(0, 0, 0, grid.WriteFields{CP: ptr(rune('A'))})
	before := GetCompositeCell(s, 0, 0)
	if before.CP != 'A' {
		t.Fatalf("setup failed: %c", before.CP)
	}
	// Moving the (empty) top layer above should never make a lower
	// non-space cell disappear if the top layer contributes nothing.
	_ = s.MoveLayer(topIdx, 0)
	after := GetCompositeCell(s, 0, 0)
	if after.CP != 'A' {
		t.Errorf("expected lower cell to remain visible after reorder, got %c", after.CP)
	}
}
