package color

import "testing"

func TestRGBRoundTrip(t *testing.T) {
	c := RGB(10, 20, 30)
	r, g, b := c.Channels()
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("Expected (10,20,30), got (%d,%d,%d)", r, g, b)
	}
	if !c.IsSet() {
		t.Error("Expected RGB color to be set")
	}
}

func TestUnset(t *testing.T) {
	if Unset.IsSet() {
		t.Error("Expected zero Color32 to be unset")
	}
}

func TestAttrs(t *testing.T) {
	a := AttrBold.Set(AttrUnderline)
	if !a.Has(AttrBold) || !a.Has(AttrUnderline) {
		t.Errorf("Expected bold+underline, got %v", a)
	}
	if a.Has(AttrBlink) {
		t.Error("Did not expect blink")
	}
	a = a.Clear(AttrBold)
	if a.Has(AttrBold) {
		t.Error("Expected bold cleared")
	}
	if !a.Has(AttrUnderline) {
		t.Error("Expected underline to survive clear")
	}
}
