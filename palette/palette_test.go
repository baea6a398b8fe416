package palette

import (
	"testing"

	phcolor "github.com/phosphor-art/phosphor/color"
)

func TestBuiltinRoundTrip(t *testing.T) {
	r := NewRegistry()
	ref := Ref{Kind: KindBuiltin, Builtin: Xterm16}
	c := r.IndexToColor32(ref, 9)
	if !c.IsSet() {
		t.Fatal("expected xterm-16 index 9 (bright red) to be set")
	}
	idx, ok := r.Color32ToIndex(ref, c, PolicyEuclideanSRGB)
	if !ok || idx != 9 {
		t.Errorf("expected exact round trip to index 9, got %d ok=%v", idx, ok)
	}
}

func TestUnsetIndex(t *testing.T) {
	r := NewRegistry()
	ref := Ref{Kind: KindBuiltin, Builtin: Xterm256}
	if r.IndexToColor32(ref, phcolor.IndexUnset) != phcolor.Unset {
		t.Error("expected unset sentinel to map to Unset color")
	}
}

func TestDynamicRegistrationDeduplicates(t *testing.T) {
	r := NewRegistry()
	rgb := []phcolor.Color32{phcolor.RGB(1, 2, 3), phcolor.RGB(4, 5, 6)}
	uid1 := r.Register("a", rgb)
	uid2 := r.Register("b", rgb)
	if uid1 != uid2 {
		t.Errorf("expected identical RGB lists to dedupe to the same UID, got %v vs %v", uid1, uid2)
	}
}

func TestNearestMatch(t *testing.T) {
	r := NewRegistry()
	ref := Ref{Kind: KindBuiltin, Builtin: Xterm16}
	near := phcolor.RGB(250, 2, 2) // close to bright red (255,0,0) at index 9
	idx, ok := r.Color32ToIndex(ref, near, PolicyEuclideanSRGB)
	if !ok || idx != 9 {
		t.Errorf("expected nearest match to index 9, got %d ok=%v", idx, ok)
	}
}
