package figlet

import (
	"strings"
	"testing"

	"github.com/phosphor-art/phosphor/glyphart"
)

// buildMiniFont constructs a 2-row-high .flf covering every codepoint
// 32..126: space (32) and bang (33) get their own bodies and every other
// character shares the filler "XX"/"YY", so Parse's 32..126 loop has real
// data to walk without hand-writing 95 characters.
func buildMiniFont(t *testing.T) []byte {
	t.Helper()
	var lines []string
	lines = append(lines, "flf2a$ 2 2 15 0 0")
	for ch := 32; ch <= 126; ch++ {
		switch ch {
		case 32: // space: two blank rows
			lines = append(lines, "$$@", "$$@@")
		case 33: // '!': rows "AB" and "CD"
			lines = append(lines, "AB@", "CD@@")
		default:
			lines = append(lines, "XX@", "YY@@")
		}
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

func TestParseMiniFont(t *testing.T) {
	data := buildMiniFont(t)
	f, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if f.Height != 2 {
		t.Errorf("height: got %d", f.Height)
	}
	if f.HardBlank != '$' {
		t.Errorf("hardblank: got %q", f.HardBlank)
	}
	if !f.HasGlyph('!') {
		t.Fatal("expected '!' glyph present")
	}
	g, ok := f.Glyph('!')
	if !ok {
		t.Fatal("expected glyph decode")
	}
	if g.Height != 2 {
		t.Errorf("glyph height: got %d", g.Height)
	}
	var rows [][]rune
	var cur []rune
	for _, p := range g.Parts {
		switch p.Kind {
		case glyphart.PartNewLine:
			rows = append(rows, cur)
			cur = nil
		case glyphart.PartChar:
			cur = append(cur, p.Ch)
		}
	}
	rows = append(rows, cur)
	if len(rows) != 2 {
		t.Fatalf("expected 2 decoded rows, got %d", len(rows))
	}
	if string(rows[0]) != "AB" || string(rows[1]) != "CD" {
		t.Errorf("unexpected glyph rows: %q %q", string(rows[0]), string(rows[1]))
	}
}

func TestSpaceGlyphUsesHardBlank(t *testing.T) {
	data := buildMiniFont(t)
	f, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	g, ok := f.Glyph(' ')
	if !ok {
		t.Fatal("expected space glyph present")
	}
	count := 0
	for _, p := range g.Parts {
		if p.Kind == glyphart.PartHardBlank {
			count++
		}
	}
	if count != 4 {
		t.Errorf("expected 4 hardblank parts (2x2), got %d", count)
	}
}

func TestMalformedHeaderRejected(t *testing.T) {
	if _, err := Parse([]byte("not a figlet font\n")); err == nil {
		t.Error("expected error for bad magic")
	}
}

func TestMissingAtMarkerRejected(t *testing.T) {
	data := []byte("flf2a$ 1 1 15 0 0\nAB\n")
	if _, err := Parse(data); err == nil {
		t.Error("expected error for glyph line missing '@'")
	}
}
