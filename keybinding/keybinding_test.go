package keybinding

import (
	"testing"

	"github.com/phosphor-art/phosphor/terminal"
)

func TestParseChordBasic(t *testing.T) {
	cases := []struct {
		chord    string
		wantKey  terminal.Key
		wantRune rune
		wantMods Mods
	}{
		{"Ctrl+Z", terminal.KeyRune, 'z', Mods{Ctrl: true}},
		{"Ctrl+Shift+Z", terminal.KeyRune, 'z', Mods{Ctrl: true, Shift: true}},
		{"Alt+B", terminal.KeyRune, 'b', Mods{Alt: true}},
		{"F1", terminal.KeyF1, 0, Mods{}},
		{"Escape", terminal.KeyEscape, 0, Mods{}},
		{"Delete", terminal.KeyDelete, 0, Mods{}},
		{"Ctrl++", terminal.KeyRune, '=', Mods{Ctrl: true, Shift: true}},
		{"Enter", terminal.KeyEnter, 0, Mods{}},
	}
	for _, tc := range cases {
		got, err := ParseChord(tc.chord)
		if err != nil {
			t.Fatalf("ParseChord(%q): %v", tc.chord, err)
		}
		if got.Key != tc.wantKey || got.Rune != tc.wantRune || got.Mods != tc.wantMods {
			t.Errorf("ParseChord(%q) = %+v, want key=%v rune=%q mods=%+v", tc.chord, got, tc.wantKey, tc.wantRune, tc.wantMods)
		}
	}
}

func TestParseChordRejectsMultipleKeys(t *testing.T) {
	if _, err := ParseChord("Ctrl+A+B"); err == nil {
		t.Error("expected error for chord with two key tokens")
	}
	if _, err := ParseChord(""); err == nil {
		t.Error("expected error for empty chord")
	}
	if _, err := ParseChord("Ctrl"); err == nil {
		t.Error("expected error for modifier-only chord")
	}
}

func TestEnterMatchesEitherCROrLF(t *testing.T) {
	pc, err := ParseChord("Enter")
	if err != nil {
		t.Fatal(err)
	}
	if !pc.AnyEnter {
		t.Fatal("expected AnyEnter for Enter chord")
	}
}

func TestMergeOverridesReplaceBindingsButKeepLabels(t *testing.T) {
	defaults := []Action{
		{ID: "edit.undo", Title: "Undo", Category: "Edit",
			Bindings: []Binding{{Enabled: true, Chord: "Ctrl+Z", Context: ContextGlobal, Platform: PlatformAny}}},
	}
	overrides := []Action{
		{ID: "edit.undo",
			Bindings: []Binding{{Enabled: true, Chord: "Ctrl+U", Context: ContextGlobal, Platform: PlatformAny}}},
	}

	merged := Merge(defaults, overrides)
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged action, got %d", len(merged))
	}
	a := merged[0]
	if a.Title != "Undo" {
		t.Errorf("expected default title preserved, got %q", a.Title)
	}
	if len(a.Bindings) != 1 || a.Bindings[0].Chord != "Ctrl+U" {
		t.Errorf("expected override binding to replace default, got %+v", a.Bindings)
	}
}

func TestMergeAppendsUnknownOverrideAction(t *testing.T) {
	defaults := []Action{{ID: "edit.undo", Title: "Undo"}}
	overrides := []Action{{ID: "custom.macro", Title: "My Macro",
		Bindings: []Binding{{Enabled: true, Chord: "Ctrl+M", Context: ContextGlobal, Platform: PlatformAny}}}}

	merged := Merge(defaults, overrides)
	if len(merged) != 2 {
		t.Fatalf("expected 2 actions after merge, got %d", len(merged))
	}
	if merged[1].ID != "custom.macro" {
		t.Errorf("expected appended action to retain its id, got %q", merged[1].ID)
	}
}

func TestMergeDisabledOverrideSuppressesDefault(t *testing.T) {
	defaults := []Action{
		{ID: "edit.paste",
			Bindings: []Binding{{Enabled: true, Chord: "Ctrl+V", Context: ContextEditor, Platform: PlatformAny}}},
	}
	overrides := []Action{
		{ID: "edit.paste",
			Bindings: []Binding{{Enabled: false, Chord: "Ctrl+V", Context: ContextEditor, Platform: PlatformAny}}},
	}

	merged := Merge(defaults, overrides)
	if merged[0].Bindings[0].Enabled {
		t.Error("expected override with enabled=false to suppress the default binding")
	}
}

func TestMergeInheritsRepeatWhenOverrideOmitsIt(t *testing.T) {
	defaults := []Action{
		{ID: "canvas.pan", Bindings: []Binding{
			{Enabled: true, Chord: "Space", Context: ContextCanvas, Platform: PlatformAny, Repeat: true, repeatSet: true},
		}},
	}
	overrides := []Action{
		{ID: "canvas.pan", Bindings: []Binding{
			{Enabled: true, Chord: "Space", Context: ContextCanvas, Platform: PlatformAny},
		}},
	}

	merged := Merge(defaults, overrides)
	if !merged[0].Bindings[0].Repeat {
		t.Error("expected inherited repeat=true from matching default binding")
	}
}

func TestActionPressedRequiresExactModifierMatch(t *testing.T) {
	reg := NewRegistry([]Action{
		{ID: "edit.undo", Bindings: []Binding{{Enabled: true, Chord: "Ctrl+Z", Context: ContextGlobal, Platform: PlatformAny}}},
		{ID: "edit.redo", Bindings: []Binding{{Enabled: true, Chord: "Ctrl+Shift+Z", Context: ContextGlobal, Platform: PlatformAny}}},
	})
	evalCtx := EvalContext{Global: true, Platform: PlatformLinux}

	redoEvent := terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'z', Modifiers: terminal.ModCtrl | terminal.ModShift}
	if reg.ActionPressed("edit.undo", redoEvent, evalCtx) {
		t.Error("Ctrl+Shift+Z must not also satisfy the Ctrl+Z binding")
	}
	if !reg.ActionPressed("edit.redo", redoEvent, evalCtx) {
		t.Error("expected Ctrl+Shift+Z to satisfy edit.redo")
	}

	undoEvent := terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'z', Modifiers: terminal.ModCtrl}
	if !reg.ActionPressed("edit.undo", undoEvent, evalCtx) {
		t.Error("expected Ctrl+Z to satisfy edit.undo")
	}
}

func TestActionPressedGatesOnContextAndPlatform(t *testing.T) {
	reg := NewRegistry([]Action{
		{ID: "edit.select_all", Bindings: []Binding{{Enabled: true, Chord: "Ctrl+A", Context: ContextEditor, Platform: PlatformMacOS}}},
	})
	ev := terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'a', Modifiers: terminal.ModCtrl}

	if reg.ActionPressed("edit.select_all", ev, EvalContext{Editor: true, Platform: PlatformLinux}) {
		t.Error("expected macOS-only binding to be gated out on Linux")
	}
	if !reg.ActionPressed("edit.select_all", ev, EvalContext{Editor: true, Platform: PlatformMacOS}) {
		t.Error("expected binding to fire in its context on its platform")
	}
	if reg.ActionPressed("edit.select_all", ev, EvalContext{Canvas: true, Platform: PlatformMacOS}) {
		t.Error("expected binding to be gated out when its context isn't active")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	actions := DefaultActions()
	data, err := Save(actions)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(actions) {
		t.Fatalf("expected %d actions after round trip, got %d", len(actions), len(loaded))
	}
	merged := Merge(actions, loaded)
	if len(merged) != len(actions) {
		t.Errorf("re-merging a saved-and-loaded set onto itself should not grow the action count, got %d", len(merged))
	}
}

func TestDefaultActionsAreSortedAndUnique(t *testing.T) {
	actions := DefaultActions()
	seen := make(map[string]bool, len(actions))
	for i, a := range actions {
		if seen[a.ID] {
			t.Fatalf("duplicate default action id %q", a.ID)
		}
		seen[a.ID] = true
		if i > 0 && actions[i-1].ID > a.ID {
			t.Fatalf("expected default actions sorted by id, %q came after %q", a.ID, actions[i-1].ID)
		}
	}
}
