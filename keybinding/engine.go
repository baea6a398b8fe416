package keybinding

import (
	"sort"

	"github.com/phosphor-art/phosphor/terminal"
)

// EvalContext describes the caller's current UI state for ActionPressed:
// which context regions are active and which platform is running, so a
// binding scoped to a region the caller isn't in, or a platform other
// than the current one, is skipped.
type EvalContext struct {
	Global, Editor, Selection, Canvas bool
	Platform                          Platform
}

func (e EvalContext) active(c Context) bool {
	switch c {
	case ContextEditor:
		return e.Editor
	case ContextSelection:
		return e.Selection
	case ContextCanvas:
		return e.Canvas
	default:
		return e.Global
	}
}

// Registry holds a merged set of actions indexed by id. Chords are
// parsed on demand in ActionPressed rather than precompiled, since the
// action list only changes at load/merge time, not per frame.
type Registry struct {
	actions []Action
	byID    map[string]int
}

// NewRegistry builds a Registry from an explicit action list, typically
// the output of Merge.
func NewRegistry(actions []Action) *Registry {
	r := &Registry{actions: actions}
	r.byID = make(map[string]int, len(actions))
	for i, a := range actions {
		r.byID[a.ID] = i
	}
	return r
}

// Actions returns the registry's current action list.
func (r *Registry) Actions() []Action { return r.actions }

// Action looks up one action by id.
func (r *Registry) Action(id string) (Action, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Action{}, false
	}
	return r.actions[i], true
}

// ActionPressed reports whether ev, in the given eval context, fires the
// named action: a matching enabled binding whose context is active and
// whose platform is either Any or the current platform, and whose chord
// exactly matches ev's key and modifier set (exact match, not subset —
// Ctrl+Shift+Z must not also satisfy a Ctrl+Z binding).
func (r *Registry) ActionPressed(id string, ev terminal.Event, evalCtx EvalContext) bool {
	i, ok := r.byID[id]
	if !ok {
		return false
	}
	for _, b := range r.actions[i].Bindings {
		if !b.Enabled {
			continue
		}
		if !evalCtx.active(b.Context) {
			continue
		}
		if b.Platform != PlatformAny && b.Platform != evalCtx.Platform {
			continue
		}
		pc, err := ParseChord(b.Chord)
		if err != nil {
			continue
		}
		if chordMatches(pc, ev) {
			return true
		}
	}
	return false
}

func chordMatches(pc ParsedChord, ev terminal.Event) bool {
	if ev.Type != terminal.EventKey {
		return false
	}
	if modsOf(ev.Modifiers) != pc.Mods {
		return false
	}
	if pc.AnyEnter {
		return ev.Key == terminal.KeyEnter
	}
	if pc.Key == terminal.KeyRune {
		return ev.Key == terminal.KeyRune && ev.Rune == pc.Rune
	}
	return ev.Key == pc.Key
}

// modsOf translates a terminal.Modifier bitset to Mods. terminal has no
// Super bit, so a chord requiring Super can never match a live event;
// Super-bound chords only round-trip through persistence.
func modsOf(m terminal.Modifier) Mods {
	return Mods{
		Ctrl:  m&terminal.ModCtrl != 0,
		Shift: m&terminal.ModShift != 0,
		Alt:   m&terminal.ModAlt != 0,
	}
}

// DefaultActions returns the curated built-in action set new documents
// start with. Chords follow common text-editor convention; callers merge
// a persisted override file on top via Merge.
func DefaultActions() []Action {
	mk := func(id, title, category, desc, chord string, ctx Context) Action {
		return Action{
			ID: id, Title: title, Category: category, Description: desc,
			Bindings: []Binding{{Enabled: true, Chord: chord, Context: ctx, Platform: PlatformAny}},
		}
	}
	actions := []Action{
		mk("edit.undo", "Undo", "Edit", "Revert the last change", "Ctrl+Z", ContextGlobal),
		mk("edit.redo", "Redo", "Edit", "Reapply the last undone change", "Ctrl+Shift+Z", ContextGlobal),
		mk("edit.copy", "Copy", "Edit", "Copy the current selection", "Ctrl+C", ContextSelection),
		mk("edit.cut", "Cut", "Edit", "Cut the current selection", "Ctrl+X", ContextSelection),
		mk("edit.paste", "Paste", "Edit", "Paste the clipboard", "Ctrl+V", ContextEditor),
		mk("edit.select_all", "Select All", "Edit", "Select the entire canvas", "Ctrl+A", ContextEditor),
		mk("selection.clear_or_cancel", "Clear or Cancel Selection", "Selection", "Clear the active selection, or cancel a floating move", "Escape", ContextSelection),
		mk("selection.delete", "Delete Selection", "Selection", "Delete the contents of the active selection", "Delete", ContextSelection),
		mk("file.save", "Save", "File", "Save the current document", "Ctrl+S", ContextGlobal),
		mk("file.open", "Open", "File", "Open a document", "Ctrl+O", ContextGlobal),
		mk("layer.new", "New Layer", "Layer", "Create a new layer above the active one", "Ctrl+Shift+N", ContextEditor),
		mk("canvas.pan", "Pan Canvas", "Canvas", "Pan the canvas view", "Space", ContextCanvas),
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i].ID < actions[j].ID })
	return actions
}

// commonHotkeyIDs names the six fixed actions EvalCommonHotkeys checks,
// matching the original engine's hard-coded hotkey set.
var commonHotkeyIDs = []string{
	"edit.copy",
	"edit.cut",
	"edit.paste",
	"edit.select_all",
	"selection.clear_or_cancel",
	"selection.delete",
}

// CommonHotkeys reports, for the current event and eval context, which of
// the six fixed editor hotkeys (copy/cut/paste/select-all/clear-or-cancel
// selection/delete selection) fired.
func (r *Registry) CommonHotkeys(ev terminal.Event, evalCtx EvalContext) map[string]bool {
	out := make(map[string]bool, len(commonHotkeyIDs))
	for _, id := range commonHotkeyIDs {
		out[id] = r.ActionPressed(id, ev, evalCtx)
	}
	return out
}
