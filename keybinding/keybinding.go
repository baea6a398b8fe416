// Package keybinding implements the declarative action/binding schema of
// spec.md §6.6: a list of actions, each carrying one or more chord
// bindings gated by context and platform, a human-readable chord syntax
// parser, and merge-by-action-id semantics for loading a persisted user
// override file over the built-in defaults.
//
// It is grounded on original_source/src/core/key_bindings.cpp's
// KeyBindingsEngine (ParseChordString, MergeDefaultsWithFile,
// ActionPressed) and on input/keytable.go's map-of-behavior-by-key idiom,
// adapted from ImGui's per-frame IsKeyPressed polling to event-driven
// dispatch over this module's own terminal.Event/terminal.Key/
// terminal.Modifier types.
package keybinding

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/phosphor-art/phosphor/phosphorerr"
	"github.com/phosphor-art/phosphor/terminal"
)

// Platform gates a binding to one host OS, or Any.
type Platform uint8

const (
	PlatformAny Platform = iota
	PlatformWindows
	PlatformLinux
	PlatformMacOS
)

func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "windows"
	case PlatformLinux:
		return "linux"
	case PlatformMacOS:
		return "macos"
	default:
		return "any"
	}
}

func platformFromString(s string) Platform {
	switch strings.ToLower(s) {
	case "windows":
		return PlatformWindows
	case "linux":
		return PlatformLinux
	case "macos":
		return PlatformMacOS
	default:
		return PlatformAny
	}
}

// Context names the UI region a binding is active in.
type Context uint8

const (
	ContextGlobal Context = iota
	ContextEditor
	ContextSelection
	ContextCanvas
)

func (c Context) String() string {
	switch c {
	case ContextEditor:
		return "editor"
	case ContextSelection:
		return "selection"
	case ContextCanvas:
		return "canvas"
	default:
		return "global"
	}
}

func contextFromString(s string) Context {
	switch strings.ToLower(s) {
	case "editor":
		return ContextEditor
	case "selection":
		return ContextSelection
	case "canvas":
		return ContextCanvas
	default:
		return ContextGlobal
	}
}

// Binding is one persisted chord assignment for an Action.
type Binding struct {
	Enabled  bool
	Chord    string
	Context  Context
	Platform Platform
	Repeat   bool

	// repeatSet distinguishes "file explicitly set repeat=false" from
	// "file omitted repeat"; Merge inherits the default binding's Repeat
	// only in the latter case.
	repeatSet bool
}

// Action is one named, rebindable command: a stable id, UI labeling, and
// the chords currently assigned to it.
type Action struct {
	ID          string
	Title       string
	Category    string
	Description string
	Bindings    []Binding
}

// Mods is the modifier set of a parsed chord.
type Mods struct {
	Ctrl, Shift, Alt, Super bool
}

// ParsedChord is a chord string compiled into a matchable key plus
// modifier set.
type ParsedChord struct {
	Mods     Mods
	Key      terminal.Key
	Rune     rune // set when Key == terminal.KeyRune
	AnyEnter bool // matches Enter (CR or LF-bound KeyEnter)
}

// ParseChord parses a chord string like "Ctrl+Shift+Z" or "Alt+B" or
// "F1" into a ParsedChord. Tokens are split on '+'; a trailing empty
// token (from "Ctrl++") is read as the '+' key, which parses as Shift+'='.
func ParseChord(chord string) (ParsedChord, error) {
	s := strings.TrimSpace(chord)
	if s == "" {
		return ParsedChord{}, phosphorerr.ErrUnsupportedFeature
	}

	parts := splitChordTokens(s)

	var mods Mods
	var key terminal.Key = terminal.KeyNone
	var r rune
	haveKey := false
	anyEnter := false

	for _, raw := range parts {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			tok = "+"
		}
		tl := strings.ToLower(tok)

		switch tl {
		case "ctrl", "control":
			mods.Ctrl = true
			continue
		case "shift":
			mods.Shift = true
			continue
		case "alt", "option":
			mods.Alt = true
			continue
		case "super", "meta", "win", "windows", "cmd", "command":
			mods.Super = true
			continue
		}

		k, kr, tokAnyEnter, impliedShift, ok := keyFromToken(tl)
		if !ok {
			return ParsedChord{}, phosphorerr.ErrUnsupportedFeature
		}
		if haveKey {
			return ParsedChord{}, phosphorerr.ErrUnsupportedFeature
		}
		key, r, anyEnter, haveKey = k, kr, tokAnyEnter, true
		if impliedShift {
			mods.Shift = true
		}
	}

	if !haveKey {
		return ParsedChord{}, phosphorerr.ErrUnsupportedFeature
	}
	return ParsedChord{Mods: mods, Key: key, Rune: r, AnyEnter: anyEnter}, nil
}

// splitChordTokens splits on '+', collapsing a run of consecutive empty
// tokens (from "Ctrl++") down to one, the way the original's tokenizer
// folds "Ctrl", "", "" into "Ctrl", "" (which maps to the '+' key).
func splitChordTokens(s string) []string {
	raw := strings.Split(s, "+")
	if len(raw) < 2 {
		return raw
	}
	out := raw[:0:0]
	for _, p := range raw {
		if len(out) > 0 && out[len(out)-1] == "" && p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// keyFromToken maps a lowercased key token to a terminal.Key (or, for a
// single printable character, KeyRune plus the literal rune).
func keyFromToken(t string) (key terminal.Key, r rune, anyEnter, impliedShift, ok bool) {
	if t == "+" || t == "plus" {
		// A lone "+" token (from "Ctrl++") is Shift+'=' on US layouts.
		return terminal.KeyRune, '=', false, true, true
	}
	if rr, ok := singleGraphemeRune(t); ok {
		return terminal.KeyRune, rr, false, false, true
	}

	if len(t) >= 2 && t[0] == 'f' {
		if n, isNum := atoiDigits(t[1:]); isNum && n >= 1 && n <= 12 {
			return fKey(n), 0, false, false, true
		}
	}

	switch t {
	case "left":
		return terminal.KeyLeft, 0, false, false, true
	case "right":
		return terminal.KeyRight, 0, false, false, true
	case "up":
		return terminal.KeyUp, 0, false, false, true
	case "down":
		return terminal.KeyDown, 0, false, false, true
	case "home":
		return terminal.KeyHome, 0, false, false, true
	case "end":
		return terminal.KeyEnd, 0, false, false, true
	case "pageup":
		return terminal.KeyPageUp, 0, false, false, true
	case "pagedown":
		return terminal.KeyPageDown, 0, false, false, true
	case "insert":
		return terminal.KeyInsert, 0, false, false, true
	case "delete":
		return terminal.KeyDelete, 0, false, false, true
	case "backspace":
		return terminal.KeyBackspace, 0, false, false, true
	case "escape", "esc":
		return terminal.KeyEscape, 0, false, false, true
	case "tab":
		return terminal.KeyTab, 0, false, false, true
	case "space":
		return terminal.KeyRune, ' ', false, false, true
	case "enter", "return":
		return terminal.KeyEnter, 0, true, false, true
	case ",", "comma":
		return terminal.KeyRune, ',', false, false, true
	case "-", "minus":
		return terminal.KeyRune, '-', false, false, true
	case "=", "equal":
		return terminal.KeyRune, '=', false, false, true
	case ".", "period", "dot":
		return terminal.KeyRune, '.', false, false, true
	case "/", "slash":
		return terminal.KeyRune, '/', false, false, true
	case ";", "semicolon":
		return terminal.KeyRune, ';', false, false, true
	case "'", "apostrophe", "quote":
		return terminal.KeyRune, '\'', false, false, true
	case "[", "leftbracket", "lbracket":
		return terminal.KeyRune, '[', false, false, true
	case "]", "rightbracket", "rbracket":
		return terminal.KeyRune, ']', false, false, true
	case "\\", "backslash":
		return terminal.KeyRune, '\\', false, false, true
	case "`", "grave", "graveaccent":
		return terminal.KeyRune, '`', false, false, true
	}
	return terminal.KeyNone, 0, false, false, false
}

// singleGraphemeRune reports whether t is exactly one user-perceived
// character (one grapheme cluster), using grapheme boundaries rather
// than a raw rune count so a combining-character sequence like "e" +
// U+0301 still counts as a single key token instead of tripping the
// parser's multiple-key-token rejection. Only the cluster's first rune
// is returned; a chord bound to a multi-rune cluster can still be saved
// and loaded but will never match a live single-rune key event.
func singleGraphemeRune(t string) (rune, bool) {
	seg := graphemes.FromString(t)
	if !seg.Next() {
		return 0, false
	}
	cluster := seg.Value()
	if seg.Next() {
		return 0, false
	}
	rs := []rune(cluster)
	if len(rs) == 0 {
		return 0, false
	}
	return rs[0], true
}

func atoiDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func fKey(n int) terminal.Key {
	switch n {
	case 1:
		return terminal.KeyF1
	case 2:
		return terminal.KeyF2
	case 3:
		return terminal.KeyF3
	case 4:
		return terminal.KeyF4
	case 5:
		return terminal.KeyF5
	case 6:
		return terminal.KeyF6
	case 7:
		return terminal.KeyF7
	case 8:
		return terminal.KeyF8
	case 9:
		return terminal.KeyF9
	case 10:
		return terminal.KeyF10
	case 11:
		return terminal.KeyF11
	case 12:
		return terminal.KeyF12
	default:
		return terminal.KeyNone
	}
}
