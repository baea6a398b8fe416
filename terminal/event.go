// Package terminal holds the key-event data model the keybinding
// package dispatches on: a parsed Key, its Modifier bitset, and the
// Event envelope carrying them. A headless document engine has no TTY
// driver of its own; a host embedding the engine is expected to
// translate its own input source (a real terminal, tcell, a test
// harness) into this shape before calling keybinding.Registry.
package terminal

// EventType distinguishes what kind of input produced an Event.
type EventType uint8

// EventKey is the only variant this engine's keybinding dispatch reads;
// a host is free to define and route other event kinds of its own
// before they reach the keybinding layer.
const EventKey EventType = iota

// Event is one parsed input occurrence: a key press plus whatever
// modifiers were held.
type Event struct {
	Type      EventType
	Key       Key
	Rune      rune // valid when Key == KeyRune
	Modifiers Modifier
}

// Key identifies a single logical key, independent of the modifiers
// held alongside it.
type Key uint16

const (
	KeyNone Key = iota
	KeyRune // printable character; see Event.Rune

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete

	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Modifier is a bitset of the modifier keys held alongside a Key.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
)
