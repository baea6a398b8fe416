package toolrt

// Phase distinguishes the two per-frame entry-point calls: keyboard
// input is resolved first, then the mouse cursor (spec.md §4.8).
type Phase int

const (
	PhaseKeyboard Phase = iota
	PhaseMouse
)

// KeyState reports which of the fixed named keys were pressed this
// frame, mirroring the original engine's ctx.keys table.
type KeyState struct {
	Left, Right, Up, Down        bool
	Home, End                    bool
	Backspace, Delete            bool
	Enter, Escape                bool
	C, V, X, A                   bool
}

// ModState is the modifier set active this frame.
type ModState struct {
	Ctrl, Shift, Alt, Super bool
}

// HotkeyState reports the six fixed editor hotkeys, as evaluated by
// keybinding.Registry.CommonHotkeys.
type HotkeyState struct {
	Copy, Cut, Paste, SelectAll, Cancel, DeleteSelection bool
}

// CursorState is a mouse cell sample: the current cell, the half-row
// resolution used for sub-cell brush placement, and which buttons are
// held.
type CursorState struct {
	X, Y         int
	HalfY        int
	Left, Right  bool
}

// FrameInput is everything the host assembles once per frame and hands
// to RunFrame; it becomes the read side of ctx. RunFrame itself drives
// both phases from a single FrameInput, so it carries no Phase field of
// its own.
type FrameInput struct {
	Cols, Rows int
	Frame      int
	Time       float64
	Focused    bool

	FG, BG  *int // active brush colors, xterm-256 index
	Brush   string
	BrushCP int

	AspectRatio float64

	CaretX, CaretY      int
	AllowCaretWriteback bool

	Keys    KeyState
	Mods    ModState
	Hotkeys HotkeyState
	Actions map[string]bool
	Typed   []string

	Cursor     CursorState
	PrevCursor CursorState
}

// FrameOutput is what the host reads back after a phase runs: any
// caret writeback (only applied when FrameInput.AllowCaretWriteback was
// set) and the tool commands queued so far this frame.
type FrameOutput struct {
	CaretX, CaretY int
	Commands       []Command
}
