// Package toolrt embeds the scripted per-frame tool runtime described in
// spec.md §4.8/§6.7: a program is compiled once, then its entry point is
// invoked twice a frame (keyboard phase, mouse phase) against a stable
// host API, producing document mutations plus a queue of typed command
// records for the host.
//
// It is grounded on original_source/src/ansl/ansl_script_engine.cpp's
// CanvasBinding/LayerBinding userdata-with-methods shape (ported from
// Lua C API calls to gopher-lua's equivalent LState/LUserData/LGFunction
// idiom) and on input/machine.go's per-frame Process(event)->Intent
// pattern, generalized here to RunFrame(...)->FrameOutput.
package toolrt

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/document"
	"github.com/phosphor-art/phosphor/palette"
	"github.com/phosphor-art/phosphor/phosphorerr"
)

// Settings is the program's re-read settings table, parsed after every
// successful compile.
type Settings struct {
	FPS    int
	Once   bool
	FG, BG *colorSetting
	Params []ParamSpec
}

// colorSetting is a settings.fg/settings.bg value as written by a
// program: either an xterm-256 index directly, or a "#RRGGBB" string
// resolved to an index against a palette at resolve time.
type colorSetting struct {
	index *int
	hex   *color.Color32
}

func (cs *colorSetting) resolveIndex(reg *palette.Registry, ref palette.Ref) *int {
	if cs == nil {
		return nil
	}
	if cs.index != nil {
		return cs.index
	}
	if cs.hex != nil {
		if idx, ok := reg.Color32ToIndex(ref, *cs.hex, palette.PolicyEuclideanSRGB); ok {
			n := int(idx)
			return &n
		}
	}
	return nil
}

// Runtime is one compiled tool program plus its host-owned parameter
// values. It is not safe for concurrent use; callers run it on the
// single document-owning goroutine per spec.md §5.
type Runtime struct {
	L *lua.LState

	compiled   bool
	legacyMain bool // true when the program only defines main(), not render()

	settings       Settings
	values         paramValues
	pendingButtons map[string]bool

	logger *zap.Logger
}

// Option configures a Runtime at construction time.
type Option func(*Runtime)

// WithLogger attaches a logger the runtime uses for Error-level compile
// failure notices and Warn-level per-frame failure notices. The default
// is a no-op logger, so a caller that never passes this sees no output.
func WithLogger(logger *zap.Logger) Option {
	return func(rt *Runtime) { rt.logger = logger }
}

// NewRuntime creates a Runtime with a sandboxed Lua state: only the
// base, table, string, and math libraries are loaded, so a tool program
// has no file, network, or OS access and no require/package/debug
// surface (spec.md §4.8 Sandbox).
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{pendingButtons: map[string]bool{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(rt)
	}
	rt.L = newSandboxedState()
	registerCanvasType(rt.L)
	registerLayerType(rt.L)
	return rt
}

func newSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, pair := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(pair.fn))
		L.Push(lua.LString(pair.name))
		L.Call(1, 0)
	}
	// The base library also carries file-loading and module functions;
	// drop them so a program cannot reach the filesystem.
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// Close releases the underlying Lua state.
func (rt *Runtime) Close() { rt.L.Close() }

// Settings returns the currently compiled program's parsed settings.
func (rt *Runtime) Settings() Settings { return rt.settings }

// ParamValue returns a declared parameter's current host-owned value.
func (rt *Runtime) ParamValue(key string) (any, bool) {
	v, ok := rt.values[key]
	return v, ok
}

// SetParamValue sets a declared parameter's current value; it rejects
// values whose Go type doesn't match the parameter's declared type.
func (rt *Runtime) SetParamValue(key string, v any) error {
	spec, ok := rt.paramSpec(key)
	if !ok {
		return phosphorerr.ErrUnsupportedFeature
	}
	if !sameParamValueType(spec.Type, v) {
		return phosphorerr.ErrUnsupportedFeature
	}
	rt.values[key] = v
	return nil
}

// CompileUserScript replaces any previously compiled program: it clears
// the tool-owned globals, loads and runs source as the top-level chunk,
// requires at least one of render/main, and re-reads settings. Parameter
// values are carried over from the previous program when a key's type is
// unchanged.
func (rt *Runtime) CompileUserScript(source string) error {
	L := rt.L
	for _, g := range []string{"settings", "render", "main", "pre", "post"} {
		L.SetGlobal(g, lua.LNil)
	}

	fn, err := L.LoadString(source)
	if err != nil {
		rt.logger.Error("tool program failed to compile", zap.Error(err))
		return fmt.Errorf("%w: %s", phosphorerr.ErrCompileFailed, err.Error())
	}
	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		rt.logger.Error("tool program failed to compile", zap.Error(err))
		return fmt.Errorf("%w: %s", phosphorerr.ErrCompileFailed, err.Error())
	}

	hasRender := L.GetGlobal("render").Type() == lua.LTFunction
	hasMain := L.GetGlobal("main").Type() == lua.LTFunction
	if !hasRender && !hasMain {
		rt.logger.Error("tool program has no render or main entry point")
		return phosphorerr.ErrMissingEntryPoint
	}
	rt.legacyMain = !hasRender && hasMain

	rt.settings = parseSettings(L)
	rt.values = rt.values.reconcile(rt.settings.Params)
	rt.pendingButtons = map[string]bool{}
	rt.compiled = true
	return nil
}

func parseSettings(L *lua.LState) Settings {
	var s Settings
	tbl, ok := L.GetGlobal("settings").(*lua.LTable)
	if !ok {
		return s
	}

	if fps, ok := tbl.RawGetString("fps").(lua.LNumber); ok {
		n := int(fps)
		if n < 1 {
			n = 1
		}
		if n > 240 {
			n = 240
		}
		s.FPS = n
	}
	if once, ok := tbl.RawGetString("once").(lua.LBool); ok {
		s.Once = bool(once)
	}
	s.FG = parseSettingColor(tbl.RawGetString("fg"))
	s.BG = parseSettingColor(tbl.RawGetString("bg"))

	if pt, ok := tbl.RawGetString("params").(*lua.LTable); ok {
		pt.ForEach(func(k, v lua.LValue) {
			key, ok := k.(lua.LString)
			if !ok {
				return
			}
			if spec, ok := parseParamSpec(string(key), v); ok {
				s.Params = append(s.Params, spec)
			}
		})
		sort.SliceStable(s.Params, func(i, j int) bool { return s.Params[i].Order < s.Params[j].Order })
	}
	return s
}

func parseSettingColor(v lua.LValue) *colorSetting {
	switch x := v.(type) {
	case lua.LNumber:
		n := int(x)
		return &colorSetting{index: &n}
	case lua.LString:
		if c, ok := parseHexColor(string(x)); ok {
			return &colorSetting{hex: &c}
		}
	}
	return nil
}

func parseHexColor(s string) (color.Color32, bool) {
	if len(s) != 7 || s[0] != '#' {
		return 0, false
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, false
	}
	return color.RGB(r, g, b), true
}

func parseParamSpec(key string, v lua.LValue) (ParamSpec, bool) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return ParamSpec{}, false
	}
	typeStr, _ := tbl.RawGetString("type").(lua.LString)
	spec := ParamSpec{Key: key, Type: ParamType(typeStr)}

	switch spec.Type {
	case ParamBool, ParamButton:
		d, _ := tbl.RawGetString("default").(lua.LBool)
		spec.Default = bool(d)
	case ParamInt, ParamFloat:
		d, _ := tbl.RawGetString("default").(lua.LNumber)
		spec.Default = float64(d)
		if m, ok := tbl.RawGetString("min").(lua.LNumber); ok {
			spec.Min = float64(m)
		}
		if m, ok := tbl.RawGetString("max").(lua.LNumber); ok {
			spec.Max = float64(m)
		}
		if m, ok := tbl.RawGetString("step").(lua.LNumber); ok {
			spec.Step = float64(m)
		}
	case ParamEnum:
		d, _ := tbl.RawGetString("default").(lua.LString)
		spec.Default = string(d)
		if items, ok := tbl.RawGetString("items").(*lua.LTable); ok {
			items.ForEach(func(_, iv lua.LValue) {
				if s, ok := iv.(lua.LString); ok {
					spec.Items = append(spec.Items, string(s))
				}
			})
		}
	default:
		return ParamSpec{}, false
	}

	if l, ok := tbl.RawGetString("label").(lua.LString); ok {
		spec.Label = string(l)
	}
	if o, ok := tbl.RawGetString("order").(lua.LNumber); ok {
		spec.Order = int(o)
	}
	if sl, ok := tbl.RawGetString("sameLine").(lua.LBool); ok {
		spec.SameLine = bool(sl)
	}
	return spec, true
}

// RunFrame runs the compiled program's entry point twice against doc's
// active layer: once for the keyboard phase, once for the mouse phase
// (spec.md §4.8). Caret writeback from the keyboard phase feeds the
// caret the mouse phase sees, and both phases' queued commands are
// concatenated in phase order. Per-frame errors are returned as a
// descriptive string; the compiled program is left intact so the
// caller can simply try again next frame.
func (rt *Runtime) RunFrame(doc *document.Document, registry *palette.Registry, layerIdx int, in FrameInput) (FrameOutput, error) {
	if !rt.compiled {
		return FrameOutput{}, phosphorerr.ErrMissingEntryPoint
	}

	result := FrameOutput{CaretX: in.CaretX, CaretY: in.CaretY}
	for _, phase := range [2]Phase{PhaseKeyboard, PhaseMouse} {
		phaseIn := in
		phaseIn.CaretX, phaseIn.CaretY = result.CaretX, result.CaretY

		out, err := rt.runPhase(doc, registry, layerIdx, phaseIn, phase)
		if err != nil {
			return FrameOutput{}, err
		}
		result.CaretX, result.CaretY = out.CaretX, out.CaretY
		result.Commands = append(result.Commands, out.Commands...)
	}
	return result, nil
}

// runPhase runs the compiled program's entry point once, in the given
// phase, against doc's active layer.
func (rt *Runtime) runPhase(doc *document.Document, registry *palette.Registry, layerIdx int, in FrameInput, phase Phase) (FrameOutput, error) {
	L := rt.L

	ctx := L.NewTable()
	L.SetField(ctx, "cols", lua.LNumber(in.Cols))
	L.SetField(ctx, "rows", lua.LNumber(in.Rows))
	L.SetField(ctx, "frame", lua.LNumber(in.Frame))
	L.SetField(ctx, "time", lua.LNumber(in.Time))
	L.SetField(ctx, "focused", lua.LBool(in.Focused))
	L.SetField(ctx, "phase", lua.LNumber(phase))
	setOptInt(L, ctx, "fg", in.FG)
	setOptInt(L, ctx, "bg", in.BG)
	L.SetField(ctx, "brush", lua.LString(in.Brush))
	L.SetField(ctx, "brushCp", lua.LNumber(in.BrushCP))

	metrics := L.NewTable()
	L.SetField(metrics, "aspect", lua.LNumber(in.AspectRatio))
	L.SetField(ctx, "metrics", metrics)

	caret := L.NewTable()
	L.SetField(caret, "x", lua.LNumber(in.CaretX))
	L.SetField(caret, "y", lua.LNumber(in.CaretY))
	L.SetField(ctx, "caret", caret)

	keys := L.NewTable()
	for name, v := range map[string]bool{
		"left": in.Keys.Left, "right": in.Keys.Right, "up": in.Keys.Up, "down": in.Keys.Down,
		"home": in.Keys.Home, "end": in.Keys.End, "backspace": in.Keys.Backspace, "delete": in.Keys.Delete,
		"enter": in.Keys.Enter, "escape": in.Keys.Escape,
		"c": in.Keys.C, "v": in.Keys.V, "x": in.Keys.X, "a": in.Keys.A,
	} {
		L.SetField(keys, name, lua.LBool(v))
	}
	L.SetField(ctx, "keys", keys)

	mods := L.NewTable()
	L.SetField(mods, "ctrl", lua.LBool(in.Mods.Ctrl))
	L.SetField(mods, "shift", lua.LBool(in.Mods.Shift))
	L.SetField(mods, "alt", lua.LBool(in.Mods.Alt))
	L.SetField(mods, "super", lua.LBool(in.Mods.Super))
	L.SetField(ctx, "mods", mods)

	hotkeys := L.NewTable()
	L.SetField(hotkeys, "copy", lua.LBool(in.Hotkeys.Copy))
	L.SetField(hotkeys, "cut", lua.LBool(in.Hotkeys.Cut))
	L.SetField(hotkeys, "paste", lua.LBool(in.Hotkeys.Paste))
	L.SetField(hotkeys, "selectAll", lua.LBool(in.Hotkeys.SelectAll))
	L.SetField(hotkeys, "cancel", lua.LBool(in.Hotkeys.Cancel))
	L.SetField(hotkeys, "deleteSelection", lua.LBool(in.Hotkeys.DeleteSelection))
	L.SetField(ctx, "hotkeys", hotkeys)

	actions := L.NewTable()
	for id, pressed := range in.Actions {
		if pressed {
			L.SetField(actions, id, lua.LTrue)
		}
	}
	L.SetField(ctx, "actions", actions)

	typed := L.NewTable()
	for i, s := range in.Typed {
		typed.RawSetInt(i+1, lua.LString(s))
	}
	L.SetField(ctx, "typed", typed)

	cursor := cursorTable(L, in.Cursor)
	L.SetField(cursor, "p", cursorTable(L, in.PrevCursor))
	L.SetField(ctx, "cursor", cursor)

	params := L.NewTable()
	for _, spec := range rt.settings.Params {
		val := rt.values[spec.Key]
		if spec.Type == ParamButton {
			val = rt.pendingButtons[spec.Key]
		}
		L.SetField(params, spec.Key, paramValueToLua(spec.Type, val))
	}
	rt.pendingButtons = map[string]bool{}
	L.SetField(ctx, "params", params)

	out := L.NewTable()
	L.SetField(ctx, "out", out)

	canvas := newCanvasUserData(L, &canvasHandle{doc: doc, registry: registry, layer: layerIdx})
	L.SetField(ctx, "canvas", canvas)

	fallbackFG := in.FG
	if fallbackFG == nil {
		fallbackFG = rt.settings.FG.resolveIndex(registry, doc.Palette)
	}
	fallbackBG := in.BG
	if fallbackBG == nil {
		fallbackBG = rt.settings.BG.resolveIndex(registry, doc.Palette)
	}
	layerUD := newLayerUserData(L, &layerHandle{
		doc: doc, registry: registry, index: layerIdx,
		fallbackFG: fallbackFG, fallbackBG: fallbackBG,
	})

	if err := rt.callEntry(ctx, layerUD, in); err != nil {
		return FrameOutput{}, err
	}

	result := FrameOutput{CaretX: in.CaretX, CaretY: in.CaretY}
	if in.AllowCaretWriteback {
		if cx, ok := caret.RawGetString("x").(lua.LNumber); ok {
			result.CaretX = int(cx)
		}
		if cy, ok := caret.RawGetString("y").(lua.LNumber); ok {
			result.CaretY = int(cy)
		}
	}
	result.Commands = drainCommands(out)
	return result, nil
}

func (rt *Runtime) callEntry(ctx *lua.LTable, layerUD *lua.LUserData, in FrameInput) error {
	L := rt.L
	if rt.legacyMain {
		return rt.callLegacyMain(ctx, layerUD, in)
	}
	fn := L.GetGlobal("render")
	if fn.Type() != lua.LTFunction {
		return phosphorerr.ErrMissingEntryPoint
	}
	L.Push(fn)
	L.Push(ctx)
	L.Push(layerUD)
	if err := L.PCall(2, 0, nil); err != nil {
		rt.logger.Warn("tool program frame error", zap.Error(err))
		return fmt.Errorf("tool runtime frame error: %s", err.Error())
	}
	return nil
}

// callLegacyMain synthesizes render() for a program that only defines
// main(coord, context, cursor, buffer), invoking it once per cell in
// row-major order, the classic per-cell iteration style spec.md §4.8
// asks the runtime to stay compatible with.
func (rt *Runtime) callLegacyMain(ctx *lua.LTable, layerUD *lua.LUserData, in FrameInput) error {
	L := rt.L
	fn := L.GetGlobal("main")
	if fn.Type() != lua.LTFunction {
		return phosphorerr.ErrMissingEntryPoint
	}
	cursor := ctx.RawGetString("cursor")

	for y := 0; y < in.Rows; y++ {
		for x := 0; x < in.Cols; x++ {
			coord := L.NewTable()
			L.SetField(coord, "x", lua.LNumber(x))
			L.SetField(coord, "y", lua.LNumber(y))

			L.Push(fn)
			L.Push(coord)
			L.Push(ctx)
			L.Push(cursor)
			L.Push(layerUD)
			if err := L.PCall(4, 0, nil); err != nil {
				rt.logger.Warn("tool program frame error", zap.Error(err), zap.Int("x", x), zap.Int("y", y))
				return fmt.Errorf("tool runtime frame error: %s", err.Error())
			}
		}
	}
	return nil
}

func cursorTable(L *lua.LState, cs CursorState) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "x", lua.LNumber(cs.X))
	L.SetField(t, "y", lua.LNumber(cs.Y))
	L.SetField(t, "half_y", lua.LNumber(cs.HalfY))
	L.SetField(t, "left", lua.LBool(cs.Left))
	L.SetField(t, "right", lua.LBool(cs.Right))
	return t
}

func setOptInt(L *lua.LState, tbl *lua.LTable, name string, v *int) {
	if v == nil {
		L.SetField(tbl, name, lua.LNil)
		return
	}
	L.SetField(tbl, name, lua.LNumber(*v))
}

func paramValueToLua(t ParamType, v any) lua.LValue {
	switch t {
	case ParamBool, ParamButton:
		b, _ := v.(bool)
		return lua.LBool(b)
	case ParamInt, ParamFloat:
		f, _ := v.(float64)
		return lua.LNumber(f)
	case ParamEnum:
		s, _ := v.(string)
		return lua.LString(s)
	default:
		return lua.LNil
	}
}

func drainCommands(out *lua.LTable) []Command {
	var cmds []Command
	n := out.Len()
	for i := 1; i <= n; i++ {
		tbl, ok := out.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		kindStr, ok := tbl.RawGetString("type").(lua.LString)
		if !ok {
			continue
		}
		cmd := Command{Kind: CommandKind(kindStr)}
		switch cmd.Kind {
		case CommandPaletteSet:
			cmd.FG = luaOptInt(tbl.RawGetString("fg"))
			cmd.BG = luaOptInt(tbl.RawGetString("bg"))
		case CommandBrushSet:
			if n, ok := tbl.RawGetString("cp").(lua.LNumber); ok {
				cmd.CP = int(n)
			}
		case CommandToolActivate:
			if s, ok := tbl.RawGetString("id").(lua.LString); ok {
				cmd.ToolID = string(s)
			}
		case CommandToolActivatePrev, CommandCropToSelection:
			// no payload
		default:
			continue // unknown command kinds are dropped, not errors
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func luaOptInt(v lua.LValue) *int {
	if n, ok := v.(lua.LNumber); ok {
		x := int(n)
		return &x
	}
	return nil
}
