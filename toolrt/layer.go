package toolrt

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/document"
	"github.com/phosphor-art/phosphor/grid"
	"github.com/phosphor-art/phosphor/palette"
)

// layerHandle is the Go side of the "AnsiLayer" userdata, grounded on
// ansl_script_engine.cpp's LayerBinding/l_layer_* functions. fallbackFG/
// fallbackBG carry the frame's active brush colors so clear() can fall
// back to settings.fg/settings.bg the way the original resolves an
// omitted color argument from the program's own settings table.
type layerHandle struct {
	doc        *document.Document
	registry   *palette.Registry
	index      int
	fallbackFG *int
	fallbackBG *int
}

const layerTypeName = "Layer"

func registerLayerType(L *lua.LState) {
	mt := L.NewTypeMetatable(layerTypeName)
	L.SetField(mt, "__index", mt)
	L.SetFuncs(mt, map[string]lua.LGFunction{
		"set":        layerSet,
		"get":        layerGet,
		"clear":      layerClear,
		"setRow":     layerSetRow,
		"clearStyle": layerClearStyle,
	})
}

func newLayerUserData(L *lua.LState, h *layerHandle) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = h
	L.SetMetatable(ud, L.GetTypeMetatable(layerTypeName))
	return ud
}

func checkLayer(L *lua.LState) *layerHandle {
	ud := L.CheckUserData(1)
	h, ok := ud.Value.(*layerHandle)
	if !ok {
		L.ArgError(1, "Layer expected")
		return nil
	}
	return h
}

func cpArg(L *lua.LState, idx int) rune {
	v := L.CheckAny(idx)
	switch lv := v.(type) {
	case lua.LNumber:
		return rune(int(lv))
	default:
		s := L.CheckString(idx)
		for _, r := range s {
			return r
		}
		return ' '
	}
}

func colorArgToColor32(L *lua.LState, reg *palette.Registry, ref palette.Ref, idx int) (color.Color32, bool) {
	if L.GetTop() < idx || L.Get(idx) == lua.LNil {
		return color.Unset, false
	}
	n := L.CheckInt(idx)
	if n < 0 || n > 255 {
		return color.Unset, false
	}
	return reg.IndexToColor32(ref, color.PaletteIndex(n)), true
}

func layerSet(L *lua.LState) int {
	h := checkLayer(L)
	x := L.CheckInt(2)
	y := L.CheckInt(3)
	cp := cpArg(L, 4)

	var fields grid.WriteFields
	fields.CP = &cp
	if fg, ok := colorArgToColor32(L, h.registry, h.doc.Palette, 5); ok {
		fields.FG = &fg
	}
	if bg, ok := colorArgToColor32(L, h.registry, h.doc.Palette, 6); ok {
		fields.BG = &bg
	}
	_ = h.doc.Grid.SetCell(h.index, y, x, fields)
	return 0
}

func layerGet(L *lua.LState) int {
	h := checkLayer(L)
	x := L.CheckInt(2)
	y := L.CheckInt(3)

	cp, fg, bg, _, ok := h.doc.Grid.GetCell(h.index, y, x)
	if !ok {
		L.Push(lua.LString(" "))
		L.Push(lua.LNil)
		L.Push(lua.LNil)
		L.Push(lua.LNumber(' '))
		return 4
	}
	L.Push(lua.LString(string(cp)))
	pushIndexOrNil(L, h.registry, h.doc.Palette, fg)
	pushIndexOrNil(L, h.registry, h.doc.Palette, bg)
	L.Push(lua.LNumber(cp))
	return 4
}

func layerClear(L *lua.LState) int {
	h := checkLayer(L)
	fill := rune(' ')
	if L.GetTop() >= 2 && L.Get(2) != lua.LNil {
		fill = cpArg(L, 2)
	}
	fg, fgOK := colorArgToColor32(L, h.registry, h.doc.Palette, 3)
	if !fgOK && h.fallbackFG != nil {
		fg, fgOK = h.registry.IndexToColor32(h.doc.Palette, color.PaletteIndex(*h.fallbackFG)), true
	}
	bg, bgOK := colorArgToColor32(L, h.registry, h.doc.Palette, 4)
	if !bgOK && h.fallbackBG != nil {
		bg, bgOK = h.registry.IndexToColor32(h.doc.Palette, color.PaletteIndex(*h.fallbackBG)), true
	}

	cols, rows := h.doc.Grid.Cols, h.doc.Grid.Rows
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			f := grid.WriteFields{CP: &fill}
			if fgOK {
				f.FG = &fg
			}
			if bgOK {
				f.BG = &bg
			}
			_ = h.doc.Grid.SetCell(h.index, row, col, f)
		}
	}
	return 0
}

func layerSetRow(L *lua.LState) int {
	h := checkLayer(L)
	y := L.CheckInt(2)
	if y < 0 {
		y = 0
	}
	s := L.CheckString(3)
	runes := []rune(s)
	cols := h.doc.Grid.Cols

	for x := 0; x < cols; x++ {
		cp := rune(' ')
		if x < len(runes) {
			cp = runes[x]
		}
		_ = h.doc.Grid.SetCell(h.index, y, x, grid.WriteFields{CP: &cp})
	}
	return 0
}

func layerClearStyle(L *lua.LState) int {
	h := checkLayer(L)
	x := L.CheckInt(2)
	y := L.CheckInt(3)
	unsetFG, unsetBG := color.Unset, color.Unset
	zeroAttrs := color.Attrs(0)
	_ = h.doc.Grid.SetCell(h.index, y, x, grid.WriteFields{FG: &unsetFG, BG: &unsetBG, Attrs: &zeroAttrs})
	return 0
}
