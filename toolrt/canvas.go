package toolrt

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/compositor"
	"github.com/phosphor-art/phosphor/document"
	"github.com/phosphor-art/phosphor/palette"
	"github.com/phosphor-art/phosphor/selection"
)

// canvasHandle is the Go side of the "AnsiCanvas" userdata a tool
// program receives as ctx.canvas, grounded on ansl_script_engine.cpp's
// CanvasBinding/l_canvas_* functions.
type canvasHandle struct {
	doc      *document.Document
	registry *palette.Registry
	layer    int // the active layer index ops without an explicit layer arg apply to
}

const canvasTypeName = "Canvas"

func registerCanvasType(L *lua.LState) {
	mt := L.NewTypeMetatable(canvasTypeName)
	L.SetField(mt, "__index", mt)
	L.SetFuncs(mt, map[string]lua.LGFunction{
		"hasSelection":       canvasHasSelection,
		"getSelection":       canvasGetSelection,
		"setSelection":       canvasSetSelection,
		"clearSelection":     canvasClearSelection,
		"selectionContains":  canvasSelectionContains,
		"getCell":            canvasGetCell,
		"clipboardHas":       canvasClipboardHas,
		"clipboardSize":      canvasClipboardSize,
		"copySelection":      canvasCopySelection,
		"cutSelection":       canvasCutSelection,
		"deleteSelection":    canvasDeleteSelection,
		"pasteClipboard":     canvasPasteClipboard,
		"isMovingSelection":  canvasIsMovingSelection,
		"beginMoveSelection": canvasBeginMoveSelection,
		"updateMoveSelection": canvasUpdateMoveSelection,
		"commitMoveSelection": canvasCommitMoveSelection,
		"cancelMoveSelection": canvasCancelMoveSelection,
	})
}

func newCanvasUserData(L *lua.LState, h *canvasHandle) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = h
	L.SetMetatable(ud, L.GetTypeMetatable(canvasTypeName))
	return ud
}

func checkCanvas(L *lua.LState) *canvasHandle {
	ud := L.CheckUserData(1)
	h, ok := ud.Value.(*canvasHandle)
	if !ok {
		L.ArgError(1, "Canvas expected")
		return nil
	}
	return h
}

func canvasHasSelection(L *lua.LState) int {
	h := checkCanvas(L)
	L.Push(lua.LBool(h.doc.Selection.HasSelection()))
	return 1
}

func canvasGetSelection(L *lua.LState) int {
	h := checkCanvas(L)
	if !h.doc.Selection.HasSelection() {
		L.Push(lua.LNil)
		return 1
	}
	r := h.doc.Selection.Rect
	L.Push(lua.LNumber(r.X))
	L.Push(lua.LNumber(r.Y))
	L.Push(lua.LNumber(r.W))
	L.Push(lua.LNumber(r.H))
	return 4
}

func canvasSetSelection(L *lua.LState) int {
	h := checkCanvas(L)
	x0 := L.CheckInt(2)
	y0 := L.CheckInt(3)
	x1 := L.CheckInt(4)
	y1 := L.CheckInt(5)
	h.doc.Selection.SetCorners(h.doc.Grid.Cols, x0, y0, x1, y1)
	return 0
}

func canvasClearSelection(L *lua.LState) int {
	h := checkCanvas(L)
	h.doc.Selection.Clear()
	return 0
}

func canvasSelectionContains(L *lua.LState) int {
	h := checkCanvas(L)
	x := L.CheckInt(2)
	y := L.CheckInt(3)
	L.Push(lua.LBool(h.doc.Selection.Rect.Contains(x, y)))
	return 1
}

// canvasGetCell returns glyph, fg_index_or_nil, bg_index_or_nil, cp_int
// for (x, y), reading the composite view by default or a specific layer
// when mode == "layer".
func canvasGetCell(L *lua.LState) int {
	h := checkCanvas(L)
	x := L.CheckInt(2)
	y := L.CheckInt(3)
	mode := L.OptString(4, "composite")
	layer := h.layer
	if L.GetTop() >= 5 {
		layer = L.CheckInt(5)
	}

	var cp rune
	var fg, bg color.Color32
	if mode == "layer" {
		var ok bool
		cp, fg, bg, _, ok = h.doc.Grid.GetCell(layer, y, x)
		if !ok {
			L.Push(lua.LNil)
			L.Push(lua.LNil)
			L.Push(lua.LNil)
			L.Push(lua.LNumber(0))
			return 4
		}
	} else {
		cell := compositor.GetCompositeCell(h.doc.Grid, y, x)
		cp, fg, bg = cell.CP, cell.FG, cell.BG
	}

	L.Push(lua.LString(string(cp)))
	pushIndexOrNil(L, h.registry, h.doc.Palette, fg)
	pushIndexOrNil(L, h.registry, h.doc.Palette, bg)
	L.Push(lua.LNumber(cp))
	return 4
}

func pushIndexOrNil(L *lua.LState, reg *palette.Registry, ref palette.Ref, c color.Color32) {
	idx, ok := reg.Color32ToIndex(ref, c, palette.PolicyEuclideanSRGB)
	if !ok || idx == color.IndexUnset {
		L.Push(lua.LNil)
		return
	}
	L.Push(lua.LNumber(idx))
}

func canvasClipboardHas(L *lua.LState) int {
	L.Push(lua.LBool(selection.Global().HasContent()))
	return 1
}

func canvasClipboardSize(L *lua.LState) int {
	w, ht := selection.Global().Size()
	L.Push(lua.LNumber(w))
	L.Push(lua.LNumber(ht))
	return 2
}

func canvasCopySelection(L *lua.LState) int {
	h := checkCanvas(L)
	mode := L.OptString(2, "layer")
	layer := h.layer
	if L.GetTop() >= 3 {
		layer = L.CheckInt(3)
	}
	err := h.doc.Selection.Copy(h.doc.Grid, selection.Global(), layer, mode == "composite")
	pushOK(L, err)
	return 1
}

func canvasCutSelection(L *lua.LState) int {
	h := checkCanvas(L)
	layer := h.layer
	if L.GetTop() >= 2 {
		layer = L.CheckInt(2)
	}
	err := h.doc.Selection.Cut(h.doc.Grid, selection.Global(), layer)
	pushOK(L, err)
	return 1
}

func canvasDeleteSelection(L *lua.LState) int {
	h := checkCanvas(L)
	layer := h.layer
	if L.GetTop() >= 2 {
		layer = L.CheckInt(2)
	}
	err := h.doc.Selection.Delete(h.doc.Grid, layer)
	pushOK(L, err)
	return 1
}

func canvasPasteClipboard(L *lua.LState) int {
	h := checkCanvas(L)
	x := L.CheckInt(2)
	y := L.CheckInt(3)
	layer := h.layer
	if L.GetTop() >= 4 {
		layer = L.CheckInt(4)
	}
	mode := selection.PasteBoth
	if L.GetTop() >= 5 {
		mode = pasteModeFromString(L.CheckString(5))
	}
	transparentSpaces := L.GetTop() >= 6 && L.ToBool(6)
	err := h.doc.Selection.PasteFromClipboard(h.doc.Grid, selection.Global(), layer, x, y, mode, transparentSpaces)
	pushOK(L, err)
	return 1
}

func pasteModeFromString(s string) selection.PasteMode {
	switch s {
	case "char":
		return selection.PasteCharOnly
	case "color":
		return selection.PasteColorOnly
	default:
		return selection.PasteBoth
	}
}

func canvasIsMovingSelection(L *lua.LState) int {
	h := checkCanvas(L)
	L.Push(lua.LBool(h.doc.Selection.IsMoving()))
	return 1
}

func canvasBeginMoveSelection(L *lua.LState) int {
	h := checkCanvas(L)
	grabX := L.CheckInt(2)
	grabY := L.CheckInt(3)
	copyMove := L.GetTop() >= 4 && L.ToBool(4)
	layer := h.layer
	if L.GetTop() >= 5 {
		layer = L.CheckInt(5)
	}
	err := h.doc.Selection.BeginMove(h.doc.Grid, grabX, grabY, copyMove, layer)
	pushOK(L, err)
	return 1
}

func canvasUpdateMoveSelection(L *lua.LState) int {
	h := checkCanvas(L)
	x := L.CheckInt(2)
	y := L.CheckInt(3)
	err := h.doc.Selection.UpdateMove(h.doc.Grid, x, y)
	pushOK(L, err)
	return 1
}

func canvasCommitMoveSelection(L *lua.LState) int {
	h := checkCanvas(L)
	err := h.doc.Selection.CommitMove(h.doc.Grid)
	pushOK(L, err)
	return 1
}

func canvasCancelMoveSelection(L *lua.LState) int {
	h := checkCanvas(L)
	err := h.doc.Selection.CancelMove(h.doc.Grid)
	pushOK(L, err)
	return 1
}

func pushOK(L *lua.LState, err error) {
	if err != nil {
		L.Push(lua.LFalse)
		return
	}
	L.Push(lua.LTrue)
}
