package toolrt

import (
	"strings"
	"testing"

	"github.com/phosphor-art/phosphor/document"
	"github.com/phosphor-art/phosphor/palette"
	lua "github.com/yuin/gopher-lua"
)

func newFixture() (*Runtime, *document.Document, *palette.Registry) {
	return NewRuntime(), document.New(8, 4), palette.NewRegistry()
}

func basicInput() FrameInput {
	return FrameInput{Cols: 8, Rows: 4, Frame: 1}
}

func TestCompileRejectsMissingEntryPoint(t *testing.T) {
	rt, _, _ := newFixture()
	defer rt.Close()

	err := rt.CompileUserScript(`x = 1`)
	if err == nil {
		t.Fatal("expected an error for a program with no render/main")
	}
}

func TestCompileRejectsSyntaxError(t *testing.T) {
	rt, _, _ := newFixture()
	defer rt.Close()

	err := rt.CompileUserScript(`function render(ctx, layer`)
	if err == nil {
		t.Fatal("expected a compile error")
	}
	if !strings.Contains(err.Error(), "failed to compile") {
		t.Errorf("expected compile-failure wrapping, got %q", err.Error())
	}
}

func TestRenderProgramWritesLayer(t *testing.T) {
	rt, doc, reg := newFixture()
	defer rt.Close()

	script := `
function render(ctx, layer)
  layer:set(0, 0, "x")
end
`
	if err := rt.CompileUserScript(script); err != nil {
		t.Fatal(err)
	}

	if _, err := rt.RunFrame(doc, reg, 0, basicInput()); err != nil {
		t.Fatal(err)
	}

	cp, _, _, _, ok := doc.Grid.GetCell(0, 0, 0)
	if !ok || cp != 'x' {
		t.Fatalf("expected cell (0,0) == 'x', got %q ok=%v", cp, ok)
	}
}

func TestLegacyMainProgramIteratesEveryCell(t *testing.T) {
	rt, doc, reg := newFixture()
	defer rt.Close()

	script := `
function main(coord, context, cursor, layer)
  layer:set(coord.x, coord.y, "z")
end
`
	if err := rt.CompileUserScript(script); err != nil {
		t.Fatal(err)
	}

	if _, err := rt.RunFrame(doc, reg, 0, basicInput()); err != nil {
		t.Fatal(err)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			cp, _, _, _, ok := doc.Grid.GetCell(0, y, x)
			if !ok || cp != 'z' {
				t.Fatalf("expected cell (%d,%d) == 'z', got %q ok=%v", x, y, cp, ok)
			}
		}
	}
}

func TestFrameErrorLeavesProgramCompiled(t *testing.T) {
	rt, doc, reg := newFixture()
	defer rt.Close()

	script := `
function render(ctx, layer)
  error("boom")
end
`
	if err := rt.CompileUserScript(script); err != nil {
		t.Fatal(err)
	}

	if _, err := rt.RunFrame(doc, reg, 0, basicInput()); err == nil {
		t.Fatal("expected a per-frame error")
	}
	if !rt.compiled {
		t.Fatal("a per-frame error must not uncompile the program")
	}
}

func TestParamsReconcileAcrossRecompile(t *testing.T) {
	rt, _, _ := newFixture()
	defer rt.Close()

	script1 := `
settings = { params = { size = { type = "int", default = 3, min = 1, max = 10 } } }
function render(ctx, layer) end
`
	if err := rt.CompileUserScript(script1); err != nil {
		t.Fatal(err)
	}
	if err := rt.SetParamValue("size", 7.0); err != nil {
		t.Fatal(err)
	}

	script2 := `
settings = { params = { size = { type = "int", default = 3, min = 1, max = 10 } } }
function render(ctx, layer) end
`
	if err := rt.CompileUserScript(script2); err != nil {
		t.Fatal(err)
	}

	v, ok := rt.ParamValue("size")
	if !ok || v.(float64) != 7.0 {
		t.Fatalf("expected size to survive recompile at 7.0, got %v ok=%v", v, ok)
	}
}

func TestParamsReseedWhenTypeChanges(t *testing.T) {
	rt, _, _ := newFixture()
	defer rt.Close()

	script1 := `
settings = { params = { mode = { type = "int", default = 1 } } }
function render(ctx, layer) end
`
	if err := rt.CompileUserScript(script1); err != nil {
		t.Fatal(err)
	}
	if err := rt.SetParamValue("mode", 9.0); err != nil {
		t.Fatal(err)
	}

	script2 := `
settings = { params = { mode = { type = "enum", default = "a", items = {"a", "b"} } } }
function render(ctx, layer) end
`
	if err := rt.CompileUserScript(script2); err != nil {
		t.Fatal(err)
	}

	v, ok := rt.ParamValue("mode")
	if !ok || v.(string) != "a" {
		t.Fatalf("expected mode reseeded to default \"a\" after type change, got %v ok=%v", v, ok)
	}
}

func TestFireParamButtonIsEdgeTriggeredForOneFrameOnly(t *testing.T) {
	rt, doc, reg := newFixture()
	defer rt.Close()

	script := `
settings = { params = { go = { type = "button" } } }
fired = {}
function render(ctx, layer)
  table.insert(fired, ctx.params.go)
end
`
	if err := rt.CompileUserScript(script); err != nil {
		t.Fatal(err)
	}

	rt.FireParamButton("go")
	if _, err := rt.RunFrame(doc, reg, 0, basicInput()); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.RunFrame(doc, reg, 0, basicInput()); err != nil {
		t.Fatal(err)
	}

	firedTbl := rt.L.GetGlobal("fired")
	if firedTbl.Type().String() != "table" {
		t.Fatalf("expected fired to be a table, got %s", firedTbl.Type().String())
	}
	fired := firedTbl.(*lua.LTable)
	if fired.Len() != 4 {
		t.Fatalf("expected 4 render calls (two phases per frame), got %d", fired.Len())
	}
	if fired.RawGetInt(1) != lua.LTrue {
		t.Errorf("expected button set on the first phase of the firing frame, got %v", fired.RawGetInt(1))
	}
	for i := 2; i <= 4; i++ {
		if fired.RawGetInt(i) != lua.LFalse {
			t.Errorf("expected button clear on render call %d, got %v", i, fired.RawGetInt(i))
		}
	}
}

func TestCommandsDrainFromOut(t *testing.T) {
	rt, doc, reg := newFixture()
	defer rt.Close()

	script := `
function render(ctx, layer)
  table.insert(ctx.out, { type = "brush.set", cp = 65 })
  table.insert(ctx.out, { type = "tool.activate_prev" })
end
`
	if err := rt.CompileUserScript(script); err != nil {
		t.Fatal(err)
	}

	// RunFrame invokes render once for the keyboard phase and once for
	// the mouse phase, so the two commands the script queues each call
	// show up twice, in phase order.
	out, err := rt.RunFrame(doc, reg, 0, basicInput())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Commands) != 4 {
		t.Fatalf("expected 4 commands (2 per phase), got %d", len(out.Commands))
	}
	for phase := 0; phase < 2; phase++ {
		base := phase * 2
		if out.Commands[base].Kind != CommandBrushSet || out.Commands[base].CP != 65 {
			t.Errorf("phase %d: unexpected first command: %+v", phase, out.Commands[base])
		}
		if out.Commands[base+1].Kind != CommandToolActivatePrev {
			t.Errorf("phase %d: unexpected second command: %+v", phase, out.Commands[base+1])
		}
	}
}

func TestCaretWritebackOnlyAppliedWhenAllowed(t *testing.T) {
	rt, doc, reg := newFixture()
	defer rt.Close()

	script := `
function render(ctx, layer)
  ctx.caret.x = ctx.caret.x + 1
end
`
	if err := rt.CompileUserScript(script); err != nil {
		t.Fatal(err)
	}

	in := basicInput()
	in.CaretX, in.CaretY = 2, 2
	in.AllowCaretWriteback = false
	out, err := rt.RunFrame(doc, reg, 0, in)
	if err != nil {
		t.Fatal(err)
	}
	if out.CaretX != 2 {
		t.Fatalf("expected caret writeback suppressed, got CaretX=%d", out.CaretX)
	}

	in.AllowCaretWriteback = true
	out, err = rt.RunFrame(doc, reg, 0, in)
	if err != nil {
		t.Fatal(err)
	}
	// The keyboard phase's writeback (2 -> 3) feeds forward as the mouse
	// phase's starting caret, which increments again (3 -> 4).
	if out.CaretX != 4 {
		t.Fatalf("expected caret writeback applied across both phases, got CaretX=%d", out.CaretX)
	}
}

func TestCanvasSelectionRoundTrip(t *testing.T) {
	rt, doc, reg := newFixture()
	defer rt.Close()

	script := `
function render(ctx, layer)
  if not ctx.canvas:hasSelection() then
    ctx.canvas:setSelection(1, 1, 3, 2)
  end
end
`
	if err := rt.CompileUserScript(script); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.RunFrame(doc, reg, 0, basicInput()); err != nil {
		t.Fatal(err)
	}
	if !doc.Selection.HasSelection() {
		t.Fatal("expected a selection set by the script")
	}
}
