package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/compositor"
	"github.com/phosphor-art/phosphor/cp437"
	"github.com/phosphor-art/phosphor/document"
	"github.com/phosphor-art/phosphor/font"
	"github.com/phosphor-art/phosphor/grid"
	"github.com/phosphor-art/phosphor/palette"
	"github.com/phosphor-art/phosphor/project"
	"github.com/phosphor-art/phosphor/sauce"
	"github.com/phosphor-art/phosphor/xbin"
)

var xterm16Ref = palette.Ref{Kind: palette.KindBuiltin, Builtin: palette.Xterm16}

func convertCmd() *cobra.Command {
	var toXBin bool

	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert between a project file and an XBin file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFrom(cmd.Context())
			in, out := args[0], args[1]

			data, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			if toXBin {
				doc, _, err := project.Load(data, project.WithLogger(logger))
				if err != nil {
					return fmt.Errorf("load project: %w", err)
				}
				encoded := documentToXBin(doc)
				return os.WriteFile(out, xbin.Encode(encoded), 0o644)
			}

			xdoc, err := xbin.Decode(data)
			if err != nil {
				return fmt.Errorf("decode xbin: %w", err)
			}
			doc := xbinToDocument(xdoc)
			encoded, err := project.Save(doc, sauce.Record{}, project.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("save project: %w", err)
			}
			return os.WriteFile(out, encoded, 0o644)
		},
	}
	cmd.Flags().BoolVar(&toXBin, "to-xbin", false, "convert a project file into XBin (default: XBin into a project file)")
	return cmd
}

// documentToXBin flattens the composite view of doc into an XBin image
// plane. Every cell is read through compositor.GetCompositeCell, so the
// output reflects what a viewer sees, not any single layer's raw cells.
func documentToXBin(doc *document.Document) *xbin.Document {
	g := doc.Grid
	reg := palette.NewRegistry()

	cp := make([]byte, g.Cols*g.Rows)
	attrs := make([]byte, g.Cols*g.Rows)

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			cell := compositor.GetCompositeCell(g, row, col)
			idx := row*g.Cols + col

			b, ok := cp437.FromRune(cell.CP)
			if !ok {
				b, _ = cp437.FromRune('?')
			}
			cp[idx] = b

			fg := nearestXterm16(reg, cell.FG, 7)
			bg := nearestXterm16(reg, cell.BG, 0)
			attrs[idx] = xbin.PackAttr(fg, bg, true, false)
		}
	}

	xdoc := &xbin.Document{
		Header: xbin.Header{
			Width:      g.Cols,
			Height:     g.Rows,
			Compressed: true,
			NonBlink:   true,
		},
		CP:    cp,
		Attrs: attrs,
	}

	if doc.Font != nil {
		xdoc.Header.HasFont = true
		xdoc.Header.FontHeight = uint8(doc.Font.CellH)
		xdoc.Header.Mode512 = doc.Font.Mode512()
		xdoc.Font = doc.Font.XBinBitmap()
	}

	return xdoc
}

// xbinToDocument expands a flat XBin image plane into a single-layer
// document, reversing documentToXBin's palette quantization by mapping
// each 4-bit index back to its xterm16 RGB value.
func xbinToDocument(xdoc *xbin.Document) *document.Document {
	reg := palette.NewRegistry()
	doc := document.New(xdoc.Header.Width, xdoc.Header.Height)

	for row := 0; row < xdoc.Header.Height; row++ {
		for col := 0; col < xdoc.Header.Width; col++ {
			idx := row*xdoc.Header.Width + col
			r := cp437.ToRune(xdoc.CP[idx])
			fg, bg, _ := xbin.UnpackAttr(xdoc.Attrs[idx], xdoc.Header.NonBlink, xdoc.Header.Mode512)

			fgColor := reg.IndexToColor32(xterm16Ref, color.PaletteIndex(fg))
			bgColor := reg.IndexToColor32(xterm16Ref, color.PaletteIndex(bg))
			_ = doc.Grid.SetCell(doc.Grid.ActiveLayer, row, col, grid.WriteFields{
				CP: &r, FG: &fgColor, BG: &bgColor,
			})
		}
	}

	if xdoc.Header.HasFont {
		if ef, err := font.NewEmbeddedFontFromXBin(xdoc.Font, xdoc.Header.FontHeight, xdoc.Header.Mode512); err == nil {
			_ = doc.SetEmbeddedFont(ef)
		}
	}

	return doc
}

// nearestXterm16 quantizes c to the closest xterm16 slot, falling back
// to fallback when c carries no color (the compositor never contributed
// a value for that plane at this cell).
func nearestXterm16(reg *palette.Registry, c color.Color32, fallback uint8) uint8 {
	if !c.IsSet() {
		return fallback
	}
	idx, ok := reg.Color32ToIndex(xterm16Ref, c, palette.PolicyEuclideanSRGB)
	if !ok {
		return fallback
	}
	return uint8(idx)
}
