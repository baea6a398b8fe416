package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/phosphor-art/phosphor/compositor"
	"github.com/phosphor-art/phosphor/project"
)

func catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <project-file>",
		Short: "Render a project's composite view to the terminal and wait for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFrom(cmd.Context())
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read project file: %w", err)
			}
			doc, _, err := project.Load(data, project.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("load project: %w", err)
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init screen: %w", err)
			}
			defer screen.Fini()

			g := doc.Grid
			for row := 0; row < g.Rows; row++ {
				for col := 0; col < g.Cols; col++ {
					cell := compositor.GetCompositeCell(g, row, col)
					style := tcell.StyleDefault
					if cell.FG.IsSet() {
						r, gr, b := cell.FG.Channels()
						style = style.Foreground(tcell.NewRGBColor(int32(r), int32(gr), int32(b)))
					}
					if cell.BG.IsSet() {
						r, gr, b := cell.BG.Channels()
						style = style.Background(tcell.NewRGBColor(int32(r), int32(gr), int32(b)))
					}
					screen.SetContent(col, row, cell.CP, nil, style)
				}
			}
			screen.Show()
			screen.PollEvent()
			return nil
		},
	}
}
