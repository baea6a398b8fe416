package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phosphor-art/phosphor/grid"
	"github.com/phosphor-art/phosphor/project"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project-file>",
		Short: "Load a project file and report invariant violations",
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

			violations := checkInvariants(doc.Grid)
			if len(violations) == 0 {
				fmt.Println("ok: no invariant violations")
				return nil
			}
			for _, v := range violations {
				fmt.Println("violation:", v)
			}
			return fmt.Errorf("%d invariant violation(s)", len(violations))
		},
	}
}

// checkInvariants runs the bounds/structure checks a host is expected to
// hold before treating a loaded document as usable: at least one layer,
// column count within grid.MaxCols, a caret inside the current grid, and
// an active layer index inside the layer stack.
func checkInvariants(g *grid.Store) []string {
	var out []string
	if g.LayerCount() < 1 {
		out = append(out, "document has no layers")
	}
	if g.Cols < 1 || g.Cols > grid.MaxCols {
		out = append(out, fmt.Sprintf("column count %d outside [1, %d]", g.Cols, grid.MaxCols))
	}
	if g.Rows < 1 {
		out = append(out, fmt.Sprintf("row count %d must be at least 1", g.Rows))
	}
	if g.ActiveLayer < 0 || g.ActiveLayer >= g.LayerCount() {
		out = append(out, fmt.Sprintf("active layer index %d outside [0, %d)", g.ActiveLayer, g.LayerCount()))
	}
	if g.Caret.Row < 0 || g.Caret.Row >= g.Rows || g.Caret.Col < 0 || g.Caret.Col >= g.Cols {
		out = append(out, fmt.Sprintf("caret (%d,%d) outside grid %dx%d", g.Caret.Col, g.Caret.Row, g.Cols, g.Rows))
	}
	return out
}
