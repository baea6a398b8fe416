package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newLogger builds the shared logger every subcommand gets handed,
// matching the engine's own "no logger supplied, no output" default: a
// no-op logger unless --verbose asks for development-mode output.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func rootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "phosphorctl",
		Short: "Drive the phosphor document engine headlessly",
		Long: "phosphorctl exercises the phosphor engine without a terminal editor: " +
			"validate project files, convert between project and XBin, and lint " +
			"tool-runtime scripts.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable development-mode logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cmd.SetContext(withLogger(cmd.Context(), newLogger(verbose)))
	}

	cmd.AddCommand(validateCmd(), convertCmd(), lintToolCmd(), catCmd())
	return cmd
}
