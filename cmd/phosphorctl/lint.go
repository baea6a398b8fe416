package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phosphor-art/phosphor/toolrt"
)

func lintToolCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "lint-tool <script-file>",
		Short: "Compile a tool-runtime script and report compile errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFrom(cmd.Context())
			path := args[0]

			rt := toolrt.NewRuntime(toolrt.WithLogger(logger))
			defer rt.Close()

			if !watch {
				if err := lintOnce(rt, path); err != nil {
					return err
				}
				fmt.Println("ok:", path)
				return nil
			}

			if err := lintOnce(rt, path); err != nil {
				fmt.Fprintln(os.Stderr, err)
			} else {
				fmt.Println("ok:", path)
			}

			sw, err := toolrt.WatchUserScript(path)
			if err != nil {
				return fmt.Errorf("watch script: %w", err)
			}
			defer sw.Close()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			for {
				select {
				case <-sw.Changes:
					if err := lintOnce(rt, path); err != nil {
						fmt.Fprintln(os.Stderr, err)
					} else {
						fmt.Println("ok:", path)
					}
				case err := <-sw.Errors:
					fmt.Fprintln(os.Stderr, "watch error:", err)
				case <-sigCh:
					return nil
				}
			}
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "recompile on every change to the script file")
	return cmd
}

func lintOnce(rt *toolrt.Runtime, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	if err := rt.CompileUserScript(string(source)); err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	return nil
}
