// Command phosphorctl exercises the document engine headlessly, the way
// cmd/vi-fighter's main.go drives the game engine from a single binary:
// no rendering surface of its own beyond an optional tcell preview, just
// the documented load/save/compile contracts.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
