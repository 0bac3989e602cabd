// Command damasc is the CLI front-end for the Damasc language engine
// (spec SPEC_FULL.md §4.8, component C12): a thin cobra command tree
// driving the REPL Kernel (internal/repl). Grounded on the pack's
// holomush repo's cobra/root-command wiring
// (holomush-holomush/cmd/holomush/main.go, root.go).
package main

import (
	"fmt"
	"log/slog"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("damasc exited with error", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
