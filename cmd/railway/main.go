// Command railway is a thin Cobra front end driving internal/runner end to
// end (spec.md §6). Parsing `.rail` source remains an external
// collaborator's job; this CLI loads programs from the debug JSON AST
// format in cmd/railway/loader instead.
package main

import (
	"fmt"
	"os"

	"github.com/raillang/railway/cmd/railway/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
