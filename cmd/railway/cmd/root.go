// Package cmd is the railway CLI's Cobra command tree, styled on
// go-dws/cmd/dwscript/cmd.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "railway",
	Short: "Railway reversible-language runtime core",
	Long: `railway runs programs for Railway, a reversible imperative language:
every statement has an inverse, so a program that runs forward to
completion can also be run backward from its result to recover the
original input.

This binary drives the interpreter core against an already-built AST
(the debug JSON format in cmd/railway/loader); it does not parse .rail
source.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))
}
