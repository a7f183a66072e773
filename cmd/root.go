package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/duriantaco/skylos-go/pkg/types"
	"github.com/duriantaco/skylos-go/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "skylos",
	Short:   "Skylos - find dead Python code in large, dynamic codebases",
	Long:    "Skylos walks a Python source tree, builds a cross-module reference graph,\nand scores every definition by how confidently it looks unused. It credits\nframework entry points, dunder methods, protocols, and trace-file hits\nso that dynamic dispatch doesn't get flagged as dead.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *types.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
