package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/duriantaco/skylos-go/internal/collab"
	"github.com/duriantaco/skylos-go/internal/collab/danger"
	"github.com/duriantaco/skylos-go/internal/collab/quality"
	"github.com/duriantaco/skylos-go/internal/collab/secrets"
	"github.com/duriantaco/skylos-go/internal/config"
	"github.com/duriantaco/skylos-go/internal/output"
	"github.com/duriantaco/skylos-go/internal/pipeline"
	"github.com/duriantaco/skylos-go/pkg/types"
)

var (
	configPath      string
	confidence      int
	jsonOutput      bool
	tracePath       string
	excludeFolders  []string
	includeFolders  []string
	noSecrets       bool
	noDanger        bool
	noQuality       bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Scan a Python project for dead code",
	Long: `Scan walks a Python source tree, builds a cross-module reference graph,
and reports functions, methods, classes, imports, variables, parameters,
and files that look unused. Confidence-scored: framework entry points,
dunder methods, protocol members, and trace-file hits are credited as
live even with no visible static reference.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("cannot resolve path: %s", err)
		}
		if err := validateProject(dir); err != nil {
			return &types.ExitError{Code: 2, Err: err}
		}

		cfg, err := config.Load(dir, configPath)
		if err != nil {
			return &types.ExitError{Code: 2, Err: fmt.Errorf("load config: %w", err)}
		}
		if confidence > 0 {
			cfg.Confidence = confidence
		}
		if len(excludeFolders) > 0 {
			cfg.ExcludeFolders = append(cfg.ExcludeFolders, excludeFolders...)
		}
		if len(includeFolders) > 0 {
			cfg.IncludeFolders = append(cfg.IncludeFolders, includeFolders...)
		}

		var scanners []collab.Scanner
		if !noSecrets {
			scanners = append(scanners, secrets.New())
		}
		if !noDanger {
			scanners = append(scanners, danger.New())
		}
		if !noQuality {
			scanners = append(scanners, quality.NewFromConfig(cfg))
		}

		spinner := pipeline.NewSpinner(os.Stderr)
		spinner.Start("scanning...")
		onProgress := func(stage, detail string) {
			if detail != "" {
				spinner.Update(fmt.Sprintf("%s: %s", stage, detail))
			} else {
				spinner.Update(stage)
			}
		}

		result, err := pipeline.Run(context.Background(), pipeline.Options{
			RootDir:        dir,
			Config:         cfg,
			TracePath:      tracePath,
			Progress:       onProgress,
			CollabScanners: scanners,
		})
		if err != nil {
			spinner.Stop("")
			return err
		}
		spinner.Stop("done.")

		for _, w := range result.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}

		report := output.BuildJSONReport(result.Findings, result.Collab, result.Summary)
		if jsonOutput {
			return output.RenderJSON(cmd.OutOrStdout(), report)
		}
		output.NewTerminal(cmd.OutOrStdout()).Summarize(report)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&configPath, "config", "", "path to pyproject.toml (defaults to <dir>/pyproject.toml)")
	scanCmd.Flags().IntVar(&confidence, "confidence", 0, "minimum confidence to report a finding (default from config, else 60)")
	scanCmd.Flags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	scanCmd.Flags().StringVar(&tracePath, "trace", "", "path to a runtime trace JSON file ({file: [[line, hits], ...]})")
	scanCmd.Flags().StringSliceVar(&excludeFolders, "exclude", nil, "additional glob patterns to exclude")
	scanCmd.Flags().StringSliceVar(&includeFolders, "include", nil, "glob patterns to force-include despite excludes")
	scanCmd.Flags().BoolVar(&noSecrets, "no-secrets", false, "disable the hardcoded-secrets scanner")
	scanCmd.Flags().BoolVar(&noDanger, "no-danger", false, "disable the dangerous-call scanner")
	scanCmd.Flags().BoolVar(&noQuality, "no-quality", false, "disable the complexity/quality scanner")
	rootCmd.AddCommand(scanCmd)
}

// validateProject checks that dir exists, is a directory, and contains at
// least one recognizable Python project file or source file.
func validateProject(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %s", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	indicators := []string{"pyproject.toml", "setup.py", "setup.cfg", "requirements.txt"}
	for _, f := range indicators {
		if _, err := os.Stat(filepath.Join(dir, f)); err == nil {
			return nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory: %s", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".py" {
			return nil
		}
	}

	return fmt.Errorf("no Python project found in: %s\nExpected pyproject.toml, setup.py, or .py source files", dir)
}
