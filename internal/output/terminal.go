package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/duriantaco/skylos-go/pkg/types"
)

// Terminal renders a human-readable summary of a JSONReport. Colors are
// disabled automatically when w isn't a TTY, mirroring the teacher's
// spinner TTY-detection pattern in internal/pipeline.
type Terminal struct {
	w      io.Writer
	colors bool
}

func NewTerminal(w io.Writer) *Terminal {
	colors := false
	if f, ok := w.(*os.File); ok {
		colors = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Terminal{w: w, colors: colors}
}

// Summarize prints a short section per finding bucket and a closing totals
// line, sorted the same way RenderJSON's source list already is (file,
// line, kind, per spec section 5's ordering guarantee).
func (t *Terminal) Summarize(report *JSONReport) {
	sections := []struct {
		label   string
		items   []types.Finding
	}{
		{"unused functions", report.UnusedFunctions},
		{"unused methods", report.UnusedMethods},
		{"unused classes", report.UnusedClasses},
		{"unused imports", report.UnusedImports},
		{"unused variables", report.UnusedVariables},
		{"unused parameters", report.UnusedParameters},
		{"unused files", report.UnusedFiles},
	}

	total := 0
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		total += len(s.items)
		t.printHeader(fmt.Sprintf("%s (%d)", s.label, len(s.items)))
		for _, f := range s.items {
			t.printFinding(f)
		}
	}

	if len(report.Secrets) > 0 || len(report.Danger) > 0 || len(report.Quality) > 0 {
		t.printHeader(fmt.Sprintf("collaborator findings (%d)", len(report.Secrets)+len(report.Danger)+len(report.Quality)))
		for _, c := range report.Secrets {
			fmt.Fprintf(t.w, "  %s:%d  %s  %s\n", c.File, c.Line, c.Rule, c.Message)
		}
		for _, c := range report.Danger {
			fmt.Fprintf(t.w, "  %s:%d  %s  %s\n", c.File, c.Line, c.Rule, c.Message)
		}
		for _, c := range report.Quality {
			fmt.Fprintf(t.w, "  %s:%d  %s  %s\n", c.File, c.Line, c.Rule, c.Message)
		}
	}

	fmt.Fprintf(t.w, "\nscanned %s files, %s lines; %d dead-code findings\n",
		humanize.Comma(int64(report.AnalysisSummary.TotalFiles)),
		humanize.Comma(int64(report.AnalysisSummary.TotalLOC)),
		total,
	)
}

func (t *Terminal) printHeader(s string) {
	if t.colors {
		fmt.Fprintln(t.w, color.New(color.Bold).Sprint(s))
		return
	}
	fmt.Fprintln(t.w, s)
}

func (t *Terminal) printFinding(f types.Finding) {
	line := fmt.Sprintf("  %s:%d  %s  confidence=%d", f.File, f.Line, f.SimpleName, f.Confidence)
	if t.colors {
		c := color.New(color.FgYellow)
		if f.Confidence >= 90 {
			c = color.New(color.FgRed)
		}
		fmt.Fprintln(t.w, c.Sprint(line))
		return
	}
	fmt.Fprintln(t.w, line)
}
