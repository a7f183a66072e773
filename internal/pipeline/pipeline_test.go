package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/duriantaco/skylos-go/pkg/types"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRunFindsUnusedFunctionAndCreditsUsedOne(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"app.py": "def used():\n    return 1\n\n\ndef unused():\n    return 2\n\n\nused()\n",
	})

	cfg := types.DefaultConfig()
	result, err := Run(context.Background(), Options{RootDir: dir, Config: cfg})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	foundUnused := false
	for _, f := range result.Findings {
		if f.SimpleName == "unused" {
			foundUnused = true
		}
		if f.SimpleName == "used" {
			t.Errorf("used() should not be reported as dead, got finding: %+v", f)
		}
	}
	if !foundUnused {
		t.Errorf("expected unused() to be reported, findings: %+v", result.Findings)
	}
}

func TestRunCreditsDunderInit(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"app.py": "class Thing:\n    def __init__(self):\n        self.x = 1\n",
	})

	cfg := types.DefaultConfig()
	result, err := Run(context.Background(), Options{RootDir: dir, Config: cfg})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for _, f := range result.Findings {
		if f.SimpleName == "__init__" {
			t.Errorf("__init__ should never be reported, got: %+v", f)
		}
	}
}

func TestRunOrdersFindingsByFileThenLine(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"b.py": "def unused_b():\n    return 1\n",
		"a.py": "def unused_a1():\n    return 1\n\n\ndef unused_a2():\n    return 2\n",
	})

	cfg := types.DefaultConfig()
	result, err := Run(context.Background(), Options{RootDir: dir, Config: cfg})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(result.Findings) < 3 {
		t.Fatalf("expected at least 3 findings, got %+v", result.Findings)
	}
	for i := 1; i < len(result.Findings); i++ {
		prev, cur := result.Findings[i-1], result.Findings[i]
		if cur.File < prev.File {
			t.Fatalf("findings not sorted by file: %+v before %+v", prev, cur)
		}
		if cur.File == prev.File && cur.Line < prev.Line {
			t.Fatalf("findings not sorted by line within a file: %+v before %+v", prev, cur)
		}
	}
}

func TestRunSummaryCountsFiles(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"a.py": "x = 1\n",
		"b.py": "y = 2\n",
	})

	cfg := types.DefaultConfig()
	result, err := Run(context.Background(), Options{RootDir: dir, Config: cfg})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Summary.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", result.Summary.TotalFiles)
	}
}
