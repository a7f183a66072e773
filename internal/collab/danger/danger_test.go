package danger

import (
	"testing"

	"github.com/duriantaco/skylos-go/internal/parser"
)

func parseFile(t *testing.T, src string) *parser.ParsedFile {
	t.Helper()
	p, err := parser.NewPythonParser()
	if err != nil {
		t.Fatalf("NewPythonParser: %v", err)
	}
	defer p.Close()
	content := []byte(src)
	tree, err := p.Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return &parser.ParsedFile{RelPath: "app.py", Tree: tree, Content: content}
}

func TestScanFlagsEval(t *testing.T) {
	file := parseFile(t, "def f(s):\n    return eval(s)\n")
	findings := New().Scan(file, nil)
	if len(findings) != 1 || findings[0].Rule != "danger-eval" {
		t.Fatalf("Scan() = %+v", findings)
	}
}

func TestScanSubprocessRequiresShellTrue(t *testing.T) {
	file := parseFile(t, "import subprocess\nsubprocess.run([\"ls\"])\n")
	if findings := New().Scan(file, nil); len(findings) != 0 {
		t.Errorf("subprocess.run without shell=True should not be flagged, got %+v", findings)
	}

	file2 := parseFile(t, "import subprocess\nsubprocess.run(cmd, shell=True)\n")
	findings := New().Scan(file2, nil)
	if len(findings) != 1 || findings[0].Rule != "danger-subprocess-shell" {
		t.Fatalf("expected subprocess.run(shell=True) flagged, got %+v", findings)
	}
}
