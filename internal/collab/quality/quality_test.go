package quality

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

func TestScanFlagsTooManyArgs(t *testing.T) {
	file := parseFile(t, "def f(a, b, c, d, e, f, g):\n    return a\n")
	s := New(Thresholds{MaxArgs: 3})
	findings := s.Scan(file, nil)
	found := false
	for _, fi := range findings {
		if fi.Rule == "quality-too-many-args" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected quality-too-many-args, got %+v", findings)
	}
}

func TestScanWithinLimitsNoFindings(t *testing.T) {
	file := parseFile(t, "def f(a):\n    return a\n")
	s := New(Thresholds{Complexity: 10, Nesting: 4, MaxArgs: 6, MaxLines: 80})
	if findings := s.Scan(file, nil); len(findings) != 0 {
		t.Errorf("expected no findings for a trivial function, got %+v", findings)
	}
}
