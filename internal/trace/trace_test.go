package trace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTraceFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "trace.json")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func TestLoaderLinesParsesHitPairs(t *testing.T) {
	path := writeTraceFile(t, `{"pkg/mod.py": [[10, 3], [12, 1], [10, 1]]}`)
	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	lines := l.Lines("pkg/mod.py")
	if len(lines) != 2 {
		t.Fatalf("Lines() = %v, want 2 deduplicated entries", lines)
	}
}

func TestLoaderLinesMissingFile(t *testing.T) {
	path := writeTraceFile(t, `{"pkg/mod.py": [[1, 1]]}`)
	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if lines := l.Lines("other.py"); lines != nil {
		t.Errorf("Lines(other.py) = %v, want nil", lines)
	}
}

func TestNewLoaderRejectsInvalidJSON(t *testing.T) {
	path := writeTraceFile(t, `not json`)
	if _, err := NewLoader(path); err == nil {
		t.Error("expected error for invalid JSON trace file")
	}
}

func TestToResolverHits(t *testing.T) {
	path := writeTraceFile(t, `{"a.py": [[5, 1]], "b.py": [[9, 1]]}`)
	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	hits := l.ToResolverHits([]string{"a.py", "b.py", "c.py"})
	if len(hits["a.py"]) != 1 || len(hits["b.py"]) != 1 {
		t.Errorf("ToResolverHits = %+v", hits)
	}
	if _, ok := hits["c.py"]; ok {
		t.Errorf("expected no entry for c.py with no hits")
	}
}
