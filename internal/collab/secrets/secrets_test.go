package secrets

import (
	"testing"

	"github.com/duriantaco/skylos-go/internal/parser"
)

func TestScanFindsHardcodedPassword(t *testing.T) {
	file := &parser.ParsedFile{
		RelPath: "app.py",
		Content: []byte("password = \"hunter2345\"\n"),
	}
	findings := New().Scan(file, nil)
	if len(findings) != 1 {
		t.Fatalf("Scan() = %d findings, want 1: %+v", len(findings), findings)
	}
	if findings[0].Rule != "secret-hardcoded-password" {
		t.Errorf("Rule = %q", findings[0].Rule)
	}
}

func TestScanCleanFileNoFindings(t *testing.T) {
	file := &parser.ParsedFile{RelPath: "app.py", Content: []byte("x = compute()\n")}
	if findings := New().Scan(file, nil); len(findings) != 0 {
		t.Errorf("expected no findings, got %+v", findings)
	}
}
