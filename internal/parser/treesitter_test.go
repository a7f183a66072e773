package parser

import "testing"

func TestNewPythonParser(t *testing.T) {
	p, err := NewPythonParser()
	if err != nil {
		t.Fatalf("NewPythonParser() error: %v", err)
	}
	defer p.Close()
}

func TestParseSimpleModule(t *testing.T) {
	p, err := NewPythonParser()
	if err != nil {
		t.Fatalf("NewPythonParser() error: %v", err)
	}
	defer p.Close()

	tree, err := p.Parse([]byte("import os\n\ndef f():\n    return os.getcwd()\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		t.Fatal("root node is nil")
	}
	if root.Kind() != "module" {
		t.Errorf("root.Kind() = %q, want %q", root.Kind(), "module")
	}
	if root.ChildCount() == 0 {
		t.Error("root node has no children")
	}
}

func TestParseInvalidSourceStillReturnsTree(t *testing.T) {
	// Tree-sitter is error-tolerant: malformed source still yields a tree
	// with ERROR nodes rather than failing outright. Parse itself never
	// errors here; ParseDiscoveredFiles is what skips such files.
	p, err := NewPythonParser()
	if err != nil {
		t.Fatalf("NewPythonParser() error: %v", err)
	}
	defer p.Close()

	tree, err := p.Parse([]byte("def f(:\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer tree.Close()
	if tree.RootNode() == nil {
		t.Fatal("expected a root node even for malformed source")
	}
}
