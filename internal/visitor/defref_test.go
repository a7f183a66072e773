package visitor

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

func parse(t *testing.T, src string) (*tree_sitter.Tree, []byte) {
	t.Helper()
	parser := tree_sitter.NewParser()
	defer parser.Close()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := parser.SetLanguage(lang); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	content := []byte(src)
	tree := parser.Parse(content, nil)
	if tree == nil {
		t.Fatal("Parse returned nil tree")
	}
	return tree, content
}

func TestVisitFunctionAndCallReference(t *testing.T) {
	src := "def helper():\n    return 1\n\ndef main():\n    return helper()\n"
	tree, content := parse(t, src)
	defer tree.Close()

	state := NewState("pkg.mod", "pkg/mod.py")
	Visit(tree.RootNode(), content, state)

	foundHelper, foundMain := false, false
	for _, d := range state.Defs {
		if d.SimpleName == "helper" {
			foundHelper = true
		}
		if d.SimpleName == "main" {
			foundMain = true
		}
	}
	if !foundHelper || !foundMain {
		t.Fatalf("expected both function definitions, got %+v", state.Defs)
	}

	foundRef := false
	for _, r := range state.Refs {
		if r.Name == "helper" {
			foundRef = true
		}
	}
	if !foundRef {
		t.Fatalf("expected a reference to helper, got %+v", state.Refs)
	}
}

func TestVisitLocalVariableIsNotEmittedAsReference(t *testing.T) {
	src := "def total():\n    return 1\n\ndef compute(total):\n    total = total + 1\n    return total\n"
	tree, content := parse(t, src)
	defer tree.Close()

	state := NewState("pkg.mod", "pkg/mod.py")
	Visit(tree.RootNode(), content, state)

	for _, r := range state.Refs {
		if r.Name == "total" {
			t.Errorf("parameter/local %q shadowing a module function must not be emitted as a reference, got %+v", r.Name, r)
		}
	}
}

func TestVisitModuleGlobalStillReferencedInsideFunction(t *testing.T) {
	src := "def helper():\n    return 1\n\ndef main():\n    x = helper()\n    return x\n"
	tree, content := parse(t, src)
	defer tree.Close()

	state := NewState("pkg.mod", "pkg/mod.py")
	Visit(tree.RootNode(), content, state)

	foundHelper, foundLocalX := false, false
	for _, r := range state.Refs {
		if r.Name == "helper" {
			foundHelper = true
		}
		if r.Name == "x" {
			foundLocalX = true
		}
	}
	if !foundHelper {
		t.Errorf("expected helper() call to still be referenced, got %+v", state.Refs)
	}
	if foundLocalX {
		t.Errorf("local variable x must not be emitted as a reference, got %+v", state.Refs)
	}
}

func TestVisitClassWithMethodsAndBase(t *testing.T) {
	src := "class Base:\n    pass\n\nclass Child(Base):\n    def run(self):\n        return self.value\n"
	tree, content := parse(t, src)
	defer tree.Close()

	state := NewState("pkg.mod", "pkg/mod.py")
	Visit(tree.RootNode(), content, state)

	var gotClass, gotMethod, gotBaseRef bool
	for _, d := range state.Defs {
		if d.SimpleName == "Child" && d.Kind == "class" {
			gotClass = true
			if len(d.BaseClasses) != 1 || d.BaseClasses[0] != "Base" {
				t.Errorf("Child.BaseClasses = %v, want [Base]", d.BaseClasses)
			}
		}
		if d.SimpleName == "run" && d.EnclosingClass != "" {
			gotMethod = true
		}
	}
	for _, r := range state.Refs {
		if r.Kind == "base-class" && r.Name == "Base" {
			gotBaseRef = true
		}
	}
	if !gotClass || !gotMethod || !gotBaseRef {
		t.Fatalf("missing expected def/ref: class=%v method=%v baseRef=%v", gotClass, gotMethod, gotBaseRef)
	}
}

func TestVisitDataclassFields(t *testing.T) {
	src := "@dataclass\nclass Point:\n    x: int\n    y: int = 0\n"
	tree, content := parse(t, src)
	defer tree.Close()

	state := NewState("pkg.mod", "pkg/mod.py")
	Visit(tree.RootNode(), content, state)

	count := 0
	for _, d := range state.Defs {
		if d.Kind == "dataclass-field" {
			count++
		}
	}
	if count != 2 {
		// tree-sitter-python parses "x: int" as an assignment with a type
		// and no right-hand side, so both x and y are recognized here.
		t.Errorf("dataclass field count = %d, want 2 (x and y)", count)
	}
}

func TestVisitAllExports(t *testing.T) {
	src := "__all__ = [\"foo\", \"bar\"]\n\ndef foo():\n    pass\n"
	tree, content := parse(t, src)
	defer tree.Close()

	state := NewState("pkg.mod", "pkg/mod.py")
	Visit(tree.RootNode(), content, state)

	if len(state.AllExports) != 2 || state.AllExports[0] != "foo" || state.AllExports[1] != "bar" {
		t.Fatalf("AllExports = %v, want [foo bar]", state.AllExports)
	}
}

func TestVisitGetattrStringDispatch(t *testing.T) {
	src := "def f(obj):\n    return getattr(obj, \"compute\")\n"
	tree, content := parse(t, src)
	defer tree.Close()

	state := NewState("pkg.mod", "pkg/mod.py")
	Visit(tree.RootNode(), content, state)

	found := false
	for _, r := range state.Refs {
		if r.Kind == "string-dispatch" && r.Name == "compute" && r.Dynamic {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected string-dispatch reference to compute, got %+v", state.Refs)
	}
}

func TestVisitTypeCheckingImport(t *testing.T) {
	src := "from typing import TYPE_CHECKING\n\nif TYPE_CHECKING:\n    import expensive_module\n"
	tree, content := parse(t, src)
	defer tree.Close()

	state := NewState("pkg.mod", "pkg/mod.py")
	Visit(tree.RootNode(), content, state)

	found := false
	for _, d := range state.Defs {
		if d.SimpleName == "expensive_module" {
			found = true
			if !d.Flags.InsideIfTypeChecking {
				t.Errorf("expensive_module import: InsideIfTypeChecking = false, want true")
			}
		}
	}
	if !found {
		t.Fatalf("expected import definition for expensive_module, got %+v", state.Defs)
	}
}
