package merger

import (
	"testing"

	"github.com/duriantaco/skylos-go/pkg/types"
)

func TestModuleFQN(t *testing.T) {
	cases := map[string]string{
		"pkg/mod.py":      "pkg.mod",
		"pkg/__init__.py": "pkg",
		"__init__.py":     "",
		"a/b/c.py":        "a.b.c",
	}
	for in, want := range cases {
		if got := ModuleFQN(in); got != want {
			t.Errorf("ModuleFQN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMergeLastWinsRetainsEarlierLine(t *testing.T) {
	units := []FileUnit{
		{
			RelPath:   "a.py",
			ModuleFQN: "a",
			Defs: []types.Definition{
				{Kind: types.KindFunction, SimpleName: "f", FQN: "f", Line: 1, Confidence: -1},
			},
		},
		{
			RelPath:   "b.py",
			ModuleFQN: "b",
			Defs: []types.Definition{
				{Kind: types.KindFunction, SimpleName: "f", FQN: "f", Line: 99, Confidence: -1},
			},
		},
	}
	g := Merge(units, nil, nil)
	def, ok := g.Definitions["f"]
	if !ok {
		t.Fatal("expected definition f")
	}
	if def.Line != 1 {
		t.Errorf("Line = %d, want 1 (earliest line retained on collision)", def.Line)
	}
}

func TestMergeBuildsMROWithCycleGuard(t *testing.T) {
	units := []FileUnit{
		{
			RelPath:   "m.py",
			ModuleFQN: "m",
			Defs: []types.Definition{
				{Kind: types.KindClass, SimpleName: "A", FQN: "m.A", BaseClasses: []string{"B"}, Confidence: -1},
				{Kind: types.KindClass, SimpleName: "B", FQN: "m.B", BaseClasses: []string{"A"}, Confidence: -1},
			},
		},
	}
	g := Merge(units, nil, nil)
	recA, ok := g.Classes["m.A"]
	if !ok {
		t.Fatal("expected class record m.A")
	}
	if len(recA.MRO) == 0 {
		t.Fatal("expected non-empty MRO even with a cycle")
	}
}

func TestAllExportsMarksFlagAndReference(t *testing.T) {
	units := []FileUnit{
		{
			RelPath:    "m.py",
			ModuleFQN:  "m",
			AllExports: []string{"public_fn"},
			Defs: []types.Definition{
				{Kind: types.KindFunction, SimpleName: "public_fn", FQN: "m.public_fn", Confidence: -1},
			},
		},
	}
	g := Merge(units, nil, nil)
	def := g.Definitions["m.public_fn"]
	if def == nil || !def.Flags.ExportedViaAll {
		t.Fatal("expected public_fn to be flagged ExportedViaAll")
	}
	foundRef := false
	for _, r := range g.References {
		if r.Kind == types.RefName && r.Name == "public_fn" {
			foundRef = true
		}
	}
	if !foundRef {
		t.Errorf("expected an implicit reference to public_fn, got %+v", g.References)
	}
}

func TestInstanceAttrTypesResolveToProjectFQN(t *testing.T) {
	units := []FileUnit{
		{
			RelPath:   "pkg/mod.py",
			ModuleFQN: "pkg.mod",
			Defs: []types.Definition{
				{Kind: types.KindClass, SimpleName: "Helper", FQN: "pkg.mod.Helper", Confidence: -1},
				{Kind: types.KindClass, SimpleName: "Consumer", FQN: "pkg.mod.Consumer", Confidence: -1},
				{Kind: types.KindMethod, SimpleName: "do", FQN: "pkg.mod.Helper.do", Confidence: -1, EnclosingClass: "pkg.mod.Helper"},
			},
			InstanceAttrs: map[string]map[string]string{
				"pkg.mod.Consumer": {"x": "Helper"},
			},
		},
	}
	g := Merge(units, nil, nil)
	rec, ok := g.Classes["pkg.mod.Consumer"]
	if !ok {
		t.Fatal("expected class record pkg.mod.Consumer")
	}
	if got := rec.InstanceAttrTypes["x"]; got != "pkg.mod.Helper" {
		t.Errorf("InstanceAttrTypes[x] = %q, want project fqn \"pkg.mod.Helper\"", got)
	}
}

func TestInstanceAttrTypesDropUnresolvable(t *testing.T) {
	units := []FileUnit{
		{
			RelPath:   "pkg/mod.py",
			ModuleFQN: "pkg.mod",
			Defs: []types.Definition{
				{Kind: types.KindClass, SimpleName: "Consumer", FQN: "pkg.mod.Consumer", Confidence: -1},
			},
			InstanceAttrs: map[string]map[string]string{
				"pkg.mod.Consumer": {"x": "SomeExternalThing"},
			},
		},
	}
	g := Merge(units, nil, nil)
	rec := g.Classes["pkg.mod.Consumer"]
	if _, ok := rec.InstanceAttrTypes["x"]; ok {
		t.Errorf("expected unresolvable instance attr type to be dropped, got %+v", rec.InstanceAttrTypes)
	}
}

func TestDuckTypeThreshold(t *testing.T) {
	if got := duckTypeThreshold(2); got != 3 {
		t.Errorf("duckTypeThreshold(2) = %d, want 3 (floor of 3)", got)
	}
	if got := duckTypeThreshold(10); got != 7 {
		t.Errorf("duckTypeThreshold(10) = %d, want 7", got)
	}
}
