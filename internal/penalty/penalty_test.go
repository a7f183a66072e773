package penalty

import (
	"testing"

	"github.com/duriantaco/skylos-go/pkg/types"
)

func TestScorePinsDataclassFieldToZero(t *testing.T) {
	def := &types.Definition{Kind: types.KindDataclassField, SimpleName: "x", Flags: types.DefFlags{DataclassField: true}}
	reported := Score(Input{Def: def}, 60)
	if reported {
		t.Error("dataclass field should never be reported")
	}
	if def.Confidence != 0 {
		t.Errorf("Confidence = %d, want 0", def.Confidence)
	}
	if def.RuleID != "pin-dataclass-field" {
		t.Errorf("RuleID = %q, want pin-dataclass-field", def.RuleID)
	}
}

func TestScorePinsAutoCalledDunder(t *testing.T) {
	def := &types.Definition{Kind: types.KindMethod, SimpleName: "__init__", IsDunder: true}
	reported := Score(Input{Def: def}, 0)
	if reported || def.Confidence != 0 {
		t.Errorf("__init__ should be pinned to 0, got confidence=%d reported=%v", def.Confidence, reported)
	}
}

func TestScoreBaseReductionFromInDegree(t *testing.T) {
	def := &types.Definition{Kind: types.KindFunction, SimpleName: "helper"}
	reported := Score(Input{Def: def, InDegree: 1}, 60)
	if def.Confidence >= 100 {
		t.Errorf("in-degree 1 should reduce confidence below 100, got %d", def.Confidence)
	}
	if !reported {
		t.Errorf("expected report at default threshold with one reference, confidence=%d", def.Confidence)
	}
}

func TestScoreZeroInDegreeReportedAsDead(t *testing.T) {
	def := &types.Definition{Kind: types.KindFunction, SimpleName: "dead"}
	reported := Score(Input{Def: def, InDegree: 0}, 60)
	if !reported {
		t.Errorf("confidence 100 should exceed threshold 60 and be reported as dead code, got confidence=%d", def.Confidence)
	}
	if def.Confidence != 100 {
		t.Errorf("Confidence = %d, want 100 for zero in-degree", def.Confidence)
	}
}

func TestScorePrivateNamePenalty(t *testing.T) {
	def := &types.Definition{Kind: types.KindFunction, SimpleName: "_helper", IsPrivate: true}
	Score(Input{Def: def, InDegree: 0}, 60)
	if def.Confidence != 80 {
		t.Errorf("Confidence = %d, want 80 (100 - 20 private-name)", def.Confidence)
	}
}

func TestScoreMixinClassPenalty(t *testing.T) {
	def := &types.Definition{Kind: types.KindMethod, SimpleName: "helper"}
	Score(Input{Def: def, InDegree: 0, EnclosingClassName: "FooMixin"}, 60)
	if def.Confidence != 40 {
		t.Errorf("Confidence = %d, want 40 (100 - 60 mixin-class)", def.Confidence)
	}
}

func TestScoreTraceHitPinsToZero(t *testing.T) {
	def := &types.Definition{Kind: types.KindFunction, SimpleName: "f"}
	reported := Score(Input{Def: def, TraceHit: true}, 0)
	if reported || def.Confidence != 0 {
		t.Errorf("trace-hit definitions must be pinned to 0, got confidence=%d reported=%v", def.Confidence, reported)
	}
}

func TestIsStubBody(t *testing.T) {
	cases := map[string]bool{"pass": true, "...": true, "": true, "return 1": false}
	for src, want := range cases {
		if got := IsStubBody(src); got != want {
			t.Errorf("IsStubBody(%q) = %v, want %v", src, got, want)
		}
	}
}
