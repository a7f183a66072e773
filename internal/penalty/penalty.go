// Package penalty implements PenaltyEngine (spec section 4.8): it scores
// every Definition's confidence starting from 100 (assumed dead), applies
// a base reduction from resolved in-degree, then a sequence of absolute
// pins and graduated penalties, reporting a Definition iff its final
// confidence is at or above the configured threshold.
package penalty

import (
	"math"
	"regexp"
	"strings"

	"github.com/duriantaco/skylos-go/pkg/types"
)

// autoCalledDunders never get reported: Python or the runtime invokes them
// implicitly regardless of any visible reference.
var autoCalledDunders = map[string]bool{
	"__init__": true, "__new__": true, "__del__": true, "__enter__": true,
	"__exit__": true, "__call__": true, "__iter__": true, "__next__": true,
	"__repr__": true, "__str__": true, "__eq__": true, "__hash__": true,
	"__bool__": true, "__len__": true, "__contains__": true,
	"__getitem__": true, "__setitem__": true, "__getattr__": true, "__setattr__": true,
	"__lt__": true, "__le__": true, "__gt__": true, "__ge__": true, "__ne__": true,
	"__add__": true, "__sub__": true, "__mul__": true, "__truediv__": true,
	"__floordiv__": true, "__mod__": true, "__pow__": true, "__neg__": true,
	"__pos__": true, "__abs__": true, "__radd__": true, "__rsub__": true,
	"__rmul__": true, "__and__": true, "__or__": true, "__xor__": true,
}

var mixinClassPattern = regexp.MustCompile(`Mixin$`)
var frameworkBaseClassPattern = regexp.MustCompile(`^Base.*|.*Base$|.*ABC$|.*Interface$|.*Adapter$`)
var visitorDispatchPattern = regexp.MustCompile(`^(visit|leave)_`)
var pytestHookPattern = regexp.MustCompile(`^pytest_`)
var pluginClassPattern = regexp.MustCompile(`Plugin$|Handler$|Command$`)

// Input bundles everything PenaltyEngine needs about one Definition beyond
// the Definition itself: its resolved in-degree, whether it's reached by a
// trace hit, whether it's suppressed or whitelisted, and its enclosing
// class's name (for the Mixin/Base*/Plugin name-pattern penalties) and
// module-wide dynamic-dispatch hedge flag.
type Input struct {
	Def                      *types.Definition
	InDegree                 int
	TraceHit                 bool
	Suppressed               bool
	Whitelisted              bool
	EnclosingClassName       string // simple name only, e.g. "FooMixin"
	ModuleHasDynamicDispatch bool
}

// Score mutates def.Confidence and def.RuleID in place and returns true if
// the definition should be reported (confidence >= threshold).
func Score(in Input, threshold int) bool {
	def := in.Def

	if pinned, rule := checkAbsolutePins(in); pinned {
		def.Confidence = 0
		def.RuleID = rule
		return false
	}

	confidence := 100
	confidence -= int(math.Min(100, 40*math.Log2(1+float64(in.InDegree))))

	rule := "base-reduction"
	if in.InDegree > 0 {
		rule = "resolved-reference"
	}

	for _, p := range graduatedPenalties(in) {
		confidence -= p.amount
		rule = p.rule
	}

	if confidence < 0 {
		confidence = 0
	}
	def.Confidence = confidence
	def.RuleID = rule

	return confidence >= threshold
}

// checkAbsolutePins implements the "Absolute pins (force confidence = 0,
// never reported)" list verbatim.
func checkAbsolutePins(in Input) (bool, string) {
	def := in.Def

	switch {
	case def.Flags.DataclassField:
		return true, "pin-dataclass-field"
	case def.Kind == types.KindEnumMember:
		return true, "pin-enum-member"
	case def.Flags.ProtocolMember:
		return true, "pin-protocol-member"
	case def.Flags.Abstract:
		return true, "pin-abstract-method"
	case def.Flags.OverridesAbstract:
		return true, "pin-overrides-abstract"
	case autoCalledDunders[def.SimpleName] && def.IsDunder:
		return true, "pin-auto-called-dunder"
	case def.Flags.ExportedViaAll:
		return true, "pin-all-exported"
	case in.Suppressed:
		return true, "pin-suppressed"
	case in.Whitelisted:
		return true, "pin-whitelisted"
	case in.TraceHit:
		return true, "pin-trace-hit"
	case def.Flags.FrameworkRoute:
		return true, "pin-framework-route"
	case def.SimpleName == "__main__":
		return true, "pin-dunder-main"
	case def.Flags.OptionalImport:
		return true, "pin-optional-import"
	}
	return false, ""
}

type penaltyEntry struct {
	amount int
	rule   string
}

// graduatedPenalties implements the "subtract the stated amount after base
// reduction" list, applied in the order given in spec section 4.8.
func graduatedPenalties(in Input) []penaltyEntry {
	def := in.Def
	var out []penaltyEntry

	if def.IsPrivate && !def.IsDunder {
		out = append(out, penaltyEntry{20, "private-name"})
	}
	if def.Flags.IsConstantAllCaps {
		out = append(out, penaltyEntry{30, "all-caps-constant"})
	}
	if in.EnclosingClassName != "" {
		switch {
		case mixinClassPattern.MatchString(in.EnclosingClassName):
			out = append(out, penaltyEntry{60, "mixin-class"})
		case frameworkBaseClassPattern.MatchString(in.EnclosingClassName):
			out = append(out, penaltyEntry{40, "base-like-class"})
		}
		if pluginClassPattern.MatchString(in.EnclosingClassName) {
			out = append(out, penaltyEntry{20, "plugin-like-class"})
		}
	}
	switch {
	case visitorDispatchPattern.MatchString(def.SimpleName):
		out = append(out, penaltyEntry{25, "visitor-dispatch-name"})
	case pytestHookPattern.MatchString(def.SimpleName):
		out = append(out, penaltyEntry{30, "pytest-hook-name"})
	}
	if in.ModuleHasDynamicDispatch {
		out = append(out, penaltyEntry{10, "dynamic-dispatch-hedge"})
	}

	return out
}

// IsStubBody reports whether a class/function body source is empty or only
// pass/Ellipsis. Score does not call it, so a stub body is scored like any
// other body.
func IsStubBody(bodySource string) bool {
	trimmed := strings.TrimSpace(bodySource)
	switch trimmed {
	case "", "pass", "...":
		return true
	}
	return false
}
