// Package resolver implements Resolver (spec section 4.7): it walks every
// Reference in a merged ProjectGraph and resolves it to zero or more target
// fqns using nine ordered rules, accumulating an in-degree count per fqn.
// Unresolved references are discarded; they never falsely incriminate a
// definition, only fail to rescue one.
package resolver

import (
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/match"

	"github.com/duriantaco/skylos-go/pkg/types"
)

// Result is Resolver's output: an in-degree count per fqn, plus the set of
// fqns reached via a trace hit (the PenaltyEngine pins those separately).
type Result struct {
	InDegree  map[string]int
	TraceHit  map[string]bool
}

// TraceHits is the trace-file collaborator's output: file -> sorted hit
// lines, consulted by rule 9 (reference resolution); the fqns it reaches
// (Result.TraceHit) feed the PenaltyEngine's trace-hit pin.
type TraceHits map[string][]int

// Resolve runs all nine resolution rules over g.References and returns the
// accumulated in-degree map. Stage 3 per spec section 5: shardable by
// module, since g is read-only; this implementation shards by reference
// index modulo a fixed worker count and merges sharded counters at the end.
func Resolve(g *types.ProjectGraph, traceHits TraceHits, workers int) *Result {
	if workers < 1 {
		workers = 1
	}

	simpleNameIndex := buildSimpleNameIndex(g)
	traceSpans := buildTraceSpanIndex(g)

	shardResults := make([]map[string]int, workers)
	traceMatches := make([]map[string]bool, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		shardResults[w] = make(map[string]int)
		traceMatches[w] = make(map[string]bool)
		wg.Add(1)
		go func(shard int) {
			defer wg.Done()
			for i := shard; i < len(g.References); i += workers {
				ref := g.References[i]
				targets := resolveOne(g, ref, simpleNameIndex)
				for _, t := range targets {
					shardResults[shard][t]++
				}
			}
		}(w)
	}
	wg.Wait()

	merged := make(map[string]int)
	for _, shard := range shardResults {
		for fqn, n := range shard {
			merged[fqn] += n
		}
	}

	traceHitFqns := resolveTraceHits(traceHits, traceSpans)

	return &Result{InDegree: merged, TraceHit: traceHitFqns}
}

// resolveOne applies rules 1-8 to a single reference; rule 9 (trace-hit
// spans) is handled separately in resolveTraceHits since it indexes by
// (file, line) rather than by Reference. Only RefStringDispatch reaches
// the project-wide simple-name scan (rules 7/8, via simpleNames); every
// other kind resolves against imports/module-globals/attribute chains
// only, so an ordinary reference can never shotgun-credit an unrelated
// same-named definition elsewhere in the project.
func resolveOne(g *types.ProjectGraph, ref types.Reference, simpleNames map[string][]string) []string {
	switch ref.Kind {
	case types.RefStringDispatch:
		if ref.IsGlobPattern {
			return matchGlob(simpleNames, ref.Name) // rule 8
		}
		return matchShotgun(simpleNames, ref.Name) // rule 7
	case types.RefImportTarget, types.RefBaseClass, types.RefDecorator:
		return resolveQualifiedOrSimple(g, ref)
	case types.RefAttributeChain:
		return resolveAttributeChain(g, ref)
	case types.RefName:
		return resolveSimpleName(g, ref)
	default:
		return nil
	}
}

// resolveSimpleName covers rules 1 and 6: an import alias in the
// enclosing module, or a same-module global lookup. Self/cls member
// access arrives from DefRefVisitor as a RefAttributeChain, not a bare
// RefName, so rule 2 is applied in resolveAttributeChain instead.
//
// Rule 6 is deliberately narrow: it never falls back to a project-wide
// simple-name scan. That scan is rules 7/8's job, reserved for
// RefStringDispatch references (spec 9: "so Resolver can apply the
// shotgun rule without polluting scoring heuristics for ordinary
// references"). Widening this to every name miss would let any
// coincidental name match (a local read, an unrelated method) rescue
// an unrelated definition, defeating cross-module dead-code detection.
func resolveSimpleName(g *types.ProjectGraph, ref types.Reference) []string {
	module := moduleOf(ref)
	for _, imp := range g.Imports[module] {
		if imp.LocalName == ref.Name { // rule 1
			return []string{imp.TargetFQN}
		}
	}

	// rule 6: same-module global only.
	if module != "" {
		if _, ok := g.Definitions[module+"."+ref.Name]; ok {
			return []string{module + "." + ref.Name}
		}
	}
	return nil
}

// resolveSelfCls implements rule 2: self.foo()/cls.foo() resolves to
// EnclosingClass.foo, plus every ancestor in the MRO that defines foo (so
// overriding an abstract ancestor method credits the ancestor's
// declaration too).
func resolveSelfCls(g *types.ProjectGraph, ref types.Reference) []string {
	var targets []string
	direct := ref.EnclosingClass + "." + ref.Name
	if _, ok := g.Definitions[direct]; ok {
		targets = append(targets, direct)
	}
	if rec, ok := g.Classes[ref.EnclosingClass]; ok {
		for _, ancestor := range rec.MRO {
			if ancestor == ref.EnclosingClass {
				continue
			}
			fqn := ancestor + "." + ref.Name
			if _, ok := g.Definitions[fqn]; ok {
				targets = append(targets, fqn)
			}
		}
	}
	return targets
}

// resolveAttributeChain covers rules 2-6 for a dotted "qualifier.name"
// reference: self/cls, an import-aliased root, an in-project class name,
// an instance variable with a known type, and finally module globals.
func resolveAttributeChain(g *types.ProjectGraph, ref types.Reference) []string {
	root := rootOf(ref.Qualifier)

	if root == "self" || root == "cls" {
		if ref.EnclosingClass != "" {
			// rule 5 for self.x.name: x's inferred type decides the target.
			if parts := strings.Split(ref.Qualifier, "."); len(parts) == 3 {
				if rec, ok := g.Classes[ref.EnclosingClass]; ok {
					if typeFQN, ok := rec.InstanceAttrTypes[parts[1]]; ok {
						if _, ok := g.Definitions[typeFQN+"."+ref.Name]; ok {
							return []string{typeFQN + "." + ref.Name}
						}
					}
				}
			}
			return resolveSelfCls(g, types.Reference{EnclosingClass: ref.EnclosingClass, Name: ref.Name})
		}
	}

	module := moduleOf(ref)
	for _, imp := range g.Imports[module] {
		if imp.LocalName == root { // rule 3
			target := imp.TargetFQN
			if rest := memberSuffix(ref.Qualifier, root); rest != "" {
				target += "." + rest
			}
			if _, ok := g.Definitions[target+"."+ref.Name]; ok {
				return []string{target + "." + ref.Name}
			}
			return []string{target}
		}
	}

	if _, ok := g.Classes[root]; ok { // rule 4
		fqn := root + "." + ref.Name
		if _, ok := g.Definitions[fqn]; ok {
			return []string{fqn}
		}
	}
	if module != "" {
		if _, ok := g.Classes[module+"."+root]; ok {
			fqn := module + "." + root + "." + ref.Name
			if _, ok := g.Definitions[fqn]; ok {
				return []string{fqn}
			}
		}
	}

	// rule 5: instance variable with known type, keyed by enclosing class.
	if ref.EnclosingClass != "" {
		if rec, ok := g.Classes[ref.EnclosingClass]; ok {
			if typeFQN, ok := rec.InstanceAttrTypes[root]; ok {
				fqn := typeFQN + "." + ref.Name
				if _, ok := g.Definitions[fqn]; ok {
					return []string{fqn}
				}
			}
		}
	}

	return resolveSimpleName(g, types.Reference{Name: ref.Name, File: ref.File}) // rule 6 fallback
}

func resolveQualifiedOrSimple(g *types.ProjectGraph, ref types.Reference) []string {
	if ref.Name != "" {
		if _, ok := g.Definitions[ref.Name]; ok {
			return []string{ref.Name}
		}
	}
	return resolveSimpleName(g, ref)
}

func rootOf(qualifier string) string {
	if idx := strings.IndexByte(qualifier, '.'); idx >= 0 {
		return qualifier[:idx]
	}
	return qualifier
}

func memberSuffix(qualifier, root string) string {
	rest := strings.TrimPrefix(qualifier, root)
	return strings.TrimPrefix(rest, ".")
}

func moduleOf(ref types.Reference) string {
	rel := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(ref.File, ".py"), ".pyi"), ".pyw")
	rel = strings.TrimSuffix(rel, "/__init__")
	return strings.ReplaceAll(rel, "/", ".")
}

// buildSimpleNameIndex maps every definition's simple_name to its fqn(s),
// used by rules 7 and 8 (shotgun and glob string-dispatch matching).
func buildSimpleNameIndex(g *types.ProjectGraph) map[string][]string {
	idx := make(map[string][]string)
	for fqn, def := range g.Definitions {
		idx[def.SimpleName] = append(idx[def.SimpleName], fqn)
	}
	// deterministic order for tests and reproducible in-degree ties.
	for name := range idx {
		sort.Strings(idx[name])
	}
	return idx
}

// matchShotgun implements rule 7: a string-dispatch reference with a
// literal name matches every definition sharing that simple_name, project
// wide. Low selectivity is accepted: this can only rescue definitions, not
// incriminate them.
func matchShotgun(simpleNames map[string][]string, name string) []string {
	return simpleNames[name]
}

// matchGlob implements rule 8: a string-dispatch glob ("handle_*") matches
// every simple_name in the project satisfying the pattern.
func matchGlob(simpleNames map[string][]string, pattern string) []string {
	var out []string
	for name, fqns := range simpleNames {
		if match.Match(name, pattern) {
			out = append(out, fqns...)
		}
	}
	return out
}

// buildTraceSpanIndex maps each file to its sorted list of (fqn, start,
// end) spans, so rule 9 can test "does this hit line fall within ±5 of any
// definition span" without an O(defs * hits) scan per file.
type span struct {
	fqn        string
	start, end int
}

func buildTraceSpanIndex(g *types.ProjectGraph) map[string][]span {
	idx := make(map[string][]span)
	for fqn, def := range g.Definitions {
		idx[def.File] = append(idx[def.File], span{fqn: fqn, start: def.Line, end: def.EndLine})
	}
	return idx
}

// resolveTraceHits implements rule 9: a runtime trace hit at (file, line)
// marks every definition whose span overlaps [line-5, line+5] as reached.
func resolveTraceHits(hits TraceHits, spans map[string][]span) map[string]bool {
	reached := make(map[string]bool)
	for file, lines := range hits {
		fileSpans := spans[file]
		for _, line := range lines {
			for _, sp := range fileSpans {
				if overlaps(sp.start, sp.end, line-5, line+5) {
					reached[sp.fqn] = true
				}
			}
		}
	}
	return reached
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	if aEnd < aStart {
		aEnd = aStart
	}
	return aStart <= bEnd && bStart <= aEnd
}
