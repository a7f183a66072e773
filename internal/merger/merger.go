// Package merger implements Merger (spec section 4.6): it combines every
// file's DefRefVisitor output into one project-wide ProjectGraph, resolving
// module FQNs, building the class hierarchy (MRO, protocol membership,
// duck-typed protocol matches), and folding __all__ exports and suppression
// data in as evidence the PenaltyEngine will consult later.
package merger

import (
	"math"
	"path"
	"sort"
	"strings"

	"github.com/duriantaco/skylos-go/pkg/types"
)

// FileUnit is one file's visitor output, keyed by its discovered path info.
type FileUnit struct {
	RelPath       string
	ModuleFQN     string
	Defs          []types.Definition
	Refs          []types.Reference
	Imports       []types.ImportAlias
	AllExports    []string
	InstanceAttrs map[string]map[string]string
}

// ModuleFQN derives a dotted module path from a file's project-relative
// path: strip the extension, treat "__init__.py" as its containing
// directory, and join path segments with ".".
func ModuleFQN(relPath string) string {
	rel := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(relPath, ".py"), ".pyi"), ".pyw")
	base := path.Base(rel)
	if base == "__init__" {
		rel = path.Dir(rel)
		if rel == "." {
			return ""
		}
	}
	return strings.ReplaceAll(rel, "/", ".")
}

// Merge combines every file unit into one ProjectGraph. On FQN collision
// (two definitions claiming the same fully-qualified name) the later unit
// in iteration order wins, per spec's "last-wins, retain earlier line for
// diagnostics" rule; units are iterated in filename order for determinism.
func Merge(units []FileUnit, whitelist *types.WhitelistMatcher, suppressed map[string]map[int]bool) *types.ProjectGraph {
	sorted := make([]FileUnit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RelPath < sorted[j].RelPath })

	g := &types.ProjectGraph{
		Definitions:     make(map[string]*types.Definition),
		ByModule:        make(map[string][]*types.Definition),
		Imports:         make(map[string][]types.ImportAlias),
		Classes:         make(map[string]*types.ClassRecord),
		ProtocolMethods: make(map[string]map[string]bool),
		AbstractMethods: make(map[string]map[string]bool),
		Whitelist:       whitelist,
		Suppressed:      suppressed,
	}

	allExportsByModule := make(map[string]map[string]bool)

	for _, u := range sorted {
		g.Imports[u.ModuleFQN] = append(g.Imports[u.ModuleFQN], u.Imports...)

		if len(u.AllExports) > 0 {
			set := allExportsByModule[u.ModuleFQN]
			if set == nil {
				set = make(map[string]bool)
				allExportsByModule[u.ModuleFQN] = set
			}
			for _, name := range u.AllExports {
				set[name] = true
			}
		}

		for i := range u.Defs {
			d := u.Defs[i]
			if prior, exists := g.Definitions[d.FQN]; exists {
				// last-wins: keep the new definition but retain the
				// earlier line number for diagnostics.
				d.Line = prior.Line
			}
			ptr := new(types.Definition)
			*ptr = d
			g.Definitions[d.FQN] = ptr
			g.ByModule[u.ModuleFQN] = append(g.ByModule[u.ModuleFQN], ptr)

			if d.Kind == types.KindClass {
				g.Classes[d.FQN] = newClassRecord(ptr, u)
			}
		}

		g.References = append(g.References, u.Refs...)
	}

	applyAllExports(g, allExportsByModule)
	resolveBaseFQNs(g)
	resolveInstanceAttrTypes(g)
	buildMRO(g)
	indexProtocolAndAbstractMethods(g)
	matchDuckTypedProtocols(g)

	return g
}

func newClassRecord(def *types.Definition, u FileUnit) *types.ClassRecord {
	rec := &types.ClassRecord{
		FQN:               def.FQN,
		BaseFQNs:          append([]string(nil), def.BaseClasses...),
		OwnMembers:        make(map[string]bool),
		InstanceAttrTypes: make(map[string]string),
		AbstractMethods:   make(map[string]bool),
	}
	// DefRefVisitor can only see its own file, so InstanceAttrTypes holds
	// the raw "self.x = Callee(...)" callee text here (e.g. "Helper", or
	// an imported alias's dotted name); resolveInstanceAttrTypes rewrites
	// these to project class fqns once every module's imports and classes
	// are known.
	if attrs, ok := u.InstanceAttrs[def.FQN]; ok {
		for k, v := range attrs {
			rec.InstanceAttrTypes[k] = v
		}
	}
	return rec
}

// applyAllExports marks every definition named in a module's __all__ as
// ExportedViaAll and records an implicit reference to it (spec 4.6:
// "__all__ members: implicit reference, regardless of other usage").
func applyAllExports(g *types.ProjectGraph, allExportsByModule map[string]map[string]bool) {
	for module, names := range allExportsByModule {
		for _, def := range g.ByModule[module] {
			if names[def.SimpleName] {
				def.Flags.ExportedViaAll = true
				g.References = append(g.References, types.Reference{
					Kind: types.RefName,
					Name: def.SimpleName,
					File: def.File,
				})
			}
		}
	}
}

// resolveBaseFQNs rewrites each ClassRecord's BaseFQNs from raw source text
// (simple name or dotted import alias) to project FQNs where resolvable,
// leaving unresolved bases as "external(name)" sentinels.
func resolveBaseFQNs(g *types.ProjectGraph) {
	for _, rec := range g.Classes {
		module := moduleOf(rec.FQN)
		resolved := make([]string, 0, len(rec.BaseFQNs))
		for _, base := range rec.BaseFQNs {
			resolved = append(resolved, resolveName(g, module, base))
		}
		rec.BaseFQNs = resolved

		switch {
		case containsAny(rec.BaseFQNs, "external(ABC)", "external(abc.ABC)"):
			rec.IsAbstract = true
		case containsAny(rec.BaseFQNs, "external(Protocol)", "external(typing.Protocol)"):
			rec.IsProtocol = true
		}
	}
}

// resolveName resolves a simple or dotted base-class expression against
// the class's own module's imports, then against in-project class FQNs,
// falling back to an external(...) sentinel.
func resolveName(g *types.ProjectGraph, module, name string) string {
	for _, imp := range g.Imports[module] {
		if imp.LocalName == name || strings.HasPrefix(name, imp.LocalName+".") {
			if imp.External {
				if _, ok := g.Classes[imp.TargetFQN]; !ok {
					return "external(" + name + ")"
				}
			}
			return imp.TargetFQN
		}
	}
	if module != "" {
		if _, ok := g.Classes[module+"."+name]; ok {
			return module + "." + name
		}
	}
	if _, ok := g.Classes[name]; ok {
		return name
	}
	return "external(" + name + ")"
}

// resolveInstanceAttrTypes rewrites each ClassRecord's raw "self.x =
// Callee(...)" callee text into the in-project class fqn it names, the
// same way resolveBaseFQNs resolves a base-class expression, so rule 5
// (instance attribute access) can look it up in Definitions by fqn.
// An attribute whose callee doesn't resolve to a known project class
// (an external/unresolvable constructor, a builtin) is dropped rather
// than kept as unusable raw text.
func resolveInstanceAttrTypes(g *types.ProjectGraph) {
	for _, rec := range g.Classes {
		module := moduleOf(rec.FQN)
		for attr, raw := range rec.InstanceAttrTypes {
			resolved := resolveName(g, module, raw)
			if _, ok := g.Classes[resolved]; ok {
				rec.InstanceAttrTypes[attr] = resolved
			} else {
				delete(rec.InstanceAttrTypes, attr)
			}
		}
	}
}

func moduleOf(fqn string) string {
	if idx := strings.LastIndexByte(fqn, '.'); idx >= 0 {
		return fqn[:idx]
	}
	return ""
}

func containsAny(haystack []string, needles ...string) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if h == n {
				return true
			}
		}
	}
	return false
}

// buildMRO computes a depth-first linearization for every class, truncating
// on the first revisited ancestor (spec 4.6: "cycle guard: truncate MRO on
// first revisit rather than raising").
func buildMRO(g *types.ProjectGraph) {
	for fqn, rec := range g.Classes {
		seen := map[string]bool{}
		rec.MRO = dfsMRO(g, fqn, seen)
	}
}

func dfsMRO(g *types.ProjectGraph, fqn string, seen map[string]bool) []string {
	if seen[fqn] {
		return nil
	}
	seen[fqn] = true
	mro := []string{fqn}
	rec, ok := g.Classes[fqn]
	if !ok {
		return mro
	}
	for _, base := range rec.BaseFQNs {
		if strings.HasPrefix(base, "external(") {
			continue
		}
		mro = append(mro, dfsMRO(g, base, seen)...)
	}
	return mro
}

// indexProtocolAndAbstractMethods populates ProjectGraph.ProtocolMethods
// (simple_name -> protocol fqns declaring it) and AbstractMethods (class
// fqn -> abstract method names), and each ClassRecord's OwnMembers.
func indexProtocolAndAbstractMethods(g *types.ProjectGraph) {
	for _, def := range g.Definitions {
		if def.Kind != types.KindMethod && def.Kind != types.KindFunction {
			continue
		}
		cls := def.EnclosingClass
		if cls == "" {
			continue
		}
		rec, ok := g.Classes[cls]
		if !ok {
			continue
		}
		rec.OwnMembers[def.SimpleName] = true

		if def.Flags.Abstract {
			def.Flags.ProtocolMember = def.Flags.ProtocolMember || rec.IsProtocol
			rec.AbstractMethods[def.SimpleName] = true
			if g.AbstractMethods[cls] == nil {
				g.AbstractMethods[cls] = make(map[string]bool)
			}
			g.AbstractMethods[cls][def.SimpleName] = true
		}

		if rec.IsProtocol {
			def.Flags.ProtocolMember = true
			if g.ProtocolMethods[def.SimpleName] == nil {
				g.ProtocolMethods[def.SimpleName] = make(map[string]bool)
			}
			g.ProtocolMethods[def.SimpleName][cls] = true
		}
	}

	for cls, rec := range g.Classes {
		for base := range collectMROAbstracts(g, rec) {
			if rec.AbstractMethods == nil {
				rec.AbstractMethods = make(map[string]bool)
			}
			if rec.OwnMembers[base] {
				markOverride(g, cls, base)
			}
		}
	}
}

func collectMROAbstracts(g *types.ProjectGraph, rec *types.ClassRecord) map[string]bool {
	out := make(map[string]bool)
	for _, ancestor := range rec.MRO {
		if ancestor == rec.FQN {
			continue
		}
		for name := range g.AbstractMethods[ancestor] {
			out[name] = true
		}
	}
	return out
}

func markOverride(g *types.ProjectGraph, classFQN, methodName string) {
	fqn := classFQN + "." + methodName
	if def, ok := g.Definitions[fqn]; ok {
		def.Flags.OverridesAbstract = true
	}
}

// matchDuckTypedProtocols credits classes that implement at least
// max(3, ceil(0.7*|P|)) of a Protocol's declared methods, even without
// explicit inheritance (spec 4.6 duck-typing threshold), by crediting
// those methods as protocol members too.
func matchDuckTypedProtocols(g *types.ProjectGraph) {
	protocolMethodSets := make(map[string]map[string]bool) // protocol fqn -> method set
	for methodName, protocols := range g.ProtocolMethods {
		for protoFQN := range protocols {
			if protocolMethodSets[protoFQN] == nil {
				protocolMethodSets[protoFQN] = make(map[string]bool)
			}
			protocolMethodSets[protoFQN][methodName] = true
		}
	}

	for protoFQN, methods := range protocolMethodSets {
		threshold := duckTypeThreshold(len(methods))
		for classFQN, rec := range g.Classes {
			if classFQN == protoFQN || rec.IsProtocol {
				continue
			}
			matched := 0
			for m := range methods {
				if rec.OwnMembers[m] {
					matched++
				}
			}
			if matched >= threshold {
				for m := range methods {
					if def, ok := g.Definitions[classFQN+"."+m]; ok {
						def.Flags.ProtocolMember = true
					}
				}
			}
		}
	}
}

func duckTypeThreshold(protocolSize int) int {
	t := int(math.Ceil(0.7 * float64(protocolSize)))
	if t < 3 {
		return 3
	}
	return t
}
