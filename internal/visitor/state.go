package visitor

import "github.com/duriantaco/skylos-go/pkg/types"

// funcScope is one entry of the function_stack: binds local names so a
// closure lookup can fall through to enclosing functions and finally to
// module globals (spec section 4.3, scope resolution rule 1).
type funcScope struct {
	fqn    string
	locals map[string]bool
	global map[string]bool // names declared `global` in this function
}

// classScope is one entry of the class_stack.
type classScope struct {
	fqn         string
	isDataclass bool
	isProtocol  bool
	isEnum      bool
	isAbstract  bool
}

// State is the explicit VisitorState the design notes call for: every
// register DefRefVisitor needs is a field here, pushed/popped at scope
// boundaries with guaranteed-pop helpers rather than recursive-call side
// effects.
type State struct {
	ModuleFQN string
	File      string

	classStack []classScope
	funcStack  []funcScope

	// selfAlias/clsAlias is the first positional parameter name of the
	// innermost method (not always "self"/"cls").
	selfAlias string
	clsAlias  string

	// instanceAttrTypes accumulates, per class fqn being visited, the
	// attribute types inferred from "self.x = Cls(...)" in any method.
	// Propagated to the caller at class exit.
	instanceAttrTypes map[string]map[string]string

	typeCheckingDepth int
	tryImportDepth    int

	Defs       []types.Definition
	Refs       []types.Reference
	Imports    []types.ImportAlias
	AllExports []string // simple names listed in this module's __all__

	// InstanceAttrs is the final output: class fqn -> attr -> the raw callee
	// text; the merger resolves that text to a class fqn.
	InstanceAttrs map[string]map[string]string
}

func NewState(moduleFQN, file string) *State {
	return &State{
		ModuleFQN:         moduleFQN,
		File:              file,
		instanceAttrTypes: make(map[string]map[string]string),
		InstanceAttrs:     make(map[string]map[string]string),
	}
}

func (s *State) pushClass(cs classScope) {
	s.classStack = append(s.classStack, cs)
	if _, ok := s.instanceAttrTypes[cs.fqn]; !ok {
		s.instanceAttrTypes[cs.fqn] = make(map[string]string)
	}
}

func (s *State) popClass() {
	if len(s.classStack) == 0 {
		return
	}
	top := s.classStack[len(s.classStack)-1]
	s.InstanceAttrs[top.fqn] = s.instanceAttrTypes[top.fqn]
	s.classStack = s.classStack[:len(s.classStack)-1]
}

func (s *State) currentClass() (classScope, bool) {
	if len(s.classStack) == 0 {
		return classScope{}, false
	}
	return s.classStack[len(s.classStack)-1], true
}

func (s *State) pushFunc(fs funcScope) {
	s.funcStack = append(s.funcStack, fs)
}

func (s *State) popFunc() {
	if len(s.funcStack) == 0 {
		return
	}
	s.funcStack = s.funcStack[:len(s.funcStack)-1]
}

func (s *State) currentFunc() (*funcScope, bool) {
	if len(s.funcStack) == 0 {
		return nil, false
	}
	return &s.funcStack[len(s.funcStack)-1], true
}

// enclosingFunctionFQN returns the fqn of the innermost function, or "".
func (s *State) enclosingFunctionFQN() string {
	if f, ok := s.currentFunc(); ok {
		return f.fqn
	}
	return ""
}

// enclosingClassFQN returns the fqn of the innermost class, or "".
func (s *State) enclosingClassFQN() string {
	if c, ok := s.currentClass(); ok {
		return c.fqn
	}
	return ""
}

// recordLocal declares name as a local of the innermost function scope.
func (s *State) recordLocal(name string) {
	if f, ok := s.currentFunc(); ok {
		if f.locals == nil {
			f.locals = make(map[string]bool)
		}
		f.locals[name] = true
	}
}

// isKnownLocal reports whether name is bound in the innermost function
// scope or any enclosing function scope (closure), per scope rule 1.
func (s *State) isKnownLocal(name string) bool {
	for i := len(s.funcStack) - 1; i >= 0; i-- {
		if s.funcStack[i].locals[name] {
			return true
		}
		if s.funcStack[i].global[name] {
			return false // global-declared: resolve against module scope instead
		}
	}
	return false
}

func (s *State) recordGlobal(name string) {
	if f, ok := s.currentFunc(); ok {
		if f.global == nil {
			f.global = make(map[string]bool)
		}
		f.global[name] = true
	}
}

func (s *State) inTypeChecking() bool { return s.typeCheckingDepth > 0 }
func (s *State) inTryImport() bool    { return s.tryImportDepth > 0 }

func (s *State) emitDef(d types.Definition) {
	d.File = s.File
	d.Module = s.ModuleFQN
	d.Confidence = -1
	if d.EnclosingClass == "" {
		d.EnclosingClass = s.enclosingClassFQN()
	}
	if d.Flags.InsideIfTypeChecking == false {
		d.Flags.InsideIfTypeChecking = s.inTypeChecking()
	}
	if s.inTryImport() {
		d.Flags.OptionalImport = true
	}
	s.Defs = append(s.Defs, d)
}

func (s *State) emitRef(r types.Reference) {
	r.File = s.File
	if r.EnclosingClass == "" {
		r.EnclosingClass = s.enclosingClassFQN()
	}
	if r.EnclosingFunction == "" {
		r.EnclosingFunction = s.enclosingFunctionFQN()
	}
	s.Refs = append(s.Refs, r)
}
