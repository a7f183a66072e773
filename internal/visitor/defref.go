// DefRefVisitor walks one parsed Python file's tree-sitter tree, emitting
// Definitions and References into a State (spec section 4.3). It never
// mutates shared state across files: callers run one State per file, in
// parallel, and hand the results to the merger.
package visitor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/duriantaco/skylos-go/internal/pyast"
	"github.com/duriantaco/skylos-go/pkg/types"
)

var pythonKeywordIdentifiers = map[string]bool{
	"self": true, "cls": true, "True": true, "False": true, "None": true,
}

// Visit walks root (a "module" node) and populates state with every
// definition and reference found in the file.
func Visit(root *tree_sitter.Node, content []byte, state *State) {
	visitBody(root, content, state)
}

func visitBody(node *tree_sitter.Node, content []byte, state *State) {
	if node == nil {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		visitStatement(node.Child(i), content, state)
	}
}

func visitStatement(n *tree_sitter.Node, content []byte, state *State) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "function_definition":
		visitFunctionDef(n, content, state, nil)
	case "class_definition":
		visitClassDef(n, content, state, nil)
	case "decorated_definition":
		visitDecoratedDef(n, content, state)
	case "import_statement":
		visitImportStatement(n, content, state)
	case "import_from_statement":
		visitImportFromStatement(n, content, state)
	case "expression_statement":
		visitExpressionStatement(n, content, state)
	case "if_statement":
		visitIfStatement(n, content, state)
	case "try_statement":
		visitTryStatement(n, content, state)
	case "with_statement":
		visitCompound(n, content, state)
	case "for_statement", "while_statement":
		visitCompound(n, content, state)
	case "global_statement":
		visitGlobalStatement(n, content, state)
	case "block":
		visitBody(n, content, state)
	default:
		collectExprRefs(n, content, state)
	}
}

// visitCompound handles statement kinds whose children mix an expression
// clause (the loop/with header) and a "block" body: we just walk every
// child, letting visitStatement recurse into the block and collectExprRefs
// pick up the header's references.
func visitCompound(n *tree_sitter.Node, content []byte, state *State) {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() == "block" {
			visitBody(c, content, state)
		} else {
			collectExprRefs(c, content, state)
		}
	}
}

// --- decorators -------------------------------------------------------

func visitDecoratedDef(n *tree_sitter.Node, content []byte, state *State) {
	var decorators []string
	var defNode *tree_sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case "decorator":
			expr := c.Child(c.ChildCount() - 1) // skip the leading "@"
			dotted := pyast.DottedName(expr, content)
			decorators = append(decorators, dotted)
			state.emitRef(types.Reference{
				Kind: types.RefDecorator,
				Name: dotted,
				Line: pyast.Line(c),
			})
		case "function_definition", "class_definition":
			defNode = c
		}
	}
	if defNode == nil {
		return
	}
	if defNode.Kind() == "function_definition" {
		visitFunctionDef(defNode, content, state, decorators)
	} else {
		visitClassDef(defNode, content, state, decorators)
	}
}

func hasDecorator(decorators []string, name string) bool {
	for _, d := range decorators {
		if d == name {
			return true
		}
	}
	return false
}

// --- class definitions --------------------------------------------------

func visitClassDef(n *tree_sitter.Node, content []byte, state *State, decorators []string) {
	nameNode := n.ChildByFieldName("name")
	name := pyast.Text(nameNode, content)

	var bases []string
	if super := n.ChildByFieldName("superclasses"); super != nil {
		for i := uint(0); i < super.ChildCount(); i++ {
			arg := super.Child(i)
			switch arg.Kind() {
			case "identifier", "attribute":
				dotted := pyast.DottedName(arg, content)
				bases = append(bases, dotted)
				state.emitRef(types.Reference{Kind: types.RefBaseClass, Name: dotted, Line: pyast.Line(arg)})
			case "keyword_argument":
				// e.g. class Foo(Bar, metaclass=ABCMeta): credit the value too.
				val := arg.ChildByFieldName("value")
				if val != nil {
					collectExprRefs(val, content, state)
				}
			}
		}
	}

	fqn := name
	if parent := state.enclosingClassFQN(); parent != "" {
		fqn = parent + "." + name
	} else if state.ModuleFQN != "" {
		fqn = state.ModuleFQN + "." + name
	}

	isDataclass := hasDecorator(decorators, "dataclass") || hasDecorator(decorators, "dataclasses.dataclass")
	isProtocol := containsAny(bases, "Protocol", "typing.Protocol")
	isEnum := containsAny(bases, "Enum", "IntEnum", "StrEnum", "Flag", "IntFlag", "enum.Enum")
	isAbstract := containsAny(bases, "ABC", "abc.ABC") || hasDecorator(decorators, "abc.ABCMeta")

	def := types.Definition{
		Kind:        types.KindClass,
		SimpleName:  name,
		FQN:         fqn,
		Line:        pyast.Line(n),
		EndLine:     pyast.EndLine(n),
		Decorators:  decorators,
		BaseClasses: bases,
		IsPrivate:   strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__"),
		IsDunder:    strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"),
	}
	state.emitDef(def)

	state.pushClass(classScope{
		fqn:         fqn,
		isDataclass: isDataclass,
		isProtocol:  isProtocol,
		isEnum:      isEnum,
		isAbstract:  isAbstract,
	})
	if body := n.ChildByFieldName("body"); body != nil {
		visitClassBody(body, content, state, isDataclass, isEnum)
	}
	state.popClass()
}

// visitClassBody is visitBody specialized for a class suite: bare
// "identifier = ..." / "identifier: Type = ..." statements directly in the
// class body are dataclass fields (if the class is a @dataclass) or plain
// class-level variables/enum members otherwise.
func visitClassBody(body *tree_sitter.Node, content []byte, state *State, isDataclass, isEnum bool) {
	for i := uint(0); i < body.ChildCount(); i++ {
		stmt := body.Child(i)
		if target, value := simpleClassLevelAssignment(stmt); target != nil {
			name := pyast.Text(target, content)
			kind := types.KindVariable
			flags := types.DefFlags{}
			switch {
			case isDataclass:
				kind = types.KindDataclassField
				flags.DataclassField = true
			case isEnum:
				kind = types.KindEnumMember
			case name == strings.ToUpper(name) && name != "":
				kind = types.KindConstant
				flags.IsConstantAllCaps = true
			}
			state.emitDef(types.Definition{
				Kind:       kind,
				SimpleName: name,
				FQN:        state.enclosingClassFQN() + "." + name,
				Line:       pyast.Line(stmt),
				EndLine:    pyast.EndLine(stmt),
				IsPrivate:  strings.HasPrefix(name, "_"),
				Flags:      flags,
			})
			if value != nil {
				collectExprRefs(value, content, state)
			}
			continue
		}
		visitStatement(stmt, content, state)
	}
}

// simpleClassLevelAssignment recognizes "name = expr", "name: Type",
// "name: Type = expr" as a class-level field definition, returning the
// target identifier node (and the value node, if any).
func simpleClassLevelAssignment(stmt *tree_sitter.Node) (*tree_sitter.Node, *tree_sitter.Node) {
	inner := stmt
	if stmt.Kind() == "expression_statement" && stmt.ChildCount() > 0 {
		inner = stmt.Child(0)
	}
	switch inner.Kind() {
	case "assignment":
		left := inner.ChildByFieldName("left")
		if left != nil && left.Kind() == "identifier" {
			return left, inner.ChildByFieldName("right")
		}
	}
	return nil, nil
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

// --- function/method definitions ----------------------------------------

func visitFunctionDef(n *tree_sitter.Node, content []byte, state *State, decorators []string) {
	nameNode := n.ChildByFieldName("name")
	name := pyast.Text(nameNode, content)

	cls, inClass := state.currentClass()
	kind := types.KindFunction
	var enclosingClass string
	if inClass {
		kind = types.KindMethod
		enclosingClass = cls.fqn
	}

	fqn := name
	if enclosingClass != "" {
		fqn = enclosingClass + "." + name
	} else if state.ModuleFQN != "" {
		fqn = state.ModuleFQN + "." + name
	}

	isStatic := hasDecorator(decorators, "staticmethod")
	isAbstractMethod := hasDecorator(decorators, "abstractmethod") || hasDecorator(decorators, "abc.abstractmethod")

	flags := types.DefFlags{
		Abstract:       isAbstractMethod,
		FrameworkRoute: anyFrameworkRoute(decorators),
	}
	if inClass && IsFrameworkLifecycleMethod(name, cls.fqn2Bases(state)) {
		flags.FrameworkRoute = true
	}

	def := types.Definition{
		Kind:           kind,
		SimpleName:     name,
		FQN:            fqn,
		Line:           pyast.Line(n),
		EndLine:        pyast.EndLine(n),
		EnclosingClass: enclosingClass,
		Decorators:     decorators,
		IsPrivate:      strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__"),
		IsDunder:       strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"),
		Flags:          flags,
	}
	state.emitDef(def)

	params := n.ChildByFieldName("parameters")
	selfAlias, clsAlias := visitParameters(params, content, state, inClass, isStatic)

	prevSelf, prevCls := state.selfAlias, state.clsAlias
	state.selfAlias, state.clsAlias = selfAlias, clsAlias

	state.pushFunc(funcScope{fqn: fqn, locals: map[string]bool{}, global: map[string]bool{}})
	if body := n.ChildByFieldName("body"); body != nil {
		visitBody(body, content, state)
	}
	state.popFunc()

	state.selfAlias, state.clsAlias = prevSelf, prevCls
}

// fqn2Bases is a tiny indirection so visitFunctionDef can ask the current
// class for its base-class list without widening classScope's surface;
// it looks the class up by fqn in state's most recently recorded definition.
func (cs classScope) fqn2Bases(state *State) []string {
	for i := len(state.Defs) - 1; i >= 0; i-- {
		if state.Defs[i].Kind == types.KindClass && state.Defs[i].FQN == cs.fqn {
			return state.Defs[i].BaseClasses
		}
	}
	return nil
}

func anyFrameworkRoute(decorators []string) bool {
	for _, d := range decorators {
		if IsFrameworkRoute(d) {
			return true
		}
	}
	return false
}

// visitParameters emits a Definition per parameter and returns the
// self/cls alias names (the first positional parameter of an instance or
// class method), grounded on the teacher's c2_semantics python parameter
// walk (typed/default/splat variants).
func visitParameters(params *tree_sitter.Node, content []byte, state *State, inClass, isStatic bool) (selfAlias, clsAlias string) {
	if params == nil {
		return "", ""
	}
	first := true
	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		var nameNode *tree_sitter.Node
		switch p.Kind() {
		case "identifier":
			nameNode = p
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			nameNode = p.ChildByFieldName("name")
			if nameNode == nil && p.ChildCount() > 0 {
				nameNode = p.Child(0)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			if p.ChildCount() > 0 {
				nameNode = p.Child(p.ChildCount() - 1)
			}
		default:
			continue
		}
		if nameNode == nil || nameNode.Kind() != "identifier" {
			continue
		}
		name := pyast.Text(nameNode, content)
		if first && inClass && !isStatic {
			first = false
			if name == "cls" {
				clsAlias = name
			} else {
				selfAlias = name
			}
			state.recordLocal(name)
			continue
		}
		first = false
		state.recordLocal(name)
		state.emitDef(types.Definition{
			Kind:       types.KindParameter,
			SimpleName: name,
			FQN:        state.enclosingFunctionFQN() + "." + name,
			Line:       pyast.Line(nameNode),
			EndLine:    pyast.Line(nameNode),
			IsPrivate:  strings.HasPrefix(name, "_"),
		})
		if def := p.ChildByFieldName("value"); def != nil {
			collectExprRefs(def, content, state)
		}
	}
	return selfAlias, clsAlias
}

// --- imports --------------------------------------------------------------

func visitImportStatement(n *tree_sitter.Node, content []byte, state *State) {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case "dotted_name":
			target := pyast.DottedName(c, content)
			emitImport(state, lastSegment(target), target, content, c)
		case "aliased_import":
			nameNode := c.ChildByFieldName("name")
			aliasNode := c.ChildByFieldName("alias")
			target := pyast.DottedName(nameNode, content)
			local := pyast.Text(aliasNode, content)
			emitImport(state, local, target, content, c)
		}
	}
}

func visitImportFromStatement(n *tree_sitter.Node, content []byte, state *State) {
	moduleNode := n.ChildByFieldName("module_name")
	module := pyast.DottedName(moduleNode, content)
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case "dotted_name":
			if c == moduleNode {
				continue
			}
			name := pyast.DottedName(c, content)
			emitImport(state, lastSegment(name), module+"."+name, content, c)
		case "aliased_import":
			nameNode := c.ChildByFieldName("name")
			aliasNode := c.ChildByFieldName("alias")
			target := pyast.DottedName(nameNode, content)
			local := pyast.Text(aliasNode, content)
			emitImport(state, local, module+"."+target, content, c)
		case "wildcard_import":
			state.emitRef(types.Reference{Kind: types.RefImportTarget, Name: module + ".*", Line: pyast.Line(c)})
		}
	}
}

func emitImport(state *State, local, target string, content []byte, node *tree_sitter.Node) {
	state.Imports = append(state.Imports, types.ImportAlias{
		LocalName: local,
		TargetFQN: target,
		External:  isLikelyExternalModule(target),
		File:      state.File,
		Line:      pyast.Line(node),
	})
	state.emitDef(types.Definition{
		Kind:       types.KindImport,
		SimpleName: local,
		FQN:        target,
		Line:       pyast.Line(node),
		EndLine:    pyast.Line(node),
	})
	state.emitRef(types.Reference{Kind: types.RefImportTarget, Name: target, Line: pyast.Line(node)})
}

func lastSegment(dotted string) string {
	if idx := strings.LastIndexByte(dotted, '.'); idx >= 0 {
		return dotted[idx+1:]
	}
	return dotted
}

// isLikelyExternalModule treats every import target without a
// relative-import marker as external (i.e. not part of the project under
// analysis); the merger's resolveName still treats such an alias as
// in-project when its target names a class the project defines.
func isLikelyExternalModule(target string) bool {
	return !strings.HasPrefix(target, ".")
}

// --- if / TYPE_CHECKING ---------------------------------------------------

func visitIfStatement(n *tree_sitter.Node, content []byte, state *State) {
	cond := n.ChildByFieldName("condition")
	isTypeChecking := isTypeCheckingGuard(cond, content)
	if isTypeChecking {
		state.typeCheckingDepth++
	}
	if cond != nil {
		collectExprRefs(cond, content, state)
	}
	if body := n.ChildByFieldName("consequence"); body != nil {
		visitBody(body, content, state)
	}
	if isTypeChecking {
		state.typeCheckingDepth--
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() == "elif_clause" || c.Kind() == "else_clause" {
			if body := c.ChildByFieldName("body"); body != nil {
				visitBody(body, content, state)
			}
		}
	}
}

func isTypeCheckingGuard(cond *tree_sitter.Node, content []byte) bool {
	if cond == nil {
		return false
	}
	name := pyast.DottedName(cond, content)
	return name == "typing.TYPE_CHECKING" || name == "TYPE_CHECKING"
}

// --- try / optional import -------------------------------------------------

func visitTryStatement(n *tree_sitter.Node, content []byte, state *State) {
	body := n.ChildByFieldName("body")
	looksLikeOptionalImport := bodyIsOnlyImports(body)
	if looksLikeOptionalImport {
		state.tryImportDepth++
	}
	if body != nil {
		visitBody(body, content, state)
	}
	if looksLikeOptionalImport {
		state.tryImportDepth--
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case "except_clause", "else_clause", "finally_clause":
			if b := c.ChildByFieldName("body"); b != nil {
				visitBody(b, content, state)
			} else {
				visitBody(c, content, state)
			}
		}
	}
}

func bodyIsOnlyImports(body *tree_sitter.Node) bool {
	if body == nil {
		return false
	}
	found := false
	for i := uint(0); i < body.ChildCount(); i++ {
		switch body.Child(i).Kind() {
		case "import_statement", "import_from_statement":
			found = true
		default:
			return false
		}
	}
	return found
}

// --- global statement -------------------------------------------------

func visitGlobalStatement(n *tree_sitter.Node, content []byte, state *State) {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() == "identifier" {
			state.recordGlobal(pyast.Text(c, content))
		}
	}
}

// --- expression statements: assignment, __all__, self.x = ... ------------

func visitExpressionStatement(n *tree_sitter.Node, content []byte, state *State) {
	if n.ChildCount() == 0 {
		return
	}
	inner := n.Child(0)
	switch inner.Kind() {
	case "assignment":
		visitAssignment(inner, content, state)
	case "augmented_assignment":
		left := inner.ChildByFieldName("left")
		right := inner.ChildByFieldName("right")
		collectExprRefs(left, content, state)
		collectExprRefs(right, content, state)
	default:
		collectExprRefs(inner, content, state)
	}
}

func visitAssignment(n *tree_sitter.Node, content []byte, state *State) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")

	if left != nil && left.Kind() == "identifier" {
		name := pyast.Text(left, content)
		if name == "__all__" {
			state.AllExports = append(state.AllExports, extractAllExports(right, content)...)
			if right != nil {
				collectExprRefs(right, content, state)
			}
			return
		}
		if _, inFunc := state.currentFunc(); inFunc {
			state.recordLocal(name)
		} else {
			kind := types.KindVariable
			flags := types.DefFlags{}
			if name == strings.ToUpper(name) {
				kind = types.KindConstant
				flags.IsConstantAllCaps = true
			}
			state.emitDef(types.Definition{
				Kind:       kind,
				SimpleName: name,
				FQN:        moduleOrClassPrefix(state) + name,
				Line:       pyast.Line(left),
				EndLine:    pyast.Line(left),
				IsPrivate:  strings.HasPrefix(name, "_"),
				Flags:      flags,
			})
		}
		if right != nil {
			collectExprRefs(right, content, state)
		}
		return
	}

	if left != nil && left.Kind() == "attribute" {
		obj := left.ChildByFieldName("object")
		attr := left.ChildByFieldName("attribute")
		if obj != nil && obj.Kind() == "identifier" {
			objName := pyast.Text(obj, content)
			if objName == state.selfAlias || objName == state.clsAlias {
				attrName := pyast.Text(attr, content)
				if cls, ok := state.currentClass(); ok {
					if m, ok2 := state.instanceAttrTypes[cls.fqn]; ok2 {
						if typ := inferredType(right, content); typ != "" {
							m[attrName] = typ
						}
					}
				}
			}
		}
		collectExprRefs(left, content, state)
		if right != nil {
			collectExprRefs(right, content, state)
		}
		return
	}

	// Tuple/list destructuring and anything else: just chase references.
	if left != nil {
		for i := uint(0); i < left.ChildCount(); i++ {
			c := left.Child(i)
			if c.Kind() == "identifier" {
				if _, inFunc := state.currentFunc(); inFunc {
					state.recordLocal(pyast.Text(c, content))
				}
			}
		}
	}
	if right != nil {
		collectExprRefs(right, content, state)
	}
}

func moduleOrClassPrefix(state *State) string {
	if cls := state.enclosingClassFQN(); cls != "" {
		return cls + "."
	}
	if state.ModuleFQN != "" {
		return state.ModuleFQN + "."
	}
	return ""
}

// inferredType returns the raw callee text of a "Cls(...)" right-hand
// side (a simple name or a dotted import-aliased name) — a single file's
// visitor can't see the rest of the project, so it can't yet resolve
// this to a class fqn. Merger's resolveInstanceAttrTypes does that once
// every module's imports and classes are merged, used for later
// self.attr.method() call resolution (spec 4.3: "self.x = SomeClass()
// ... self.x.method()").
func inferredType(right *tree_sitter.Node, content []byte) string {
	if right == nil || right.Kind() != "call" {
		return ""
	}
	fn := right.ChildByFieldName("function")
	return pyast.DottedName(fn, content)
}

// extractAllExports pulls simple_names out of an __all__ = [...] or (...)
// literal list/tuple of string constants.
func extractAllExports(right *tree_sitter.Node, content []byte) []string {
	if right == nil {
		return nil
	}
	var names []string
	switch right.Kind() {
	case "list", "tuple", "set":
		for i := uint(0); i < right.ChildCount(); i++ {
			c := right.Child(i)
			if c.Kind() == "string" {
				val, _ := pyast.StringLiteralValue(pyast.Text(c, content))
				if val != "" {
					names = append(names, val)
				}
			}
		}
	}
	return names
}

// --- generic expression reference collection ------------------------------

// collectExprRefs walks an expression subtree emitting References. It
// does not emit Definitions; callers route anything def-shaped (function,
// class, import, assignment target) through their own handlers before
// falling back here for the remaining sub-expressions.
//
// Scope resolution rule 1: a name bound as a local or parameter of the
// innermost function (or an enclosing one, for a closure) is never
// emitted as a RefName/attribute-chain root. Only module-global and
// imported targets count as cross-symbol references — otherwise reading
// a local variable would look identical to referencing a same-named
// definition elsewhere in the project.
func collectExprRefs(n *tree_sitter.Node, content []byte, state *State) {
	pyast.Walk(n, func(node *tree_sitter.Node) bool {
		switch node.Kind() {
		case "attribute":
			attr := node.ChildByFieldName("attribute")
			dotted := pyast.DottedName(node, content)
			state.emitRef(types.Reference{
				Kind:      types.RefAttributeChain,
				Name:      pyast.Text(attr, content),
				Qualifier: dotted,
				Line:      pyast.Line(node),
			})
			if root := pyast.RootIdentifier(node, content); root != "" && !pythonKeywordIdentifiers[root] && !state.isKnownLocal(root) {
				state.emitRef(types.Reference{Kind: types.RefName, Name: root, Line: pyast.Line(node)})
			}
			return false
		case "call":
			fn := node.ChildByFieldName("function")
			handleCallReference(node, fn, content, state)
			if args := node.ChildByFieldName("arguments"); args != nil {
				collectExprRefs(args, content, state)
			}
			return false
		case "identifier":
			name := pyast.Text(node, content)
			if pythonKeywordIdentifiers[name] || state.isKnownLocal(name) {
				return true
			}
			state.emitRef(types.Reference{Kind: types.RefName, Name: name, Line: pyast.Line(node)})
			return true
		case "lambda", "function_definition", "class_definition":
			// Nested scopes are handled by their own visit* entry points;
			// don't double-walk them generically.
			if node.Kind() != "lambda" {
				visitStatement(node, content, state)
				return false
			}
			return true
		default:
			return true
		}
	})
}

// handleCallReference special-cases the dynamic-dispatch builtins the
// resolver treats as string-dispatch references (spec 4.5): getattr,
// hasattr, setattr, and __import__.
func handleCallReference(call, fn *tree_sitter.Node, content []byte, state *State) {
	fnName := pyast.DottedName(fn, content)
	switch fnName {
	case "getattr", "hasattr", "setattr":
		args := call.ChildByFieldName("arguments")
		if lit, ok := nthStringArg(args, content, 1); ok {
			state.emitRef(types.Reference{Kind: types.RefStringDispatch, Name: lit, Dynamic: true, Line: pyast.Line(call)})
			return
		}
		state.emitRef(types.Reference{Kind: types.RefStringDispatch, Name: "*", Dynamic: true, IsGlobPattern: true, Line: pyast.Line(call)})
	case "__import__":
		args := call.ChildByFieldName("arguments")
		if lit, ok := nthStringArg(args, content, 0); ok {
			state.emitRef(types.Reference{Kind: types.RefImportTarget, Name: lit, Dynamic: true, Line: pyast.Line(call)})
		}
	default:
		if root := pyast.RootIdentifier(fn, content); root != "" && !pythonKeywordIdentifiers[root] && !state.isKnownLocal(root) {
			state.emitRef(types.Reference{Kind: types.RefName, Name: root, Line: pyast.Line(call)})
		}
		if fn != nil && fn.Kind() == "attribute" {
			attr := fn.ChildByFieldName("attribute")
			state.emitRef(types.Reference{
				Kind:      types.RefAttributeChain,
				Name:      pyast.Text(attr, content),
				Qualifier: pyast.DottedName(fn, content),
				Line:      pyast.Line(call),
			})
		}
	}
}

// nthStringArg returns the literal value of the nth positional argument if
// it is a plain string node.
func nthStringArg(args *tree_sitter.Node, content []byte, index int) (string, bool) {
	if args == nil {
		return "", false
	}
	pos := 0
	for i := uint(0); i < args.ChildCount(); i++ {
		c := args.Child(i)
		switch c.Kind() {
		case "(", ")", ",":
			continue
		case "keyword_argument":
			continue
		}
		if pos == index {
			if c.Kind() == "string" {
				val, _ := pyast.StringLiteralValue(pyast.Text(c, content))
				return val, true
			}
			return "", false
		}
		pos++
	}
	return "", false
}
