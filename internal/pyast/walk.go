// Package pyast provides small Tree-sitter walking helpers shared by the
// visitor packages, grounded on the teacher's internal/analyzer/shared
// package (WalkTree/NodeText) but specialized for Python node kinds.
package pyast

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Walk depth-first walks node, calling fn for every descendant (node
// included). fn may return false to skip descending into that node's
// children (used for scope boundaries DefRefVisitor handles explicitly).
func Walk(node *tree_sitter.Node, fn func(*tree_sitter.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		Walk(node.Child(i), fn)
	}
}

// WalkAll is Walk without the early-stop option, for passes that need
// every node unconditionally (e.g. the quality/secrets collaborators).
func WalkAll(node *tree_sitter.Node, fn func(*tree_sitter.Node)) {
	Walk(node, func(n *tree_sitter.Node) bool {
		fn(n)
		return true
	})
}

// Text extracts the source text spanned by node.
func Text(node *tree_sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

// Line returns the 1-indexed source line node starts on.
func Line(node *tree_sitter.Node) int {
	if node == nil {
		return 0
	}
	return int(node.StartPosition().Row) + 1
}

// EndLine returns the 1-indexed source line node ends on.
func EndLine(node *tree_sitter.Node) int {
	if node == nil {
		return 0
	}
	return int(node.EndPosition().Row) + 1
}

// DottedName flattens an attribute/identifier chain ("a.b.c") into a
// string. Handles "identifier", "attribute", and "dotted_name" nodes; any
// other node kind is rendered via its raw source text.
func DottedName(node *tree_sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "identifier":
		return Text(node, content)
	case "attribute":
		obj := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		return DottedName(obj, content) + "." + Text(attr, content)
	case "dotted_name":
		var parts []string
		for i := uint(0); i < node.ChildCount(); i++ {
			c := node.Child(i)
			if c.Kind() == "identifier" {
				parts = append(parts, Text(c, content))
			}
		}
		return strings.Join(parts, ".")
	default:
		return Text(node, content)
	}
}

// RootIdentifier returns the leftmost identifier of a dotted/attribute
// chain ("sys" out of "sys.path.append"), used so that an attribute
// access also counts as a reference to the root name (spec 4.3).
func RootIdentifier(node *tree_sitter.Node, content []byte) string {
	for node != nil {
		switch node.Kind() {
		case "identifier":
			return Text(node, content)
		case "attribute":
			node = node.ChildByFieldName("object")
		case "call":
			node = node.ChildByFieldName("function")
		default:
			return ""
		}
	}
	return ""
}

// StringLiteralValue strips quotes/prefixes from a Python "string" node's
// raw text, handling the common single/double/triple-quote/f/r/b prefixes.
func StringLiteralValue(raw string) (value string, isFString bool) {
	s := raw
	i := 0
	for i < len(s) && s[i] != '"' && s[i] != '\'' {
		if s[i] == 'f' || s[i] == 'F' {
			isFString = true
		}
		i++
	}
	s = s[i:]
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)], isFString
		}
	}
	return s, isFString
}
