// Package quality implements a collab.Scanner for simple structural
// quality rules: cyclomatic-ish complexity by branch-node counting,
// nesting depth, parameter count, and function length. It counts AST
// nodes directly rather than pulling in a Go-oriented complexity library
// like the teacher's gocyclo, since this domain's complexity signal has to
// come from Python branch node kinds.
package quality

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/duriantaco/skylos-go/internal/parser"
	"github.com/duriantaco/skylos-go/internal/pyast"
	"github.com/duriantaco/skylos-go/pkg/types"
)

// Thresholds configures the rule bank; NewFromConfig copies the four values
// from a Config as they are, and a zero threshold disables its rule.
type Thresholds struct {
	Complexity int
	Nesting    int
	MaxArgs    int
	MaxLines   int
}

type Scanner struct {
	t Thresholds
}

func New(t Thresholds) *Scanner { return &Scanner{t: t} }

func NewFromConfig(cfg *types.Config) *Scanner {
	return &Scanner{Thresholds{
		Complexity: cfg.Complexity,
		Nesting:    cfg.Nesting,
		MaxArgs:    cfg.MaxArgs,
		MaxLines:   cfg.MaxLines,
	}}
}

func (s *Scanner) Name() string { return "quality" }

var branchKinds = map[string]bool{
	"if_statement": true, "elif_clause": true, "for_statement": true,
	"while_statement": true, "except_clause": true, "with_statement": true,
	"boolean_operator": true, "conditional_expression": true,
}

var blockKinds = map[string]bool{
	"if_statement": true, "elif_clause": true, "else_clause": true,
	"for_statement": true, "while_statement": true, "try_statement": true,
	"except_clause": true, "with_statement": true,
}

func (s *Scanner) Scan(file *parser.ParsedFile, _ []types.Definition) []types.CollabFinding {
	var findings []types.CollabFinding
	root := file.Tree.RootNode()
	pyast.WalkAll(root, func(n *tree_sitter.Node) {
		if n.Kind() != "function_definition" {
			return
		}
		name := pyast.Text(n.ChildByFieldName("name"), file.Content)
		line := pyast.Line(n)

		complexity := 1 + countBranches(n)
		if s.t.Complexity > 0 && complexity > s.t.Complexity {
			findings = append(findings, findingAt(file, line, "quality-high-complexity", name, complexity, s.t.Complexity))
		}

		depth := maxNestingDepth(n, 0)
		if s.t.Nesting > 0 && depth > s.t.Nesting {
			findings = append(findings, findingAt(file, line, "quality-deep-nesting", name, depth, s.t.Nesting))
		}

		nargs := countParams(n)
		if s.t.MaxArgs > 0 && nargs > s.t.MaxArgs {
			findings = append(findings, findingAt(file, line, "quality-too-many-args", name, nargs, s.t.MaxArgs))
		}

		lines := pyast.EndLine(n) - pyast.Line(n) + 1
		if s.t.MaxLines > 0 && lines > s.t.MaxLines {
			findings = append(findings, findingAt(file, line, "quality-function-too-long", name, lines, s.t.MaxLines))
		}
	})
	return findings
}

func findingAt(file *parser.ParsedFile, line int, rule, name string, got, limit int) types.CollabFinding {
	return types.CollabFinding{
		Source:  "quality",
		Rule:    rule,
		File:    file.RelPath,
		Line:    line,
		Message: name + ": " + itoa(got) + " exceeds limit " + itoa(limit),
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func countBranches(n *tree_sitter.Node) int {
	count := 0
	pyast.WalkAll(n, func(c *tree_sitter.Node) {
		if c != n && branchKinds[c.Kind()] {
			count++
		}
	})
	return count
}

func maxNestingDepth(n *tree_sitter.Node, depth int) int {
	max := depth
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		next := depth
		if blockKinds[c.Kind()] {
			next = depth + 1
		}
		if d := maxNestingDepth(c, next); d > max {
			max = d
		}
	}
	return max
}

func countParams(n *tree_sitter.Node) int {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	count := 0
	for i := uint(0); i < params.ChildCount(); i++ {
		switch params.Child(i).Kind() {
		case "identifier", "typed_parameter", "default_parameter", "typed_default_parameter",
			"list_splat_pattern", "dictionary_splat_pattern":
			count++
		}
	}
	return count
}
