// Package danger implements a collab.Scanner flagging calls to well-known
// dangerous sinks (eval, exec, unsafe deserialization, shell=True
// subprocess calls). It matches call names directly against a fixed bank;
// it is explicitly not a taint engine and makes no attempt to track
// whether a sink's argument actually originates from untrusted input.
package danger

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/duriantaco/skylos-go/internal/parser"
	"github.com/duriantaco/skylos-go/internal/pyast"
	"github.com/duriantaco/skylos-go/pkg/types"
)

var dangerousCalls = map[string]string{
	"eval":              "danger-eval",
	"exec":              "danger-exec",
	"os.system":         "danger-os-system",
	"pickle.loads":      "danger-pickle-loads",
	"pickle.load":       "danger-pickle-load",
	"yaml.load":         "danger-yaml-load-unsafe",
	"subprocess.call":   "danger-subprocess-shell",
	"subprocess.run":    "danger-subprocess-shell",
	"subprocess.Popen":  "danger-subprocess-shell",
	"__import__":        "danger-dynamic-import",
	"marshal.loads":     "danger-marshal-loads",
}

// shellTrueCalls are subprocess entry points whose "shell=True" keyword
// argument is the actual risk; a bare call to them is not flagged.
var shellTrueCalls = map[string]bool{
	"subprocess.call": true, "subprocess.run": true, "subprocess.Popen": true,
}

type Scanner struct{}

func New() *Scanner { return &Scanner{} }

func (s *Scanner) Name() string { return "danger" }

func (s *Scanner) Scan(file *parser.ParsedFile, _ []types.Definition) []types.CollabFinding {
	var findings []types.CollabFinding
	root := file.Tree.RootNode()
	pyast.WalkAll(root, func(n *tree_sitter.Node) {
		if n.Kind() != "call" {
			return
		}
		fn := n.ChildByFieldName("function")
		name := pyast.DottedName(fn, file.Content)
		ruleID, known := dangerousCalls[name]
		if !known {
			return
		}
		if shellTrueCalls[name] && !hasShellTrueArg(n, file.Content) {
			return
		}
		findings = append(findings, types.CollabFinding{
			Source:  "danger",
			Rule:    ruleID,
			File:    file.RelPath,
			Line:    pyast.Line(n),
			Message: "call to dangerous sink: " + name,
		})
	})
	return findings
}

func hasShellTrueArg(call *tree_sitter.Node, content []byte) bool {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg.Kind() != "keyword_argument" {
			continue
		}
		nameNode := arg.ChildByFieldName("name")
		valueNode := arg.ChildByFieldName("value")
		if pyast.Text(nameNode, content) == "shell" && pyast.Text(valueNode, content) == "True" {
			return true
		}
	}
	return false
}
