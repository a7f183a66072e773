// Package collab defines the extension point secondary analyses (secrets,
// dangerous-sink, quality/complexity) plug into. They share the same
// per-file AST walk and suppression machinery as the core dead-code
// detector but are, per design, not the hard problem: each Scanner is a
// thin, independently testable pass over one already-parsed file.
package collab

import (
	"github.com/duriantaco/skylos-go/internal/parser"
	"github.com/duriantaco/skylos-go/pkg/types"
)

// Scanner is implemented by every secondary analysis. Scan receives the
// file's already-parsed tree and the definitions DefRefVisitor already
// extracted from it; the secrets, danger and quality scanners do not use
// the definitions (danger walks the tree's call nodes itself).
type Scanner interface {
	Name() string
	Scan(file *parser.ParsedFile, defs []types.Definition) []types.CollabFinding
}

// RunAll runs every scanner over every parsed file and concatenates their
// findings. A scanner panicking or erroring internally is each scanner's
// own responsibility to guard against; RunAll assumes well-behaved
// implementations, consistent with these being first-party collaborators.
func RunAll(scanners []Scanner, files []*parser.ParsedFile, defsByFile map[string][]types.Definition) []types.CollabFinding {
	var out []types.CollabFinding
	for _, f := range files {
		for _, s := range scanners {
			out = append(out, s.Scan(f, defsByFile[f.RelPath])...)
		}
	}
	return out
}
