// Package parser provides pooled Tree-sitter parsing for Python source.
//
// Tree-sitter parsers require CGO_ENABLED=1. Every Tree returned here must
// be closed by the caller (or via CloseAll) to avoid leaking the
// Tree-sitter arena.
package parser

import (
	"fmt"
	"os"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/duriantaco/skylos-go/pkg/types"
)

// ParsedFile holds a parsed Tree-sitter syntax tree alongside its source
// content. Caller must call Tree.Close() when done, or use CloseAll.
type ParsedFile struct {
	Path     string
	RelPath  string
	Tree     *tree_sitter.Tree
	Content  []byte
	Language types.Language
	Class    types.FileClass
}

// PythonParser holds a pooled Tree-sitter Python parser. Tree-sitter
// parsers are NOT thread-safe, so parse operations are serialized via a
// mutex; the resulting trees are safe to read concurrently afterward.
type PythonParser struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
}

// NewPythonParser creates a pooled Python parser.
func NewPythonParser() (*PythonParser, error) {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("set python language: %w", err)
	}
	return &PythonParser{parser: p}, nil
}

// Close releases the parser's resources. Must be called when done.
func (p *PythonParser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Parse parses Python source content. Returns a Tree the caller must close.
func (p *PythonParser) Parse(content []byte) (*tree_sitter.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tree := p.parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter parse returned nil")
	}
	return tree, nil
}

// ParseDiscoveredFiles reads and parses every source/test file in files.
// Files that fail to read or parse, including files whose tree contains a
// syntax error, are logged to stderr and skipped, per spec section 4.3's
// error policy ("no definitions or references are emitted for them"); the
// caller must close all returned trees.
func (p *PythonParser) ParseDiscoveredFiles(files []types.DiscoveredFile) []*ParsedFile {
	var out []*ParsedFile
	for _, df := range files {
		if df.Class == types.ClassExcluded {
			continue
		}
		content, err := os.ReadFile(df.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to read %s: %v\n", df.RelPath, err)
			continue
		}
		tree, err := p.Parse(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to parse %s: %v\n", df.RelPath, err)
			continue
		}
		if tree.RootNode().HasError() {
			fmt.Fprintf(os.Stderr, "warning: failed to parse %s: syntax error\n", df.RelPath)
			tree.Close()
			continue
		}
		out = append(out, &ParsedFile{
			Path:     df.Path,
			RelPath:  df.RelPath,
			Tree:     tree,
			Content:  content,
			Language: df.Language,
			Class:    df.Class,
		})
	}
	return out
}

// CloseAll closes all trees in a slice of ParsedFile. Safe with nil/empty.
func CloseAll(files []*ParsedFile) {
	for _, f := range files {
		if f != nil && f.Tree != nil {
			f.Tree.Close()
		}
	}
}
