// Package discovery implements FileWalker (spec section 4.1): it enumerates
// a Python project's source files, applies exclude/include rules plus
// .gitignore, and classifies each file as source/test/excluded.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/tidwall/match"

	"github.com/duriantaco/skylos-go/pkg/types"
)

// defaultExcludeDirs are skipped unconditionally, per spec section 4.1.
var defaultExcludeDirs = map[string]bool{
	"__pycache__": true,
	".git":        true,
	".venv":       true,
	"venv":        true,
	"build":       true,
	"dist":        true,
	".tox":        true,
	"node_modules": true,
	"htmlcov":     true,
}

// recognizedExts are the Python source extensions FileWalker recognizes.
var recognizedExts = map[string]bool{
	".py":  true,
	".pyi": true,
	".pyw": true,
}

// Walker discovers and classifies Python source files under a project root.
type Walker struct {
	ExcludePatterns []string
	IncludePatterns []string
}

// NewWalker creates a Walker with the given exclude/include glob lists.
// Include overrides exclude, per spec section 4.1.
func NewWalker(exclude, include []string) *Walker {
	return &Walker{ExcludePatterns: exclude, IncludePatterns: include}
}

// Discover walks rootDir, returning a ScanResult with a stable (sorted)
// file ordering so downstream fqn collisions resolve deterministically.
func (w *Walker) Discover(rootDir string) (*types.ScanResult, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", rootDir)
	}

	var gitIgnore *ignore.GitIgnore
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gitIgnore, err = ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse .gitignore: %w", err)
		}
	}

	result := &types.ScanResult{RootDir: rootDir}

	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			fmt.Fprintf(os.Stderr, "warning: skipping symlink %s\n", path)
			return nil
		}

		relPath, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			return nil
		}
		relSlash := filepath.ToSlash(relPath)
		name := d.Name()

		forceIncluded := w.hasIncludeMatch(relSlash)

		if d.IsDir() {
			if relPath == "." {
				return nil
			}
			for _, pat := range w.IncludePatterns {
				if strings.HasPrefix(pat, relSlash+"/") {
					return nil
				}
			}
			if !forceIncluded && (defaultExcludeDirs[name] || strings.HasSuffix(name, ".egg-info")) {
				return fs.SkipDir
			}
			if !forceIncluded && w.anySegmentExcluded(relSlash) {
				return fs.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !recognizedExts[ext] {
			return nil
		}

		if !forceIncluded {
			segs := strings.Split(relSlash, "/")
			for i, seg := range segs[:len(segs)-1] {
				if (defaultExcludeDirs[seg] || strings.HasSuffix(seg, ".egg-info")) && !w.hasIncludeMatch(strings.Join(segs[:i+1], "/")) {
					result.ExcludeCount++
					result.TotalFiles++
					return nil
				}
			}
			if w.anySegmentExcluded(relSlash) {
				result.ExcludeCount++
				result.TotalFiles++
				return nil
			}
			if gitIgnore != nil && gitIgnore.MatchesPath(relPath) {
				result.GitignoreCount++
				result.ExcludeCount++
				result.TotalFiles++
				return nil
			}
		}

		file := types.DiscoveredFile{
			Path:     path,
			RelPath:  relSlash,
			Language: types.LangPython,
			Class:    classifyPythonFile(name),
		}

		result.Files = append(result.Files, file)
		result.TotalFiles++
		switch file.Class {
		case types.ClassSource:
			result.SourceCount++
		case types.ClassTest:
			result.TestCount++
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].RelPath < result.Files[j].RelPath
	})

	return result, nil
}

// anySegmentExcluded reports whether any ancestor path segment of relPath
// matches an exclude pattern (spec: "any ancestor path segment match
// excludes the file").
func (w *Walker) anySegmentExcluded(relPath string) bool {
	for _, pat := range w.ExcludePatterns {
		if match.Match(relPath, pat) {
			return true
		}
		segments := strings.Split(relPath, "/")
		for _, seg := range segments {
			if match.Match(seg, pat) {
				return true
			}
		}
	}
	return false
}

// hasIncludeMatch reports whether relPath matches a configured include
// pattern. Include overrides exclude, per spec section 4.1.
func (w *Walker) hasIncludeMatch(relPath string) bool {
	for _, pat := range w.IncludePatterns {
		if match.Match(relPath, pat) {
			return true
		}
	}
	return false
}
