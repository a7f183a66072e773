// Package suppress implements SuppressionScanner (spec section 4.2): it
// finds in-line pragma suppressions and ignore-start/ignore-end blocks in
// Python source, and builds the project-wide whitelist glob matcher.
package suppress

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/match"

	"github.com/duriantaco/skylos-go/pkg/types"
)

// lineSuppressionPattern recognizes any of the single-line suppression
// tokens from spec section 4.2 / 6: "pragma: no skylos", "pragma: no
// cover", "noqa", "skylos: ignore", "skylos: ignore[RULE-ID]".
var lineSuppressionPattern = regexp.MustCompile(
	`(?i)#\s*(pragma:\s*no\s*(skylos|cover)|noqa\b|skylos:\s*ignore(\[[A-Za-z0-9_-]+\])?)\s*$`,
)

var blockStartPattern = regexp.MustCompile(`(?i)#\s*skylos:\s*ignore-start`)
var blockEndPattern = regexp.MustCompile(`(?i)#\s*skylos:\s*ignore-end`)

// FileResult is SuppressionScanner's per-file output.
type FileResult struct {
	// SuppressedLines holds every line number (1-indexed) covered by a
	// single-line pragma or an ignore-start/ignore-end block.
	SuppressedLines map[int]bool
	// Warnings are "unterminated suppression block" diagnostics (spec
	// section 7: "treat as suppressing to EOF, log at warn").
	Warnings []string
}

// ScanFile scans one file's content for suppression pragmas and blocks.
func ScanFile(relPath string, content []byte) *FileResult {
	result := &FileResult{SuppressedLines: make(map[int]bool)}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	blockStart := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if lineSuppressionPattern.MatchString(line) {
			result.SuppressedLines[lineNo] = true
		}

		if blockStartPattern.MatchString(line) {
			if blockStart != 0 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s:%d: nested ignore-start before matching ignore-end", relPath, lineNo))
			}
			blockStart = lineNo
			continue
		}
		if blockEndPattern.MatchString(line) {
			if blockStart != 0 {
				for l := blockStart; l <= lineNo; l++ {
					result.SuppressedLines[l] = true
				}
				blockStart = 0
			}
			continue
		}
	}

	if blockStart != 0 {
		// Unterminated block: suppress to EOF and warn, per spec section 7.
		for l := blockStart; l <= lineNo; l++ {
			result.SuppressedLines[l] = true
		}
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s:%d: unterminated skylos: ignore-start block, suppressing to end of file", relPath, blockStart))
	}

	return result
}

// ScanFiles scans every discovered file and returns file -> suppressed
// line set, plus any warnings collected along the way. Files that cannot
// be read are skipped (the caller already logs read failures elsewhere).
func ScanFiles(files []types.DiscoveredFile) (map[string]map[int]bool, []string) {
	suppressed := make(map[string]map[int]bool)
	var warnings []string
	for _, f := range files {
		if f.Class == types.ClassExcluded {
			continue
		}
		content, err := os.ReadFile(f.Path)
		if err != nil {
			continue
		}
		res := ScanFile(f.RelPath, content)
		if len(res.SuppressedLines) > 0 {
			suppressed[f.RelPath] = res.SuppressedLines
		}
		warnings = append(warnings, res.Warnings...)
	}
	return suppressed, warnings
}

// WhitelistMatcher matches a simple_name against configured glob patterns
// (spec section 4.2: "Whitelist patterns from project config (glob over
// simple_names)").
type WhitelistMatcher struct {
	patterns []string
}

// NewWhitelistMatcher builds a matcher from the raw pattern list, trimming
// blanks and rejecting malformed globs up front (spec section 7:
// "configuration error ... malformed glob: fail fast").
func NewWhitelistMatcher(patterns []string) (*WhitelistMatcher, error) {
	m := &WhitelistMatcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Count(p, "[") != strings.Count(p, "]") {
			return nil, fmt.Errorf("malformed whitelist glob %q: unbalanced character class", p)
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// Matches reports whether simpleName matches any configured pattern.
func (m *WhitelistMatcher) Matches(simpleName string) bool {
	if m == nil {
		return false
	}
	for _, p := range m.patterns {
		if match.Match(simpleName, p) {
			return true
		}
	}
	return false
}

// ToTypes converts the matcher into the pkg/types representation embedded
// in ProjectGraph, keeping internal/suppress as the sole owner of pattern
// validation.
func (m *WhitelistMatcher) ToTypes() *types.WhitelistMatcher {
	if m == nil {
		return &types.WhitelistMatcher{}
	}
	return &types.WhitelistMatcher{Patterns: m.patterns}
}
