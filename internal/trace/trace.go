// Package trace loads runtime tracer output: a JSON document mapping file
// paths to [[line, hit_count], ...] pairs, consumed by the resolver's
// trace-hit resolution rule and the PenaltyEngine's trace-hit pin. Parsing
// uses tidwall/gjson for cheap, allocation-light field access instead of
// unmarshaling the whole document into typed structs up front.
package trace

import (
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/duriantaco/skylos-go/internal/resolver"
)

// Loader lazily parses a trace file and memoizes per-file hit-line lookups
// so repeated resolver/penalty queries against the same file don't re-walk
// the JSON.
type Loader struct {
	raw    string
	cache  map[string][]int
	loaded bool
}

// NewLoader reads path and validates it parses as a JSON object; the
// object's values are only walked lazily per file, on first Lines() call.
func NewLoader(path string) (*Loader, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	if !gjson.ValidBytes(content) {
		return nil, fmt.Errorf("trace file %s: invalid JSON", path)
	}
	result := gjson.ParseBytes(content)
	if !result.IsObject() {
		return nil, fmt.Errorf("trace file %s: expected a top-level JSON object of file -> hits", path)
	}
	return &Loader{raw: result.Raw, cache: make(map[string][]int)}, nil
}

// Lines returns the sorted, deduplicated hit-line numbers recorded for
// relPath, or nil if the trace has no entry for it.
func (l *Loader) Lines(relPath string) []int {
	if lines, ok := l.cache[relPath]; ok {
		return lines
	}
	entry := gjson.Get(l.raw, gjson.Escape(relPath))
	if !entry.Exists() || !entry.IsArray() {
		l.cache[relPath] = nil
		return nil
	}
	seen := make(map[int]bool)
	var lines []int
	for _, pair := range entry.Array() {
		if !pair.IsArray() {
			continue
		}
		arr := pair.Array()
		if len(arr) == 0 {
			continue
		}
		line := int(arr[0].Int())
		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}
	sort.Ints(lines)
	l.cache[relPath] = lines
	return lines
}

// ToResolverHits materializes resolver.TraceHits for every discovered
// file, so Resolve can run its rule 9 fuzzy match without depending on
// internal/trace directly.
func (l *Loader) ToResolverHits(relPaths []string) resolver.TraceHits {
	out := make(resolver.TraceHits)
	for _, rp := range relPaths {
		if lines := l.Lines(rp); len(lines) > 0 {
			out[rp] = lines
		}
	}
	return out
}
