package discovery

import (
	"strings"

	"github.com/duriantaco/skylos-go/pkg/types"
)

// classifyPythonFile classifies a Python file by its filename. Test files
// match test_*.py / *_test.py, matching the Python community convention
// (pytest default collection patterns).
func classifyPythonFile(name string) types.FileClass {
	base := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(name, ".py"), ".pyi"), ".pyw")
	if strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test") || base == "conftest" {
		return types.ClassTest
	}
	return types.ClassSource
}

// IsInitFile reports whether relPath's basename is __init__.py[i].
func IsInitFile(relPath string) bool {
	base := relPath
	if idx := strings.LastIndexByte(relPath, '/'); idx >= 0 {
		base = relPath[idx+1:]
	}
	return base == "__init__.py" || base == "__init__.pyi"
}
