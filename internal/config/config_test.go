package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaultsWithNoConfigFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Confidence != 60 {
		t.Errorf("Confidence = %d, want default 60", cfg.Confidence)
	}
}

func TestLoadPyprojectOverridesConfidence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", "[tool.skylos]\nconfidence = 75\ncomplexity = 15\n")

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Confidence != 75 {
		t.Errorf("Confidence = %d, want 75", cfg.Confidence)
	}
	if cfg.Complexity != 15 {
		t.Errorf("Complexity = %d, want 15", cfg.Complexity)
	}
}

func TestLoadWhitelistFromSkylosYml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".skylos.yml", "whitelist:\n  - \"test_*\"\n  - \"Mock*\"\n")

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.WhitelistNames) != 2 {
		t.Fatalf("WhitelistNames = %v, want 2 entries", cfg.WhitelistNames)
	}
}

func TestLoadRejectsInvalidConfidence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", "[tool.skylos]\nconfidence = 500\n")

	if _, err := Load(dir, ""); err == nil {
		t.Error("expected validation error for out-of-range confidence")
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", "[tool.skylos\nconfidence = 10\n")

	if _, err := Load(dir, ""); err == nil {
		t.Error("expected parse error for malformed pyproject.toml")
	}
}

func TestLoadExplicitPyprojectPath(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom.toml")
	writeFile(t, dir, "custom.toml", "[tool.skylos]\nconfidence = 90\n")

	cfg, err := Load(dir, custom)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Confidence != 90 {
		t.Errorf("Confidence = %d, want 90", cfg.Confidence)
	}
}
