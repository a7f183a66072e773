package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateProjectAcceptsPyprojectToml(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte("[tool.skylos]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := validateProject(dir); err != nil {
		t.Errorf("validateProject() = %v, want nil", err)
	}
}

func TestValidateProjectAcceptsBarePythonFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := validateProject(dir); err != nil {
		t.Errorf("validateProject() = %v, want nil", err)
	}
}

func TestValidateProjectRejectsEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := validateProject(dir); err == nil {
		t.Error("validateProject() on an empty dir should error")
	}
}

func TestValidateProjectRejectsMissingDir(t *testing.T) {
	if err := validateProject(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("validateProject() on a missing dir should error")
	}
}

func TestScanCommandRegistersFlags(t *testing.T) {
	for _, name := range []string{"config", "confidence", "json", "trace", "exclude", "include"} {
		if scanCmd.Flags().Lookup(name) == nil {
			t.Errorf("scan command missing flag %q", name)
		}
	}
}
