package cmd

import "testing"

func TestRootCommandHasScanSubcommand(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "scan" {
			found = true
			break
		}
	}
	if !found {
		t.Error("root command should have 'scan' subcommand")
	}
}

func TestRootCommandMetadata(t *testing.T) {
	if rootCmd.Use != "skylos" {
		t.Errorf("expected Use='skylos', got %q", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("root command should have a short description")
	}
	if rootCmd.Version == "" {
		t.Error("root command should have a version set")
	}
}

func TestVerboseFlag(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("verbose")
	if f == nil {
		t.Fatal("verbose flag not registered")
	}
	if f.Shorthand != "v" {
		t.Errorf("verbose shorthand should be 'v', got %q", f.Shorthand)
	}
}
