// Package config loads project-level configuration: the confidence
// threshold, folder/include excludes, complexity/nesting/quality knobs
// from pyproject.toml's [tool.skylos] table, and the flat `whitelist` glob
// list from .skylos.yml (its optional `whitelist_reasons` map is parsed but
// not used). Neither file is required; absence
// of either simply leaves types.DefaultConfig's values in place.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/duriantaco/skylos-go/pkg/types"
)

// pyprojectFile is the subset of pyproject.toml skylos-go reads.
type pyprojectFile struct {
	Tool struct {
		Skylos skylosTable `toml:"skylos"`
	} `toml:"tool"`
}

type skylosTable struct {
	Confidence     int             `toml:"confidence"`
	ExcludeFolders []string        `toml:"exclude_folders"`
	IncludeFolders []string        `toml:"include_folders"`
	Complexity     int             `toml:"complexity"`
	Nesting        int             `toml:"nesting"`
	MaxArgs        int             `toml:"max_args"`
	MaxLines       int             `toml:"max_lines"`
	IgnoreRuleIDs  []string        `toml:"ignore_rule_ids"`
	Overrides      []overrideEntry `toml:"overrides"`
}

type overrideEntry struct {
	Path       string `toml:"path"`
	Confidence int    `toml:"confidence"`
}

// whitelistFile is the shape of .skylos.yml: a flat list of glob patterns,
// plus an optional pattern -> free-text reason map kept for documentation.
type whitelistFile struct {
	Whitelist []string          `yaml:"whitelist"`
	Reasons   map[string]string `yaml:"whitelist_reasons"`
}

// Load reads pyproject.toml (if present) and .skylos.yml (if present) from
// dir, overlays them onto types.DefaultConfig, validates the result, and
// returns it. explicitPyproject, if non-empty, overrides the default
// pyproject.toml path.
func Load(dir, explicitPyproject string) (*types.Config, error) {
	cfg := types.DefaultConfig()

	pyprojectPath := explicitPyproject
	if pyprojectPath == "" {
		pyprojectPath = filepath.Join(dir, "pyproject.toml")
	}
	if data, err := os.ReadFile(pyprojectPath); err == nil {
		var pf pyprojectFile
		if err := toml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", pyprojectPath, err)
		}
		applyPyprojectOverrides(cfg, pf.Tool.Skylos)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", pyprojectPath, err)
	}

	whitelistPath := filepath.Join(dir, ".skylos.yml")
	if data, err := os.ReadFile(whitelistPath); err == nil {
		var wf whitelistFile
		if err := yaml.Unmarshal(data, &wf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", whitelistPath, err)
		}
		cfg.WhitelistNames = append(cfg.WhitelistNames, wf.Whitelist...)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", whitelistPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyPyprojectOverrides(cfg *types.Config, t skylosTable) {
	if t.Confidence != 0 {
		cfg.Confidence = t.Confidence
	}
	if len(t.ExcludeFolders) > 0 {
		cfg.ExcludeFolders = t.ExcludeFolders
	}
	if len(t.IncludeFolders) > 0 {
		cfg.IncludeFolders = t.IncludeFolders
	}
	if t.Complexity != 0 {
		cfg.Complexity = t.Complexity
	}
	if t.Nesting != 0 {
		cfg.Nesting = t.Nesting
	}
	if t.MaxArgs != 0 {
		cfg.MaxArgs = t.MaxArgs
	}
	if t.MaxLines != 0 {
		cfg.MaxLines = t.MaxLines
	}
	if len(t.IgnoreRuleIDs) > 0 {
		cfg.IgnoreRuleIDs = t.IgnoreRuleIDs
	}
	if len(t.Overrides) > 0 {
		cfg.Overrides = make(map[string]types.ConfigOverride, len(t.Overrides))
		for _, o := range t.Overrides {
			cfg.Overrides[o.Path] = types.ConfigOverride{PathGlob: o.Path, Confidence: o.Confidence}
		}
	}
}
