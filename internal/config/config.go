// Package config loads the project configuration that tells the ingestion
// pipeline which source roots to index, per §4.1/§6. Configuration
// is plain YAML, matching the convention of every example repo in the
// retrieval pack that ships a project-level config file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PackageConfig is one compile-configuration root to index, matching
// astkit.AstProject's package grouping.
type PackageConfig struct {
	Name         string `yaml:"name"`
	Root         string `yaml:"root"`
	TsconfigPath string `yaml:"tsconfig_path,omitempty"`
}

// SearchConfig tunes the hybrid search layer.
type SearchConfig struct {
	// EmbeddingModel selects the EmbeddingProvider preset by name.
	// Only "local-hash-384" is built in (spec Open Question #2).
	EmbeddingModel string `yaml:"embedding_model,omitempty"`
	// HybridWeight is the lexical-score weight in [0,1] used by weighted
	// fusion; the vector score gets 1-HybridWeight.
	HybridWeight float64 `yaml:"hybrid_weight,omitempty"`
}

// ModuleConfig groups a set of packages under one module name, per §6's
// "optionally groups packages into modules". A package absent from every
// ModuleConfig is its own module (its Module field equals its package
// name), matching the single-package-projects common case.
type ModuleConfig struct {
	Name     string   `yaml:"name"`
	Packages []string `yaml:"packages"`
}

// ProjectConfig is the top-level configuration file shape.
type ProjectConfig struct {
	Version  string          `yaml:"version"`
	CacheDir string          `yaml:"cache_dir,omitempty"`
	Packages []PackageConfig `yaml:"packages"`
	Modules  []ModuleConfig  `yaml:"modules,omitempty"`
	Search   SearchConfig    `yaml:"search,omitempty"`
}

// ModuleOf returns the module name configured for pkgName, falling back to
// pkgName itself when no ModuleConfig lists it (an unmapped package is its
// own one-package module).
func (c *ProjectConfig) ModuleOf(pkgName string) string {
	for _, m := range c.Modules {
		for _, p := range m.Packages {
			if p == pkgName {
				return m.Name
			}
		}
	}
	return pkgName
}

const configVersion = "1"

// Default returns a ProjectConfig with the package list seeded from a
// single root, for callers (tests, the `cli` subcommand) that don't use
// a config file.
func Default(root string) *ProjectConfig {
	return &ProjectConfig{
		Version:  configVersion,
		CacheDir: ".codegraph",
		Packages: []PackageConfig{{Name: "default", Root: root}},
		Search:   SearchConfig{EmbeddingModel: "local-hash-384", HybridWeight: 0.5},
	}
}

// Load reads and parses a ProjectConfig from path.
func Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = ".codegraph"
	}
	if cfg.Search.EmbeddingModel == "" {
		cfg.Search.EmbeddingModel = "local-hash-384"
	}
	if cfg.Search.HybridWeight == 0 {
		cfg.Search.HybridWeight = 0.5
	}
	if len(cfg.Packages) == 0 {
		return nil, fmt.Errorf("config %s: at least one package root is required", path)
	}

	return &cfg, nil
}
