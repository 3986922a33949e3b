package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codegraph.yaml")
	yaml := "version: \"1\"\npackages:\n  - name: app\n    root: ./src\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheDir != ".codegraph" {
		t.Fatalf("expected default cache dir, got %q", cfg.CacheDir)
	}
	if cfg.Search.EmbeddingModel != "local-hash-384" {
		t.Fatalf("expected default embedding model, got %q", cfg.Search.EmbeddingModel)
	}
	if len(cfg.Packages) != 1 || cfg.Packages[0].Name != "app" {
		t.Fatalf("unexpected packages: %+v", cfg.Packages)
	}
}

func TestModuleOfFallsBackToPackageName(t *testing.T) {
	cfg := &ProjectConfig{
		Packages: []PackageConfig{{Name: "api"}, {Name: "utils"}},
		Modules:  []ModuleConfig{{Name: "backend", Packages: []string{"api"}}},
	}
	if got := cfg.ModuleOf("api"); got != "backend" {
		t.Fatalf("expected api in backend module, got %q", got)
	}
	if got := cfg.ModuleOf("utils"); got != "utils" {
		t.Fatalf("expected utils to be its own module, got %q", got)
	}
}

func TestLoadRequiresAtLeastOnePackage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codegraph.yaml")
	if err := os.WriteFile(path, []byte("version: \"1\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty package list")
	}
}
