// Package registry implements astkit.ProjectRegistry, the cross-package
// lookup table described in §4.8: a package name resolves to the
// AstProject context that owns it, used when an ImportMap's alias chain
// terminates in a barrel file that can only be resolved under a
// different package's compile configuration (§4.3 step 5).
package registry

import (
	"fmt"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
	"github.com/couzic/ts-graph-mcp-sub001/internal/config"
	"github.com/couzic/ts-graph-mcp-sub001/internal/tsast"
)

// Registry is a read-only-after-construction map of package name to its
// parsed AstProject, satisfying astkit.ProjectRegistry. Building one
// tsast.Project per package (rather than one combined project) keeps
// each package's file set isolated the way a real tsconfig-per-package
// monorepo would see it.
type Registry struct {
	byName map[string]astkit.AstProject
}

// Build parses every configured package into its own AstProject and
// returns the resulting Registry. It stops at the first package whose
// root cannot be walked and returns that error with no Registry.
func Build(cfg *config.ProjectConfig) (*Registry, error) {
	r := &Registry{byName: map[string]astkit.AstProject{}}
	for _, pkg := range cfg.Packages {
		proj, err := tsast.NewProject([]tsast.PackageConfig{{
			Name:         pkg.Name,
			Root:         pkg.Root,
			TsconfigPath: pkg.TsconfigPath,
		}})
		if err != nil {
			return nil, fmt.Errorf("registry: build package %s: %w", pkg.Name, err)
		}
		r.byName[pkg.Name] = proj
	}
	return r, nil
}

// Resolve returns the AstProject that owns packageName, if configured.
func (r *Registry) Resolve(packageName string) (astkit.AstProject, bool) {
	proj, ok := r.byName[packageName]
	return proj, ok
}

// PackageNames returns every registered package name, in map iteration
// order (unsorted).
func (r *Registry) PackageNames() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

// aggregateProject implements astkit.AstProject over every package the
// Registry knows about, so one ingest.Driver run indexes a whole
// multi-package project (§8's "Cross-package monorepo" scenario
// requires all packages land in the same graph store; per-package
// AstProject contexts stay separate only for compile-config-specific
// symbol resolution, not for where nodes/edges are written).
type aggregateProject struct {
	packages []astkit.Package
}

func (p *aggregateProject) Packages() []astkit.Package { return p.packages }

// AllPackages returns an astkit.AstProject spanning every package this
// Registry was built from, sorted by package name, for a single ingest
// run over the whole project.
func (r *Registry) AllPackages() astkit.AstProject {
	names := r.PackageNames()
	sortStrings(names)
	var all []astkit.Package
	for _, name := range names {
		proj := r.byName[name]
		all = append(all, proj.Packages()...)
	}
	return &aggregateProject{packages: all}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
