package extract

import (
	"testing"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

// fakeProject is a minimal astkit.AstProject for exercising cross-package
// resolution without a real tsast.Project.
type fakeProject struct {
	pkg astkit.Package
}

func (p *fakeProject) Packages() []astkit.Package { return []astkit.Package{p.pkg} }

// fakeRegistry maps package names to fakeProjects, implementing
// astkit.ProjectRegistry for tests.
type fakeRegistry struct {
	byName map[string]astkit.AstProject
}

func (r *fakeRegistry) Resolve(name string) (astkit.AstProject, bool) {
	p, ok := r.byName[name]
	return p, ok
}

func TestResolveCrossPackageDirectDeclaration(t *testing.T) {
	barrel := &fakeSourceFile{
		path:      "index.ts",
		functions: []astkit.FunctionDecl{{Name: "sharedHelper"}},
	}
	reg := &fakeRegistry{byName: map[string]astkit.AstProject{
		"shared-utils": &fakeProject{pkg: astkit.Package{Name: "shared-utils", Files: []astkit.SourceFile{barrel}}},
	}}

	sym, ok := resolveCrossPackage(reg, "shared-utils", "sharedHelper")
	if !ok {
		t.Fatal("expected cross-package resolution to succeed")
	}
	if sym.DefiningFile != "index.ts" || sym.InferredKind != "Function" {
		t.Fatalf("unexpected symbol: %+v", sym)
	}
	if sym.CrossPackage != "shared-utils" {
		t.Fatalf("expected CrossPackage set, got %+v", sym)
	}
}

func TestResolveCrossPackageDeepSubpath(t *testing.T) {
	dateFile := &fakeSourceFile{
		path:      "format/date.ts",
		functions: []astkit.FunctionDecl{{Name: "formatDate"}},
	}
	reg := &fakeRegistry{byName: map[string]astkit.AstProject{
		"shared-utils": &fakeProject{pkg: astkit.Package{Name: "shared-utils", Files: []astkit.SourceFile{dateFile}}},
	}}

	sym, ok := resolveCrossPackage(reg, "shared-utils/format/date", "formatDate")
	if !ok {
		t.Fatal("expected deep-subpath resolution to succeed")
	}
	if sym.DefiningFile != "format/date.ts" {
		t.Fatalf("expected format/date.ts, got %s", sym.DefiningFile)
	}
}

func TestBuildImportMapSkipsUnregisteredExternalModule(t *testing.T) {
	sf := &fakeSourceFile{
		path: "src/app.ts",
		imports: []astkit.Import{
			{Specifier: "lodash", Names: []astkit.ImportedName{{Name: "debounce"}}},
		},
	}
	im := BuildImportMap(sf, false, nil)
	if len(im) != 0 {
		t.Fatalf("expected no entries for unregistered external module, got %v", im)
	}
}

func TestBuildImportMapResolvesWorkspacePackage(t *testing.T) {
	barrel := &fakeSourceFile{
		path:      "index.ts",
		functions: []astkit.FunctionDecl{{Name: "sharedHelper"}},
	}
	reg := &fakeRegistry{byName: map[string]astkit.AstProject{
		"shared-utils": &fakeProject{pkg: astkit.Package{Name: "shared-utils", Files: []astkit.SourceFile{barrel}}},
	}}
	sf := &fakeSourceFile{
		path: "src/app.ts",
		imports: []astkit.Import{
			{Specifier: "shared-utils", Names: []astkit.ImportedName{{Name: "sharedHelper"}}},
		},
	}

	im := BuildImportMap(sf, false, reg)
	want := graph.ID("index.ts", graph.KindFunction, "sharedHelper")
	if im["sharedHelper"] != want {
		t.Fatalf("expected %s, got %v", want, im)
	}
}
