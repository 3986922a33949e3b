package extract

import (
	"path"
	"strings"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
)

// resolveCrossPackage resolves a bare (non-relative) import specifier and
// symbol name against a ProjectRegistry, per §4.3 step 5 / §4.8:
// the specifier's leading segment(s) name a workspace package, and any
// remainder is a subpath within that package pointing at the barrel file
// that actually declares or re-exports name.
func resolveCrossPackage(reg astkit.ProjectRegistry, specifier, name string) (astkit.Symbol, bool) {
	pkgName, subpath, ok := splitPackageSpecifier(reg, specifier)
	if !ok {
		return astkit.Symbol{}, false
	}
	proj, ok := reg.Resolve(pkgName)
	if !ok {
		return astkit.Symbol{}, false
	}
	target := findFileInProject(proj, subpath)
	if target == nil {
		return astkit.Symbol{}, false
	}

	if kind, ok := declaredKindIn(target, name); ok {
		return astkit.Symbol{DefiningFile: target.Path(), DefiningName: name, InferredKind: kind, CrossPackage: pkgName}, true
	}
	if sym, ok := target.ResolveSymbol(name); ok {
		sym.CrossPackage = pkgName
		return sym, true
	}
	return astkit.Symbol{}, false
}

// splitPackageSpecifier tries progressively shorter path prefixes of
// specifier against reg until one matches a registered package name,
// returning that package name and the remaining subpath. This handles
// both bare package imports ("shared-utils") and deep imports into a
// package's internal modules ("shared-utils/format/date").
func splitPackageSpecifier(reg astkit.ProjectRegistry, specifier string) (pkgName, subpath string, ok bool) {
	segments := strings.Split(specifier, "/")
	for i := len(segments); i > 0; i-- {
		candidate := strings.Join(segments[:i], "/")
		if _, found := reg.Resolve(candidate); found {
			return candidate, strings.Join(segments[i:], "/"), true
		}
	}
	return "", "", false
}

// findFileInProject locates the SourceFile a subpath refers to within
// proj: an exact path match, each canonical extension appended, or an
// index file under subpath as a directory. subpath == "" resolves to the
// package's own root index file.
func findFileInProject(proj astkit.AstProject, subpath string) astkit.SourceFile {
	candidates := pathCandidates(subpath)
	for _, pkg := range proj.Packages() {
		for _, f := range pkg.Files {
			clean := path.Clean(f.Path())
			for _, c := range candidates {
				if clean == c {
					return f
				}
			}
		}
	}
	return nil
}

func pathCandidates(subpath string) []string {
	if subpath == "" {
		subpath = "index"
	}
	clean := path.Clean(subpath)
	out := []string{clean}
	for _, ext := range canonicalExtensions {
		out = append(out, clean+ext)
		out = append(out, path.Join(clean, "index"+ext))
	}
	return out
}

// declaredKindIn reports the graph NodeKind string of a symbol sf itself
// declares at the top level, mirroring tsast's own declaredKind but
// expressed purely against the astkit.SourceFile interface so it works
// for any AstProject implementation reached through the registry.
func declaredKindIn(sf astkit.SourceFile, name string) (string, bool) {
	for _, fn := range sf.Functions() {
		if fn.Name == name {
			return "Function", true
		}
	}
	for _, cls := range sf.Classes() {
		if cls.Name == name {
			return "Class", true
		}
	}
	for _, iface := range sf.Interfaces() {
		if iface.Name == name {
			return "Interface", true
		}
	}
	for _, ta := range sf.TypeAliases() {
		if ta.Name == name {
			return "TypeAlias", true
		}
	}
	for _, v := range sf.Variables() {
		if v.Name == name {
			return "Variable", true
		}
	}
	return "", false
}
