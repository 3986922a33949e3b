package extract

import (
	"path"
	"strings"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

// canonicalExtensions is the resolution order used when the host AST
// cannot resolve a relative specifier to a file directly, per §4.3
// step 2 ("path-arithmetic resolution with the canonical extension set").
var canonicalExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// ImportMap is the per-file local_name -> target node id table built by
// BuildImportMap, per §4.3. It is the sole mechanism edge
// extractors use to resolve cross-file references.
type ImportMap map[string]string

// BuildImportMap builds the ImportMap for one source file. includeTypeOnly
// requests that type-only imports, normally skipped (§4.3 step 6),
// also be resolved — used by USES_TYPE extraction. reg is consulted for
// non-relative specifiers that name a configured workspace package (spec
// §4.3 step 5 / §4.8); it may be nil, in which case such imports are
// skipped like any other external module.
func BuildImportMap(sf astkit.SourceFile, includeTypeOnly bool, reg astkit.ProjectRegistry) ImportMap {
	im := ImportMap{}
	filePath := sf.Path()

	for _, imp := range sf.Imports() {
		if imp.TypeOnly && !includeTypeOnly {
			continue
		}
		if !isInternalSpecifier(imp.Specifier) {
			if reg != nil {
				resolveWorkspaceImport(im, imp, reg)
			}
			continue // external module, §4.3 step 1
		}
		for _, name := range imp.Names {
			switch name.Form {
			case astkit.ImportNamespace:
				// Namespace imports are not added directly (§4.3
				// step 8); call edges through ns.member() are handled
				// by the edge extractors' namespace-qualifier lookup.
				continue
			case astkit.ImportDefault:
				resolveDefaultImport(sf, im, name, imp.Specifier, filePath)
			default:
				resolveNamedImport(sf, im, name, imp.Specifier)
			}
		}
	}

	for _, re := range sf.ReExports() {
		if !isInternalSpecifier(re.Specifier) {
			continue
		}
		for _, name := range re.Names {
			resolveNamedImport(sf, im, name, re.Specifier)
		}
	}

	return im
}

// resolveWorkspaceImport handles a non-relative import specifier that may
// name a configured workspace package rather than a true external module.
func resolveWorkspaceImport(im ImportMap, imp astkit.Import, reg astkit.ProjectRegistry) {
	for _, name := range imp.Names {
		if name.Form == astkit.ImportNamespace {
			continue
		}
		local := name.Alias
		if local == "" {
			local = name.Name
		}
		lookupName := name.Name
		if name.Form == astkit.ImportDefault {
			lookupName = "default"
		}
		sym, ok := resolveCrossPackage(reg, imp.Specifier, lookupName)
		if !ok {
			continue
		}
		definingName := sym.DefiningName
		if definingName == "" {
			definingName = "default"
		}
		im[local] = graph.ID(sym.DefiningFile, kindFromInferred(sym.InferredKind), definingName)
	}
}

func resolveNamedImport(sf astkit.SourceFile, im ImportMap, name astkit.ImportedName, specifier string) {
	local := name.Alias
	if local == "" {
		local = name.Name
	}

	sym, ok := sf.ResolveSymbol(name.Name)
	if !ok {
		// Re-export/alias chain could not be followed; fall back to a
		// path-arithmetic guess per §4.3 step 2, defaulting the
		// kind conservatively to Function (step 3's final fallback).
		target := fallbackTarget(sf.Path(), specifier, name.Name)
		im[local] = target
		return
	}

	definingName := sym.DefiningName
	if definingName == "" || definingName == "default" {
		// default-export re-export without an inherent name: §4.3
		// step 4/7 falls back to the literal "default" symbol name.
		definingName = "default"
	}
	im[local] = graph.ID(sym.DefiningFile, kindFromInferred(sym.InferredKind), definingName)
}

func resolveDefaultImport(sf astkit.SourceFile, im ImportMap, name astkit.ImportedName, specifier, filePath string) {
	local := name.Alias
	if local == "" {
		local = "default"
	}

	sym, ok := sf.ResolveSymbol("default")
	if !ok {
		// §4.3 step 7: default imports that fail symbol resolution
		// fall back to <targetPath>:Function:default.
		target := resolveRelativeFile(filePath, specifier)
		im[local] = graph.ID(target, graph.KindFunction, "default")
		return
	}

	definingName := sym.DefiningName
	if definingName == "" {
		definingName = "default"
	}
	im[local] = graph.ID(sym.DefiningFile, kindFromInferred(sym.InferredKind), definingName)
}

func fallbackTarget(fromFile, specifier, name string) string {
	target := resolveRelativeFile(fromFile, specifier)
	return graph.ID(target, graph.KindFunction, name)
}

// resolveRelativeFile applies path arithmetic to a relative specifier,
// trying each canonical extension in order (§4.3 step 2). It never
// touches the filesystem: astkit.SourceFile.ResolveSymbol is the only
// source of truth for whether a target actually exists; this is a
// best-effort guess used only once resolution has already failed.
func resolveRelativeFile(fromFile, specifier string) string {
	dir := path.Dir(fromFile)
	joined := path.Clean(path.Join(dir, specifier))
	for _, ext := range canonicalExtensions {
		if strings.HasSuffix(joined, ext) {
			return joined
		}
	}
	return joined + canonicalExtensions[0]
}

func isInternalSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/")
}
