package tsast

import (
	"path"
	"strings"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
)

// canonicalExtensions mirrors internal/extract's resolution order, used
// here against the actual in-memory file index rather than as a blind
// guess, since the project knows which files really exist.
var canonicalExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

const maxAliasChainDepth = 6

// ResolveSymbol follows a local name through this file's own imports and
// re-export chains until it lands on an actual declaration, per spec
// §4.1's followAliasChain capability.
func (f *sourceFile) ResolveSymbol(localName string) (astkit.Symbol, bool) {
	f.ensureParsed()

	for _, imp := range f.imports {
		for _, n := range imp.Names {
			local := n.Alias
			if local == "" {
				local = n.Name
			}
			if local != localName || n.Form == astkit.ImportNamespace {
				continue
			}
			originalName := n.Name
			if n.Form == astkit.ImportDefault {
				originalName = "default"
			}
			return f.resolveInto(imp.Specifier, originalName, 0)
		}
	}

	return astkit.Symbol{}, false
}

func (f *sourceFile) resolveInto(specifier, name string, depth int) (astkit.Symbol, bool) {
	if depth >= maxAliasChainDepth || f.project == nil {
		return astkit.Symbol{}, false
	}
	if !isInternalSpecifier(specifier) {
		return astkit.Symbol{}, false
	}

	targetPath, ok := f.resolveFilePath(specifier)
	if !ok {
		return astkit.Symbol{}, false
	}
	target, ok := f.project.fileByPath(targetPath)
	if !ok {
		return astkit.Symbol{}, false
	}

	if kind, ok := target.declaredKind(name); ok {
		return astkit.Symbol{DefiningFile: target.Path(), DefiningName: name, InferredKind: kind}, true
	}

	target.ensureParsed()
	for _, re := range target.reExports {
		for _, n := range re.Names {
			if n.Alias != name && n.Name != name {
				continue
			}
			return target.resolveInto(re.Specifier, n.Name, depth+1)
		}
		if len(re.Names) == 0 {
			// `export * from './x'`: try the wildcard target directly.
			if sym, ok := target.resolveInto(re.Specifier, name, depth+1); ok {
				return sym, true
			}
		}
	}

	return astkit.Symbol{}, false
}

// declaredKind reports the graph NodeKind string of a symbol this file
// itself declares, if any.
func (f *sourceFile) declaredKind(name string) (string, bool) {
	f.ensureParsed()
	for _, fn := range f.functions {
		if fn.Name == name {
			return "Function", true
		}
	}
	for _, cls := range f.classes {
		if cls.Name == name {
			return "Class", true
		}
	}
	for _, iface := range f.interfaces {
		if iface.Name == name {
			return "Interface", true
		}
	}
	for _, ta := range f.typeAliases {
		if ta.Name == name {
			return "TypeAlias", true
		}
	}
	for _, v := range f.variables {
		if v.Name == name {
			return "Variable", true
		}
	}
	return "", false
}

func (f *sourceFile) resolveFilePath(specifier string) (string, bool) {
	dir := path.Dir(f.path)
	joined := path.Clean(path.Join(dir, specifier))

	if _, ok := f.project.byPath[joined]; ok {
		return joined, true
	}
	for _, ext := range canonicalExtensions {
		candidate := joined + ext
		if _, ok := f.project.byPath[candidate]; ok {
			return candidate, true
		}
		indexCandidate := joined + "/index" + ext
		if _, ok := f.project.byPath[indexCandidate]; ok {
			return indexCandidate, true
		}
	}
	return "", false
}

func isInternalSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/")
}
