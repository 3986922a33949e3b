package extract

import (
	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

// localSymbolTable maps a file's own top-level declaration names to their
// node ids, so CALLS/REFERENCES/EXTENDS/IMPLEMENTS can resolve same-file
// targets without going through the ImportMap.
type localSymbolTable map[string]string

func buildLocalSymbols(sf astkit.SourceFile, ctx FileContext) localSymbolTable {
	tab := localSymbolTable{}
	for _, fn := range sf.Functions() {
		tab[fn.Name] = graph.ID(ctx.FilePath, graph.KindFunction, fn.Name)
	}
	for _, v := range sf.Variables() {
		tab[v.Name] = graph.ID(ctx.FilePath, graph.KindVariable, v.Name)
	}
	for _, ta := range sf.TypeAliases() {
		tab[ta.Name] = graph.ID(ctx.FilePath, graph.KindTypeAlias, ta.Name)
	}
	for _, cls := range sf.Classes() {
		tab[cls.Name] = graph.ID(ctx.FilePath, graph.KindClass, cls.Name)
	}
	for _, iface := range sf.Interfaces() {
		tab[iface.Name] = graph.ID(ctx.FilePath, graph.KindInterface, iface.Name)
	}
	return tab
}

// resolve looks up name first against the file's own declarations, then
// against the file's ImportMap, per §4.4's "same-file symbols take
// precedence over imports" rule. ok is false when neither source knows it
// (e.g. a call to an external-library function), which callers treat as
// "no edge emitted" rather than an error.
func resolve(name string, local localSymbolTable, im ImportMap) (string, bool) {
	if id, ok := local[name]; ok {
		return id, true
	}
	if id, ok := im[name]; ok {
		return id, true
	}
	return "", false
}
