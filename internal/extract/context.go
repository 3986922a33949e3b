// Package extract implements the node/edge extractors of §4.2-§4.4:
// pure, per-file, deterministic transforms from an astkit.SourceFile into
// graph.Node/graph.Edge values. Nothing here touches storage or does any
// cross-file I/O beyond what astkit.SourceFile.ResolveSymbol already
// exposes.
package extract

import (
	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

// FileContext carries the scoping fields every node in one file shares.
type FileContext struct {
	FilePath string
	Module   string
	Package  string
	// Registry resolves workspace package specifiers that are not
	// relative imports to another package's AstProject context, per
	// §4.3 step 5 / §4.8. Nil disables cross-package resolution;
	// such imports are then skipped like any other external module.
	Registry astkit.ProjectRegistry
}

// kindFromInferred maps the astkit.Symbol.InferredKind string (produced
// by the import map's kind-inference rules, §4.3 step 3) to a
// graph.NodeKind, defaulting to Function per the "conservative: most
// cross-file calls are functions" rule.
func kindFromInferred(s string) graph.NodeKind {
	switch graph.NodeKind(s) {
	case graph.KindFunction, graph.KindVariable, graph.KindClass,
		graph.KindMethod, graph.KindInterface, graph.KindTypeAlias,
		graph.KindProperty, graph.KindFile:
		return graph.NodeKind(s)
	default:
		return graph.KindFunction
	}
}
