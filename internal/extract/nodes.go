package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

// Nodes produces every node for one file, per §4.2. The result is
// ordered: the File node first, then declarations in source order, with
// each class/interface's methods and properties following their owner.
func Nodes(sf astkit.SourceFile, ctx FileContext) []*graph.Node {
	var out []*graph.Node

	out = append(out, fileNode(ctx))

	source := sf.Source()
	for _, fn := range sf.Functions() {
		out = append(out, functionNode(ctx, fn, source))
	}
	for _, v := range sf.Variables() {
		out = append(out, variableNode(ctx, v, source))
	}
	for _, ta := range sf.TypeAliases() {
		out = append(out, typeAliasNode(ctx, ta, source))
	}
	for _, cls := range sf.Classes() {
		out = append(out, classNode(ctx, cls, source))
		for _, m := range cls.Methods {
			out = append(out, methodNode(ctx, cls.Name, m, source))
		}
		for _, p := range cls.Properties {
			out = append(out, propertyNode(ctx, cls.Name, p, source))
		}
	}
	for _, iface := range sf.Interfaces() {
		out = append(out, interfaceNode(ctx, iface, source))
		for _, m := range iface.Methods {
			out = append(out, methodNode(ctx, iface.Name, m, source))
		}
		for _, p := range iface.Properties {
			out = append(out, propertyNode(ctx, iface.Name, p, source))
		}
	}

	return out
}

func fileNode(ctx FileContext) *graph.Node {
	ext := filepath.Ext(ctx.FilePath)
	return &graph.Node{
		ID:       graph.FileID(ctx.FilePath),
		Kind:     graph.KindFile,
		Name:     filepath.Base(ctx.FilePath),
		FilePath: graph.NormalizePath(ctx.FilePath),
		Module:   ctx.Module,
		Package:  ctx.Package,
		Exported: true,
		Props:    map[string]any{graph.PropExtension: strings.TrimPrefix(ext, ".")},
	}
}

// snippetAndHash extracts the raw source text spanning a declaration's
// start/end lines and its content hash, keying the embedding cache and
// rendering snippets in query results (§3 "Content hash and
// snippet"). source is nil for fakes/tests with no backing text, in
// which case both return values are empty.
func snippetAndHash(source []byte, span astkit.Span) (hash string, snippet string) {
	if len(source) == 0 || span.StartLine <= 0 || span.EndLine < span.StartLine {
		return "", ""
	}
	lines := strings.Split(string(source), "\n")
	start := span.StartLine - 1
	end := span.EndLine
	if start < 0 {
		start = 0
	}
	if start >= len(lines) {
		return "", ""
	}
	if end > len(lines) {
		end = len(lines)
	}
	snippet = strings.Join(lines[start:end], "\n")
	sum := xxh3.HashString(snippet)
	return fmt.Sprintf("%016x", sum), snippet
}

func functionNode(ctx FileContext, fn astkit.FunctionDecl, source []byte) *graph.Node {
	hash, snippet := snippetAndHash(source, fn.Span)
	return &graph.Node{
		ID:        graph.ID(ctx.FilePath, graph.KindFunction, fn.Name),
		Kind:      graph.KindFunction,
		Name:      fn.Name,
		FilePath:  graph.NormalizePath(ctx.FilePath),
		Module:    ctx.Module,
		Package:   ctx.Package,
		StartLine: fn.Span.StartLine,
		EndLine:   fn.Span.EndLine,
		Exported:  fn.Exported,
		ContentHash: hash,
		Snippet:     snippet,
		Props: map[string]any{
			graph.PropAsync:      fn.Async,
			graph.PropParams:     toParams(fn.Params),
			graph.PropReturnType: fn.ReturnType,
		},
	}
}

func variableNode(ctx FileContext, v astkit.VariableDecl, source []byte) *graph.Node {
	hash, snippet := snippetAndHash(source, v.Span)
	return &graph.Node{
		ID:        graph.ID(ctx.FilePath, graph.KindVariable, v.Name),
		Kind:      graph.KindVariable,
		Name:      v.Name,
		FilePath:  graph.NormalizePath(ctx.FilePath),
		Module:    ctx.Module,
		Package:   ctx.Package,
		StartLine: v.Span.StartLine,
		EndLine:   v.Span.EndLine,
		Exported:  v.Exported,
		ContentHash: hash,
		Snippet:     snippet,
		Props: map[string]any{
			graph.PropIsConst:  v.IsConst,
			graph.PropTypeText: v.TypeText,
		},
	}
}

func typeAliasNode(ctx FileContext, ta astkit.TypeAliasDecl, source []byte) *graph.Node {
	hash, snippet := snippetAndHash(source, ta.Span)
	return &graph.Node{
		ID:        graph.ID(ctx.FilePath, graph.KindTypeAlias, ta.Name),
		Kind:      graph.KindTypeAlias,
		Name:      ta.Name,
		FilePath:  graph.NormalizePath(ctx.FilePath),
		Module:    ctx.Module,
		Package:   ctx.Package,
		StartLine: ta.Span.StartLine,
		EndLine:   ta.Span.EndLine,
		Exported:  ta.Exported,
		ContentHash: hash,
		Snippet:     snippet,
		Props:     map[string]any{graph.PropAliasOf: ta.AliasedType},
	}
}

func classNode(ctx FileContext, cls astkit.ClassDecl, source []byte) *graph.Node {
	hash, snippet := snippetAndHash(source, cls.Span)
	return &graph.Node{
		ID:        graph.ID(ctx.FilePath, graph.KindClass, cls.Name),
		Kind:      graph.KindClass,
		Name:      cls.Name,
		FilePath:  graph.NormalizePath(ctx.FilePath),
		Module:    ctx.Module,
		Package:   ctx.Package,
		StartLine: cls.Span.StartLine,
		EndLine:   cls.Span.EndLine,
		Exported:  cls.Exported,
		ContentHash: hash,
		Snippet:     snippet,
		Props: map[string]any{
			graph.PropExtendsOne: cls.Extends,
			graph.PropImplements: cls.Implements,
		},
	}
}

func interfaceNode(ctx FileContext, iface astkit.InterfaceDecl, source []byte) *graph.Node {
	hash, snippet := snippetAndHash(source, iface.Span)
	return &graph.Node{
		ID:        graph.ID(ctx.FilePath, graph.KindInterface, iface.Name),
		Kind:      graph.KindInterface,
		Name:      iface.Name,
		FilePath:  graph.NormalizePath(ctx.FilePath),
		Module:    ctx.Module,
		Package:   ctx.Package,
		StartLine: iface.Span.StartLine,
		EndLine:   iface.Span.EndLine,
		Exported:  iface.Exported,
		ContentHash: hash,
		Snippet:     snippet,
		Props:     map[string]any{graph.PropExtendsAll: iface.Extends},
	}
}

// methodNode is emitted with id "<file>:Method:<Owner>.<name>" even when
// owner is an interface, per §4.2.
func methodNode(ctx FileContext, owner string, m astkit.MethodDecl, source []byte) *graph.Node {
	hash, snippet := snippetAndHash(source, m.Span)
	return &graph.Node{
		ID:        graph.MemberID(ctx.FilePath, graph.KindMethod, owner, m.Name),
		Kind:      graph.KindMethod,
		Name:      m.Name,
		FilePath:  graph.NormalizePath(ctx.FilePath),
		Module:    ctx.Module,
		Package:   ctx.Package,
		StartLine: m.Span.StartLine,
		EndLine:   m.Span.EndLine,
		Exported:  m.Visibility == astkit.VisibilityPublic,
		ContentHash: hash,
		Snippet:     snippet,
		Props: map[string]any{
			graph.PropEnclosing:  owner,
			graph.PropVisibility: string(m.Visibility),
			graph.PropStatic:     m.Static,
			graph.PropAsync:      m.Async,
			graph.PropParams:     toParams(m.Params),
			graph.PropReturnType: m.ReturnType,
		},
	}
}

func propertyNode(ctx FileContext, owner string, p astkit.PropertyDecl, source []byte) *graph.Node {
	hash, snippet := snippetAndHash(source, p.Span)
	return &graph.Node{
		ID:        graph.MemberID(ctx.FilePath, graph.KindProperty, owner, p.Name),
		Kind:      graph.KindProperty,
		Name:      p.Name,
		FilePath:  graph.NormalizePath(ctx.FilePath),
		Module:    ctx.Module,
		Package:   ctx.Package,
		StartLine: p.Span.StartLine,
		EndLine:   p.Span.EndLine,
		Exported:  p.Visibility == astkit.VisibilityPublic,
		ContentHash: hash,
		Snippet:     snippet,
		Props: map[string]any{
			graph.PropOwner:      owner,
			graph.PropVisibility: string(p.Visibility),
			graph.PropTypeText:   p.TypeText,
			graph.PropOptional:   p.Optional,
			graph.PropReadonly:   p.Readonly,
		},
	}
}

func toParams(params []astkit.Param) []graph.Param {
	out := make([]graph.Param, len(params))
	for i, p := range params {
		out[i] = graph.Param{Name: p.Name, TypeText: p.TypeText}
	}
	return out
}
