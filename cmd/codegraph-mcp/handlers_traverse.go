package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/couzic/ts-graph-mcp-sub001/internal/format"
	"github.com/couzic/ts-graph-mcp-sub001/internal/query"
)

// registerTraversalTools registers the seven graph-traversal tool names
// the stable query tool surface (search-graph and
// search-symbols live in registerSearchTools since they are
// search-index-first rather than store-traversal-first).
func (s *Server) registerTraversalTools() {
	s.addTool(&mcp.Tool{
		Name:        "forward-callees",
		Description: "What does this function/method call, transitively up to maxDepth? Forward traversal over CALLS edges from the resolved symbol. Returns a graph-text artifact plus adaptive code snippets.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"symbol": {"type": "string", "description": "Canonical node id or bare symbol name"},
				"project": {"type": "string"},
				"max_depth": {"type": "integer", "description": "Traversal depth bound (default 100)"},
				"format": {"type": "string", "enum": ["text", "mermaid"], "description": "Output format (default text)"}
			},
			"required": ["symbol"]
		}`),
	}, s.handleTraversal(func(e *query.Engine, ctx context.Context, symbol string, maxDepth int) (*query.Result, error) {
		return e.ForwardCallees(ctx, symbol, maxDepth)
	}))

	s.addTool(&mcp.Tool{
		Name:        "backward-callers",
		Description: "Who calls this function/method, transitively up to maxDepth? Backward traversal over CALLS edges into the resolved symbol.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"symbol": {"type": "string"},
				"project": {"type": "string"},
				"max_depth": {"type": "integer"},
				"format": {"type": "string", "enum": ["text", "mermaid"]}
			},
			"required": ["symbol"]
		}`),
	}, s.handleTraversal(func(e *query.Engine, ctx context.Context, symbol string, maxDepth int) (*query.Result, error) {
		return e.BackwardCallers(ctx, symbol, maxDepth)
	}))

	s.addTool(&mcp.Tool{
		Name:        "forward-callers",
		Description: "Fan-in view: given this symbol's direct callees, who else calls those callees? Useful for blast-radius estimation when a shared callee changes.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"symbol": {"type": "string"},
				"project": {"type": "string"},
				"max_depth": {"type": "integer"},
				"format": {"type": "string", "enum": ["text", "mermaid"]}
			},
			"required": ["symbol"]
		}`),
	}, s.handleTraversal(func(e *query.Engine, ctx context.Context, symbol string, maxDepth int) (*query.Result, error) {
		return e.ForwardCallers(ctx, symbol, maxDepth)
	}))

	s.addTool(&mcp.Tool{
		Name:        "impact",
		Description: "What depends on this symbol, transitively, over any edge kind (CALLS, IMPORTS, EXTENDS, IMPLEMENTS, REFERENCES, USES_TYPE)? Use before renaming or removing a symbol.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"symbol": {"type": "string"},
				"project": {"type": "string"},
				"max_depth": {"type": "integer"},
				"format": {"type": "string", "enum": ["text", "mermaid"]}
			},
			"required": ["symbol"]
		}`),
	}, s.handleTraversal(func(e *query.Engine, ctx context.Context, symbol string, maxDepth int) (*query.Result, error) {
		return e.Impact(ctx, symbol, maxDepth)
	}))

	s.addTool(&mcp.Tool{
		Name:        "find-path",
		Description: "Shortest directed path between two symbols, over CALLS edges unless otherwise filtered. Returns null/message when unreachable within max_depth.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"from": {"type": "string"},
				"to": {"type": "string"},
				"project": {"type": "string"},
				"max_depth": {"type": "integer"},
				"format": {"type": "string", "enum": ["text", "mermaid"]}
			},
			"required": ["from", "to"]
		}`),
	}, s.handleFindPath)

	s.addTool(&mcp.Tool{
		Name:        "neighborhood",
		Description: "Direct (depth-1) forward and backward edges of any kind around a symbol: a cheap orientation view before a deeper traversal.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"symbol": {"type": "string"},
				"project": {"type": "string"},
				"format": {"type": "string", "enum": ["text", "mermaid"]}
			},
			"required": ["symbol"]
		}`),
	}, s.handleNeighborhood)

	s.addTool(&mcp.Tool{
		Name:        "file-symbols",
		Description: "Every symbol declared in one file, in source order, with their containing edges.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file_path": {"type": "string", "description": "File path relative to the indexed project root"},
				"project": {"type": "string"},
				"format": {"type": "string", "enum": ["text", "mermaid"]}
			},
			"required": ["file_path"]
		}`),
	}, s.handleFileSymbols)
}

// handleTraversal wraps a single-symbol, depth-bounded query.Engine
// method into a tool handler; forward-callees/backward-callers/
// forward-callers/impact share this exact argument shape.
func (s *Server) handleTraversal(fn func(e *query.Engine, ctx context.Context, symbol string, maxDepth int) (*query.Result, error)) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseArgs(req)
		if err != nil {
			return errResult(err.Error()), nil
		}
		symbol := getString(args, "symbol")
		if symbol == "" {
			return errResult("symbol is required"), nil
		}
		eng, err := s.projects.engineFor(s.projectArg(args))
		if err != nil {
			return errResult(err.Error()), nil
		}
		result, err := fn(eng, ctx, symbol, getInt(args, "max_depth", query.DefaultMaxDepth))
		if err != nil {
			return errResult(err.Error()), nil
		}
		return s.renderResult(result, args), nil
	}
}

func (s *Server) handleFindPath(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	from, to := getString(args, "from"), getString(args, "to")
	if from == "" || to == "" {
		return errResult("both from and to are required"), nil
	}
	eng, err := s.projects.engineFor(s.projectArg(args))
	if err != nil {
		return errResult(err.Error()), nil
	}
	result, err := eng.FindPath(ctx, from, to, getInt(args, "max_depth", query.DefaultMaxDepth))
	if err != nil {
		return errResult(err.Error()), nil
	}
	return s.renderResult(result, args), nil
}

func (s *Server) handleNeighborhood(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	symbol := getString(args, "symbol")
	if symbol == "" {
		return errResult("symbol is required"), nil
	}
	eng, err := s.projects.engineFor(s.projectArg(args))
	if err != nil {
		return errResult(err.Error()), nil
	}
	result, err := eng.Neighborhood(ctx, symbol)
	if err != nil {
		return errResult(err.Error()), nil
	}
	return s.renderResult(result, args), nil
}

func (s *Server) handleFileSymbols(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	filePath := getString(args, "file_path")
	if filePath == "" {
		return errResult("file_path is required"), nil
	}
	eng, err := s.projects.engineFor(s.projectArg(args))
	if err != nil {
		return errResult(err.Error()), nil
	}
	result, err := eng.FileSymbols(ctx, filePath)
	if err != nil {
		return errResult(err.Error()), nil
	}
	return s.renderResult(result, args), nil
}

// renderResult formats a query.Result as either graph-text (default) or
// Mermaid, appending an adaptive code-snippet block when
// the result size is within the snippet-eligible range and a project
// root is known for reading source off disk.
func (s *Server) renderResult(result *query.Result, args map[string]any) *mcp.CallToolResult {
	var text string
	if getString(args, "format") == "mermaid" {
		text = format.Mermaid(result)
	} else {
		text = format.GraphText(result)
	}

	root := s.projectRoot(s.projectArg(args))
	if root != "" {
		if snippets, err := format.Snippets(root, result); err == nil && len(snippets) > 0 {
			text += "\n## Snippets\n"
			for _, n := range result.Nodes {
				if snip, ok := snippets[n.ID]; ok {
					text += fmt.Sprintf("\n--- %s ---\n%s", n.ID, snip)
				}
			}
		}
	}
	return textResult(text)
}
