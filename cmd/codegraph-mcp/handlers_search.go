package main

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/couzic/ts-graph-mcp-sub001/internal/query"
)

// registerSearchTools registers the two search-index-first tools:
// search-graph (the {from?, to?, topic?} dispatch matrix)
// and search-symbols (a bare hybrid lookup with no traversal).
func (s *Server) registerSearchTools() {
	s.addTool(&mcp.Tool{
		Name: "search-graph",
		Description: "General-purpose graph query: combine from/to/topic to select the traversal. from alone walks forward, to alone walks backward, from+to finds the path between them, topic alone searches by meaning/name and returns matches, and topic with from/to filters that traversal's results to ones relevant to topic.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"from": {"type": "string", "description": "Starting symbol (canonical id or name)"},
				"to": {"type": "string", "description": "Target symbol for a path query"},
				"topic": {"type": "string", "description": "Free-text search term"},
				"project": {"type": "string"},
				"max_depth": {"type": "integer"},
				"max_nodes": {"type": "integer"},
				"format": {"type": "string", "enum": ["text", "mermaid"]}
			}
		}`),
	}, s.handleSearchGraph)

	s.addTool(&mcp.Tool{
		Name:        "search-symbols",
		Description: "Hybrid lexical+semantic lookup over indexed symbol names and snippets, with no graph traversal: the fastest way to locate a starting point by approximate name or description.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string"},
				"project": {"type": "string"},
				"limit": {"type": "integer", "description": "Max results (default 10)"}
			},
			"required": ["query"]
		}`),
	}, s.handleSearchSymbols)
}

func (s *Server) handleSearchGraph(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	c := query.Constraints{
		Topic:    getString(args, "topic"),
		MaxDepth: getInt(args, "max_depth", 0),
		MaxNodes: getInt(args, "max_nodes", 0),
	}
	if from := getString(args, "from"); from != "" {
		c.From = &query.Endpoint{Symbol: from}
	}
	if to := getString(args, "to"); to != "" {
		c.To = &query.Endpoint{Symbol: to}
	}
	eng, err := s.projects.engineFor(s.projectArg(args))
	if err != nil {
		return errResult(err.Error()), nil
	}
	result, err := eng.SearchGraph(ctx, c)
	if err != nil {
		return errResult(err.Error()), nil
	}
	return s.renderResult(result, args), nil
}

func (s *Server) handleSearchSymbols(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	q := getString(args, "query")
	if q == "" {
		return errResult("query is required"), nil
	}
	eng, err := s.projects.engineFor(s.projectArg(args))
	if err != nil {
		return errResult(err.Error()), nil
	}
	result, err := eng.SearchSymbols(ctx, q, getInt(args, "limit", 10))
	if err != nil {
		return errResult(err.Error()), nil
	}
	return s.renderResult(result, args), nil
}
