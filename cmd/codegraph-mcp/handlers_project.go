package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/couzic/ts-graph-mcp-sub001/internal/config"
)

// registerProjectTools registers the supplemented tools that manage
// indexed projects as a whole rather than querying one: index-repository
// (run/rerun ingestion), graph-schema (structural overview), list-projects
// and delete-project (StoreRouter inventory management).
func (s *Server) registerProjectTools() {
	s.addTool(&mcp.Tool{
		Name:        "index-repository",
		Description: "Index (or re-index) a codebase: parse every configured package root and populate the graph store and search index. Re-running after edits only reprocesses changed files, per the manifest-based incremental sync.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string", "description": "Name to register this codebase under; defaults to the server's default project"},
				"root": {"type": "string", "description": "Filesystem path to the codebase root, used when no config_path is given"},
				"config_path": {"type": "string", "description": "Path to a YAML project config; overrides root"}
			}
		}`),
	}, s.handleIndexRepository)

	s.addTool(&mcp.Tool{
		Name:        "graph-schema",
		Description: "Structural overview of an indexed project: node/edge kind counts, observed relationship patterns, sample symbol names, and a dangling-edge health count.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"}
			}
		}`),
	}, s.handleGraphSchema)

	s.addTool(&mcp.Tool{
		Name:        "list-projects",
		Description: "List every indexed project (one entry per graph database the server knows about on disk), with its database path.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleListProjects)

	s.addTool(&mcp.Tool{
		Name:        "delete-project",
		Description: "Delete an indexed project's graph database and cached state. Irreversible; the project must be re-indexed from scratch to query it again.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"}
			},
			"required": ["project"]
		}`),
	}, s.handleDeleteProject)
}

func (s *Server) handleIndexRepository(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	name := s.projectArg(args)
	if name == "" {
		return errResult("project is required"), nil
	}

	cfg, err := s.loadProjectConfig(args)
	if err != nil {
		return errResult(err.Error()), nil
	}

	result, err := s.projects.indexProject(ctx, name, cfg)
	if err != nil {
		return errResult(err.Error()), nil
	}
	return jsonResult(result), nil
}

// loadProjectConfig resolves a ProjectConfig for an index-repository call:
// an explicit config_path wins, then a bare root seeds a single-package
// config.Default, then falls back to the server's own configPath.
func (s *Server) loadProjectConfig(args map[string]any) (*config.ProjectConfig, error) {
	if path := getString(args, "config_path"); path != "" {
		return config.Load(path)
	}
	if root := getString(args, "root"); root != "" {
		return config.Default(root), nil
	}
	if s.configPath != "" {
		return config.Load(s.configPath)
	}
	return nil, fmt.Errorf("index-repository: one of config_path, root, or a server default config is required")
}

func (s *Server) handleGraphSchema(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	st, err := s.router.ForPackage(s.projectArg(args))
	if err != nil {
		return errResult(err.Error()), nil
	}
	summary, err := st.Schema()
	if err != nil {
		return errResult(err.Error()), nil
	}
	return jsonResult(summary), nil
}

func (s *Server) handleListProjects(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.router.ListPackages()
	if err != nil {
		return errResult(err.Error()), nil
	}
	return jsonResult(projects), nil
}

func (s *Server) handleDeleteProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	name := getString(args, "project")
	if name == "" {
		return errResult("project is required"), nil
	}
	if err := s.router.DeletePackage(name); err != nil {
		return errResult(err.Error()), nil
	}
	s.projects.invalidate(name)
	return textResult(fmt.Sprintf("deleted project %q", name)), nil
}

// projectRoot returns the first configured package root for name, used
// to read source files for snippet rendering; "" if name is unknown or
// has no registered config (snippet rendering is then skipped).
func (s *Server) projectRoot(name string) string {
	cfg, ok := s.projects.configFor(name)
	if !ok || len(cfg.Packages) == 0 {
		return ""
	}
	return cfg.Packages[0].Root
}
