package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/couzic/ts-graph-mcp-sub001/internal/store"
)

// serverVersion is the MCP handshake version, independent of the
// module's own release cadence.
const serverVersion = "0.1.0"

// Server wires the nine query tools (forward-callers, backward-callers,
// forward-callees, impact, find-path, neighborhood, file-symbols,
// search-graph, search-symbols) plus index-repository, graph-schema,
// list-projects and delete-project over MCP stdio, using an
// addTool/handlers-map/CallTool-by-name registration shape.
type Server struct {
	mcp      *mcp.Server
	router   *store.StoreRouter
	projects *projectSet
	handlers map[string]mcp.ToolHandler

	defaultProject string
	configPath     string
}

// NewServer constructs a Server over router. defaultProject names the
// project used when a tool call omits the "project" argument, and
// configPath is where index-repository looks for its ProjectConfig when
// the caller does not pass one inline.
func NewServer(router *store.StoreRouter, defaultProject, configPath string) *Server {
	s := &Server{
		router:         router,
		projects:       newProjectSet(router),
		handlers:       map[string]mcp.ToolHandler{},
		defaultProject: defaultProject,
		configPath:     configPath,
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{Name: "codegraph-mcp", Version: serverVersion},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) MCPServer() *mcp.Server { return s.mcp }

func (s *Server) addTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	s.mcp.AddTool(tool, handler)
	s.handlers[tool.Name] = handler
}

// CallTool invokes a tool handler directly by name, bypassing the MCP
// transport, for the `cli` subcommand.
func (s *Server) CallTool(ctx context.Context, name string, argsJSON json.RawMessage) (*mcp.CallToolResult, error) {
	handler, ok := s.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if len(argsJSON) == 0 {
		argsJSON = json.RawMessage(`{}`)
	}
	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: name, Arguments: argsJSON},
	}
	return handler(ctx, req)
}

// ToolNames returns every registered tool name, sorted.
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) registerTools() {
	s.registerTraversalTools()
	s.registerSearchTools()
	s.registerProjectTools()
}

// jsonResult marshals data as the tool's sole text content block,
// so the cli subcommand's --raw mode can pretty-print it.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal: " + err.Error())
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(b)}}}
}

// textResult returns a plain-text tool result, used by the graph-text/
// Mermaid-rendering tools whose output is already the formatter's
// finished text artifact rather than a JSON payload.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: msg}}, IsError: true}
}

// parseArgs unmarshals a tool call's raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

func getString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func getInt(args map[string]any, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

func (s *Server) projectArg(args map[string]any) string {
	if name := getString(args, "project"); name != "" {
		return name
	}
	return s.defaultProject
}
