// Command codegraph-mcp indexes TypeScript/JavaScript codebases into a
// persistent structural graph and serves it over MCP stdio: a --version
// flag, a `cli` subcommand for direct tool invocation, otherwise it runs
// the MCP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/couzic/ts-graph-mcp-sub001/internal/config"
	"github.com/couzic/ts-graph-mcp-sub001/internal/store"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println("codegraph-mcp", version)
		os.Exit(0)
	}

	if len(os.Args) >= 2 && os.Args[1] == "cli" {
		os.Exit(runCLI(os.Args[2:]))
	}

	cfg, configPath := loadServerConfig()

	router, err := store.NewRouter(cfg.CacheDir)
	if err != nil {
		log.Fatalf("open store router: %v", err)
	}
	defer router.CloseAll()

	srv := NewServer(router, "default", configPath)
	srv.projects.register("default", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := srv.projects.indexProject(ctx, "default", cfg); err != nil {
		slog.Default().Warn("startup index failed, serving against existing store", "error", err)
	}

	if err := srv.MCPServer().Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// loadServerConfig resolves the ProjectConfig the server runs at
// startup: CODEGRAPH_CONFIG if set, else ./codegraph.yaml if present,
// else a single-package config rooted at the current directory.
func loadServerConfig() (*config.ProjectConfig, string) {
	if path := os.Getenv("CODEGRAPH_CONFIG"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			log.Fatalf("load config %s: %v", path, err)
		}
		return cfg, path
	}
	if _, err := os.Stat("codegraph.yaml"); err == nil {
		cfg, err := config.Load("codegraph.yaml")
		if err != nil {
			log.Fatalf("load config codegraph.yaml: %v", err)
		}
		return cfg, "codegraph.yaml"
	}
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("getwd: %v", err)
	}
	return config.Default(cwd), ""
}

func runCLI(args []string) int {
	raw := false
	var positional []string
	for _, a := range args {
		switch a {
		case "--raw":
			raw = true
		default:
			positional = append(positional, a)
		}
	}

	cfg, configPath := loadServerConfig()
	router, err := store.NewRouter(cfg.CacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer router.CloseAll()

	srv := NewServer(router, "default", configPath)
	srv.projects.register("default", cfg)

	if len(positional) == 0 || positional[0] == "--help" || positional[0] == "-h" {
		fmt.Fprintf(os.Stderr, "Usage: codegraph-mcp cli [--raw] <tool_name> [json_args]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n  --raw    Print full JSON output (default: human-friendly summary)\n\n")
		fmt.Fprintf(os.Stderr, "Available tools:\n  %s\n", strings.Join(srv.ToolNames(), "\n  "))
		return 0
	}

	toolName := positional[0]
	var argsJSON json.RawMessage
	if len(positional) > 1 {
		argsJSON = json.RawMessage(positional[1])
	}

	result, err := srv.CallTool(context.Background(), toolName, argsJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	var text string
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			text = tc.Text
			break
		}
	}

	if result.IsError {
		fmt.Fprintf(os.Stderr, "error: %s\n", text)
		return 1
	}

	if raw {
		printRawJSON(text)
		return 0
	}

	printSummary(toolName, text, cfg.CacheDir)
	return 0
}
