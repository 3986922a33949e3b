package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
)

// printRawJSON pretty-prints JSON text to stdout, falling back to the
// text verbatim when it isn't valid JSON (the traversal/search tools
// return a formatted graph-text or Mermaid artifact, not JSON).
func printRawJSON(text string) {
	var buf json.RawMessage
	if json.Unmarshal([]byte(text), &buf) == nil {
		if pretty, err := json.MarshalIndent(buf, "", "  "); err == nil {
			fmt.Println(string(pretty))
			return
		}
	}
	fmt.Println(text)
}

// printSummary prints a human-friendly, colorized summary of one tool
// call's result. Tools
// whose result is already rendered text (every traversal and search
// tool) print as-is; only the JSON-returning project-management tools
// get a dedicated summary.
func printSummary(toolName, text, cacheDir string) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		switch toolName {
		case "index-repository":
			printIndexSummary(obj, cacheDir)
			return
		case "graph-schema":
			printSchemaSummary(obj)
			return
		}
	}

	var arr []any
	if err := json.Unmarshal([]byte(text), &arr); err == nil && toolName == "list-projects" {
		printProjectListSummary(arr, cacheDir)
		return
	}

	// Every traversal/search tool's result is already human-readable
	// graph-text or Mermaid; print it directly.
	fmt.Println(text)
}

func printIndexSummary(data map[string]any, cacheDir string) {
	bold := color.New(color.Bold)
	bold.Printf("Indexed %d file(s), removed %d, skipped %d\n", jsonInt(data["IndexedFiles"]), jsonInt(data["RemovedFiles"]), jsonInt(data["SkippedFiles"]))
	fmt.Printf("  %s %d\n", color.CyanString("nodes:"), jsonInt(data["Nodes"]))
	fmt.Printf("  %s %d\n", color.CyanString("edges:"), jsonInt(data["Edges"]))
	if errs, ok := data["Errors"].([]any); ok && len(errs) > 0 {
		color.Yellow("  %d file error(s):", len(errs))
		for _, e := range errs {
			if m, ok := e.(map[string]any); ok {
				file, _ := m["File"].(string)
				msg, _ := m["Message"].(string)
				fmt.Printf("    %s: %s\n", file, msg)
			}
		}
	}
	fmt.Printf("  cache: %s\n", cacheDir)
}

func printSchemaSummary(data map[string]any) {
	color.New(color.Bold).Printf("%d node(s), %d edge(s)\n", jsonInt(data["total_nodes"]), jsonInt(data["total_edges"]))
	if byKind, ok := data["nodes_by_kind"].(map[string]any); ok {
		fmt.Println(color.CyanString("  nodes by kind:"))
		for kind, count := range byKind {
			fmt.Printf("    %-20s %d\n", kind, jsonInt(count))
		}
	}
	if byKind, ok := data["edges_by_kind"].(map[string]any); ok {
		fmt.Println(color.CyanString("  edges by kind:"))
		for kind, count := range byKind {
			fmt.Printf("    %-20s %d\n", kind, jsonInt(count))
		}
	}
	if dangling := jsonInt(data["dangling_edges"]); dangling > 0 {
		color.Yellow("  %d dangling edge(s)", dangling)
	}
}

func printProjectListSummary(arr []any, cacheDir string) {
	if len(arr) == 0 {
		fmt.Println("No projects indexed.")
		fmt.Printf("  cache: %s\n", cacheDir)
		return
	}
	color.New(color.Bold).Printf("%d project(s) indexed:\n", len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			name, _ := m["Name"].(string)
			dbPath, _ := m["DBPath"].(string)
			fmt.Printf("  %-20s %s\n", name, dbPath)
		}
	}
}

func jsonInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
