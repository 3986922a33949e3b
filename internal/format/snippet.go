package format

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
	"github.com/couzic/ts-graph-mcp-sub001/internal/query"
)

// ContextLines picks the number of lines of surrounding context to
// include in a snippet for a result of size n, per §4.10's table.
// ok is false when snippets should be omitted entirely (n == 0 or n >=
// 36); contextLines is 0 (call-site line only) for 26-35 nodes.
func ContextLines(n int) (contextLines int, ok bool) {
	switch {
	case n == 0:
		return 0, false
	case n <= 5:
		return 10, true
	case n <= 25:
		return (25 - n) / 2, true
	case n <= 35:
		return 0, true
	default:
		return 0, false
	}
}

// Snippets renders one code snippet per node in r.Nodes, reading source
// from disk relative to root. A node reached via a CALLS edge with
// recorded call sites gets one "call at line L:" block per site; every
// other node gets a single "function body:" block over its own
// StartLine/EndLine span. Returns nil (no error) when the result size
// falls outside the snippet-eligible range.
func Snippets(root string, r *query.Result) (map[string]string, error) {
	contextLines, ok := ContextLines(len(r.Nodes))
	if !ok {
		return nil, nil
	}

	callSitesByTarget := map[string][]graph.CallSiteRange{}
	for _, e := range r.Edges {
		if e.Kind != graph.EdgeCalls {
			continue
		}
		sites, _ := e.Attrs[graph.AttrCallSites].([]graph.CallSiteRange)
		callSitesByTarget[e.Target] = append(callSitesByTarget[e.Target], sites...)
	}

	out := map[string]string{}
	for _, n := range r.Nodes {
		if n.FilePath == "" || n.Kind == graph.KindFile {
			continue
		}
		snippet, err := snippetFor(root, n, callSitesByTarget[n.ID], contextLines)
		if err != nil {
			continue // a missing/moved source file degrades to "no snippet", not a hard failure
		}
		out[n.ID] = snippet
	}
	return out, nil
}

func snippetFor(root string, n *graph.Node, sites []graph.CallSiteRange, contextLines int) (string, error) {
	absPath := filepath.Join(root, n.FilePath)
	var sb strings.Builder

	if len(sites) == 0 {
		start, end := expand(n.StartLine, n.EndLine, contextLines)
		lines, err := readLines(absPath, start, end)
		if err != nil {
			return "", err
		}
		sb.WriteString("function body:\n")
		sb.WriteString(lines)
		return sb.String(), nil
	}

	for _, site := range sites {
		start, end := expand(site.StartLine, site.EndLine, contextLines)
		lines, err := readLines(absPath, start, end)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "call at line %d:\n", site.StartLine)
		sb.WriteString(lines)
	}
	return sb.String(), nil
}

func expand(start, end, context int) (int, int) {
	s := start - context
	if s < 1 {
		s = 1
	}
	e := end + context
	return s, e
}

// readLines reads [start, end] (1-indexed, inclusive) from path, one
// `%4d | %s` line per source line.
func readLines(path string, start, end int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum > end {
			break
		}
		if lineNum >= start {
			fmt.Fprintf(&sb, "%4d | %s\n", lineNum, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan %s: %w", path, err)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no lines in range %d-%d for %s", start, end, path)
	}
	return sb.String(), nil
}
