// Package graph defines the node/edge data model and canonical id scheme
// shared by the ingestion and query layers.
package graph

import (
	"strings"
)

// NodeKind is the sum type of symbol kinds a node may carry.
type NodeKind string

const (
	KindFile      NodeKind = "File"
	KindFunction  NodeKind = "Function"
	KindClass     NodeKind = "Class"
	KindMethod    NodeKind = "Method"
	KindInterface NodeKind = "Interface"
	KindTypeAlias NodeKind = "TypeAlias"
	KindVariable  NodeKind = "Variable"
	KindProperty  NodeKind = "Property"
)

// EdgeKind is the sum type of relationship kinds an edge may carry.
type EdgeKind string

const (
	EdgeContains   EdgeKind = "CONTAINS"
	EdgeImports    EdgeKind = "IMPORTS"
	EdgeCalls      EdgeKind = "CALLS"
	EdgeReferences EdgeKind = "REFERENCES"
	EdgeExtends    EdgeKind = "EXTENDS"
	EdgeImplements EdgeKind = "IMPLEMENTS"
	EdgeUsesType   EdgeKind = "USES_TYPE"
)

// NormalizePath converts a path to the canonical forward-slash form used
// in every id, independent of the host OS.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// ID builds the canonical "<filePath>:<Kind>:<symbolPath>" id for a
// top-level symbol. filePath is normalized to forward slashes.
// For the File node itself, call FileID instead.
func ID(filePath string, kind NodeKind, symbolPath string) string {
	return NormalizePath(filePath) + ":" + string(kind) + ":" + symbolPath
}

// FileID returns the id of a File node: its normalized path, with no
// ":Kind:symbolPath" suffix (symbolPath is empty for files per §3).
func FileID(filePath string) string {
	return NormalizePath(filePath)
}

// MemberSymbolPath builds the "<owner>.<member>" symbolPath used by
// Method and Property node ids.
func MemberSymbolPath(owner, member string) string {
	return owner + "." + member
}

// MemberID builds the canonical id for a Method or Property node.
func MemberID(filePath string, kind NodeKind, owner, member string) string {
	return ID(filePath, kind, MemberSymbolPath(owner, member))
}

// ParsedID is the decomposition of a canonical id into its three parts.
type ParsedID struct {
	FilePath   string
	Kind       NodeKind
	SymbolPath string
}

// ParseID splits a canonical id back into file path, kind and symbol path.
// The File node's id has no ":Kind:symbolPath" suffix, so ok is true with
// Kind == KindFile and an empty SymbolPath whenever no separator is found.
func ParseID(id string) (ParsedID, bool) {
	parts := strings.SplitN(id, ":", 3)
	switch len(parts) {
	case 1:
		return ParsedID{FilePath: parts[0], Kind: KindFile}, true
	case 3:
		return ParsedID{FilePath: parts[0], Kind: NodeKind(parts[1]), SymbolPath: parts[2]}, true
	default:
		return ParsedID{}, false
	}
}

// OwnerOf returns the owning type name for a member symbolPath
// ("Class.method" -> "Class"), or "" if symbolPath has no owner segment.
func OwnerOf(symbolPath string) string {
	dot := strings.LastIndex(symbolPath, ".")
	if dot < 0 {
		return ""
	}
	return symbolPath[:dot]
}

// IsTopLevel reports whether a symbolPath names a top-level declaration
// (no owner dot), which is the CONTAINS-eligibility test from §4.4.
func IsTopLevel(symbolPath string) bool {
	return !strings.Contains(symbolPath, ".")
}
