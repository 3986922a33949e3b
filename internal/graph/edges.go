package graph

// ReferenceContext discriminates a REFERENCES edge per §3/§4.4.
type ReferenceContext string

const (
	RefCallback   ReferenceContext = "callback"
	RefProperty   ReferenceContext = "property"
	RefArray      ReferenceContext = "array"
	RefReturn     ReferenceContext = "return"
	RefAssignment ReferenceContext = "assignment"
	RefAccess     ReferenceContext = "access"
)

// TypeContext discriminates a USES_TYPE edge per §3/§4.4.
type TypeContext string

const (
	TypeCtxParameter TypeContext = "parameter"
	TypeCtxReturn    TypeContext = "return"
	TypeCtxVariable  TypeContext = "variable"
	TypeCtxProperty  TypeContext = "property"
)

// CallSiteRange is one call expression's line span, aggregated into a
// CALLS edge's callSites attribute (§4.4).
type CallSiteRange struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Edge is a directed typed tuple (source, target, kind, attrs).
// Discriminator carries the context value ("" unless Kind is
// REFERENCES or USES_TYPE) that participates in the edge's uniqueness
// tuple per §3 ("Uniqueness").
type Edge struct {
	Source        string         `json:"source"`
	Target        string         `json:"target"`
	Kind          EdgeKind       `json:"kind"`
	Discriminator string         `json:"discriminator,omitempty"`
	Attrs         map[string]any `json:"attrs,omitempty"`
}

// Attribute keys stored in Edge.Attrs.
const (
	AttrTypeOnly          = "type_only"        // IMPORTS
	AttrImportedSymbols   = "imported_symbols"  // IMPORTS
	AttrCallCount         = "call_count"        // CALLS
	AttrCallSites         = "call_sites"         // CALLS ([]CallSiteRange)
	AttrReferenceContext  = "context"            // REFERENCES
	AttrTypeContext       = "context"            // USES_TYPE (same key, different edge kind)
)

// NewImportsEdge builds a File->File IMPORTS edge.
func NewImportsEdge(sourceFile, targetFile string, typeOnly bool, importedSymbols []string) Edge {
	return Edge{
		Source: FileID(sourceFile),
		Target: FileID(targetFile),
		Kind:   EdgeImports,
		Attrs: map[string]any{
			AttrTypeOnly:        typeOnly,
			AttrImportedSymbols: importedSymbols,
		},
	}
}

// NewContainsEdge builds a File->symbol CONTAINS edge.
func NewContainsEdge(filePath, targetID string) Edge {
	return Edge{Source: FileID(filePath), Target: targetID, Kind: EdgeContains}
}

// NewReferencesEdge builds a symbol->symbol REFERENCES edge, discriminated
// by context per spec's uniqueness rule.
func NewReferencesEdge(source, target string, ctx ReferenceContext) Edge {
	return Edge{
		Source:        source,
		Target:        target,
		Kind:          EdgeReferences,
		Discriminator: string(ctx),
		Attrs:         map[string]any{AttrReferenceContext: string(ctx)},
	}
}

// NewUsesTypeEdge builds a symbol->type USES_TYPE edge, discriminated by
// context per spec's uniqueness rule.
func NewUsesTypeEdge(source, target string, ctx TypeContext) Edge {
	return Edge{
		Source:        source,
		Target:        target,
		Kind:          EdgeUsesType,
		Discriminator: string(ctx),
		Attrs:         map[string]any{AttrTypeContext: string(ctx)},
	}
}

// NewCallsEdge builds a callable->callable CALLS edge, with call sites
// already aggregated into a single edge per (source, target) pair.
func NewCallsEdge(source, target string, callSites []CallSiteRange) Edge {
	return Edge{
		Source: source,
		Target: target,
		Kind:   EdgeCalls,
		Attrs: map[string]any{
			AttrCallCount: len(callSites),
			AttrCallSites: callSites,
		},
	}
}

// NewExtendsEdge builds a Class->Class or Interface->Interface EXTENDS edge.
func NewExtendsEdge(source, target string) Edge {
	return Edge{Source: source, Target: target, Kind: EdgeExtends}
}

// NewImplementsEdge builds a Class->Interface IMPLEMENTS edge.
func NewImplementsEdge(source, target string) Edge {
	return Edge{Source: source, Target: target, Kind: EdgeImplements}
}
