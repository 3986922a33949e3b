package tsast

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
)

// calleeParts splits a call expression's target into its leftmost
// identifier (Callee) and the remaining member name (Member).
func calleeParts(node *tree_sitter.Node, source []byte) (string, string) {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return "", ""
	}
	switch fnNode.Kind() {
	case "identifier":
		return nodeText(fnNode, source), ""
	case "member_expression":
		obj := fnNode.ChildByFieldName("object")
		prop := fnNode.ChildByFieldName("property")
		if obj != nil && obj.Kind() == "identifier" {
			member := ""
			if prop != nil {
				member = nodeText(prop, source)
			}
			return nodeText(obj, source), member
		}
		return baseIdentifier(fnNode, source), ""
	default:
		return baseIdentifier(fnNode, source), ""
	}
}

// walkBody walks one callable's body, collecting every call expression
// and every named-value use that is not itself a call, per §4.4's
// CALLS/REFERENCES extraction rules.
func (f *sourceFile) walkBody(body *tree_sitter.Node) ([]astkit.CallExpr, []astkit.ValueUse) {
	if body == nil {
		return nil, nil
	}
	var calls []astkit.CallExpr
	var refs []astkit.ValueUse

	var walk func(node *tree_sitter.Node)
	walk = func(node *tree_sitter.Node) {
		if node == nil {
			return
		}
		switch node.Kind() {
		case "call_expression":
			if callee, member := calleeParts(node, f.source); callee != "" {
				calls = append(calls, astkit.CallExpr{Callee: callee, Member: member, Span: lineSpan(node)})
			}
			if argsNode := node.ChildByFieldName("arguments"); argsNode != nil {
				for i := uint(0); i < argsNode.NamedChildCount(); i++ {
					arg := argsNode.NamedChild(i)
					if arg.Kind() == "identifier" {
						refs = append(refs, astkit.ValueUse{Name: nodeText(arg, f.source), Context: astkit.UseCallback, Span: lineSpan(arg)})
					} else {
						walk(arg)
					}
				}
			}
			return

		case "return_statement":
			if argNode := node.NamedChild(0); argNode != nil {
				if argNode.Kind() == "identifier" {
					refs = append(refs, astkit.ValueUse{Name: nodeText(argNode, f.source), Context: astkit.UseReturn, Span: lineSpan(argNode)})
				} else {
					walk(argNode)
				}
			}
			return

		case "array":
			for i := uint(0); i < node.NamedChildCount(); i++ {
				el := node.NamedChild(i)
				if el.Kind() == "identifier" {
					refs = append(refs, astkit.ValueUse{Name: nodeText(el, f.source), Context: astkit.UseArray, Span: lineSpan(el)})
				} else {
					walk(el)
				}
			}
			return

		case "pair":
			if valueNode := node.ChildByFieldName("value"); valueNode != nil {
				if valueNode.Kind() == "identifier" {
					refs = append(refs, astkit.ValueUse{Name: nodeText(valueNode, f.source), Context: astkit.UseProperty, Span: lineSpan(valueNode)})
				} else {
					walk(valueNode)
				}
			}
			return

		case "assignment_expression":
			if rhs := node.ChildByFieldName("right"); rhs != nil {
				if rhs.Kind() == "identifier" {
					refs = append(refs, astkit.ValueUse{Name: nodeText(rhs, f.source), Context: astkit.UseAssignment, Span: lineSpan(rhs)})
				} else {
					walk(rhs)
				}
			}
			if left := node.ChildByFieldName("left"); left != nil {
				walk(left)
			}
			return

		case "member_expression":
			if obj := node.ChildByFieldName("object"); obj != nil && obj.Kind() == "identifier" {
				member := ""
				if propNode := node.ChildByFieldName("property"); propNode != nil {
					member = nodeText(propNode, f.source)
				}
				refs = append(refs, astkit.ValueUse{Name: nodeText(obj, f.source), Member: member, Context: astkit.UseAccess, Span: lineSpan(obj)})
			}

		case "subscript_expression":
			// `map[key]` is a REFERENCES use of map's base identifier, per
			// §4.4; `map["f"]()` never reaches here because call_expression
			// returns above without walking its own function field.
			if obj := node.ChildByFieldName("object"); obj != nil {
				if obj.Kind() == "identifier" {
					refs = append(refs, astkit.ValueUse{Name: nodeText(obj, f.source), Context: astkit.UseAccess, Span: lineSpan(obj)})
				} else {
					walk(obj)
				}
			}
			if idx := node.ChildByFieldName("index"); idx != nil {
				walk(idx)
			}
			return
		}

		for i := uint(0); i < node.NamedChildCount(); i++ {
			walk(node.NamedChild(i))
		}
	}

	walk(body)
	return calls, refs
}
