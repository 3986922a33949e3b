package tsast

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// baseTypeNames extracts the named type(s) a type annotation node refers
// to, stripping generics down to their outer wrapper name per spec
// §4.4's "generic-wrapper outer-type-only" rule (Array<Foo> yields
// "Array", not "Foo" — Array is itself in the builtin skip-list, so a
// generic collection produces no USES_TYPE edge at all unless the
// wrapper itself is a project type).
func baseTypeNames(node *tree_sitter.Node, source []byte) []string {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "type_identifier", "identifier", "predefined_type":
		return []string{nodeText(node, source)}
	case "generic_type":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			return baseTypeNames(nameNode, source)
		}
	case "array_type":
		return baseTypeNames(node.NamedChild(0), source)
	case "union_type", "intersection_type":
		var out []string
		for i := uint(0); i < node.NamedChildCount(); i++ {
			out = append(out, baseTypeNames(node.NamedChild(i), source)...)
		}
		return out
	case "parenthesized_type":
		return baseTypeNames(node.NamedChild(0), source)
	case "type_annotation":
		if node.NamedChildCount() > 0 {
			return baseTypeNames(node.NamedChild(0), source)
		}
	}
	return nil
}

// typeAnnotationText renders a type_annotation node's type (without the
// leading ':') as plain text, used for Param.TypeText/ReturnType/etc.
func typeAnnotationText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	if node.Kind() == "type_annotation" && node.NamedChildCount() > 0 {
		return nodeText(node.NamedChild(0), source)
	}
	return nodeText(node, source)
}
