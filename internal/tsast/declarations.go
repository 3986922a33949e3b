package tsast

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
)

func hasModifier(node *tree_sitter.Node, keyword string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil && child.Kind() == keyword {
			return true
		}
	}
	return false
}

func visibilityOf(node *tree_sitter.Node) astkit.Visibility {
	switch {
	case hasModifier(node, "private"):
		return astkit.VisibilityPrivate
	case hasModifier(node, "protected"):
		return astkit.VisibilityProtected
	default:
		return astkit.VisibilityPublic
	}
}

func (f *sourceFile) collectParams(paramsNode *tree_sitter.Node) []astkit.Param {
	if paramsNode == nil {
		return nil
	}
	var out []astkit.Param
	for i := uint(0); i < paramsNode.NamedChildCount(); i++ {
		p := paramsNode.NamedChild(i)
		var nameNode, typeNode *tree_sitter.Node
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
			nameNode = p.ChildByFieldName("pattern")
			typeNode = p.ChildByFieldName("type")
		default:
			nameNode = p
		}
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, f.source)
		typeText := typeAnnotationText(typeNode, f.source)
		param := astkit.Param{Name: name, TypeText: typeText}
		out = append(out, param)
		if typeNode != nil {
			for _, tn := range baseTypeNames(typeNode, f.source) {
				f.addTypeRef(f.currentOwnerKey, tn, astkit.TypeRefParameter)
			}
		}
	}
	return out
}

// currentOwnerKey is set by the caller before collectParams so
// type refs discovered while walking a declaration get attributed to it.
// Declarations are extracted sequentially by a single non-reentrant walk,
// so a plain field is sufficient (no goroutine ever parses concurrently
// within one sourceFile).
func (f *sourceFile) addTypeRef(ownerKey, typeName string, ctx astkit.TypeRefContext) {
	if ownerKey == "" || typeName == "" {
		return
	}
	f.typeRefs[ownerKey] = append(f.typeRefs[ownerKey], astkit.TypeRef{Name: typeName, Context: ctx})
}

func (f *sourceFile) handleFunction(node *tree_sitter.Node, exported bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, f.source)
	f.currentOwnerKey = name

	params := f.collectParams(node.ChildByFieldName("parameters"))
	returnType := typeAnnotationText(node.ChildByFieldName("return_type"), f.source)
	for _, tn := range baseTypeNames(node.ChildByFieldName("return_type"), f.source) {
		f.addTypeRef(name, tn, astkit.TypeRefReturn)
	}

	calls, refs := f.walkBody(node.ChildByFieldName("body"))

	f.functions = append(f.functions, astkit.FunctionDecl{
		Name:       name,
		Exported:   exported,
		Async:      hasModifier(node, "async"),
		Params:     params,
		ReturnType: returnType,
		Span:       lineSpan(node),
		BodyCalls:  calls,
		BodyRefs:   refs,
	})
	f.currentOwnerKey = ""
}

func (f *sourceFile) handleClass(node *tree_sitter.Node, exported bool) {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nodeText(nameNode, f.source)
	}

	var extends string
	var implements []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if heritage := node.NamedChild(i); heritage.Kind() == "class_heritage" {
			extends, implements = f.classHeritage(heritage)
		}
	}

	cls := astkit.ClassDecl{
		Name:       name,
		Exported:   exported,
		Extends:    extends,
		Implements: implements,
		Span:       lineSpan(node),
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.NamedChildCount(); i++ {
			member := body.NamedChild(i)
			switch member.Kind() {
			case "method_definition":
				cls.Methods = append(cls.Methods, f.classMethod(name, member))
			case "public_field_definition":
				cls.Properties = append(cls.Properties, f.classField(name, member))
			}
		}
	}

	f.classes = append(f.classes, cls)
}

func (f *sourceFile) classHeritage(heritage *tree_sitter.Node) (string, []string) {
	var extends string
	var implements []string
	for i := uint(0); i < heritage.NamedChildCount(); i++ {
		clause := heritage.NamedChild(i)
		switch clause.Kind() {
		case "extends_clause":
			if v := clause.ChildByFieldName("value"); v != nil {
				extends = baseIdentifier(v, f.source)
			}
		case "implements_clause":
			for j := uint(0); j < clause.NamedChildCount(); j++ {
				implements = append(implements, nodeText(clause.NamedChild(j), f.source))
			}
		}
	}
	return extends, implements
}

// baseIdentifier reduces an expression like "mixin(Base)" or
// "ns.Base" to its leading identifier, the same "leftmost segment"
// convention calleeParts uses for call expressions.
func baseIdentifier(node *tree_sitter.Node, source []byte) string {
	switch node.Kind() {
	case "identifier", "type_identifier":
		return nodeText(node, source)
	case "member_expression":
		if obj := node.ChildByFieldName("object"); obj != nil {
			return baseIdentifier(obj, source)
		}
	case "call_expression":
		if fn := node.ChildByFieldName("function"); fn != nil {
			return baseIdentifier(fn, source)
		}
	}
	return nodeText(node, source)
}

func (f *sourceFile) classMethod(owner string, node *tree_sitter.Node) astkit.MethodDecl {
	nameNode := node.ChildByFieldName("name")
	name := nodeText(nameNode, f.source)
	ownerKey := owner + "." + name
	f.currentOwnerKey = ownerKey

	params := f.collectParams(node.ChildByFieldName("parameters"))
	returnType := typeAnnotationText(node.ChildByFieldName("return_type"), f.source)
	for _, tn := range baseTypeNames(node.ChildByFieldName("return_type"), f.source) {
		f.addTypeRef(ownerKey, tn, astkit.TypeRefReturn)
	}
	calls, refs := f.walkBody(node.ChildByFieldName("body"))

	f.currentOwnerKey = ""
	return astkit.MethodDecl{
		Name:       name,
		Visibility: visibilityOf(node),
		Static:     hasModifier(node, "static"),
		Async:      hasModifier(node, "async"),
		Params:     params,
		ReturnType: returnType,
		Span:       lineSpan(node),
		BodyCalls:  calls,
		BodyRefs:   refs,
	}
}

func (f *sourceFile) classField(owner string, node *tree_sitter.Node) astkit.PropertyDecl {
	nameNode := node.ChildByFieldName("name")
	name := nodeText(nameNode, f.source)
	typeNode := node.ChildByFieldName("type")
	for _, tn := range baseTypeNames(typeNode, f.source) {
		f.addTypeRef(owner+"."+name, tn, astkit.TypeRefProperty)
	}

	return astkit.PropertyDecl{
		Name:       name,
		Visibility: visibilityOf(node),
		TypeText:   typeAnnotationText(typeNode, f.source),
		Optional:   hasModifier(node, "?"),
		Readonly:   hasModifier(node, "readonly"),
		Span:       lineSpan(node),
	}
}

func (f *sourceFile) handleInterface(node *tree_sitter.Node, exported bool) {
	nameNode := node.ChildByFieldName("name")
	name := nodeText(nameNode, f.source)

	var extends []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() != "extends_type_clause" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			extends = append(extends, nodeText(child.NamedChild(j), f.source))
		}
	}

	iface := astkit.InterfaceDecl{Name: name, Exported: exported, Extends: extends, Span: lineSpan(node)}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.NamedChildCount(); i++ {
			member := body.NamedChild(i)
			switch member.Kind() {
			case "method_signature":
				iface.Methods = append(iface.Methods, f.interfaceMethod(name, member))
			case "property_signature":
				iface.Properties = append(iface.Properties, f.interfaceProperty(name, member))
			}
		}
	}

	f.interfaces = append(f.interfaces, iface)
}

func (f *sourceFile) interfaceMethod(owner string, node *tree_sitter.Node) astkit.MethodDecl {
	nameNode := node.ChildByFieldName("name")
	name := nodeText(nameNode, f.source)
	ownerKey := owner + "." + name

	params := f.collectParams(node.ChildByFieldName("parameters"))
	returnType := typeAnnotationText(node.ChildByFieldName("return_type"), f.source)
	for _, tn := range baseTypeNames(node.ChildByFieldName("return_type"), f.source) {
		f.addTypeRef(ownerKey, tn, astkit.TypeRefReturn)
	}

	return astkit.MethodDecl{Name: name, Visibility: astkit.VisibilityPublic, Params: params, ReturnType: returnType, Span: lineSpan(node)}
}

func (f *sourceFile) interfaceProperty(owner string, node *tree_sitter.Node) astkit.PropertyDecl {
	nameNode := node.ChildByFieldName("name")
	name := nodeText(nameNode, f.source)
	typeNode := node.ChildByFieldName("type")
	for _, tn := range baseTypeNames(typeNode, f.source) {
		f.addTypeRef(owner+"."+name, tn, astkit.TypeRefProperty)
	}
	return astkit.PropertyDecl{
		Name:       name,
		Visibility: astkit.VisibilityPublic,
		TypeText:   typeAnnotationText(typeNode, f.source),
		Optional:   hasModifier(node, "?"),
		Span:       lineSpan(node),
	}
}

func (f *sourceFile) handleTypeAlias(node *tree_sitter.Node, exported bool) {
	nameNode := node.ChildByFieldName("name")
	valueNode := node.ChildByFieldName("value")
	f.typeAliases = append(f.typeAliases, astkit.TypeAliasDecl{
		Name:        nodeText(nameNode, f.source),
		Exported:    exported,
		AliasedType: nodeText(valueNode, f.source),
		Span:        lineSpan(node),
	})
}

func (f *sourceFile) handleVariableStatement(node *tree_sitter.Node, exported bool) {
	isConst := hasModifier(node, "const")
	for i := uint(0); i < node.NamedChildCount(); i++ {
		decl := node.NamedChild(i)
		if decl.Kind() != "variable_declarator" {
			continue
		}
		f.handleVariableDeclarator(decl, exported, isConst)
	}
}

func (f *sourceFile) handleVariableDeclarator(decl *tree_sitter.Node, exported, isConst bool) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil || nameNode.Kind() != "identifier" {
		return // destructuring patterns are not modeled as named declarations
	}
	name := nodeText(nameNode, f.source)
	valueNode := decl.ChildByFieldName("value")

	if valueNode != nil && (valueNode.Kind() == "arrow_function" || valueNode.Kind() == "function_expression") {
		f.handleArrowAsFunction(name, exported, valueNode)
		return
	}

	typeNode := decl.ChildByFieldName("type")
	for _, tn := range baseTypeNames(typeNode, f.source) {
		f.addTypeRef(name, tn, astkit.TypeRefVariable)
	}

	v := astkit.VariableDecl{
		Name:     name,
		Exported: exported,
		IsConst:  isConst,
		TypeText: typeAnnotationText(typeNode, f.source),
		Span:     lineSpan(decl),
	}
	if valueNode != nil && valueNode.Kind() == "identifier" {
		v.InitializerUse = &astkit.ValueUse{Name: nodeText(valueNode, f.source), Context: astkit.UseAssignment, Span: lineSpan(valueNode)}
	}
	f.variables = append(f.variables, v)
}

func (f *sourceFile) handleArrowAsFunction(name string, exported bool, fn *tree_sitter.Node) {
	f.currentOwnerKey = name
	params := f.collectParams(fn.ChildByFieldName("parameters"))
	returnType := typeAnnotationText(fn.ChildByFieldName("return_type"), f.source)
	for _, tn := range baseTypeNames(fn.ChildByFieldName("return_type"), f.source) {
		f.addTypeRef(name, tn, astkit.TypeRefReturn)
	}
	calls, refs := f.walkBody(fn.ChildByFieldName("body"))
	f.currentOwnerKey = ""

	f.functions = append(f.functions, astkit.FunctionDecl{
		Name:       name,
		Exported:   exported,
		Async:      hasModifier(fn, "async"),
		Params:     params,
		ReturnType: returnType,
		Span:       lineSpan(fn),
		BodyCalls:  calls,
		BodyRefs:   refs,
	})
}
