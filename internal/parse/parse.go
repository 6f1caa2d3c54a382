// Package parse ingests C# source files into SourceUnits using tree-sitter.
//
// tree-sitter parses are error-tolerant: malformed input yields a
// best-effort tree, so a broken file still contributes whatever class
// declarations parse cleanly. Ingestion is purely syntactic — no name
// resolution happens here.
package parse

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/unitytools/medigen/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NewParser creates a fresh C# parser. Parsers are not thread-safe; each
// goroutine must use its own.
func NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())
	return p
}

// Unit parses one file's source text into a SourceUnit. path is used only
// for SourceUnit.Path and should be the repo-relative path.
func Unit(parser *sitter.Parser, source []byte, path string) (*model.SourceUnit, error) {
	unit := &model.SourceUnit{Path: path}
	if len(source) == 0 {
		return unit, nil
	}

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	walk(tree.RootNode(), source, unit, nil, nil)
	return unit, nil
}

// walk traverses declarations in document order, tracking the enclosing
// namespace parts and enclosing class names. Document order is the
// declaration order that fixes registration order downstream.
func walk(node *sitter.Node, source []byte, unit *model.SourceUnit, ns, outer []string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "using_directive":
			collectUsing(child, source, unit)

		case "namespace_declaration":
			inner := ns
			if name := namespaceName(child, source); name != "" {
				inner = append(append([]string{}, ns...), strings.Split(name, ".")...)
			}
			if body := child.ChildByFieldName("body"); body != nil {
				walk(body, source, unit, inner, outer)
			}

		case "file_scoped_namespace_declaration":
			// A file-scoped namespace covers the rest of the file. Depending
			// on grammar version the members are either nested children or
			// following siblings; cover both.
			if name := namespaceName(child, source); name != "" {
				ns = append(append([]string{}, ns...), strings.Split(name, ".")...)
			}
			walk(child, source, unit, ns, outer)

		case "class_declaration":
			collectClass(child, source, unit, ns, outer)

		case "ERROR":
			// Recovery node around malformed input; declarations that parsed
			// cleanly may sit inside it.
			walk(child, source, unit, ns, outer)

		default:
			// Other containers (blocks of modifiers, attribute lists) never
			// hold class declarations we care about.
		}
	}
}

func collectClass(node *sitter.Node, source []byte, unit *model.SourceUnit, ns, outer []string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	class := &model.Class{
		Name:      nodeText(nameNode, source),
		Namespace: strings.Join(ns, "."),
		Outer:     append([]string{}, outer...),
		Unit:      unit,
		Line:      int(nameNode.StartPoint().Row) + 1,
	}

	if bl := baseList(node); bl != nil {
		for i := 0; i < int(bl.NamedChildCount()); i++ {
			if ref, ok := typeRef(bl.NamedChild(i), source); ok {
				class.Bases = append(class.Bases, ref)
			}
		}
	}

	unit.Classes = append(unit.Classes, class)

	if body := node.ChildByFieldName("body"); body != nil {
		walk(body, source, unit, ns, append(append([]string{}, outer...), class.Name))
	}
}

func baseList(class *sitter.Node) *sitter.Node {
	if bl := class.ChildByFieldName("bases"); bl != nil {
		return bl
	}
	for i := 0; i < int(class.ChildCount()); i++ {
		if c := class.Child(i); c.Type() == "base_list" {
			return c
		}
	}
	return nil
}

// collectUsing records a using directive: the literal trimmed line for the
// generated import set, and the imported namespace (plain directives only —
// aliases and `using static` do not import a namespace) for name resolution.
func collectUsing(node *sitter.Node, source []byte, unit *model.SourceUnit) {
	unit.Usings = append(unit.Usings, strings.TrimSpace(nodeText(node, source)))

	var nameNode *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "name_equals":
			return // alias directive
		case "static", "static_keyword":
			return
		case "identifier", "qualified_name", "alias_qualified_name":
			if nameNode == nil {
				nameNode = child
			}
		}
	}
	if nameNode != nil {
		unit.Imports = append(unit.Imports, stripSpace(nodeText(nameNode, source)))
	}
}

func namespaceName(node *sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return stripSpace(nodeText(name, source))
	}
	return ""
}

// typeRef extracts a base-list entry as a qualified name plus rendered type
// arguments. Entries that cannot name a class or contract (predefined
// types, nullable types, tuples) are skipped.
func typeRef(node *sitter.Node, source []byte) (model.TypeRef, bool) {
	switch node.Type() {
	case "identifier":
		return model.TypeRef{Name: nodeText(node, source)}, true

	case "generic_name":
		return genericRef(node, source)

	case "qualified_name":
		qualifier := node.ChildByFieldName("qualifier")
		name := node.ChildByFieldName("name")
		if qualifier == nil || name == nil {
			return model.TypeRef{}, false
		}
		sub, ok := typeRef(name, source)
		if !ok {
			return model.TypeRef{}, false
		}
		sub.Name = stripSpace(nodeText(qualifier, source)) + "." + sub.Name
		return sub, true

	case "alias_qualified_name":
		// global::Name — the alias part adds nothing to identity here.
		if name := node.ChildByFieldName("name"); name != nil {
			return typeRef(name, source)
		}
		return model.TypeRef{}, false
	}
	return model.TypeRef{}, false
}

func genericRef(node *sitter.Node, source []byte) (model.TypeRef, bool) {
	var ref model.TypeRef
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			ref.Name = nodeText(child, source)
		case "type_argument_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				ref.Args = append(ref.Args, collapseWhitespace(nodeText(child.NamedChild(j), source)))
			}
		}
	}
	if ref.Name == "" {
		return model.TypeRef{}, false
	}
	return ref, true
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func stripSpace(s string) string {
	return whitespaceRe.ReplaceAllString(s, "")
}
