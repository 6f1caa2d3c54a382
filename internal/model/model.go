// Package model defines core data structures for medigen.
package model

import "strings"

// SourceUnit is one parsed source file: its repo-relative path, the using
// directives found in it (trimmed, in document order), and every class
// declaration it contains (in declaration order). Immutable once produced
// by ingestion.
type SourceUnit struct {
	Path    string
	Usings  []string // literal directive lines, e.g. "using CustomMediator;"
	Imports []string // namespaces imported by plain using directives, in order
	Classes []*Class
}

// Class is a single class declaration.
type Class struct {
	Name      string   // simple name, without type parameters
	Namespace string   // dotted enclosing namespace, "" at global scope
	Outer     []string // enclosing class names, outermost first, for nested classes
	Bases     []TypeRef
	Unit      *SourceUnit
	Line      int // 1-based line of the declaration
}

// FullName returns the canonical fully-qualified name of the class,
// including enclosing namespaces and enclosing classes.
func (c *Class) FullName() string {
	parts := make([]string, 0, len(c.Outer)+2)
	if c.Namespace != "" {
		parts = append(parts, c.Namespace)
	}
	parts = append(parts, c.Outer...)
	parts = append(parts, c.Name)
	return strings.Join(parts, ".")
}

// TypeRef is one entry in a class's base list: the qualified name as written
// (without type arguments) and the rendered text of each type argument.
type TypeRef struct {
	Name string
	Args []string
}

// Kind tags a classification result.
type Kind int

const (
	NotAHandler Kind = iota
	QueryHandler
	CommandHandler
)

func (k Kind) String() string {
	switch k {
	case QueryHandler:
		return "query"
	case CommandHandler:
		return "command"
	default:
		return "none"
	}
}

// Classification is the result of classifying one class. A QueryHandler
// carries exactly two bound type arguments (query, result); a CommandHandler
// carries exactly one (command). The arity is enforced before construction.
type Classification struct {
	Kind        Kind
	QueryType   string
	ResultType  string
	CommandType string
}

// Registration is one line item to emit: the handler's simple name, its
// namespace-qualified name, its classification, and the unit that owns it
// (the unit's usings feed the generated import set).
type Registration struct {
	HandlerName string
	HandlerFull string
	Classification
	Unit *SourceUnit
}
