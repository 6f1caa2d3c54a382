// Package resolve builds the semantic environment for classification.
//
// The Environment indexes every class declaration across all source units
// by canonical fully-qualified name, so that type identity and base-type
// chains can be queried symbolically rather than textually. It is built
// once, after all ingestion completes, and is read-only thereafter.
package resolve

import (
	"strings"

	"github.com/unitytools/medigen/internal/model"
)

// Environment is the read-only semantic model over a full set of source
// units.
type Environment struct {
	decls     map[string]*model.Class
	ambiguous map[string]struct{}
}

// NewEnvironment indexes all class declarations in units. A fully-qualified
// name declared more than once (partial classes, or plain collisions) is
// marked ambiguous: such a name resolves to no symbol.
func NewEnvironment(units []*model.SourceUnit) *Environment {
	env := &Environment{
		decls:     make(map[string]*model.Class),
		ambiguous: make(map[string]struct{}),
	}
	for _, unit := range units {
		for _, class := range unit.Classes {
			fqn := class.FullName()
			if _, dup := env.decls[fqn]; dup {
				env.ambiguous[fqn] = struct{}{}
				continue
			}
			env.decls[fqn] = class
		}
	}
	return env
}

// Symbol maps a class declaration to its unique semantic symbol. It returns
// false when the declared name is ambiguous — resolution failure is local
// to the class, per the degradation policy.
func (e *Environment) Symbol(class *model.Class) (*model.Class, bool) {
	fqn := class.FullName()
	if _, amb := e.ambiguous[fqn]; amb {
		return nil, false
	}
	decl, ok := e.decls[fqn]
	return decl, ok
}

// Candidates returns the fully-qualified spellings a type name written
// inside `from` could resolve to, in C# lookup order: the name as written,
// then qualified by each enclosing namespace innermost-to-outermost, then
// by each using-imported namespace in directive order.
//
// The list is what identity comparison works over: a name matches a
// declaration or a known contract only if one of its candidate spellings
// equals that canonical identity.
func (e *Environment) Candidates(name string, from *model.Class) []string {
	candidates := []string{name}

	if from.Namespace != "" {
		parts := strings.Split(from.Namespace, ".")
		for i := len(parts); i > 0; i-- {
			candidates = append(candidates, strings.Join(parts[:i], ".")+"."+name)
		}
	}
	if from.Unit != nil {
		for _, ns := range from.Unit.Imports {
			candidates = append(candidates, ns+"."+name)
		}
	}
	return candidates
}

// Resolve resolves a type name written inside `from` to a class declared in
// the source set. The first candidate spelling that names a declaration
// wins; a candidate that names an ambiguous declaration fails resolution
// outright rather than falling through to a later candidate.
func (e *Environment) Resolve(name string, from *model.Class) (*model.Class, bool) {
	for _, fqn := range e.Candidates(name, from) {
		if _, amb := e.ambiguous[fqn]; amb {
			return nil, false
		}
		if decl, ok := e.decls[fqn]; ok {
			return decl, true
		}
	}
	return nil, false
}
