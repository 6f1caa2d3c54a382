// Package classify decides contract membership for class declarations.
//
// A class is a handler when walking its base-type chain upward reaches one
// of the two CustomMediator contracts. Matching compares resolved
// fully-qualified identities, never substrings of rendered names, so an
// unrelated type that merely shares the contract's name cannot match and a
// contract reached through a using directive always does.
package classify

import (
	"github.com/unitytools/medigen/internal/model"
	"github.com/unitytools/medigen/internal/resolve"
)

// Contract identities from the CustomMediator library. These are external
// to the scanned source set; a base reference matches when one of its
// candidate spellings equals the contract's fully-qualified name.
const (
	queryContractFQN   = "CustomMediator.QueryHandler"
	commandContractFQN = "CustomMediator.CommandHandler"

	queryArity   = 2
	commandArity = 1
)

// walkState tracks the chain walk. Transitions are forward-only: Scanning
// until a contract match (Matched) or the chain runs out (Exhausted).
type walkState int

const (
	scanning walkState = iota
	matched
	exhausted
)

// Classify walks the base-type chain of class, starting at its immediate
// base list and stepping to each successive resolvable base class. The
// first chain position whose generic definition is a contract wins; the
// bound type arguments are read at that position. A match with the wrong
// arity, an unresolvable declared symbol, or an exhausted chain all degrade
// to NotAHandler.
func Classify(env *resolve.Environment, class *model.Class) model.Classification {
	current, ok := env.Symbol(class)
	if !ok {
		return model.Classification{Kind: model.NotAHandler}
	}

	seen := map[string]struct{}{current.FullName(): {}}
	result := model.Classification{Kind: model.NotAHandler}

	for state := scanning; state == scanning; {
		var next *model.Class

		for _, base := range current.Bases {
			if kind, ok := matchContract(env, base, current); ok {
				state = matched
				result = bind(kind, base)
				break
			}
			if next == nil {
				if decl, ok := env.Resolve(base.Name, current); ok {
					next = decl
				}
			}
		}
		if state == matched {
			break
		}

		if next == nil {
			state = exhausted
			break
		}
		if _, cyclic := seen[next.FullName()]; cyclic {
			state = exhausted
			break
		}
		seen[next.FullName()] = struct{}{}
		current = next
	}

	return result
}

// matchContract tests one base reference against the contract identities.
// A reference that also resolves to a class in the source set is not a
// contract — source declarations shadow library names.
func matchContract(env *resolve.Environment, base model.TypeRef, from *model.Class) (model.Kind, bool) {
	if _, shadowed := env.Resolve(base.Name, from); shadowed {
		return model.NotAHandler, false
	}
	for _, fqn := range env.Candidates(base.Name, from) {
		switch fqn {
		case queryContractFQN:
			return model.QueryHandler, true
		case commandContractFQN:
			return model.CommandHandler, true
		}
	}
	return model.NotAHandler, false
}

// bind constructs the classification variant, enforcing the contract's
// arity. A contract match with the wrong number of bound type arguments is
// discarded as NotAHandler — the walk does not resume.
func bind(kind model.Kind, base model.TypeRef) model.Classification {
	switch kind {
	case model.QueryHandler:
		if len(base.Args) != queryArity {
			return model.Classification{Kind: model.NotAHandler}
		}
		return model.Classification{
			Kind:       model.QueryHandler,
			QueryType:  base.Args[0],
			ResultType: base.Args[1],
		}
	case model.CommandHandler:
		if len(base.Args) != commandArity {
			return model.Classification{Kind: model.NotAHandler}
		}
		return model.Classification{
			Kind:        model.CommandHandler,
			CommandType: base.Args[0],
		}
	}
	return model.Classification{Kind: model.NotAHandler}
}
