// Package action models the two kinds of semantic action a rule's
// subexpressions can carry (spec.md §3): an Inline action holding literal
// target-language code, and a Ref action resolved through the owning
// module's action table. The scheduler treats both uniformly via Code.
package action

import "fmt"

// Registry resolves a Ref action's (module, identifier) pair to code text.
// internal/module's Module/Registry types implement this; action does not
// import module to avoid a cycle (module owns the Expr trees that carry
// Actions, so the dependency has to run the other way).
type Registry interface {
	Lookup(module, ident string) (code string, ok bool)
}

// Action is an Inline(code) or a Ref(module, ident), distinguished by
// Inline rather than a second implementing type — spec.md §9 asks for "a
// two-case variant" in place of the original's runtime type queries.
type Action struct {
	inline bool
	code   string
	module string
	ident  string
}

// NewInline returns an Inline action carrying literal code text.
func NewInline(code string) Action { return Action{inline: true, code: code} }

// NewRef returns a Ref action naming a module and an identifier to resolve
// later through a Registry.
func NewRef(module, ident string) Action { return Action{module: module, ident: ident} }

// Code resolves the action to its code text (spec.md §3's action_code).
func (a Action) Code(reg Registry) (string, error) {
	if a.inline {
		return a.code, nil
	}
	code, ok := reg.Lookup(a.module, a.ident)
	if !ok {
		return "", fmt.Errorf("undefined action %s.%s", a.module, a.ident)
	}
	return code, nil
}

// String renders the action for debug dumps.
func (a Action) String() string {
	if a.inline {
		return "{" + a.code + "}"
	}
	return a.module + "." + a.ident
}
