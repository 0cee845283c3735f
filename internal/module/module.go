// Package module models the loader's output (spec.md §6): modules made of
// rule definitions and verbatim blocks, an action table per module, and a
// flat rule namespace Collapse/Embed resolve against. Source parsing itself
// is out of scope (spec.md §1) — callers construct Module/DefineStmt values
// directly, the way a hand-built AST would in a parser's tests.
package module

import (
	"github.com/lovebair2022/yanshi/internal/action"
	"github.com/lovebair2022/yanshi/internal/expr"
)

// DefineStmt owns one rule's expression tree: its name, export/intact
// flags, and the tree itself (spec.md §3).
type DefineStmt struct {
	Module *Module
	Lhs    string
	Tree   *expr.Tree
	Export bool
	Intact bool
}

// Rhs returns the rule's right-hand-side root, the node the compiler walks.
func (d *DefineStmt) Rhs() *expr.Expr { return d.Tree.Root }

// Module is a named collection of rule definitions, a verbatim-block list,
// and an action table resolving Ref actions whose module name matches this
// module's (spec.md §3, §6). The verbatim blocks are held here only; the
// emitters in internal/emit do not output them.
type Module struct {
	Name     string
	Actions  map[string]string
	Defines  map[string]*DefineStmt
	Verbatim []string
}

// New returns an empty module ready for Define/SetAction calls.
func New(name string) *Module {
	return &Module{
		Name:    name,
		Actions: make(map[string]string),
		Defines: make(map[string]*DefineStmt),
	}
}

// Define registers a rule, wiring the DefineStmt back to its owning
// module so Rhs-side Collapse/Embed resolution can walk back to Actions.
func (m *Module) Define(lhs string, tree *expr.Tree, export, intact bool) *DefineStmt {
	d := &DefineStmt{Module: m, Lhs: lhs, Tree: tree, Export: export, Intact: intact}
	m.Defines[lhs] = d
	return d
}

// SetAction adds an entry to the module's identifier -> code-text table.
func (m *Module) SetAction(ident, code string) { m.Actions[ident] = code }

// Lookup implements action.Registry: a Ref(module, ident) resolves against
// the named module's action table, found through the owning Registry.
func (m *Module) Lookup(mod, ident string) (string, bool) {
	if mod != "" && mod != m.Name {
		return "", false
	}
	code, ok := m.Actions[ident]
	return code, ok
}

// Registry aggregates every module loaded together, giving Collapse/Embed
// a flat rule namespace to resolve against (spec.md §4.3: "the collapse
// expander... dependency-closes across modules") and giving Ref actions a
// way to resolve against any module's action table, not just the rule's
// own. This mirrors the original's single global symbol table re-cast as
// explicit state per spec.md §9's "thread as an explicit context" note.
type Registry struct {
	Modules []*Module
}

// NewRegistry builds a Registry over the given modules.
func NewRegistry(mods ...*Module) *Registry {
	return &Registry{Modules: append([]*Module(nil), mods...)}
}

// Rule looks up a rule by name across every module in the registry. A rule
// name is unique across the whole registry; the first module that defines
// it wins, mirroring a single flat namespace.
func (r *Registry) Rule(name string) (*DefineStmt, bool) {
	for _, m := range r.Modules {
		if d, ok := m.Defines[name]; ok {
			return d, true
		}
	}
	return nil, false
}

// Lookup implements action.Registry across every module in the registry,
// trying each module in turn until one resolves the (module, ident) pair.
func (r *Registry) Lookup(mod, ident string) (string, bool) {
	for _, m := range r.Modules {
		if code, ok := m.Lookup(mod, ident); ok {
			return code, true
		}
	}
	return "", false
}

var _ action.Registry = (*Module)(nil)
var _ action.Registry = (*Registry)(nil)
