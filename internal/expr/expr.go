// Package expr defines the expression-tree node (spec.md §3) and the
// preprocessor that assigns DFS order, depth, and binary-lifted ancestor
// tables for O(log d) lowest-common-ancestor queries (spec.md §4.1).
//
// Nodes are individually heap-allocated (*Expr) rather than indices into a
// growable slice: pointer identity is load-bearing, since AnnoFsa's
// per-state annotation sets are keyed on it (spec.md §3, "assoc[s] is a
// set of (Expr*, ExprTag) pairs"), and AnnoFsa states may accumulate
// annotations from nodes across different rules' trees once collapse
// expansion cross-links them. Every node still records its own Index, the
// position it was allocated at in its owning Tree — that is the "arena"
// bookkeeping spec.md §9 asks for: it makes pre/post/depth dumps
// trivially serializable without resurrecting raw pointer arithmetic.
package expr

import (
	"math/bits"

	"github.com/lovebair2022/yanshi/internal/action"
	"github.com/lovebair2022/yanshi/internal/diag"
	"github.com/lovebair2022/yanshi/internal/fsa"
)

// Op tags the Expr variant.
type Op int

const (
	OpBracket Op = iota
	OpLiteral
	OpDot
	OpEpsilon
	OpConcat
	OpUnion
	OpIntersect
	OpDifference
	OpComplement
	OpStar
	OpPlus
	OpQuestion
	OpRepeat
	OpCollapse
	OpEmbed
)

func (op Op) String() string {
	switch op {
	case OpBracket:
		return "Bracket"
	case OpLiteral:
		return "Literal"
	case OpDot:
		return "Dot"
	case OpEpsilon:
		return "Epsilon"
	case OpConcat:
		return "Concat"
	case OpUnion:
		return "Union"
	case OpIntersect:
		return "Intersect"
	case OpDifference:
		return "Difference"
	case OpComplement:
		return "Complement"
	case OpStar:
		return "Star"
	case OpPlus:
		return "Plus"
	case OpQuestion:
		return "Question"
	case OpRepeat:
		return "Repeat"
	case OpCollapse:
		return "Collapse"
	case OpEmbed:
		return "Embed"
	default:
		return "?"
	}
}

// Expr is a tagged variant with one case per construct in spec.md §3.
type Expr struct {
	Op  Op
	Loc diag.Span

	L, R *Expr // kids; Complement/Star/Plus/Question/Repeat use L only

	Charset []fsa.Edge // Bracket: byte ranges, Lo/Hi only, Dst unused
	Literal []byte     // Literal: the byte sequence
	Rule    string     // Collapse/Embed: referenced rule name
	Lo, Hi  int        // Repeat: bounds; Hi == -1 means unbounded

	Entering, Leaving, Transiting, Finishing []action.Action

	Index      int // position in the owning Tree's arena, for debug dumps
	Pre, Post  int
	Depth      int
	Anc        []*Expr // Anc[0] is parent or nil; Anc[k] = Anc[k-1].Anc[k-1]
}

// Tree owns every Expr allocated for one rule's right-hand side. A rule
// that collapses into another does not merge trees: the collapse expander
// only links AnnoFsa states across trees, never reparents nodes, so LCA
// must be able to report "no common ancestor" for nodes from different
// trees (spec.md §4.1).
type Tree struct {
	Nodes []*Expr
	Root  *Expr
}

// New allocates a node in t, recording its arena index.
func (t *Tree) New(op Op, loc diag.Span) *Expr {
	e := &Expr{Op: op, Loc: loc, Index: len(t.Nodes)}
	t.Nodes = append(t.Nodes, e)
	return e
}

// Preprocess walks t's tree in DFS order from t.Root, assigning Pre on
// entry, Post on exit, Depth as path length, and the binary-lifted
// ancestor table (spec.md §4.1). It also validates Repeat bounds, failing
// fatally per spec.md §7 ("malformed repeat bounds... fatal at
// preprocessing").
func Preprocess(t *Tree) error {
	tick := 0
	var walk func(n *Expr, parent *Expr, depth int) error
	walk = func(n *Expr, parent *Expr, depth int) error {
		if n == nil {
			return nil
		}
		if n.Op == OpRepeat {
			if n.Lo < 0 || (n.Hi >= 0 && n.Lo > n.Hi) {
				return diag.Fatalf(diag.ErrMalformedRepeat, n.Loc, "repeat bounds {%d,%d}", n.Lo, n.Hi)
			}
		}
		n.Pre = tick
		tick++
		n.Depth = depth
		n.Anc = make([]*Expr, 0, bits.Len(uint(depth))+1)
		n.Anc = append(n.Anc, parent)
		for k := 1; 1<<k <= depth; k++ {
			n.Anc = append(n.Anc, n.Anc[k-1].Anc[k-1])
		}
		if err := walk(n.L, n, depth+1); err != nil {
			return err
		}
		if err := walk(n.R, n, depth+1); err != nil {
			return err
		}
		n.Post = tick
		return nil
	}
	return walk(t.Root, nil, 0)
}

// Ancestor returns the k-th ancestor of n (k steps up, climbed one set bit
// of k at a time through the lifting table), or nil if it climbs past the
// root.
func (n *Expr) Ancestor(k int) *Expr {
	cur := n
	for i := 0; i < 64 && cur != nil; i++ {
		if k&(1<<i) != 0 {
			if i >= len(cur.Anc) {
				return nil
			}
			cur = cur.Anc[i]
		}
	}
	return cur
}

// climb returns the ancestor of n at the given depth, nil if depth < 0.
func climb(n *Expr, depth int) *Expr {
	for n != nil && n.Depth > depth {
		k := bits.Len(uint(n.Depth-depth)) - 1
		if k < 0 || k >= len(n.Anc) {
			if len(n.Anc) == 0 {
				return nil
			}
			n = n.Anc[0]
			continue
		}
		n = n.Anc[k]
	}
	return n
}

// LCA returns the deepest node whose pre/post span contains both u and v,
// or nil if they lie in different trees (spec.md §4.1). It mirrors
// original_source/src/compiler.cc's find_lca: equalize depth by climbing
// the deeper node via binary lifting, then climb both in lockstep.
func LCA(u, v *Expr) *Expr {
	if u == nil || v == nil {
		return nil
	}
	if u.Depth > v.Depth {
		u, v = v, u
	}
	if u.Depth < v.Depth {
		v = climb(v, u.Depth)
		if v == nil {
			return nil
		}
	}
	if u == v {
		return u
	}
	for k := bits.Len(uint(u.Depth)); k >= 0; k-- {
		if k >= len(u.Anc) || k >= len(v.Anc) {
			continue
		}
		if u.Anc[k] != v.Anc[k] {
			u, v = u.Anc[k], v.Anc[k]
		}
	}
	if len(u.Anc) == 0 {
		return nil // distinct roots: different trees
	}
	return u.Anc[0]
}

// IsAncestor reports whether a is an ancestor of (or equal to) d, using
// the pre/post containment test from spec.md §3.
func IsAncestor(a, d *Expr) bool {
	return a.Pre <= d.Pre && d.Post <= a.Post
}
