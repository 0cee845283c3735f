// Package schedule implements the action scheduler (spec.md §4.8): for
// every transition of a minimized DFA it derives the ordered sequence of
// semantic actions to run, from the lowest-common-ancestor relationships
// among the annotations on the transition's source and destination
// states. It never resolves an action.Action to code text — that and the
// surrounding formatting are the emitter's job; the scheduler's contract
// is the sequence and the grouping.
package schedule

import (
	"fmt"
	"sort"

	"github.com/lovebair2022/yanshi/internal/action"
	"github.com/lovebair2022/yanshi/internal/anno"
	"github.com/lovebair2022/yanshi/internal/expr"
)

// Range is a half-open byte range, stripped of the destination state
// already implied by the Group it belongs to.
type Range struct {
	Lo, Hi int
}

// Blocks holds the four action lists spec.md §4.8's table names, each
// already in emission order: across Exprs by the merge-join's Expr*
// order, and within one Expr's list in source order.
type Blocks struct {
	Leaving, Entering, Transiting, Finishing []action.Action
}

// Group is one destination state reached from some source state, plus
// every byte range that leads there and the one action-block pair that
// applies regardless of which range was taken (spec.md §4.8: "transitions
// are grouped by destination v so that multiple input ranges sharing v
// share one action-block text").
type Group struct {
	Dst    int
	Ranges []Range
	Blocks Blocks
}

// State is one DFA state's outgoing groups, in the order their first edge
// appeared in the automaton's adjacency list.
type State struct {
	ID     int
	Groups []Group
}

// Table is the scheduler's output contract to the emitter (spec.md §4.8):
// start state, sorted finals, and every state's grouped transitions.
type Table struct {
	Start  int
	Finals []int
	States []State
}

// tagged is one entry of within(u): an expression node and the tag it
// carries at that specific state.
type tagged struct {
	e   *expr.Expr
	tag anno.Tag
}

// Schedule computes the full transition table for a's underlying DFA.
// a must already be determinized and minimized; Schedule does not mutate
// it.
func Schedule(a *anno.AnnoFsa) *Table {
	n := a.Fsa.N()
	withinAll := make([][]tagged, n)
	for u := 0; u < n; u++ {
		withinAll[u] = within(a, u)
	}

	states := make([]State, n)
	for u := 0; u < n; u++ {
		states[u] = scheduleState(a, u, withinAll)
	}
	return &Table{Start: a.Fsa.Start, Finals: a.Fsa.Finals(), States: states}
}

func scheduleState(a *anno.AnnoFsa, u int, withinAll [][]tagged) State {
	order := make([]int, 0, 4)
	groups := make(map[int]*Group)
	for _, e := range a.Fsa.Adj[u] {
		g, ok := groups[e.Dst]
		if !ok {
			g = &Group{Dst: e.Dst, Blocks: blocksFor(withinAll[u], withinAll[e.Dst])}
			groups[e.Dst] = g
			order = append(order, e.Dst)
		}
		g.Ranges = append(g.Ranges, Range{Lo: e.Lo, Hi: e.Hi})
	}
	st := State{ID: u, Groups: make([]Group, 0, len(order))}
	for _, dst := range order {
		st.Groups = append(st.Groups, *groups[dst])
	}
	return st
}

// within computes the scope set at state u (spec.md §4.8): assoc[u]
// sorted by Expr.Pre, walked left to right, closing the ancestor gap
// between consecutive annotations up to (excluding) their LCA. Ancestor
// nodes pulled in purely to close that gap retain the annotation's own
// tag, not Inner: a final-tagged annotation makes every ancestor up to
// the boundary final too, which finishingActions depends on. The result
// is deduplicated by Expr (tags OR together) and sorted by Expr identity
// so merge-join set operations against another state's within() are valid.
func within(a *anno.AnnoFsa, u int) []tagged {
	type kv struct {
		e   *expr.Expr
		tag anno.Tag
	}
	items := make([]kv, 0, len(a.Assoc[u]))
	for e, t := range a.Assoc[u] {
		items = append(items, kv{e, t})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].e.Pre < items[j].e.Pre })

	scope := make(map[*expr.Expr]anno.Tag)
	var prev *expr.Expr
	for _, it := range items {
		boundary := expr.LCA(prev, it.e)
		cur := it.e
		for cur != nil && cur != boundary {
			scope[cur] |= it.tag
			if len(cur.Anc) == 0 {
				break
			}
			cur = cur.Anc[0]
		}
		prev = it.e
	}

	out := make([]tagged, 0, len(scope))
	for e, t := range scope {
		out = append(out, tagged{e, t})
	}
	sortByIdentity(out)
	return out
}

func sortByIdentity(s []tagged) {
	sort.Slice(s, func(i, j int) bool { return ptrKey(s[i].e) < ptrKey(s[j].e) })
}

func ptrKey(e *expr.Expr) string { return fmt.Sprintf("%p", e) }

// blocksFor derives the four action blocks for one transition from u's and
// v's within() sets (spec.md §4.8's table).
func blocksFor(us, vs []tagged) Blocks {
	return Blocks{
		Leaving:    diffActions(us, vs, func(e *expr.Expr) []action.Action { return e.Leaving }),
		Entering:   diffActions(vs, us, func(e *expr.Expr) []action.Action { return e.Entering }),
		Transiting: intersectActions(us, vs),
		Finishing:  finishingActions(us, vs),
	}
}

// diffActions merge-joins two Expr*-sorted slices and collects pick(e) for
// every e present in a but not in b, in a's order.
func diffActions(a, b []tagged, pick func(*expr.Expr) []action.Action) []action.Action {
	var out []action.Action
	i, j := 0, 0
	for i < len(a) {
		for j < len(b) && ptrKey(b[j].e) < ptrKey(a[i].e) {
			j++
		}
		if j < len(b) && b[j].e == a[i].e {
			i++
			continue
		}
		out = append(out, pick(a[i].e)...)
		i++
	}
	return out
}

// intersectActions merge-joins us and vs and collects Transiting actions
// for every Expr present in both.
func intersectActions(us, vs []tagged) []action.Action {
	var out []action.Action
	i, j := 0, 0
	for i < len(us) && j < len(vs) {
		switch {
		case ptrKey(us[i].e) < ptrKey(vs[j].e):
			i++
		case ptrKey(us[i].e) > ptrKey(vs[j].e):
			j++
		default:
			out = append(out, us[i].e.Transiting...)
			i++
			j++
		}
	}
	return out
}

// finishingActions is intersectActions restricted to elements whose tag in
// vs (the destination's perspective) includes TagFinal (spec.md §4.8).
func finishingActions(us, vs []tagged) []action.Action {
	var out []action.Action
	i, j := 0, 0
	for i < len(us) && j < len(vs) {
		switch {
		case ptrKey(us[i].e) < ptrKey(vs[j].e):
			i++
		case ptrKey(us[i].e) > ptrKey(vs[j].e):
			j++
		default:
			if vs[j].tag&anno.TagFinal != 0 {
				out = append(out, us[i].e.Finishing...)
			}
			i++
			j++
		}
	}
	return out
}
