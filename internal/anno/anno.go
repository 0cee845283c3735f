// Package anno implements AnnoFsa (spec.md §3, §4.2): an Fsa plus, per
// state, a set of (Expr, Tag) annotations recording which subexpressions
// claim that state and in what role. Every structural FSA operation below
// lifts its plain fsa.Fsa counterpart so annotations survive Concat,
// Union, Star, Intersect, Determinize, Minimize, and trimming.
package anno

import (
	"fmt"
	"sort"

	"github.com/lovebair2022/yanshi/internal/expr"
	"github.com/lovebair2022/yanshi/internal/fsa"
)

// Tag is a bitfield over a state's role for one expression: a state may
// play multiple roles for the same expression at once (spec.md §3).
type Tag uint8

const (
	TagStart Tag = 1 << iota
	TagInner
	TagFinal
)

func (t Tag) String() string {
	s := ""
	if t&TagStart != 0 {
		s += "S"
	}
	if t&TagInner != 0 {
		s += "I"
	}
	if t&TagFinal != 0 {
		s += "F"
	}
	if s == "" {
		return "-"
	}
	return s
}

// AnnoFsa is an Fsa plus assoc: per-state sets of (Expr, Tag), duplicates
// collapsing because assoc[s] is a Go map keyed on *expr.Expr.
type AnnoFsa struct {
	Fsa           *fsa.Fsa
	Assoc         []map[*expr.Expr]Tag
	Deterministic bool
}

func (a *AnnoFsa) newState() int {
	s := a.Fsa.AddState()
	a.Assoc = append(a.Assoc, nil)
	return s
}

func (a *AnnoFsa) addAssoc(s int, e *expr.Expr, tag Tag) {
	if a.Assoc[s] == nil {
		a.Assoc[s] = make(map[*expr.Expr]Tag)
	}
	a.Assoc[s][e] |= tag
}

// annotateProducer tags every state of a with e, using Start/Final/Inner
// per the state's role in the *current* automaton — the generic step every
// compiler constructor performs after building its structure (spec.md
// §4.2: "every constructor additionally annotates all resulting states
// with the producing expression itself").
func annotateProducer(a *AnnoFsa, e *expr.Expr) {
	final := make(map[int]bool, len(a.Fsa.Finals()))
	for _, f := range a.Fsa.Finals() {
		final[f] = true
	}
	for s := 0; s < a.Fsa.N(); s++ {
		var tag Tag
		if s == a.Fsa.Start {
			tag |= TagStart
		}
		if final[s] {
			tag |= TagFinal
		}
		if tag == 0 {
			tag = TagInner
		}
		a.addAssoc(s, e, tag)
	}
}

func newAnno(f *fsa.Fsa) *AnnoFsa {
	return &AnnoFsa{Fsa: f, Assoc: make([]map[*expr.Expr]Tag, f.N())}
}

// Literal builds the chain of len(e.Literal)+1 states for a byte-string
// literal (spec.md §4.2, scenario 1: "ab" -> 3 states).
func Literal(e *expr.Expr) *AnnoFsa {
	f := fsa.New()
	prev := f.Start
	for _, b := range e.Literal {
		next := f.AddState()
		f.AddEdge(prev, int(b), int(b)+1, next)
		prev = next
	}
	f.SetFinal(prev)
	a := newAnno(f)
	annotateProducer(a, e)
	return a
}

// Bracket builds the two-state automaton for a character class.
func Bracket(e *expr.Expr) *AnnoFsa {
	f := fsa.New()
	end := f.AddState()
	for _, r := range e.Charset {
		f.AddEdge(f.Start, r.Lo, r.Hi, end)
	}
	f.SetFinal(end)
	a := newAnno(f)
	annotateProducer(a, e)
	return a
}

// Dot builds the two-state automaton matching any non-special byte.
func Dot(e *expr.Expr) *AnnoFsa {
	f := fsa.New()
	end := f.AddState()
	f.AddEdge(f.Start, 0, fsa.MaxByte, end)
	f.SetFinal(end)
	a := newAnno(f)
	annotateProducer(a, e)
	return a
}

// EpsilonFsa builds the one-state automaton for the empty string,
// tagged {start, final} on its single state (spec.md §4.2).
func EpsilonFsa(e *expr.Expr) *AnnoFsa {
	f := fsa.New()
	f.SetFinal(f.Start)
	a := newAnno(f)
	annotateProducer(a, e)
	return a
}

// Skeleton builds the two-state placeholder for Collapse/Embed: a single
// edge on a fresh special symbol, later replaced by the collapse expander
// (spec.md §4.2, §4.3).
func Skeleton(e *expr.Expr, special int) *AnnoFsa {
	f := fsa.New()
	end := f.AddState()
	f.AddEdge(f.Start, special, special+1, end)
	f.SetFinal(end)
	a := newAnno(f)
	annotateProducer(a, e)
	return a
}

// merge appends rhs's graph onto a and returns rhs's state offset in a.
// rhs is consumed: callers must not use it again afterward, mirroring the
// original's `FsaAnno rhs = move(st.top())`.
func (a *AnnoFsa) merge(rhs *AnnoFsa) int {
	offset := a.Fsa.Merge(rhs.Fsa)
	a.Assoc = append(a.Assoc, rhs.Assoc...)
	return offset
}

// Concat builds l then r, joining every final of l to the start of r by
// epsilon (spec.md §4.2).
func Concat(l, r *AnnoFsa, e *expr.Expr) *AnnoFsa {
	offset := l.merge(r)
	rFinals := r.Fsa.Finals()
	for _, f := range l.Fsa.Finals() {
		l.Fsa.AddEpsilon(f, offset+r.Fsa.Start)
		l.Fsa.UnsetFinal(f)
	}
	for _, f := range rFinals {
		l.Fsa.SetFinal(offset + f)
	}
	annotateProducer(l, e)
	return l
}

// Union introduces a fresh start with epsilon edges to both sub-starts and
// unions the finals (spec.md §4.2).
func Union(l, r *AnnoFsa, e *expr.Expr) *AnnoFsa {
	offset := l.merge(r)
	oldStart := l.Fsa.Start
	rFinals := r.Fsa.Finals()
	ns := l.newState()
	l.Fsa.AddEpsilon(ns, oldStart)
	l.Fsa.AddEpsilon(ns, offset+r.Fsa.Start)
	l.Fsa.Start = ns
	for _, f := range rFinals {
		l.Fsa.SetFinal(offset + f)
	}
	annotateProducer(l, e)
	return l
}

// Star is the standard Thompson zero-or-more construction.
func Star(a *AnnoFsa, e *expr.Expr) *AnnoFsa {
	oldStart := a.Fsa.Start
	oldFinals := a.Fsa.Finals()
	ns := a.newState()
	ne := a.newState()
	a.Fsa.AddEpsilon(ns, oldStart)
	a.Fsa.AddEpsilon(ns, ne)
	for _, f := range oldFinals {
		a.Fsa.AddEpsilon(f, oldStart)
		a.Fsa.AddEpsilon(f, ne)
		a.Fsa.UnsetFinal(f)
	}
	a.Fsa.Start = ns
	a.Fsa.SetFinal(ne)
	annotateProducer(a, e)
	return a
}

// Plus is the standard Thompson one-or-more construction.
func Plus(a *AnnoFsa, e *expr.Expr) *AnnoFsa {
	oldStart := a.Fsa.Start
	oldFinals := a.Fsa.Finals()
	ns := a.newState()
	ne := a.newState()
	a.Fsa.AddEpsilon(ns, oldStart)
	for _, f := range oldFinals {
		a.Fsa.AddEpsilon(f, oldStart)
		a.Fsa.AddEpsilon(f, ne)
		a.Fsa.UnsetFinal(f)
	}
	a.Fsa.Start = ns
	a.Fsa.SetFinal(ne)
	annotateProducer(a, e)
	return a
}

// Question is Union(x, Epsilon) specialized: a fresh, already-final start
// epsilons into x.
func Question(a *AnnoFsa, e *expr.Expr) *AnnoFsa {
	oldStart := a.Fsa.Start
	ns := a.newState()
	a.Fsa.AddEpsilon(ns, oldStart)
	a.Fsa.Start = ns
	a.Fsa.SetFinal(ns)
	annotateProducer(a, e)
	return a
}

func assocKey(m map[*expr.Expr]Tag) string {
	type kv struct {
		e *expr.Expr
		t Tag
	}
	items := make([]kv, 0, len(m))
	for e, t := range m {
		items = append(items, kv{e, t})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].e.Pre != items[j].e.Pre {
			return items[i].e.Pre < items[j].e.Pre
		}
		return fmt.Sprintf("%p", items[i].e) < fmt.Sprintf("%p", items[j].e)
	})
	out := make([]byte, 0, len(items)*8)
	for _, it := range items {
		out = append(out, []byte(fmt.Sprintf("%p:%d;", it.e, it.t))...)
	}
	return string(out)
}

func mergeTagMaps(a, b map[*expr.Expr]Tag) map[*expr.Expr]Tag {
	out := make(map[*expr.Expr]Tag, len(a)+len(b))
	for e, t := range a {
		out[e] |= t
	}
	for e, t := range b {
		out[e] |= t
	}
	return out
}

func cloneTagMap(a map[*expr.Expr]Tag) map[*expr.Expr]Tag {
	return mergeTagMaps(a, nil)
}

func unionAssoc(old []map[*expr.Expr]Tag, subsets [][]int) []map[*expr.Expr]Tag {
	out := make([]map[*expr.Expr]Tag, len(subsets))
	for i, set := range subsets {
		m := make(map[*expr.Expr]Tag)
		for _, s := range set {
			for e, t := range old[s] {
				m[e] |= t
			}
		}
		out[i] = m
	}
	return out
}
