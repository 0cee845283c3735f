package anno

import (
	"github.com/lovebair2022/yanshi/internal/expr"
	"github.com/lovebair2022/yanshi/internal/fsa"
)

// Determinize performs subset construction, unioning assoc across each
// subset's member states (spec.md §4.5).
func (a *AnnoFsa) Determinize() {
	d, subsets := fsa.Determinize(a.Fsa)
	a.Assoc = unionAssoc(a.Assoc, subsets)
	a.Fsa = d
	a.Deterministic = true
}

// Minimize runs Hopcroft-style partition refinement seeded by
// (finality, annotation set), so states with different semantic roles are
// never merged (spec.md §4.6).
func (a *AnnoFsa) Minimize() {
	initialKey := func(s int) string { return assocKey(a.Assoc[s]) }
	m, class := fsa.Minimize(a.Fsa, initialKey)
	a.remap(m, class)
}

func (a *AnnoFsa) remap(g *fsa.Fsa, mapping []int) {
	merged := make([]map[*expr.Expr]Tag, g.N())
	for old, nw := range mapping {
		if nw < 0 {
			continue
		}
		merged[nw] = mergeTagMaps(merged[nw], a.Assoc[old])
	}
	a.Fsa = g
	a.Assoc = merged
}

// Accessible trims states unreachable from start (spec.md §4.7).
func (a *AnnoFsa) Accessible() {
	g, mapping := fsa.Accessible(a.Fsa)
	a.remap(g, mapping)
}

// CoAccessible trims states that cannot reach a final (spec.md §4.7).
// If the result has zero finals the language is empty; the caller is
// responsible for turning that into the warning spec.md §7 specifies.
func (a *AnnoFsa) CoAccessible() {
	g, mapping := fsa.CoAccessible(a.Fsa)
	a.remap(g, mapping)
}

// SubstringGrammar adds epsilon edges from start to every state and makes
// every state final, so the rule accepts every substring of its original
// language (spec.md §4.4). Callers skip this for rules marked intact.
func (a *AnnoFsa) SubstringGrammar() {
	n := a.Fsa.N()
	for s := 0; s < n; s++ {
		if s != a.Fsa.Start {
			a.Fsa.AddEpsilon(a.Fsa.Start, s)
		}
		a.Fsa.SetFinal(s)
	}
}
