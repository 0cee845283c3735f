package fsa

import "sort"

// Determinize performs classical subset construction over non-epsilon
// ranges with epsilon-closure (spec.md §4.5). It returns the DFA and, for
// each new state, the sorted set of NFA states in its subset — the anno
// layer unions assoc[] over that subset to preserve annotations.
//
// Special-band edges (placeholders the collapse expander has not yet
// spliced) are treated as ordinary single-symbol edges; they only ever
// appear on NFA states that the expander visits before determinization, so
// by the time Determinize runs no special edges should remain. We still
// split on them correctly rather than panicking, so callers can
// determinize partially-expanded automata for debugging.
func Determinize(f *Fsa) (*Fsa, [][]int) {
	d := &Fsa{finals: make(map[int]bool)}
	type key = string
	index := make(map[key]int)
	var subsets [][]int

	keyOf := func(set []int) key {
		buf := make([]byte, f.N())
		for _, s := range set {
			buf[s] = 1
		}
		return string(buf)
	}

	get := func(set []int) (int, bool) {
		set = f.EpsilonClosure(set)
		k := keyOf(set)
		if id, ok := index[k]; ok {
			return id, false
		}
		id := d.AddState()
		index[k] = id
		subsets = append(subsets, set)
		for _, s := range set {
			if f.IsFinal(s) {
				d.SetFinal(id)
				break
			}
		}
		return id, true
	}

	startID, _ := get([]int{f.Start})
	d.Start = startID
	todo := []int{startID}

	for len(todo) > 0 {
		u := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		set := subsets[u]

		// Boundary-point partition: collect every range endpoint from
		// non-epsilon edges leaving this subset, then split the alphabet
		// into elementary intervals between consecutive boundaries so
		// each interval maps to exactly one destination subset.
		bounds := map[int]bool{}
		for _, s := range set {
			for _, e := range f.Adj[s] {
				if e.isEpsilon() {
					continue
				}
				bounds[e.Lo] = true
				bounds[e.Hi] = true
			}
		}
		if len(bounds) == 0 {
			continue
		}
		points := make([]int, 0, len(bounds))
		for b := range bounds {
			points = append(points, b)
		}
		sort.Ints(points)

		for i := 0; i+1 < len(points); i++ {
			lo, hi := points[i], points[i+1]
			var dst []int
			for _, s := range set {
				for _, e := range f.Adj[s] {
					if e.isEpsilon() {
						continue
					}
					if e.Lo <= lo && hi <= e.Hi {
						dst = append(dst, e.Dst)
					}
				}
			}
			if len(dst) == 0 {
				continue
			}
			vid, isNew := get(dst)
			if isNew {
				todo = append(todo, vid)
			}
			d.AddEdge(u, lo, hi, vid)
		}
	}

	mergeAdjacentEdges(d)
	return d, subsets
}

// mergeAdjacentEdges coalesces consecutive same-destination ranges left
// behind by boundary-point splitting, so the invariant "edges leaving a
// state cover disjoint ranges" reads as a minimal partition.
func mergeAdjacentEdges(f *Fsa) {
	for u, edges := range f.Adj {
		if len(edges) == 0 {
			continue
		}
		sortEdges(edges)
		merged := edges[:1]
		for _, e := range edges[1:] {
			last := &merged[len(merged)-1]
			if last.Dst == e.Dst && last.Hi == e.Lo {
				last.Hi = e.Hi
				continue
			}
			merged = append(merged, e)
		}
		f.Adj[u] = merged
	}
}
