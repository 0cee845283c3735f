package fsa

import "sort"

// Product builds the synchronized product of two DFAs over the union of
// their boundary points, calling finalFn(aFinal, bFinal) to decide
// acceptance at each product state. Intersect uses AND, Difference uses
// "a AND NOT b". It returns the product automaton and a map from (state of
// a, state of b) pairs to the new state index, so the anno layer can union
// assoc[a-state] with assoc[b-state] per spec.md §4.2's "annotations at
// product state (s1,s2) are the union of assoc1[s1] and assoc2[s2]".
//
// Both inputs must already be deterministic and total is not required:
// a missing edge for a symbol is treated as "no transition", and any
// product state reachable only through a missing edge on one side simply
// isn't created — accessible/co-accessible trimming cleans up afterward.
func Product(a, b *Fsa, finalFn func(aFinal, bFinal bool) bool) (*Fsa, map[[2]int]int) {
	g := &Fsa{finals: make(map[int]bool)}
	pairIndex := make(map[[2]int]int)

	get := func(pa, pb int) (int, bool) {
		k := [2]int{pa, pb}
		if id, ok := pairIndex[k]; ok {
			return id, false
		}
		id := g.AddState()
		pairIndex[k] = id
		if finalFn(a.IsFinal(pa), b.IsFinal(pb)) {
			g.SetFinal(id)
		}
		return id, true
	}

	startID, _ := get(a.Start, b.Start)
	g.Start = startID
	todo := [][2]int{{a.Start, b.Start}}

	for len(todo) > 0 {
		pa, pb := todo[len(todo)-1][0], todo[len(todo)-1][1]
		todo = todo[:len(todo)-1]
		u := pairIndex[[2]int{pa, pb}]

		bounds := map[int]bool{}
		for _, e := range a.Adj[pa] {
			bounds[e.Lo], bounds[e.Hi] = true, true
		}
		for _, e := range b.Adj[pb] {
			bounds[e.Lo], bounds[e.Hi] = true, true
		}
		points := make([]int, 0, len(bounds))
		for p := range bounds {
			points = append(points, p)
		}
		sort.Ints(points)

		for i := 0; i+1 < len(points); i++ {
			lo, hi := points[i], points[i+1]
			na, oka := edgeTo(a, pa, lo, hi)
			nb, okb := edgeTo(b, pb, lo, hi)
			if !oka || !okb {
				continue
			}
			vid, isNew := get(na, nb)
			if isNew {
				todo = append(todo, [2]int{na, nb})
			}
			g.AddEdge(u, lo, hi, vid)
		}
	}

	mergeAdjacentEdges(g)
	return g, pairIndex
}

func edgeTo(f *Fsa, u, lo, hi int) (int, bool) {
	for _, e := range f.Adj[u] {
		if e.Lo <= lo && hi <= e.Hi {
			return e.Dst, true
		}
	}
	return 0, false
}

// Totalize adds a dead sink state and routes every uncovered byte value
// (not special/epsilon symbols) from every state to it, making f total
// over the non-special alphabet. Complement requires this first.
func Totalize(f *Fsa) *Fsa {
	g := f.Clone()
	sink := g.AddState()
	for u := 0; u < g.N(); u++ {
		bounds := map[int]bool{0: true, MaxByte: true}
		for _, e := range g.Adj[u] {
			if e.Lo < MaxByte {
				bounds[e.Lo] = true
				if e.Hi <= MaxByte {
					bounds[e.Hi] = true
				} else {
					bounds[MaxByte] = true
				}
			}
		}
		points := make([]int, 0, len(bounds))
		for p := range bounds {
			points = append(points, p)
		}
		sort.Ints(points)
		for i := 0; i+1 < len(points); i++ {
			lo, hi := points[i], points[i+1]
			if _, ok := edgeTo(g, u, lo, hi); !ok {
				g.AddEdge(u, lo, hi, sink)
			}
		}
	}
	mergeAdjacentEdges(g)
	return g
}

// Complement flips finality on a deterministic, totalized automaton
// (spec.md §4.2: "determinize x, total it against the non-special
// alphabet, flip finality"). Callers are expected to have already
// determinized f; Complement itself only totalizes and flips.
func Complement(f *Fsa) *Fsa {
	g := Totalize(f)
	for s := 0; s < g.N(); s++ {
		if g.IsFinal(s) {
			g.UnsetFinal(s)
		} else {
			g.SetFinal(s)
		}
	}
	return g
}
