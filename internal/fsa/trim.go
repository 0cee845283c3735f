package fsa

// Accessible removes states unreachable from Start (spec.md §4.7). It
// returns the trimmed automaton and an old-state -> new-state map, -1 for
// removed states; Start is always retained.
func Accessible(f *Fsa) (*Fsa, []int) {
	n := f.N()
	reached := make([]bool, n)
	queue := []int{f.Start}
	reached[f.Start] = true
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, e := range f.Adj[u] {
			if !reached[e.Dst] {
				reached[e.Dst] = true
				queue = append(queue, e.Dst)
			}
		}
	}
	return rebuild(f, reached)
}

// CoAccessible removes states that cannot reach any final (spec.md §4.7).
// If no final is reachable from Start the result is the start state alone,
// with no finals; the caller (the collapse/export pipeline) treats that as
// the empty-language warning, not a failure.
func CoAccessible(f *Fsa) (*Fsa, []int) {
	n := f.N()
	rev := make([][]int, n)
	for u := 0; u < n; u++ {
		for _, e := range f.Adj[u] {
			rev[e.Dst] = append(rev[e.Dst], u)
		}
	}
	canReach := make([]bool, n)
	queue := f.Finals()
	for _, s := range queue {
		canReach[s] = true
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, p := range rev[u] {
			if !canReach[p] {
				canReach[p] = true
				queue = append(queue, p)
			}
		}
	}
	return rebuild(f, canReach)
}

func rebuild(f *Fsa, keep []bool) (*Fsa, []int) {
	mapping := make([]int, f.N())
	g := &Fsa{finals: make(map[int]bool)}
	for i := range mapping {
		mapping[i] = -1
	}
	for s, ok := range keep {
		if ok {
			mapping[s] = g.AddState()
		}
	}
	if mapping[f.Start] < 0 {
		// Accessible always keeps Start; CoAccessible drops it when no
		// final is reachable. Re-add it so an all-dead automaton still has
		// a valid start state.
		mapping[f.Start] = g.AddState()
		keep[f.Start] = true
	}
	g.Start = mapping[f.Start]
	for s, ok := range keep {
		if !ok {
			continue
		}
		if f.IsFinal(s) {
			g.SetFinal(mapping[s])
		}
		for _, e := range f.Adj[s] {
			if mapping[e.Dst] >= 0 {
				g.AddEdge(mapping[s], e.Lo, e.Hi, mapping[e.Dst])
			}
		}
	}
	return g, mapping
}
