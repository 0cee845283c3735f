package fsa

import (
	"sort"
	"strconv"
	"strings"
)

// Minimize performs Hopcroft-style partition refinement (spec.md §4.6).
// initialKey seeds the initial partition: two states are only ever
// considered equivalent if they share (IsFinal, initialKey(state)) — the
// anno layer passes a string encoding of each state's annotation set here,
// so refinement never merges states whose semantic roles differ. Passing a
// constant initialKey recovers textbook language-only minimization.
//
// It returns the minimized automaton and, for every old state index, the
// index of its representative in the new automaton — the anno layer uses
// this to union assoc[] per equivalence class.
func Minimize(f *Fsa, initialKey func(state int) string) (*Fsa, []int) {
	n := f.N()
	if n == 0 {
		return f.Clone(), nil
	}

	class := make([]int, n)
	{
		seen := make(map[string]int)
		for s := 0; s < n; s++ {
			k := strconv.FormatBool(f.IsFinal(s)) + "\x00" + initialKey(s)
			id, ok := seen[k]
			if !ok {
				id = len(seen)
				seen[k] = id
			}
			class[s] = id
		}
	}

	bounds := map[int]bool{}
	for u := 0; u < n; u++ {
		for _, e := range f.Adj[u] {
			bounds[e.Lo] = true
			bounds[e.Hi] = true
		}
	}
	points := make([]int, 0, len(bounds))
	for b := range bounds {
		points = append(points, b)
	}
	sort.Ints(points)

	destClass := func(u int, lo int) int {
		for _, e := range f.Adj[u] {
			if e.Lo <= lo && lo < e.Hi {
				return class[e.Dst]
			}
		}
		return -1
	}

	for {
		sig := make([]string, n)
		for u := 0; u < n; u++ {
			var b strings.Builder
			b.WriteString(strconv.Itoa(class[u]))
			for i := 0; i+1 < len(points); i++ {
				b.WriteByte('|')
				b.WriteString(strconv.Itoa(destClass(u, points[i])))
			}
			sig[u] = b.String()
		}
		next := make([]int, n)
		seen := make(map[string]int)
		for u := 0; u < n; u++ {
			id, ok := seen[sig[u]]
			if !ok {
				id = len(seen)
				seen[sig[u]] = id
			}
			next[u] = id
		}
		changed := false
		for u := 0; u < n; u++ {
			if next[u] != class[u] {
				changed = true
				break
			}
		}
		class = next
		if !changed {
			break
		}
	}

	numClasses := 0
	for _, c := range class {
		if c+1 > numClasses {
			numClasses = c + 1
		}
	}

	g := &Fsa{finals: make(map[int]bool)}
	for i := 0; i < numClasses; i++ {
		g.AddState()
	}
	g.Start = class[f.Start]
	for s := 0; s < n; s++ {
		if f.IsFinal(s) {
			g.SetFinal(class[s])
		}
	}
	// Rebuild edges from the elementary intervals rather than copying
	// original edges verbatim: states merged into the same class may have
	// split the same interval at different boundaries, so reconstructing
	// from `points` is what keeps each class's outgoing edges disjoint.
	repOf := make([]int, numClasses)
	seenRep := make([]bool, numClasses)
	for s := 0; s < n; s++ {
		if !seenRep[class[s]] {
			seenRep[class[s]] = true
			repOf[class[s]] = s
		}
	}
	for c := 0; c < numClasses; c++ {
		rep := repOf[c]
		for i := 0; i+1 < len(points); i++ {
			lo := points[i]
			dc := destClass(rep, lo)
			if dc < 0 {
				continue
			}
			g.AddEdge(c, lo, points[i+1], dc)
		}
	}
	mergeAdjacentEdges(g)
	return g, class
}
