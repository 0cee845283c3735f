package anno

import (
	"github.com/lovebair2022/yanshi/internal/expr"
	"github.com/lovebair2022/yanshi/internal/fsa"
)

// Intersect accepts when both l and r accept; the annotation at product
// state (s1, s2) is assoc1[s1] ∪ assoc2[s2] (spec.md §4.2, §8's
// monotonicity invariant). Both sides are determinized first: the product
// construction in package fsa walks deterministic transition functions.
func Intersect(l, r *AnnoFsa, e *expr.Expr) *AnnoFsa {
	return product(l, r, e, func(a, b bool) bool { return a && b }, true, true, false)
}

// Difference accepts when l accepts and r does not; annotations come from
// l only (spec.md §4.2). r must be totalized first: Product drops a
// transition whenever either side lacks an edge for it, which is correct
// for Intersect (no edge means "can't be in the intersection") but wrong
// here, where r having no edge means r has fallen into an implicit dead
// state and the path belongs in l ∧ ¬r, not out of it.
func Difference(l, r *AnnoFsa, e *expr.Expr) *AnnoFsa {
	return product(l, r, e, func(a, b bool) bool { return a && !b }, true, false, true)
}

func product(l, r *AnnoFsa, e *expr.Expr, finalFn func(a, b bool) bool, useL, useR, totalizeR bool) *AnnoFsa {
	dl := determinizeCopy(l)
	dr := determinizeCopy(r)
	rf := dr.Fsa
	if totalizeR {
		rf = fsa.Totalize(rf)
	}
	prod, pairs := fsa.Product(dl.Fsa, rf, finalFn)
	result := newAnno(prod)
	for pair, id := range pairs {
		var m map[*expr.Expr]Tag
		if useL {
			m = mergeTagMaps(m, dl.Assoc[pair[0]])
		}
		if useR {
			m = mergeTagMaps(m, dr.Assoc[pair[1]])
		}
		result.Assoc[id] = m
	}
	annotateProducer(result, e)
	return result
}

// Complement determinizes a, totalizes it against the non-special
// alphabet, and flips finality (spec.md §4.2). Annotations are preserved
// on every surviving state; the Complement node itself is then annotated
// onto every state (including the fresh dead-sink state Totalize adds) via
// the usual annotateProducer step.
func Complement(a *AnnoFsa, e *expr.Expr) *AnnoFsa {
	d := determinizeCopy(a)
	comp := fsa.Complement(d.Fsa)
	result := newAnno(comp)
	for i, m := range d.Assoc {
		result.Assoc[i] = cloneTagMap(m)
	}
	annotateProducer(result, e)
	return result
}

func determinizeCopy(a *AnnoFsa) *AnnoFsa {
	c := &AnnoFsa{Fsa: a.Fsa, Assoc: a.Assoc, Deterministic: a.Deterministic}
	c.Determinize()
	return c
}
