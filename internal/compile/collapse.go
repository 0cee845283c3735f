package compile

import (
	"github.com/lovebair2022/yanshi/internal/anno"
	"github.com/lovebair2022/yanshi/internal/compilectx"
	"github.com/lovebair2022/yanshi/internal/diag"
	"github.com/lovebair2022/yanshi/internal/expr"
	"github.com/lovebair2022/yanshi/internal/module"
)

// splicePoint records where one referenced DefineStmt's copy was spliced
// into expanded, so a second occurrence referencing the same rule reuses
// it instead of merging another copy (mirrors the original's
// stmt2offset, compiler.cc:337).
type splicePoint struct {
	start  int
	finals []int
}

// Expand inlines every Collapse/Embed reference reachable from rootDef's
// compiled automaton via epsilon stitching, iterating to a fixed point
// (spec.md §4.3). Embed references are spliced identically to Collapse;
// the only difference between the two is that the action scheduler later
// treats an embedded automaton's interior as opaque, which the scheduler
// package, not this one, is responsible for.
//
// Each referenced DefineStmt is merged into expanded at most once per
// Expand call (via spliced, below): a second occurrence of the same rule
// — including, for a recursive or mutually-recursive rule, the occurrence
// the first splice's own copy carries — epsilon-links straight to the
// already-allocated copy's start/finals rather than merging a fresh one.
// Without this, a recursive collapse would keep re-cloning a copy of
// itself forever; with it, the loop reaches a fixed point and the
// epsilon-cycle check below can actually see the cycle it is there to
// catch.
func Expand(ctx *compilectx.Context, comp *Compiler, rootDef *module.DefineStmt) (*anno.AnnoFsa, error) {
	raw, err := comp.Compile(rootDef)
	if err != nil {
		return nil, err
	}
	expanded := cloneAnno(raw)
	spliced := make(map[*module.DefineStmt]splicePoint)

	for {
		s, target, occ, found := findPendingSplice(ctx, expanded)
		if !found {
			break
		}
		refDef, ok := ctx.Registry.Rule(occ.Rule)
		if !ok {
			return nil, diag.Fatalf(diag.ErrUndefinedRule, occ.Loc, "rule %q", occ.Rule)
		}

		point, ok := spliced[refDef]
		if !ok {
			refRaw, err := comp.Compile(refDef)
			if err != nil {
				return nil, err
			}
			copied := cloneAnno(refRaw)
			offset := mergeInto(expanded, copied)
			finals := copied.Fsa.Finals()
			for i, f := range finals {
				finals[i] = offset + f
			}
			point = splicePoint{start: offset + copied.Fsa.Start, finals: finals}
			spliced[refDef] = point
		}

		expanded.Fsa.AddEpsilon(s, point.start)
		for _, f := range point.finals {
			expanded.Fsa.AddEpsilon(f, target)
		}
		special := ctx.SpecialOf[occ]
		expanded.Fsa.RemoveEdge(s, special, special+1, target)
	}

	if expanded.Fsa.HasEpsilonCycle() {
		return nil, diag.Fatalf(diag.ErrEpsilonCycle, rootDef.Rhs().Loc, "rule %q", rootDef.Lhs)
	}
	return expanded, nil
}

// findPendingSplice scans a for a state s carrying a Collapse/Embed
// annotation whose special edge has not yet been spliced out, returning
// that state, the edge's destination (the "sink" the spliced rule's
// finals feed back into — spec.md §4.3 step 2c, "s's own follow state"),
// and the annotating Expr node.
func findPendingSplice(ctx *compilectx.Context, a *anno.AnnoFsa) (s, target int, occ *expr.Expr, found bool) {
	for u := 0; u < a.Fsa.N(); u++ {
		for e := range a.Assoc[u] {
			if e.Op != expr.OpCollapse && e.Op != expr.OpEmbed {
				continue
			}
			special, ok := ctx.SpecialOf[e]
			if !ok {
				continue
			}
			for _, edge := range a.Fsa.Adj[u] {
				if edge.Lo == special {
					return u, edge.Dst, e, true
				}
			}
		}
	}
	return 0, 0, nil, false
}

// mergeInto appends src's graph and assoc onto dst and returns src's state
// offset in dst, the same contract as AnnoFsa's internal merge but usable
// from outside package anno.
func mergeInto(dst, src *anno.AnnoFsa) int {
	offset := dst.Fsa.Merge(src.Fsa)
	dst.Assoc = append(dst.Assoc, src.Assoc...)
	return offset
}

// cloneAnno deep-copies a so splicing one occurrence of a collapsed rule
// never mutates the memoized template used by other occurrences.
func cloneAnno(a *anno.AnnoFsa) *anno.AnnoFsa {
	assoc := make([]map[*expr.Expr]anno.Tag, len(a.Assoc))
	for i, m := range a.Assoc {
		if m == nil {
			continue
		}
		cm := make(map[*expr.Expr]anno.Tag, len(m))
		for k, v := range m {
			cm[k] = v
		}
		assoc[i] = cm
	}
	return &anno.AnnoFsa{Fsa: a.Fsa.Clone(), Assoc: assoc, Deterministic: a.Deterministic}
}
