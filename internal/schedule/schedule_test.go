package schedule

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lovebair2022/yanshi/internal/action"
	"github.com/lovebair2022/yanshi/internal/anno"
	"github.com/lovebair2022/yanshi/internal/diag"
	"github.com/lovebair2022/yanshi/internal/expr"
)

func lit(s string) *expr.Expr {
	return &expr.Expr{Op: expr.OpLiteral, Literal: []byte(s), Loc: diag.Span{}}
}

func preprocessSingle(e *expr.Expr) {
	t := &expr.Tree{Root: e}
	_ = expr.Preprocess(t)
}

func TestScheduleLiteralHasNoActions(t *testing.T) {
	e := lit("ab")
	preprocessSingle(e)
	a := anno.Literal(e)

	tbl := Schedule(a)
	require.Equal(t, 0, tbl.Start)
	require.Equal(t, []int{2}, tbl.Finals)
	require.Len(t, tbl.States[0].Groups, 1)
	g := tbl.States[0].Groups[0]
	require.Equal(t, 1, g.Dst)
	require.Empty(t, g.Blocks.Leaving)
	require.Empty(t, g.Blocks.Entering)
	require.Empty(t, g.Blocks.Transiting)
	require.Empty(t, g.Blocks.Finishing)
}

func TestScheduleStarSelfLoop(t *testing.T) {
	inner := lit("a")
	star := &expr.Expr{Op: expr.OpStar, L: inner}
	star.Transiting = []action.Action{action.NewInline("tick")}
	preprocessSingle(star)

	a := anno.Literal(inner)
	s := anno.Star(a, star)
	s.Determinize()
	s.Minimize()
	require.Equal(t, 1, s.Fsa.N())

	tbl := Schedule(s)
	require.Len(t, tbl.States[0].Groups, 1)
	g := tbl.States[0].Groups[0]
	require.Equal(t, 0, g.Dst) // self-loop
	require.Empty(t, g.Blocks.Leaving)
	require.Empty(t, g.Blocks.Entering)
	require.Equal(t, []action.Action{action.NewInline("tick")}, g.Blocks.Transiting)
}

func TestScheduleEnteringAcrossConcat(t *testing.T) {
	// "x" Concat B, B carries an Entering action, so the transition into
	// B's start state shows it in Entering.
	x := lit("x")
	b := lit("z")
	b.Entering = []action.Action{action.NewInline("enterB")}
	root := &expr.Expr{Op: expr.OpConcat, L: x, R: b}
	preprocessSingle(root)

	ax := anno.Literal(x)
	ab := anno.Literal(b)
	full := anno.Concat(ax, ab, root)
	full.Determinize()
	full.Minimize()

	tbl := Schedule(full)
	require.Equal(t, tbl.Start, tbl.Start)

	var sawEnter bool
	for _, st := range tbl.States {
		for _, g := range st.Groups {
			for _, act := range g.Blocks.Entering {
				if act == action.NewInline("enterB") {
					sawEnter = true
				}
			}
		}
	}
	require.True(t, sawEnter)
}
