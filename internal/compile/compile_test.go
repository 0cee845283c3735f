package compile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lovebair2022/yanshi/internal/anno"
	"github.com/lovebair2022/yanshi/internal/compilectx"
	"github.com/lovebair2022/yanshi/internal/diag"
	"github.com/lovebair2022/yanshi/internal/expr"
	"github.com/lovebair2022/yanshi/internal/module"
	"github.com/pingcap/errors"
)

func literalExpr(t *expr.Tree, s string) *expr.Expr {
	e := t.New(expr.OpLiteral, diag.Span{})
	e.Literal = []byte(s)
	return e
}

// acceptsBytes interprets a's underlying Fsa directly, the same minimal
// run loop the fsa and anno test files use.
func acceptsBytes(a *anno.AnnoFsa, s string) bool {
	u := a.Fsa.Start
	for i := 0; i < len(s); i++ {
		next := -1
		for _, e := range a.Fsa.Adj[u] {
			if e.Lo <= int(s[i]) && int(s[i]) < e.Hi {
				next = e.Dst
				break
			}
		}
		if next < 0 {
			return false
		}
		u = next
	}
	return a.Fsa.IsFinal(u)
}

func buildModule(name, lhs, body string) (*module.Module, *module.DefineStmt) {
	m := module.New(name)
	tree := &expr.Tree{}
	tree.Root = literalExpr(tree, body)
	d := m.Define(lhs, tree, true, false)
	return m, d
}

func TestCompileLiteralScenario(t *testing.T) {
	m, d := buildModule("m", "A", "ab")
	ctx := compilectx.New(compilectx.Options{}, module.NewRegistry(m), nil)
	comp := New(ctx)

	a, err := comp.Compile(d)
	require.NoError(t, err)
	require.Equal(t, 3, a.Fsa.N())
	require.Equal(t, []int{2}, a.Fsa.Finals())

	again, err := comp.Compile(d)
	require.NoError(t, err)
	require.Same(t, a, again)
}

func TestCollapseExpansionScenario(t *testing.T) {
	// Rule A := "x" Collapse(B) "y"; rule B := "z" (spec.md §8 scenario 4).
	mA := module.New("m")
	treeA := &expr.Tree{}
	x := literalExpr(treeA, "x")
	colB := treeA.New(expr.OpCollapse, diag.Span{})
	colB.Rule = "B"
	y := literalExpr(treeA, "y")
	concatXB := &expr.Expr{Op: expr.OpConcat, L: x, R: colB}
	treeA.Nodes = append(treeA.Nodes, concatXB)
	root := &expr.Expr{Op: expr.OpConcat, L: concatXB, R: y}
	treeA.Nodes = append(treeA.Nodes, root)
	treeA.Root = root
	require.NoError(t, expr.Preprocess(treeA))
	dA := mA.Define("A", treeA, true, false)

	treeB := &expr.Tree{}
	treeB.Root = literalExpr(treeB, "z")
	require.NoError(t, expr.Preprocess(treeB))
	mA.Define("B", treeB, false, false)

	ctx := compilectx.New(compilectx.Options{}, module.NewRegistry(mA), nil)
	comp := New(ctx)

	expanded, err := Export(ctx, comp, dA, nil)
	require.NoError(t, err)
	require.Equal(t, 4, expanded.Fsa.N())
	require.True(t, acceptsBytes(expanded, "xzy"))
	require.False(t, acceptsBytes(expanded, "xy"))
	require.False(t, acceptsBytes(expanded, "xzzy"))
}

func TestUndefinedCollapseReferenceIsFatal(t *testing.T) {
	m := module.New("m")
	tree := &expr.Tree{}
	col := tree.New(expr.OpCollapse, diag.Span{})
	col.Rule = "Missing"
	tree.Root = col
	require.NoError(t, expr.Preprocess(tree))
	d := m.Define("A", tree, true, false)

	ctx := compilectx.New(compilectx.Options{}, module.NewRegistry(m), nil)
	comp := New(ctx)

	_, err := Expand(ctx, comp, d)
	require.Error(t, err)
	require.Equal(t, diag.ErrUndefinedRule, errors.Cause(err))
}

func TestRecursiveCollapseIsEpsilonCycleFatal(t *testing.T) {
	// Rule A := "x" Collapse(A): a directly self-recursive collapse. Expand
	// must terminate (one splice of A's own template, memoized, not one
	// per occurrence) and then report ErrEpsilonCycle rather than loop
	// forever re-cloning A into itself.
	m := module.New("m")
	tree := &expr.Tree{}
	x := literalExpr(tree, "x")
	colA := tree.New(expr.OpCollapse, diag.Span{})
	colA.Rule = "A"
	root := &expr.Expr{Op: expr.OpConcat, L: x, R: colA}
	tree.Nodes = append(tree.Nodes, root)
	tree.Root = root
	require.NoError(t, expr.Preprocess(tree))
	d := m.Define("A", tree, true, false)

	ctx := compilectx.New(compilectx.Options{}, module.NewRegistry(m), nil)
	comp := New(ctx)

	_, err := Expand(ctx, comp, d)
	require.Error(t, err)
	require.Equal(t, diag.ErrEpsilonCycle, errors.Cause(err))
}

func TestMutualRecursiveCollapseIsEpsilonCycleFatal(t *testing.T) {
	// Rule A := Collapse(B); rule B := Collapse(A): mutual left recursion
	// across two rules. Memoization must key on the referenced DefineStmt,
	// not the occurrence node, so this also terminates and is caught.
	m := module.New("m")

	treeA := &expr.Tree{}
	colB := treeA.New(expr.OpCollapse, diag.Span{})
	colB.Rule = "B"
	treeA.Root = colB
	require.NoError(t, expr.Preprocess(treeA))
	dA := m.Define("A", treeA, true, false)

	treeB := &expr.Tree{}
	colA := treeB.New(expr.OpCollapse, diag.Span{})
	colA.Rule = "A"
	treeB.Root = colA
	require.NoError(t, expr.Preprocess(treeB))
	m.Define("B", treeB, false, false)

	ctx := compilectx.New(compilectx.Options{}, module.NewRegistry(m), nil)
	comp := New(ctx)

	_, err := Expand(ctx, comp, dA)
	require.Error(t, err)
	require.Equal(t, diag.ErrEpsilonCycle, errors.Cause(err))
}

func TestRepeatBoundedScenario(t *testing.T) {
	// Repeat(Literal "a", 2, 4) accepts exactly {"aa","aaa","aaaa"}; 5
	// states after minimization (spec.md §8 scenario 5).
	m := module.New("m")
	tree := &expr.Tree{}
	lit := literalExpr(tree, "a")
	rep := &expr.Expr{Op: expr.OpRepeat, L: lit, Lo: 2, Hi: 4}
	tree.Nodes = append(tree.Nodes, rep)
	tree.Root = rep
	require.NoError(t, expr.Preprocess(tree))
	d := m.Define("A", tree, true, false)

	ctx := compilectx.New(compilectx.Options{}, module.NewRegistry(m), nil)
	comp := New(ctx)
	a, err := Export(ctx, comp, d, nil)
	require.NoError(t, err)

	require.False(t, acceptsBytes(a, "a"))
	require.True(t, acceptsBytes(a, "aa"))
	require.True(t, acceptsBytes(a, "aaa"))
	require.True(t, acceptsBytes(a, "aaaa"))
	require.False(t, acceptsBytes(a, "aaaaa"))
	require.Equal(t, 5, a.Fsa.N())
}

func TestRepeatUnboundedScenario(t *testing.T) {
	m := module.New("m")
	tree := &expr.Tree{}
	lit := literalExpr(tree, "a")
	rep := &expr.Expr{Op: expr.OpRepeat, L: lit, Lo: 1, Hi: -1}
	tree.Nodes = append(tree.Nodes, rep)
	tree.Root = rep
	require.NoError(t, expr.Preprocess(tree))
	d := m.Define("A", tree, true, false)

	ctx := compilectx.New(compilectx.Options{}, module.NewRegistry(m), nil)
	comp := New(ctx)
	a, err := Export(ctx, comp, d, nil)
	require.NoError(t, err)

	require.False(t, acceptsBytes(a, ""))
	require.True(t, acceptsBytes(a, "a"))
	require.True(t, acceptsBytes(a, "aaaaaaaa"))
}

func TestEmptyLanguageWarns(t *testing.T) {
	m := module.New("m")
	tree := &expr.Tree{}
	bad := literalExpr(tree, "bad")
	inter := &expr.Expr{Op: expr.OpIntersect, L: bad, R: literalExpr(tree, "good")}
	tree.Nodes = append(tree.Nodes, inter)
	tree.Root = inter
	require.NoError(t, expr.Preprocess(tree))
	d := m.Define("A", tree, true, false)

	ctx := compilectx.New(compilectx.Options{}, module.NewRegistry(m), nil)
	comp := New(ctx)
	sink := &diag.Sink{}
	_, err := Export(ctx, comp, d, sink)
	require.NoError(t, err)
	require.Len(t, sink.Warnings, 1)
}
