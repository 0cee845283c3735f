package module

import (
	"testing"

	"github.com/lovebair2022/yanshi/internal/diag"
	"github.com/lovebair2022/yanshi/internal/expr"
	"github.com/stretchr/testify/require"
)

func TestDefineAndLookupWithinModule(t *testing.T) {
	m := New("lexer")
	tree := &expr.Tree{}
	tree.Root = tree.New(expr.OpEpsilon, diag.Span{})
	d := m.Define("line", tree, true, false)

	got, ok := m.Defines["line"]
	require.True(t, ok)
	require.Same(t, d, got)
	require.True(t, d.Export)
	require.False(t, d.Intact)
	require.Same(t, tree.Root, d.Rhs())

	m.SetAction("emit", "out.WriteByte(c)")
	code, ok := m.Lookup("lexer", "emit")
	require.True(t, ok)
	require.Equal(t, "out.WriteByte(c)", code)

	_, ok = m.Lookup("other", "emit")
	require.False(t, ok)

	code, ok = m.Lookup("", "emit")
	require.True(t, ok)
	require.Equal(t, "out.WriteByte(c)", code)
}

func TestRegistryResolvesAcrossModules(t *testing.T) {
	a := New("a")
	b := New("b")
	treeA := &expr.Tree{}
	treeA.Root = treeA.New(expr.OpEpsilon, diag.Span{})
	treeB := &expr.Tree{}
	treeB.Root = treeB.New(expr.OpEpsilon, diag.Span{})
	a.Define("rootRule", treeA, true, false)
	b.Define("helper", treeB, false, true)
	b.SetAction("tick", "n++")

	reg := NewRegistry(a, b)

	d, ok := reg.Rule("helper")
	require.True(t, ok)
	require.Same(t, treeB.Root, d.Rhs())

	_, ok = reg.Rule("missing")
	require.False(t, ok)

	code, ok := reg.Lookup("b", "tick")
	require.True(t, ok)
	require.Equal(t, "n++", code)

	_, ok = reg.Lookup("a", "tick")
	require.False(t, ok)
}
