package expr

import (
	"testing"

	"github.com/lovebair2022/yanshi/internal/diag"
	"github.com/stretchr/testify/require"
)

// buildChain builds a right-leaning Concat chain: Concat(a, Concat(b, c)).
func buildChain(t *Tree) (root, a, b, c *Expr) {
	a = t.New(OpLiteral, diagSpan())
	b = t.New(OpLiteral, diagSpan())
	c = t.New(OpLiteral, diagSpan())
	inner := t.New(OpConcat, diagSpan())
	inner.L, inner.R = b, c
	root = t.New(OpConcat, diagSpan())
	root.L, root.R = a, inner
	t.Root = root
	return
}

func TestPreprocessAssignsPrePostDepth(t *testing.T) {
	tr := &Tree{}
	root, a, b, c := buildChain(tr)
	require.NoError(t, Preprocess(tr))

	require.Equal(t, 0, root.Depth)
	require.Equal(t, 1, a.Depth)
	require.Equal(t, 1, root.R.Depth) // inner Concat
	require.Equal(t, 2, c.Depth)

	require.True(t, IsAncestor(root, a))
	require.True(t, IsAncestor(root, c))
	require.False(t, IsAncestor(a, c))
}

func TestLCA(t *testing.T) {
	tr := &Tree{}
	root, a, _, c := buildChain(tr)
	require.NoError(t, Preprocess(tr))
	inner := root.R

	require.Equal(t, root, LCA(a, c))
	require.Equal(t, inner, LCA(c, inner))
	require.Equal(t, a, LCA(a, a))
}

func TestLCACrossTreeIsNil(t *testing.T) {
	tr1, tr2 := &Tree{}, &Tree{}
	_, a1, _, _ := buildChain(tr1)
	_, a2, _, _ := buildChain(tr2)
	require.NoError(t, Preprocess(tr1))
	require.NoError(t, Preprocess(tr2))
	require.Nil(t, LCA(a1, a2))
}

func TestPreprocessRejectsMalformedRepeat(t *testing.T) {
	tr := &Tree{}
	rep := tr.New(OpRepeat, diagSpan())
	rep.Lo, rep.Hi = 4, 2
	inner := tr.New(OpLiteral, diagSpan())
	rep.L = inner
	tr.Root = rep
	require.Error(t, Preprocess(tr))
}

func diagSpan() diag.Span { return diag.Span{} }
