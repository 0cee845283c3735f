package loadfix

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lovebair2022/yanshi/internal/expr"
)

func TestBuildLiteralConcat(t *testing.T) {
	tree, err := Build("ab")
	require.NoError(t, err)
	require.Equal(t, expr.OpLiteral, tree.Root.Op)
	require.Equal(t, []byte("ab"), tree.Root.Literal)
}

func TestBuildCharClassAndStar(t *testing.T) {
	tree, err := Build("[0-9]*")
	require.NoError(t, err)
	require.Equal(t, expr.OpStar, tree.Root.Op)
	require.Equal(t, expr.OpBracket, tree.Root.L.Op)
	require.NotEmpty(t, tree.Root.L.Charset)
}

func TestBuildAlternateAndRepeat(t *testing.T) {
	tree, err := Build("(ab|cd){1,3}")
	require.NoError(t, err)
	require.Equal(t, expr.OpRepeat, tree.Root.Op)
	require.Equal(t, 1, tree.Root.Lo)
	require.Equal(t, 3, tree.Root.Hi)
	require.Equal(t, expr.OpUnion, tree.Root.L.Op)
}

func TestBuildUnsupportedOpErrors(t *testing.T) {
	_, err := Build(`\bfoo`)
	require.Error(t, err)
}
