package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunEmitsGoSourceForLiteralRule(t *testing.T) {
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"A=ab"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "func ATransit(state int, c byte)")
}

func TestRunEmitsGraphvizForLiteralRule(t *testing.T) {
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--emit-target", "graphviz", "A=ab"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "digraph A {")
}

func TestRunRejectsMalformedArgument(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"not-a-pair"})
	require.Error(t, cmd.Execute())
}
