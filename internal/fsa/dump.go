package fsa

import (
	"fmt"
	"io"
)

const (
	ansiGreen   = "\x1b[32m"
	ansiMagenta = "\x1b[35m"
	ansiReset   = "\x1b[0m"
)

// DumpAutomaton writes a plain-text listing of f's states and edges to w,
// one state per line, in the same spirit as the original compiler's
// terminal dump: the start state and final states are picked out in color
// when color is true, everything else prints unadorned.
func DumpAutomaton(w io.Writer, f *Fsa, color bool) {
	finals := make(map[int]bool, len(f.Finals()))
	for _, s := range f.Finals() {
		finals[s] = true
	}
	for u := 0; u < f.N(); u++ {
		fmt.Fprintf(w, "%s:", stateLabel(u, u == f.Start, finals[u], color))
		for _, e := range f.Adj[u] {
			fmt.Fprintf(w, " %s->%d", symbolLabel(e), e.Dst)
		}
		fmt.Fprintln(w)
	}
}

func stateLabel(u int, start, final, color bool) string {
	switch {
	case color && start:
		return fmt.Sprintf("%s%d%s", ansiMagenta, u, ansiReset)
	case color && final:
		return fmt.Sprintf("%s%d%s", ansiGreen, u, ansiReset)
	default:
		return fmt.Sprintf("%d", u)
	}
}

func symbolLabel(e Edge) string {
	switch {
	case e.isEpsilon():
		return "eps"
	case e.isSpecial():
		return fmt.Sprintf("#%d", e.Lo)
	case e.Hi-e.Lo == 1:
		return byteLabel(e.Lo)
	default:
		return fmt.Sprintf("%s-%s", byteLabel(e.Lo), byteLabel(e.Hi-1))
	}
}

func byteLabel(b int) string {
	if b >= 0x20 && b < 0x7f {
		return string([]byte{byte(b)})
	}
	return fmt.Sprintf("\\x%02x", b)
}
