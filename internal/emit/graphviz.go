package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/lovebair2022/yanshi/internal/schedule"
)

// Graphviz writes a "dot" dump of tbl to w, grounded in the original
// compiler's generate_graphviz: final states before the start state before
// everything else, so a state that is both start and final renders once,
// as a double-circled orchid node rather than two conflicting styles.
func Graphviz(w io.Writer, ruleName string, tbl *schedule.Table) {
	fmt.Fprintf(w, "digraph %s {\n", sanitizeID(ruleName))
	fmt.Fprintln(w, "  rankdir=LR;")

	finalSet := make(map[int]bool, len(tbl.Finals))
	for _, f := range tbl.Finals {
		finalSet[f] = true
	}

	for _, f := range tbl.Finals {
		if f == tbl.Start {
			fmt.Fprintf(w, "  %d [shape=doublecircle, style=filled, color=orchid];\n", f)
		} else {
			fmt.Fprintf(w, "  %d [shape=doublecircle, style=filled, color=olive];\n", f)
		}
	}
	if !finalSet[tbl.Start] {
		fmt.Fprintf(w, "  %d [shape=circle, style=filled, color=orchid];\n", tbl.Start)
	}
	for _, st := range tbl.States {
		if st.ID == tbl.Start || finalSet[st.ID] {
			continue
		}
		fmt.Fprintf(w, "  %d [shape=circle];\n", st.ID)
	}

	for _, st := range tbl.States {
		for _, g := range st.Groups {
			fmt.Fprintf(w, "  %d -> %d [label=%q];\n", st.ID, g.Dst, rangeLabel(g.Ranges))
		}
	}
	fmt.Fprintln(w, "}")
}

func rangeLabel(ranges []schedule.Range) string {
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if r.Hi-r.Lo == 1 {
			parts = append(parts, byteLabel(r.Lo))
		} else {
			parts = append(parts, fmt.Sprintf("%s-%s", byteLabel(r.Lo), byteLabel(r.Hi-1)))
		}
	}
	return strings.Join(parts, ",")
}

func byteLabel(b int) string {
	if b >= 0x20 && b < 0x7f {
		return string([]byte{byte(b)})
	}
	return fmt.Sprintf("\\\\x%02x", b)
}

func sanitizeID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "rule"
	}
	return b.String()
}
