package anno

import (
	"fmt"
	"io"
	"sort"

	"github.com/lovebair2022/yanshi/internal/expr"
)

// DumpAssoc writes a plain-text listing of a's per-state annotation sets to
// w: one line per state, each entry naming the annotated expression by its
// preorder number, with its tag. States with no annotations print only
// their state number. color controls whether the tag letters are highlighted.
func DumpAssoc(w io.Writer, a *AnnoFsa, color bool) {
	for s, set := range a.Assoc {
		fmt.Fprintf(w, "%d:", s)
		entries := make([]struct {
			e   *expr.Expr
			tag Tag
		}, 0, len(set))
		for e, t := range set {
			entries = append(entries, struct {
				e   *expr.Expr
				tag Tag
			}{e, t})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].e.Pre < entries[j].e.Pre })
		for _, en := range entries {
			fmt.Fprintf(w, " %d[%s]", en.e.Pre, tagLabel(en.tag, color))
		}
		fmt.Fprintln(w)
	}
}

func tagLabel(t Tag, color bool) string {
	if !color {
		return t.String()
	}
	if t&TagFinal != 0 {
		return "\x1b[32m" + t.String() + "\x1b[0m"
	}
	if t&TagStart != 0 {
		return "\x1b[35m" + t.String() + "\x1b[0m"
	}
	return t.String()
}
