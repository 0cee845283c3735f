package compile

import (
	"go.uber.org/zap"

	"github.com/lovebair2022/yanshi/internal/anno"
	"github.com/lovebair2022/yanshi/internal/compilectx"
	"github.com/lovebair2022/yanshi/internal/diag"
	"github.com/lovebair2022/yanshi/internal/module"
)

// Export runs the full per-rule pipeline spec.md §2 lays out after the raw
// compile and collapse expansion: optional substring-grammar transform,
// determinize, minimize, accessible, co-accessible. It returns the final
// minimal DFA-backed AnnoFsa ready for the action scheduler, and records an
// empty-language warning on sink when sink is non-nil (spec.md §7: a
// warning, not a failure).
func Export(ctx *compilectx.Context, comp *Compiler, d *module.DefineStmt, sink *diag.Sink) (*anno.AnnoFsa, error) {
	a, err := Expand(ctx, comp, d)
	if err != nil {
		return nil, err
	}

	if ctx.Options.SubstringGrammar && !d.Intact {
		a.SubstringGrammar()
	}

	a.Determinize()

	if n := a.Fsa.N(); n > ctx.Options.MaxStatesOrDefault() {
		return nil, diag.Fatalf(diag.ErrStateExplosion, d.Rhs().Loc, "rule %q: %d states", d.Lhs, n)
	}

	a.Minimize()
	a.Accessible()
	a.CoAccessible()

	if len(a.Fsa.Finals()) == 0 && sink != nil {
		sink.Warn(d.Rhs().Loc, "rule %q accepts no strings", d.Lhs)
	}

	ctx.Logger.Debug("exported rule",
		zap.String("rule", d.Lhs), zap.Int("states", a.Fsa.N()))

	return a, nil
}
