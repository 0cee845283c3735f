// Package loadfix builds expr.Tree fixtures from ordinary regexp syntax,
// for tests that want a bigger tree than is convenient to hand-assemble
// node by node. It is not a frontend: source parsing and AST construction
// for the real grammar language are out of scope for the core (spec.md
// §1), and stdlib regexp/syntax's grammar is not that language's grammar
// — this package only seeds example trees, for _test.go files and for the
// CLI's name=pattern demonstration rules.
package loadfix

import (
	"regexp/syntax"

	"github.com/pingcap/errors"

	"github.com/lovebair2022/yanshi/internal/diag"
	"github.com/lovebair2022/yanshi/internal/expr"
	"github.com/lovebair2022/yanshi/internal/fsa"
)

// Build parses pattern as a Perl-syntax regexp and returns the equivalent
// expr.Tree, already run through expr.Preprocess.
func Build(pattern string) (*expr.Tree, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, errors.Trace(err)
	}
	t := &expr.Tree{}
	root, err := build(t, re)
	if err != nil {
		return nil, err
	}
	t.Root = root
	if err := expr.Preprocess(t); err != nil {
		return nil, err
	}
	return t, nil
}

func build(t *expr.Tree, r *syntax.Regexp) (*expr.Expr, error) {
	switch r.Op {
	case syntax.OpEmptyMatch:
		return t.New(expr.OpEpsilon, diag.Span{}), nil
	case syntax.OpLiteral:
		e := t.New(expr.OpLiteral, diag.Span{})
		e.Literal = []byte(string(r.Rune))
		return e, nil
	case syntax.OpCharClass:
		e := t.New(expr.OpBracket, diag.Span{})
		for i := 0; i+1 < len(r.Rune); i += 2 {
			e.Charset = append(e.Charset, fsa.Edge{Lo: int(r.Rune[i]), Hi: int(r.Rune[i+1]) + 1})
		}
		return e, nil
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return t.New(expr.OpDot, diag.Span{}), nil
	case syntax.OpCapture:
		return build(t, r.Sub[0])
	case syntax.OpStar:
		sub, err := build(t, r.Sub[0])
		if err != nil {
			return nil, err
		}
		e := t.New(expr.OpStar, diag.Span{})
		e.L = sub
		return e, nil
	case syntax.OpPlus:
		sub, err := build(t, r.Sub[0])
		if err != nil {
			return nil, err
		}
		e := t.New(expr.OpPlus, diag.Span{})
		e.L = sub
		return e, nil
	case syntax.OpQuest:
		sub, err := build(t, r.Sub[0])
		if err != nil {
			return nil, err
		}
		e := t.New(expr.OpQuestion, diag.Span{})
		e.L = sub
		return e, nil
	case syntax.OpRepeat:
		sub, err := build(t, r.Sub[0])
		if err != nil {
			return nil, err
		}
		e := t.New(expr.OpRepeat, diag.Span{})
		e.L = sub
		e.Lo, e.Hi = r.Min, r.Max
		return e, nil
	case syntax.OpConcat:
		return buildChain(t, r.Sub, expr.OpConcat)
	case syntax.OpAlternate:
		return buildChain(t, r.Sub, expr.OpUnion)
	default:
		return nil, errors.Errorf("loadfix: unsupported regexp op %v", r.Op)
	}
}

func buildChain(t *expr.Tree, subs []*syntax.Regexp, op expr.Op) (*expr.Expr, error) {
	if len(subs) == 0 {
		return t.New(expr.OpEpsilon, diag.Span{}), nil
	}
	cur, err := build(t, subs[0])
	if err != nil {
		return nil, err
	}
	for _, s := range subs[1:] {
		rhs, err := build(t, s)
		if err != nil {
			return nil, err
		}
		node := t.New(op, diag.Span{})
		node.L, node.R = cur, rhs
		cur = node
	}
	return cur, nil
}
