// Package compile implements the structural-recursion walk from an
// expression tree to a raw AnnoFsa (spec.md §4.2) and the collapse
// expander that inlines Collapse/Embed references via epsilon stitching
// (spec.md §4.3).
package compile

import (
	"github.com/pingcap/errors"

	"github.com/lovebair2022/yanshi/internal/anno"
	"github.com/lovebair2022/yanshi/internal/compilectx"
	"github.com/lovebair2022/yanshi/internal/expr"
	"github.com/lovebair2022/yanshi/internal/module"
)

// Compiler builds raw AnnoFsas, memoizing one per DefineStmt through its
// Context (spec.md §5: "Rule compilation is memoized by a process-wide
// table compiled: DefineStmt -> AnnoFsa").
type Compiler struct {
	ctx *compilectx.Context
}

// New returns a Compiler bound to ctx.
func New(ctx *compilectx.Context) *Compiler { return &Compiler{ctx: ctx} }

// Compile returns d's raw AnnoFsa, building it on first request and
// reusing the memoized copy thereafter.
func (c *Compiler) Compile(d *module.DefineStmt) (*anno.AnnoFsa, error) {
	if a, ok := c.ctx.Compiled(d); ok {
		return a, nil
	}
	a, err := c.build(d.Rhs())
	if err != nil {
		return nil, errors.Annotatef(err, "rule %q", d.Lhs)
	}
	c.ctx.SetCompiled(d, a)
	return a, nil
}

// build is the one-case-per-Op structural walk (spec.md §4.2).
func (c *Compiler) build(e *expr.Expr) (*anno.AnnoFsa, error) {
	switch e.Op {
	case expr.OpBracket:
		return anno.Bracket(e), nil
	case expr.OpLiteral:
		return anno.Literal(e), nil
	case expr.OpDot:
		return anno.Dot(e), nil
	case expr.OpEpsilon:
		return anno.EpsilonFsa(e), nil
	case expr.OpCollapse, expr.OpEmbed:
		special := c.ctx.AllocSpecialFor(e)
		return anno.Skeleton(e, special), nil
	case expr.OpConcat:
		l, r, err := c.buildPair(e)
		if err != nil {
			return nil, err
		}
		return anno.Concat(l, r, e), nil
	case expr.OpUnion:
		l, r, err := c.buildPair(e)
		if err != nil {
			return nil, err
		}
		return anno.Union(l, r, e), nil
	case expr.OpIntersect:
		l, r, err := c.buildPair(e)
		if err != nil {
			return nil, err
		}
		return anno.Intersect(l, r, e), nil
	case expr.OpDifference:
		l, r, err := c.buildPair(e)
		if err != nil {
			return nil, err
		}
		return anno.Difference(l, r, e), nil
	case expr.OpComplement:
		a, err := c.build(e.L)
		if err != nil {
			return nil, err
		}
		return anno.Complement(a, e), nil
	case expr.OpStar:
		a, err := c.build(e.L)
		if err != nil {
			return nil, err
		}
		return anno.Star(a, e), nil
	case expr.OpPlus:
		a, err := c.build(e.L)
		if err != nil {
			return nil, err
		}
		return anno.Plus(a, e), nil
	case expr.OpQuestion:
		a, err := c.build(e.L)
		if err != nil {
			return nil, err
		}
		return anno.Question(a, e), nil
	case expr.OpRepeat:
		return c.buildRepeat(e)
	default:
		return nil, errors.Errorf("compile: unhandled op %v", e.Op)
	}
}

func (c *Compiler) buildPair(e *expr.Expr) (*anno.AnnoFsa, *anno.AnnoFsa, error) {
	l, err := c.build(e.L)
	if err != nil {
		return nil, nil, err
	}
	r, err := c.build(e.R)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// buildRepeat unrolls Repeat(x, lo, hi) into lo concatenated copies of x
// followed by hi-lo questioned copies, or, when hi is unbounded
// (e.Hi < 0), lo copies followed by a single Star(x) (spec.md §4.2). Every
// copy is built by a fresh call to build(e.L), each producing its own
// states annotated with the same e.L node — exactly as a literal unrolling
// would if the tree had lo+ (hi-lo) physically duplicated subtrees.
func (c *Compiler) buildRepeat(e *expr.Expr) (*anno.AnnoFsa, error) {
	var result *anno.AnnoFsa
	extend := func(piece *anno.AnnoFsa) {
		if result == nil {
			result = piece
			return
		}
		result = anno.Concat(result, piece, e)
	}

	for i := 0; i < e.Lo; i++ {
		a, err := c.build(e.L)
		if err != nil {
			return nil, err
		}
		extend(a)
	}

	if e.Hi < 0 {
		a, err := c.build(e.L)
		if err != nil {
			return nil, err
		}
		extend(anno.Star(a, e))
		return result, nil
	}

	for i := 0; i < e.Hi-e.Lo; i++ {
		a, err := c.build(e.L)
		if err != nil {
			return nil, err
		}
		extend(anno.Question(a, e))
	}

	if result == nil {
		return anno.EpsilonFsa(e), nil
	}
	return result, nil
}
