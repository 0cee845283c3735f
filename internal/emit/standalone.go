package emit

import "github.com/dave/jennifer/jen"

// Standalone returns a jen func main() that drives ruleName's generated
// Transit/Accepts pair over os.Args[1] (or stdin if no argument is given),
// printing each transition's resolved action code as it runs. It mirrors
// the original compiler's -standalone flag: a self-contained scanner with
// no surrounding driver expected (spec.md's emitter Non-goals exclude a
// full runtime, but a minimal harness for manual testing is cheap to emit).
func (g *Go) Standalone(ruleName string) jen.Code {
	exported := exportedName(ruleName)
	return jen.Func().Id("main").Params().Block(
		jen.Var().Id("input").Index().Byte(),
		jen.If(jen.Len(jen.Qual("os", "Args")).Op(">").Lit(1)).Block(
			jen.Id("input").Op("=").Index().Byte().Call(jen.Qual("os", "Args").Index(jen.Lit(1))),
		).Else().Block(
			jen.List(jen.Id("data"), jen.Id("err")).Op(":=").Qual("io", "ReadAll").Call(jen.Qual("os", "Stdin")),
			jen.If(jen.Id("err").Op("!=").Nil()).Block(
				jen.Qual("fmt", "Fprintln").Call(jen.Qual("os", "Stderr"), jen.Id("err")),
				jen.Qual("os", "Exit").Call(jen.Lit(1)),
			),
			jen.Id("input").Op("=").Id("data"),
		),
		jen.Id("state").Op(":=").Lit(0),
		jen.For(jen.List(jen.Id("_"), jen.Id("c")).Op(":=").Range().Id("input")).Block(
			jen.List(jen.Id("next"), jen.Id("code"), jen.Id("ok")).Op(":=").Id(exported+"Transit").Call(jen.Id("state"), jen.Id("c")),
			jen.If(jen.Op("!").Id("ok")).Block(
				jen.Qual("fmt", "Fprintf").Call(jen.Qual("os", "Stderr"), jen.Lit("no transition from state %d on %q\n"), jen.Id("state"), jen.Id("c")),
				jen.Qual("os", "Exit").Call(jen.Lit(1)),
			),
			jen.If(jen.Id("code").Op("!=").Lit("")).Block(
				jen.Qual("fmt", "Println").Call(jen.Id("code")),
			),
			jen.Id("state").Op("=").Id("next"),
		),
		jen.If(jen.Op("!").Id(exported+"Accepts").Call(jen.Id("state"))).Block(
			jen.Qual("fmt", "Fprintln").Call(jen.Qual("os", "Stderr"), jen.Lit("rejected")),
			jen.Qual("os", "Exit").Call(jen.Lit(1)),
		),
	)
}
