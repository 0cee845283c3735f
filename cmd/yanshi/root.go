package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lovebair2022/yanshi/internal/anno"
	"github.com/lovebair2022/yanshi/internal/compile"
	"github.com/lovebair2022/yanshi/internal/compilectx"
	"github.com/lovebair2022/yanshi/internal/diag"
	"github.com/lovebair2022/yanshi/internal/emit"
	"github.com/lovebair2022/yanshi/internal/fsa"
	"github.com/lovebair2022/yanshi/internal/loadfix"
	"github.com/lovebair2022/yanshi/internal/module"
	"github.com/lovebair2022/yanshi/internal/schedule"
)

// cliFlags mirrors compilectx.Options field for field; cobra binds directly
// into it and main translates it into an Options value once flags are
// parsed, so nothing downstream of newRootCmd touches a package-level var
// (spec §9's re-architecture note, carried into the driver too).
type cliFlags struct {
	substringGrammar bool
	dumpAutomaton    bool
	dumpAssoc        bool
	standalone       bool
	customError      bool
	emitTarget       string
	prefix           string
	output           string
	maxStates        int
}

func newRootCmd() *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:   "yanshi name=pattern [name=pattern...]",
		Short: "yanshi compiles regex-with-actions rules into a scheduled transition table",
		Long: `yanshi runs the expr -> AnnoFsa -> minimized DFA -> scheduled action
table pipeline over one or more rules and emits the result in the chosen
target. Rule patterns are ordinary regexp syntax (see internal/loadfix);
the real grammar frontend (literal/bracket/collapse/embed parsing, module
loading) is a separate concern this core treats as an external
collaborator.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.substringGrammar, "substring-grammar", false, "make each non-intact rule accept every substring of its language")
	f.BoolVar(&flags.dumpAutomaton, "dump-automaton", false, "print each rule's minimized automaton before scheduling")
	f.BoolVar(&flags.dumpAssoc, "dump-assoc", false, "print each rule's per-state annotation sets before scheduling")
	f.BoolVar(&flags.standalone, "standalone", false, "emit a func main() driving the first rule over stdin/argv")
	f.BoolVar(&flags.customError, "custom-error", false, "recorded in Options only; no emitter reads it and no Error() hook is emitted either way")
	f.StringVar(&flags.emitTarget, "emit-target", "go", `emission target: "go" or "graphviz"`)
	f.StringVarP(&flags.prefix, "prefix", "p", "yy", "identifier prefix for generated names")
	f.StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")
	f.IntVar(&flags.maxStates, "max-states", compilectx.DefaultMaxStates, "fail if a rule's determinized state count exceeds this")

	return cmd
}

func run(cmd *cobra.Command, args []string, flags cliFlags) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	m := module.New("main")
	var order []string
	for _, arg := range args {
		name, pattern, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("argument %q is not name=pattern", arg)
		}
		tree, err := loadfix.Build(pattern)
		if err != nil {
			return fmt.Errorf("rule %q: %w", name, err)
		}
		m.Define(name, tree, true, false)
		order = append(order, name)
	}

	opts := compilectx.Options{
		SubstringGrammar: flags.substringGrammar,
		DumpAutomaton:    flags.dumpAutomaton,
		DumpAssoc:        flags.dumpAssoc,
		Standalone:       flags.standalone,
		CustomError:      flags.customError,
		EmitTarget:       flags.emitTarget,
		Prefix:           flags.prefix,
		Output:           flags.output,
		MaxStates:        flags.maxStates,
	}
	ctx := compilectx.New(opts, module.NewRegistry(m), logger)
	comp := compile.New(ctx)
	sink := &diag.Sink{}

	var tables []emit.NamedTable
	for _, name := range order {
		d, ok := ctx.Registry.Rule(name)
		if !ok {
			return fmt.Errorf("rule %q not found after registration", name)
		}
		a, err := compile.Export(ctx, comp, d, sink)
		if err != nil {
			return fmt.Errorf("rule %q: %w", name, err)
		}
		if opts.DumpAutomaton {
			fsa.DumpAutomaton(cmd.OutOrStdout(), a.Fsa, diag.ColorEnabled())
		}
		if opts.DumpAssoc {
			anno.DumpAssoc(cmd.OutOrStdout(), a, diag.ColorEnabled())
		}
		tables = append(tables, emit.NamedTable{Name: name, Table: schedule.Schedule(a)})
	}
	sink.Flush(os.Stderr)

	out := cmd.OutOrStdout()
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch opts.EmitTarget {
	case "graphviz":
		for _, nt := range tables {
			emit.Graphviz(out, nt.Name, nt.Table)
		}
	case "go":
		g := emit.NewGo(ctx.Registry, opts.Prefix)
		var text string
		var err error
		if opts.Standalone {
			text, err = g.StandaloneFile(tables, order[0])
		} else {
			text, err = g.File(tables)
		}
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
	default:
		return fmt.Errorf("unknown emit target %q", opts.EmitTarget)
	}
	return nil
}
