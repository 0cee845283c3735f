// Package diag carries source spans and the error/warning vocabulary the
// compiler core reports to its driver. The core never recovers locally from
// a fatal error; it wraps the offending span and surfaces the result.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/pingcap/errors"
)

// Span is a byte range into the source text a Module was loaded from. It
// exists purely for diagnostics: nothing in the core compares spans for
// overlap or containment (expr.Pre/Post serve that purpose instead).
type Span struct {
	Module     string
	Start, End int
}

func (s Span) String() string {
	if s.Module == "" {
		return fmt.Sprintf("%d-%d", s.Start, s.End)
	}
	return fmt.Sprintf("%s:%d-%d", s.Module, s.Start, s.End)
}

// Sentinel causes, recovered with errors.Cause after Trace/Annotate wrapping.
var (
	ErrUndefinedRule   = errors.New("undefined rule")
	ErrEpsilonCycle    = errors.New("cyclic collapse through epsilon")
	ErrStateExplosion  = errors.New("determinized state count exceeds limit")
	ErrMalformedRepeat = errors.New("malformed repeat bounds")
	ErrEmptyLanguage   = errors.New("rule accepts no strings")
)

// Fatalf wraps one of the sentinel causes with a span and a formatted
// message, in the manner of errors.Annotatef: the sentinel remains
// recoverable via errors.Cause, the message carries the detail.
func Fatalf(cause error, span Span, format string, args ...interface{}) error {
	return errors.Annotatef(cause, "%s: %s", span, fmt.Sprintf(format, args...))
}

// Warning is a non-fatal diagnostic. Compilation continues after emitting
// one; spec §7 names exactly one warning kind (empty language).
type Warning struct {
	Span Span
	Msg  string
}

func (w Warning) String() string { return fmt.Sprintf("warning: %s: %s", w.Span, w.Msg) }

// Sink collects warnings emitted during a compilation so the driver can
// print them after the pipeline finishes; it never affects control flow.
type Sink struct {
	Warnings []Warning
}

func (s *Sink) Warn(span Span, format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, Warning{Span: span, Msg: fmt.Sprintf(format, args...)})
}

// Flush writes accumulated warnings to w, one per line.
func (s *Sink) Flush(w io.Writer) {
	for _, warn := range s.Warnings {
		fmt.Fprintln(w, warn.String())
	}
}

// ColorEnabled reports whether the debug dumps (fsa.DumpAutomaton,
// anno.DumpAssoc) should emit ANSI color, honoring NO_COLOR.
func ColorEnabled() bool {
	return os.Getenv("NO_COLOR") == ""
}
