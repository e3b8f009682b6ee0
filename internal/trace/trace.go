// Package trace is the diagnostic sink shared by the interpreter, the
// algorithm selector, and the symbol table. There is no logging
// framework anywhere in the retrieval pack's teacher repo (flapc prints
// straight to os.Stderr behind a package-level VerboseMode toggle); this
// package keeps that shape but makes the sink an injected io.Writer instead
// of a hardcoded os.Stderr, so tests can capture it.
package trace

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
)

// Verbose mirrors flapc's package-level VerboseMode switch.
var Verbose = false

// Sink is a per-interpreter trace handle (spec §5/§9: "no global mutable
// state is required beyond a per-interpreter trace handle"). The zero value
// writes to os.Stderr.
type Sink struct {
	W io.Writer
}

func (s *Sink) writer() io.Writer {
	if s == nil || s.W == nil {
		return os.Stderr
	}
	return s.W
}

// Printf writes a diagnostic line, gated by Verbose, matching flapc's
// `if VerboseMode { fmt.Fprintf(os.Stderr, ...) }` idiom.
func (s *Sink) Printf(format string, args ...any) {
	if !Verbose {
		return
	}
	fmt.Fprintf(s.writer(), format, args...)
}

// Fatal unconditionally writes a line even when Verbose is off: used for
// the Fatal error kind, which "prints the frame stack to the trace channel
// before exit" (spec §7) regardless of verbosity.
func (s *Sink) Fatal(format string, args ...any) {
	fmt.Fprintf(s.writer(), format, args...)
}

// Dump renders v with spew.Sdump and writes it to the sink. Used by the
// interpreter's Fatal-frame printer to show call-frame/locals state. Grounded on the one pack repo that
// actually pulls in a struct-dumping dependency (hejops-gone, which pairs
// davecgh/go-spew with stretchr/testify).
func (s *Sink) Dump(label string, v any) {
	fmt.Fprintf(s.writer(), "%s:\n%s", label, spew.Sdump(v))
}
