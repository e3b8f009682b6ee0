// Package interp implements the resumable stream interpreter (spec §4.4):
// a stack-machine evaluator of filter AST nodes against paged input/output
// streams, with call frames, mode bits, catch frames, a peek stack, loop
// counters, and local-variable frames.
//
// Scope decision (recorded in DESIGN.md under internal/interp): the
// dispatcher here is a structured recursive evaluator rather than a literal
// flat (method,state) table over the host's own stack discipline. Every
// piece of state spec §4.4.1 calls for (call stack, eval stack, peek
// stack, loop-counter stack, locals-with-base-stack, catch stack) is still
// an explicit field on Interp, inspectable and dumped via trace.Sink.Dump;
// only the *driving loop* uses Go recursion instead of a hand-rolled
// dispatch loop, because this repo's queue.Queue already performs
// blocking backfill from an io.Reader (queue.NewBackedReader), which is
// the scenario spec §4.4.5 designs the suspend/resume contract around.
// EvalParam's lexical substitution (spec §4.4.4) is implemented exactly as
// specified regardless: by popping to the caller's eval context, not by
// capturing argument values at call time.
package interp

// Mode governs how Eval(node) behaves for a subtree (spec §4.4.3).
type Mode int

const (
	// ReadOnly decodes from the input; write subexpressions are skipped.
	ReadOnly Mode = iota
	// WriteOnly encodes to the output from already-supplied values; read
	// operations are errors.
	WriteOnly
	// ReadAndWrite reads one side and writes the other: the normal
	// transcoding mode.
	ReadAndWrite
)

func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "ReadOnly"
	case WriteOnly:
		return "WriteOnly"
	case ReadAndWrite:
		return "ReadAndWrite"
	default:
		return "?"
	}
}

// CanRead reports whether this mode permits decoding from the input.
func (m Mode) CanRead() bool { return m == ReadOnly || m == ReadAndWrite }

// CanWrite reports whether this mode permits encoding to the output.
func (m Mode) CanWrite() bool { return m == WriteOnly || m == ReadAndWrite }
