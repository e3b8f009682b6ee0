package interp

import "github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"

// CallFrame is one interpreter activation record (spec §3.1 CallFrame).
// Method is kept as a plain string and there is no State field (rather
// than a numbered state enum) since this package collapses the explicit
// dispatch loop into recursion (see package doc); Method exists purely for
// tracing/diagnostics and for the catch stack's method-tag matching.
type CallFrame struct {
	Method string
	Node   *ast.Node
	Mode   Mode
	Return int64
}

// evalCtx is one eval-stack entry (spec §3.1/§4.4.1 "Eval stack of caller
// references for eval"): it records the call site (the eval node, whose
// Children[1:] are the argument expressions) and the caller's own
// evalCtx/locals-base, so EvalParam can rebind to the caller and evaluate
// the i-th argument there (spec §4.4.4 param(i)).
type evalCtx struct {
	callNode   *ast.Node
	callerCtx  *evalCtx
	callerBase int
}

// localsFrame marks one DefineNode's region of the flat locals vector.
type localsFrame struct {
	base  int
	count int
}

// opcodeFrame is one ReadOpcode decode-in-progress frame (spec §4.4.1
// "Opcode locals stack").
type opcodeFrame struct {
	shift      uint
	accum      uint64
	caseMask   uint64
	casePtr    *ast.Node
}
