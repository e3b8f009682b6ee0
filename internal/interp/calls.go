package interp

import (
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"
)

// evalDefineBody handles a DefineNode reached directly in a sequence (a
// declaration site, not a call): defines are installed by ast.Install and
// only ever run via eval(), so encountering one here is a no-op.
func (ip *Interp) evalDefineBody(n *ast.Node, mode Mode) (int64, error) {
	return 0, nil
}

// evalCall implements eval(symbol, args...) (spec §4.4.4): it opens a new
// locals region sized by the callee's LocalsDecl, pushes an evalCtx that
// remembers this call's node (so param(i) can find the i-th argument
// expression) and the caller's own locals base, runs the body, then tears
// the frame back down.
func (ip *Interp) evalCall(n *ast.Node, mode Mode) (int64, error) {
	sym := n.Children[0]
	if sym.DefineNode == nil {
		return 0, ferr.New(ferr.UnresolvedSymbol, "eval: %q is undefined", sym.Name)
	}
	def := sym.DefineNode
	localsCount := 0
	if len(def.Children) > 2 {
		localsCount = len(def.Children[2].Children)
	}

	prevCtx, prevBase := ip.curEval, ip.localsBase
	newBase := len(ip.locals)
	ip.locals = append(ip.locals, make([]int64, localsCount)...)
	ip.curEval = &evalCtx{callNode: n, callerCtx: prevCtx, callerBase: prevBase}
	ip.localsBase = newBase

	v, err := ip.Eval(def.Children[3], mode)

	ip.locals = ip.locals[:newBase]
	ip.curEval = prevCtx
	ip.localsBase = prevBase
	return v, err
}

// evalParam implements param(i) (spec §4.4.4): lexical substitution by
// rebinding to the caller's own eval context and locals base and
// evaluating the i-th argument expression there — not by snapshotting the
// argument's value at call time, so an argument that itself reads from the
// input stream only consumes bytes when the parameter is actually used.
func (ip *Interp) evalParam(n *ast.Node, mode Mode) (int64, error) {
	if ip.curEval == nil {
		return 0, ferr.New(ferr.ScopeViolation, "param: no enclosing eval frame")
	}
	idx := int(n.Children[0].IntValue)
	call := ip.curEval
	argPos := 1 + idx
	if argPos >= len(call.callNode.Children) {
		return 0, ferr.New(ferr.ArityMismatch, "param(%d): call supplies only %d arguments", idx, len(call.callNode.Children)-1)
	}
	argNode := call.callNode.Children[argPos]

	ownBase := ip.localsBase
	ip.curEval, ip.localsBase = call.callerCtx, call.callerBase
	v, err := ip.Eval(argNode, mode)
	ip.curEval, ip.localsBase = call, ownBase
	return v, err
}

func (ip *Interp) getLocal(idx int) (int64, error) {
	i := ip.localsBase + idx
	if i < 0 || i >= len(ip.locals) {
		return 0, ferr.New(ferr.RangeError, "local(%d): out of range", idx)
	}
	return ip.locals[i], nil
}

func (ip *Interp) setLocal(idx int, v int64) error {
	i := ip.localsBase + idx
	if i < 0 || i >= len(ip.locals) {
		return ferr.New(ferr.RangeError, "local(%d): out of range", idx)
	}
	ip.locals[i] = v
	return nil
}
