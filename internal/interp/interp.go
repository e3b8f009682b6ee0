package interp

import (
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/codec"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/queue"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/trace"
)

// Interp is the stream interpreter (spec §4.4): it evaluates an AST
// against an input and an output queue, both owned elsewhere (spec §3.3
// "Interpreter holds shared references to input, output, and symbol
// table; it does not own them").
type Interp struct {
	In  *queue.Queue
	Out *queue.Queue
	St  *ast.SymbolTable

	rc *queue.ReadCursor
	wc *queue.WriteCursor

	Trace *trace.Sink

	// spec §4.4.1 stacks.
	calls       []CallFrame
	peeks       []queue.Address
	loopCounts  []int64
	locals      []int64
	localsBase  int
	localFrames []localsFrame
	curEval     *evalCtx
	opcodes     []opcodeFrame
	catchStack  []string

	lastRead int64
}

// New creates an interpreter reading from in and writing to out, starting
// the read cursor at address 0 and the write cursor at out's current length.
func New(in, out *queue.Queue, st *ast.SymbolTable) *Interp {
	ip := &Interp{In: in, Out: out, St: st, Trace: &trace.Sink{}}
	if in != nil {
		ip.rc = in.NewReadCursor(0)
	}
	if out != nil {
		ip.wc = out.NewWriteCursor(out.Length())
	}
	return ip
}

// Close releases the interpreter's cursors.
func (ip *Interp) Close() {
	if ip.rc != nil {
		ip.rc.Close()
	}
	if ip.wc != nil {
		ip.wc.Close()
	}
}

// InputAddress returns the current read position (used by the algorithm
// selector to checkpoint/rewind around BadHeader, spec §4.5).
func (ip *Interp) InputAddress() queue.Address {
	if ip.rc == nil {
		return 0
	}
	return ip.rc.Address()
}

// SeekInput rewinds the read cursor to addr (spec §8: "throw(bad_header)
// ... restores the input cursor exactly to the value it had at that
// frame's entry").
func (ip *Interp) SeekInput(addr queue.Address) {
	if ip.rc != nil {
		ip.rc.Seek(addr)
	}
}

func (ip *Interp) pushFrame(method string, n *ast.Node, mode Mode) {
	ip.calls = append(ip.calls, CallFrame{Method: method, Node: n, Mode: mode})
}

func (ip *Interp) popFrame() CallFrame {
	f := ip.calls[len(ip.calls)-1]
	ip.calls = ip.calls[:len(ip.calls)-1]
	return f
}

// Catch runs fn under a named catch frame (spec §4.4.6): if fn returns a
// *ferr.Error matching accept, the error is swallowed (caller decides what
// "caught" means, e.g. rewinding input); Fatal errors and non-matches
// propagate unchanged.
func (ip *Interp) Catch(method string, accept func(*ferr.Error) bool, fn func() error) error {
	ip.catchStack = append(ip.catchStack, method)
	err := fn()
	ip.catchStack = ip.catchStack[:len(ip.catchStack)-1]
	if err == nil {
		return nil
	}
	fe, ok := err.(*ferr.Error)
	if !ok {
		return err
	}
	if fe.Kind == ferr.Fatal {
		ip.Trace.Fatal("fatal: %s\n", fe.Error())
		ip.Trace.Dump("call stack at fatal", ip.calls)
		return err
	}
	if accept != nil && accept(fe) {
		return nil
	}
	return err
}

// Eval evaluates n in mode, implementing the node-by-node contract of
// spec §4.4.4.
func (ip *Interp) Eval(n *ast.Node, mode Mode) (int64, error) {
	ip.pushFrame("Eval", n, mode)
	defer ip.popFrame()

	if n.Kind.Family() == ast.FamilyInteger {
		// A default-value integer node (IntDefault) is a bare format
		// marker — e.g. the operand of read/write — not a literal to
		// match; it dispatches through the stream codec. Any other
		// integer node is a literal value (spec §3.1 IntegerNode).
		if n.IntDefault {
			return ip.EvalFixed(n, mode, 0)
		}
		if mode.CanRead() {
			ip.lastRead = n.IntValue
		}
		return n.IntValue, nil
	}

	switch n.Kind {
	case ast.KindVoid:
		return 0, nil
	case ast.KindLastRead:
		return ip.lastRead, nil
	case ast.KindError:
		return 0, ferr.New(ferr.Fatal, "error node evaluated")
	case ast.KindSymbol:
		if n.LiteralDef != nil {
			return ip.Eval(n.LiteralDef, mode)
		}
		return 0, ferr.New(ferr.UnresolvedSymbol, "symbol %q has no value", n.Name)

	case ast.KindNot:
		if mode == WriteOnly {
			return 0, ferr.New(ferr.Fatal, "not: not permitted in write-only mode")
		}
		v, err := ip.Eval(n.Children[0], mode)
		if err != nil {
			return 0, err
		}
		if v == 0 {
			return 1, nil
		}
		return 0, nil

	case ast.KindPeek:
		if ip.rc == nil {
			return 0, ferr.New(ferr.Fatal, "peek: no input")
		}
		ip.peeks = append(ip.peeks, ip.rc.Address())
		v, err := ip.Eval(n.Children[0], ReadOnly)
		addr := ip.peeks[len(ip.peeks)-1]
		ip.peeks = ip.peeks[:len(ip.peeks)-1]
		ip.rc.Seek(addr)
		return v, err

	case ast.KindRead:
		return ip.Eval(n.Children[0], ReadOnly)

	case ast.KindUndefine:
		return 0, nil

	case ast.KindBlock:
		return ip.evalBlock(n, mode)

	case ast.KindLoopUnbounded:
		var last int64
		for {
			if ip.rc == nil || ip.rc.AtEob() {
				break
			}
			v, err := ip.Eval(n.Children[0], mode)
			if err != nil {
				return 0, err
			}
			last = v
		}
		return last, nil

	case ast.KindCallback:
		return ip.evalCallback(n, mode)

	case ast.KindAnd:
		if mode == WriteOnly {
			return 0, ferr.New(ferr.Fatal, "and: not permitted in write-only mode")
		}
		a, err := ip.Eval(n.Children[0], mode)
		if err != nil {
			return 0, err
		}
		if a == 0 {
			return 0, nil
		}
		return ip.Eval(n.Children[1], mode)

	case ast.KindOr:
		if mode == WriteOnly {
			return 0, ferr.New(ferr.Fatal, "or: not permitted in write-only mode")
		}
		a, err := ip.Eval(n.Children[0], mode)
		if err != nil {
			return 0, err
		}
		if a != 0 {
			return a, nil
		}
		return ip.Eval(n.Children[1], mode)

	case ast.KindBitwiseAnd, ast.KindBitwiseOr, ast.KindBitwiseXor, ast.KindNegate:
		if mode != ReadOnly {
			return 0, ferr.New(ferr.Fatal, "%s: read-only mode only", n.Kind)
		}
		a, err := ip.Eval(n.Children[0], mode)
		if err != nil {
			return 0, err
		}
		b, err := ip.Eval(n.Children[1], mode)
		if err != nil {
			return 0, err
		}
		switch n.Kind {
		case ast.KindBitwiseAnd:
			return a & b, nil
		case ast.KindBitwiseOr:
			return a | b, nil
		case ast.KindBitwiseXor:
			return a ^ b, nil
		default: // KindNegate: (value, widthBits)
			return ^a, nil
		}

	case ast.KindIfThen:
		cond, err := ip.Eval(n.Children[0], mode)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return ip.Eval(n.Children[1], mode)
		}
		return 0, nil

	case ast.KindIfThenElse:
		cond, err := ip.Eval(n.Children[0], mode)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return ip.Eval(n.Children[1], mode)
		}
		return ip.Eval(n.Children[2], mode)

	case ast.KindConvert:
		return ip.Eval(n.Children[0], mode)

	case ast.KindCase:
		return ip.Eval(n.Children[1], mode)

	case ast.KindSet:
		v, err := ip.Eval(n.Children[1], mode)
		if err != nil {
			return 0, err
		}
		idx := n.Children[0].Children[0].IntValue
		if err := ip.setLocal(int(idx), v); err != nil {
			return 0, err
		}
		return v, nil

	case ast.KindLocal:
		idx := n.Children[0].IntValue
		return ip.getLocal(int(idx))

	case ast.KindParam:
		return ip.evalParam(n, mode)

	case ast.KindLiteralDef:
		return ip.Eval(n.Children[1], mode)

	case ast.KindLiteralUse:
		sym := n.Children[0]
		if sym.LiteralDef == nil {
			return 0, ferr.New(ferr.UnresolvedSymbol, "literalUse: %q has no literal", sym.Name)
		}
		return ip.Eval(sym.LiteralDef, mode)

	case ast.KindSequence, ast.KindFile, ast.KindSection, ast.KindFilter, ast.KindAlgorithm:
		var last int64
		for _, c := range n.Children {
			v, err := ip.Eval(c, mode)
			if err != nil {
				return 0, err
			}
			last = v
		}
		return last, nil

	case ast.KindDefine:
		return ip.evalDefineBody(n, mode)

	case ast.KindEval:
		return ip.evalCall(n, mode)

	case ast.KindLoop:
		count, err := ip.Eval(n.Children[0], mode)
		if err != nil {
			return 0, err
		}
		ip.loopCounts = append(ip.loopCounts, count)
		var last int64
		for i := int64(0); i < count; i++ {
			v, err := ip.Eval(n.Children[1], mode)
			if err != nil {
				ip.loopCounts = ip.loopCounts[:len(ip.loopCounts)-1]
				return 0, err
			}
			last = v
		}
		ip.loopCounts = ip.loopCounts[:len(ip.loopCounts)-1]
		return last, nil

	case ast.KindMap:
		key, err := ip.Eval(n.Children[0], mode)
		if err != nil {
			return 0, err
		}
		c := n.CaseNode(key)
		if c == nil {
			return 0, ferr.New(ferr.MalformedInput, "map: no case for key %d", key)
		}
		return ip.Eval(c, mode)

	case ast.KindSwitch:
		key, err := ip.Eval(n.Children[0], mode)
		if err != nil {
			return 0, err
		}
		c := n.CaseNode(key)
		if c == nil {
			return ip.Eval(n.Children[1], mode)
		}
		return ip.Eval(c, mode)

	case ast.KindOpcode:
		return ip.evalOpcode(n, mode)

	case ast.KindFileHeader:
		return ip.evalFileHeader(n, mode)

	case ast.KindWrite:
		return ip.evalWrite(n, mode)

	case ast.KindRename:
		return 0, nil

	case ast.KindWriteUint8Only:
		v, err := ip.Eval(n.Children[0], ReadOnly)
		if err != nil {
			return 0, err
		}
		if mode.CanWrite() {
			if err := codec.WriteUint8(ip.wc, uint8(v)); err != nil {
				return 0, err
			}
		}
		return v, nil

	case ast.KindAlphabetEnter, ast.KindAlphabetExit:
		return 0, nil

	case ast.KindBinaryEval, ast.KindBinarySelect, ast.KindBinaryAccept:
		return 0, ferr.New(ferr.Fatal, "%s: not yet supported outside intcomp's bit-tree walk", n.Kind)

	default:
		if n.Kind.Family() == ast.FamilyNary && (n.Kind == ast.KindParamsDecl || n.Kind == ast.KindLocalsDecl) {
			return 0, nil
		}
		return 0, ferr.New(ferr.Fatal, "Eval: unhandled kind %s", n.Kind)
	}
}

func (ip *Interp) evalCallback(n *ast.Node, mode Mode) (int64, error) {
	sym := n.Children[0]
	switch sym.Predefined {
	case ast.PredefinedAlign:
		if ip.rc != nil {
			ip.rc.AlignToByte()
		}
		if ip.wc != nil && mode.CanWrite() {
			if err := ip.wc.AlignToByte(); err != nil {
				return 0, err
			}
		}
	}
	return 0, nil
}

// evalWrite handles write(dest, valueExpr): evaluate valueExpr (normally
// already-read via the paired read side in ReadAndWrite mode) and encode
// it to the output using dest's declared format (spec §4.4.4 "write").
func (ip *Interp) evalWrite(n *ast.Node, mode Mode) (int64, error) {
	if !mode.CanWrite() {
		return ip.Eval(n.Children[1], mode)
	}
	v, err := ip.Eval(n.Children[1], mode)
	if err != nil {
		return 0, err
	}
	if err := ip.encodeFixed(n.Children[0].Kind, v); err != nil {
		return 0, err
	}
	return v, nil
}

func (ip *Interp) evalFileHeader(n *ast.Node, mode Mode) (int64, error) {
	var last int64
	for _, lit := range n.Children {
		if mode.CanRead() {
			got, err := ip.decodeFixed(lit.Kind)
			if err != nil {
				return 0, err
			}
			if got != lit.IntValue {
				return 0, ferr.New(ferr.BadHeader, "header: expected %d, got %d", lit.IntValue, got)
			}
			last = got
		}
		if mode.CanWrite() {
			if err := ip.encodeFixed(lit.Kind, lit.IntValue); err != nil {
				return 0, err
			}
		}
	}
	return last, nil
}

func (ip *Interp) decodeFixed(kind ast.Kind) (int64, error) {
	switch kind {
	case ast.KindUint8:
		v, err := codec.ReadUint8(ip.rc)
		return int64(v), err
	case ast.KindUint32:
		v, err := codec.ReadUint32(ip.rc)
		return int64(v), err
	case ast.KindUint64:
		v, err := codec.ReadUint64(ip.rc)
		return int64(v), err
	case ast.KindVaruint32:
		v, err := codec.ReadVaruint32(ip.rc)
		return int64(v), err
	case ast.KindVaruint64:
		v, err := codec.ReadVaruint64(ip.rc)
		return int64(v), err
	case ast.KindVarint32:
		v, err := codec.ReadVarint32(ip.rc)
		return int64(v), err
	case ast.KindVarint64:
		return codec.ReadVarint64(ip.rc)
	default:
		return 0, ferr.New(ferr.Fatal, "decodeFixed: unsupported kind %s", kind)
	}
}

func (ip *Interp) encodeFixed(kind ast.Kind, v int64) error {
	switch kind {
	case ast.KindUint8:
		return codec.WriteUint8(ip.wc, uint8(v))
	case ast.KindUint32:
		return codec.WriteUint32(ip.wc, uint32(v))
	case ast.KindUint64:
		return codec.WriteUint64(ip.wc, uint64(v))
	case ast.KindVaruint32:
		return codec.WriteVaruint32(ip.wc, uint32(v))
	case ast.KindVaruint64:
		return codec.WriteVaruint64(ip.wc, uint64(v))
	case ast.KindVarint32:
		return codec.WriteVarint32(ip.wc, int32(v))
	case ast.KindVarint64:
		return codec.WriteVarint64(ip.wc, v)
	default:
		return ferr.New(ferr.Fatal, "encodeFixed: unsupported kind %s", kind)
	}
}

// EvalFixed performs plain fixed-format transcoding (spec "decode the
// declared format from input; in write modes, encode the passed value").
// Eval calls it for nodes whose Kind is a format kind used as a *stream*
// node (child of block/sequence) rather than a literal.
func (ip *Interp) EvalFixed(n *ast.Node, mode Mode, writeValue int64) (int64, error) {
	var v int64
	var err error
	if mode.CanRead() {
		v, err = ip.decodeFixed(n.Kind)
		if err != nil {
			return 0, err
		}
		ip.lastRead = v
	} else {
		v = writeValue
	}
	if mode.CanWrite() {
		if err := ip.encodeFixed(n.Kind, v); err != nil {
			return 0, err
		}
	}
	return v, nil
}

func (ip *Interp) evalBlock(n *ast.Node, mode Mode) (int64, error) {
	var slot queue.Address
	if mode.CanWrite() {
		var err error
		slot, err = queue.BeginBlock(ip.wc)
		if err != nil {
			return 0, err
		}
	}
	if mode.CanRead() {
		size, err := codec.ReadVaruint32(ip.rc)
		if err != nil {
			return 0, err
		}
		ip.In.PushEob(ip.rc.Address(), queue.Address(size))
	}
	v, err := ip.Eval(n.Children[0], mode)
	if mode.CanRead() {
		ip.In.PopEob()
	}
	if err != nil {
		return 0, err
	}
	if mode.CanWrite() {
		if err := queue.EndBlock(ip.wc, slot, true); err != nil {
			return 0, err
		}
	}
	return v, nil
}
