package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/queue"
)

// TestFileHeaderMismatchIsBadHeader covers spec §8's "selector tries the
// next algorithm on BadHeader": a literal mismatch in a fileHeader node
// must surface as ferr.BadHeader, not a generic error.
func TestFileHeaderMismatchIsBadHeader(t *testing.T) {
	st := ast.New()
	hdr := st.Create(ast.KindFileHeader, st.CreateInteger(ast.KindUint32, 0x6d736100, ast.FormatHex))

	in := queue.New(0)
	wc := in.NewWriteCursor(0)
	require.NoError(t, writeUint32(wc, 0xdeadbeef))
	in.FreezeEOF()

	ip := New(in, nil, st)
	_, err := ip.Eval(hdr, ReadOnly)
	require.Error(t, err)
	require.True(t, ferr.Is(err, ferr.BadHeader))
}

// TestCatchRestoresInputCursor is spec §8's catch/throw cursor-restore
// property: an error caught mid-frame leaves the read cursor exactly where
// it was at the catch's entry.
func TestCatchRestoresInputCursor(t *testing.T) {
	st := ast.New()
	hdr := st.Create(ast.KindFileHeader, st.CreateInteger(ast.KindUint32, 0x6d736100, ast.FormatHex))

	in := queue.New(0)
	wc := in.NewWriteCursor(0)
	require.NoError(t, writeUint32(wc, 0xdeadbeef))
	in.FreezeEOF()

	ip := New(in, nil, st)
	startAddr := ip.InputAddress()

	err := ip.Catch("Selector", func(fe *ferr.Error) bool { return true }, func() error {
		checkpoint := ip.InputAddress()
		_, evalErr := ip.Eval(hdr, ReadOnly)
		if evalErr != nil {
			ip.SeekInput(checkpoint)
		}
		return evalErr
	})
	require.NoError(t, err)
	require.Equal(t, startAddr, ip.InputAddress())
}

// TestTranscodeRoundTrip exercises ReadAndWrite mode end to end: a
// sequence of two varuint32 reads/writes should reproduce its input
// byte-for-byte.
func TestTranscodeRoundTrip(t *testing.T) {
	st := ast.New()
	a := st.CreateIntegerDefault(ast.KindVaruint32)
	b := st.CreateIntegerDefault(ast.KindVaruint32)
	seq := st.Create(ast.KindSequence, a, b)

	in := queue.New(0)
	wc := in.NewWriteCursor(0)
	require.NoError(t, writeVaruint32(wc, 624485))
	require.NoError(t, writeVaruint32(wc, 17))
	in.FreezeEOF()

	out := queue.New(0)
	ip := New(in, out, st)
	_, err := ip.Eval(seq, ReadAndWrite)
	require.NoError(t, err)

	require.Equal(t, in.Length(), out.Length())
}

// TestDefineCallParamIsLexical covers eval/param lexical substitution
// (spec §4.4.4): calling a one-parameter define twice with different
// argument expressions must read a fresh value from the input each time,
// not reuse a value captured at the first call.
func TestDefineCallParamIsLexical(t *testing.T) {
	st := ast.New()
	params := st.Create(ast.KindParamsDecl, st.Create(ast.KindVoid))
	locals := st.Create(ast.KindLocalsDecl)
	p0 := st.Create(ast.KindParam, st.CreateInteger(ast.KindInt32, 0, ast.FormatDecimal), st.Create(ast.KindVoid))
	body := st.Create(ast.KindSequence, p0)
	sym := st.GetSymbol("Echo")
	def := st.Create(ast.KindDefine, sym, params, locals, body)

	argA := st.CreateIntegerDefault(ast.KindUint8)
	argB := st.CreateIntegerDefault(ast.KindUint8)
	call1 := st.Create(ast.KindEval, sym, argA)
	call2 := st.Create(ast.KindEval, sym, argB)
	file := st.Create(ast.KindFile, def, call1, call2)

	require.NoError(t, ast.Install(st, file))

	in := queue.New(0)
	wc := in.NewWriteCursor(0)
	require.NoError(t, wc.WriteByte(0x11))
	require.NoError(t, wc.WriteByte(0x22))
	in.FreezeEOF()

	ip := New(in, nil, st)
	v, err := ip.Eval(file, ReadOnly)
	require.NoError(t, err)
	require.Equal(t, int64(0x22), v)
}

// TestOpcodeDispatchDecodesSelectorAndConsumesBytes covers spec §8 scenario
// 5 at the interpreter layer (ast_test.go's TestOpcodeDispatchRanges only
// checks the range table, never a real decode): selector byte 0x40
// dispatches to a uint8 read, 0x41 to a uint32 read, and each case must
// consume exactly its own selector byte plus its body's width.
func TestOpcodeDispatchDecodesSelectorAndConsumesBytes(t *testing.T) {
	st := ast.New()
	format := st.CreateInteger(ast.KindInt32, 8, ast.FormatDecimal)
	case40 := st.Create(ast.KindCase, st.CreateInteger(ast.KindInt32, 0x40, ast.FormatHex), st.CreateIntegerDefault(ast.KindUint8))
	case41 := st.Create(ast.KindCase, st.CreateInteger(ast.KindInt32, 0x41, ast.FormatHex), st.CreateIntegerDefault(ast.KindUint32))
	op := st.Create(ast.KindOpcode, format, case40, case41)
	require.NoError(t, ast.Install(st, op))

	in := queue.New(0)
	wc := in.NewWriteCursor(0)
	require.NoError(t, wc.WriteByte(0x40))
	require.NoError(t, wc.WriteByte(0x7f))
	require.NoError(t, wc.WriteByte(0x41))
	require.NoError(t, writeUint32(wc, 0xdeadbeef))
	in.FreezeEOF()

	ip := New(in, nil, st)
	startAddr := ip.InputAddress()
	v, err := ip.Eval(op, ReadOnly)
	require.NoError(t, err)
	require.Equal(t, int64(0x7f), v)
	require.Equal(t, startAddr+2, ip.InputAddress())

	ip2 := New(in, nil, st)
	ip2.SeekInput(startAddr + 2)
	v2, err := ip2.Eval(op, ReadOnly)
	require.NoError(t, err)
	require.Equal(t, int64(0xdeadbeef), v2)
	require.Equal(t, startAddr+2+5, ip2.InputAddress())
}

func writeUint32(wc *queue.WriteCursor, v uint32) error {
	for i := 0; i < 4; i++ {
		if err := wc.WriteByte(byte(v >> (8 * uint(i)))); err != nil {
			return err
		}
	}
	return nil
}

func writeVaruint32(wc *queue.WriteCursor, v uint32) error {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if err := wc.WriteByte(b); err != nil {
			return err
		}
		if v == 0 {
			return nil
		}
	}
}
