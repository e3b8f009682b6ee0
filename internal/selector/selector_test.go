package selector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/queue"
)

const testWasmMagic = 0x6d736100

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

// buildHeaderedAlgorithm makes a one-candidate algorithm whose root is
// (fileHeader magic) followed by a single varuint32 pass-through body,
// the same (header, define/body...) shape internal/intcomp's synthesizer
// builds and cmd/decompress feeds to Run.
func buildHeaderedAlgorithm(st *ast.SymbolTable, magic int64) *ast.Node {
	header := st.Create(ast.KindFileHeader, st.CreateInteger(ast.KindUint32, magic, ast.FormatHex))
	body := st.CreateIntegerDefault(ast.KindVaruint32)
	root := st.Create(ast.KindAlgorithm, header, body)
	return root
}

// TestSelectorRunMatchesHeaderAndTranscodesBodyOnce guards against the
// double-header-evaluation bug: matchHeader consumes the fileHeader bytes
// while probing in ReadOnly mode, and Run must not re-decode them a second
// time when it executes the body in ReadAndWrite mode.
func TestSelectorRunMatchesHeaderAndTranscodesBodyOnce(t *testing.T) {
	st := ast.New()
	root := buildHeaderedAlgorithm(st, testWasmMagic)
	require.NoError(t, ast.Install(st, root))

	in := queue.New(0)
	wc := in.NewWriteCursor(0)
	require.NoError(t, writeUint32(wc, testWasmMagic))
	require.NoError(t, writeVaruint32(wc, 624485))
	in.FreezeEOF()
	out := queue.New(0)

	sel := New(&Algorithm{Name: "test", Root: root, Symtab: st})
	v, err := sel.Run(in, out)
	require.NoError(t, err)
	require.Equal(t, int64(624485), v)

	outBytes := out.Bytes()
	require.Equal(t, in.Length(), out.Length())
	require.Equal(t, byte(0x00), outBytes[0])
	require.Equal(t, byte(0x61), outBytes[1])
	require.Equal(t, byte(0x73), outBytes[2])
	require.Equal(t, byte(0x6d), outBytes[3])
}

// TestSelectorRunFallsThroughOnHeaderMismatch covers spec §4.5's
// GetAlgorithm loop: a header mismatch on the first candidate must be
// caught as ferr.BadHeader, rewind the input, and try the next candidate
// rather than aborting the whole selector.
func TestSelectorRunFallsThroughOnHeaderMismatch(t *testing.T) {
	st := ast.New()
	wrong := buildHeaderedAlgorithm(st, 0xdeadbeef)
	right := buildHeaderedAlgorithm(st, testWasmMagic)
	require.NoError(t, ast.Install(st, wrong))
	require.NoError(t, ast.Install(st, right))

	in := queue.New(0)
	wc := in.NewWriteCursor(0)
	require.NoError(t, writeUint32(wc, testWasmMagic))
	require.NoError(t, writeVaruint32(wc, 17))
	in.FreezeEOF()
	out := queue.New(0)

	sel := New(
		&Algorithm{Name: "wrong", Root: wrong, Symtab: st},
		&Algorithm{Name: "right", Root: right, Symtab: st},
	)
	v, err := sel.Run(in, out)
	require.NoError(t, err)
	require.Equal(t, int64(17), v)
}
