package casm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
)

// TestFlattenInflateRoundTrip covers spec §8 round-trip law 1: flatten then
// inflate reproduces a structurally equivalent tree.
func TestFlattenInflateRoundTrip(t *testing.T) {
	st := ast.New()
	ss := ast.NewSectionSymbols()

	sym := st.GetSymbol("Body")
	ss.Index(sym)
	lit := st.CreateInteger(ast.KindVaruint32, 624485, ast.FormatDecimal)
	defMarker := st.CreateIntegerDefault(ast.KindUint8)
	seq := st.Create(ast.KindSequence, lit, defMarker, sym)

	var s IntStream
	Flatten(seq, ss, &s)

	got, err := Inflate(&s, st, ss)
	require.NoError(t, err)
	require.Equal(t, ast.KindSequence, got.Kind)
	require.Len(t, got.Children, 3)
	require.Same(t, lit, got.Children[0])
	require.Same(t, defMarker, got.Children[1])
	require.Same(t, sym, got.Children[2])
}

// TestFlattenDefaultVsNonDefaultIntegers checks the (kind,0) vs
// (kind,format+1,value) emission shapes are distinguishable on inflate.
func TestFlattenDefaultVsNonDefaultIntegers(t *testing.T) {
	st := ast.New()
	ss := ast.NewSectionSymbols()
	a := st.CreateIntegerDefault(ast.KindVarint32)
	b := st.CreateInteger(ast.KindVarint32, -5, ast.FormatSignedDecimal)
	seq := st.Create(ast.KindSequence, a, b)

	var s IntStream
	Flatten(seq, ss, &s)
	got, err := Inflate(&s, st, ss)
	require.NoError(t, err)
	require.True(t, got.Children[0].IntDefault)
	require.Equal(t, int64(0), got.Children[0].IntValue)
	require.False(t, got.Children[1].IntDefault)
	require.Equal(t, int64(-5), got.Children[1].IntValue)
	require.Equal(t, ast.FormatSignedDecimal, got.Children[1].IntFormat)
}

// TestWriteReadSectionCrossSymbolTable covers the cmd/cast2casm ->
// cmd/casm2cast boundary: a section written under one *ast.SymbolTable must
// inflate correctly under a fresh one, since the two CLIs run as separate
// processes and never share ss or st in memory.
func TestWriteReadSectionCrossSymbolTable(t *testing.T) {
	st := ast.New()
	ss := ast.NewSectionSymbols()
	sym := st.GetSymbol("File")
	ss.Index(sym)
	seq := st.Create(ast.KindSequence, sym, st.CreateInteger(ast.KindVaruint32, 42, ast.FormatDecimal))

	var s IntStream
	Flatten(seq, ss, &s)

	buf := &memByteBuf{}
	require.NoError(t, WriteSection(buf, ss, &s))

	st2 := ast.New()
	buf.pos = 0
	ss2, s2, err := ReadSection(buf, st2)
	require.NoError(t, err)

	got, err := Inflate(s2, st2, ss2)
	require.NoError(t, err)
	require.Equal(t, ast.KindSequence, got.Kind)
	require.Equal(t, ast.KindSymbol, got.Children[0].Kind)
	require.Equal(t, "File", got.Children[0].Name)
	require.Equal(t, int64(42), got.Children[1].IntValue)
}

// memByteBuf is a minimal in-memory codec.ByteReader/ByteWriter for testing
// the wire framing without pulling in internal/queue here.
type memByteBuf struct {
	data []byte
	pos  int
}

func (b *memByteBuf) WriteByte(c byte) error {
	b.data = append(b.data, c)
	return nil
}

func (b *memByteBuf) ReadByte() (byte, bool, error) {
	if b.pos >= len(b.data) {
		return 0, false, nil
	}
	c := b.data[b.pos]
	b.pos++
	return c, true, nil
}
