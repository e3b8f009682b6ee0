package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntegerCanonicalization(t *testing.T) {
	st := New()
	a := st.CreateInteger(KindVaruint32, 624485, FormatDecimal)
	b := st.CreateInteger(KindVaruint32, 624485, FormatDecimal)
	require.Same(t, a, b, "mergable integers with equal (kind,value,format,default) must share one instance")

	c := st.CreateInteger(KindVaruint32, 624485, FormatHex)
	require.NotSame(t, a, c, "differing format must not be merged")
}

func TestSymbolUniquing(t *testing.T) {
	st := New()
	a := st.GetSymbol("File")
	b := st.GetSymbol("File")
	require.Same(t, a, b)
}

func TestParamValidation(t *testing.T) {
	st := New()
	params := st.Create(KindParamsDecl, st.Create(KindVoid), st.Create(KindVoid))
	locals := st.Create(KindLocalsDecl)
	p0 := st.Create(KindParam, st.CreateInteger(KindInt32, 0, FormatDecimal), st.Create(KindVoid))
	body := st.Create(KindSequence, p0)
	sym := st.GetSymbol("F")
	def := st.Create(KindDefine, sym, params, locals, body)

	require.NoError(t, Install(st, def))
}

func TestParamOutOfRangeIsArityMismatch(t *testing.T) {
	st := New()
	params := st.Create(KindParamsDecl) // zero params
	locals := st.Create(KindLocalsDecl)
	pBad := st.Create(KindParam, st.CreateInteger(KindInt32, 0, FormatDecimal), st.Create(KindVoid))
	body := st.Create(KindSequence, pBad)
	sym := st.GetSymbol("G")
	def := st.Create(KindDefine, sym, params, locals, body)

	err := Install(st, def)
	require.Error(t, err)
}

// TestOpcodeDispatchRanges covers spec §8 scenario 5: opcode(uint8,
// case(0x40, uint8), case(0x41, uint32)) — two 8-bit keys, no nested
// selector reuse, so each occupies a single disjoint point range.
func TestOpcodeDispatchRanges(t *testing.T) {
	st := New()
	format := st.CreateInteger(KindInt32, 8, FormatDecimal)
	case40 := st.Create(KindCase, st.CreateInteger(KindInt32, 0x40, FormatHex), st.Create(KindUint8))
	case41 := st.Create(KindCase, st.CreateInteger(KindInt32, 0x41, FormatHex), st.Create(KindUint32))
	op := st.Create(KindOpcode, format, case40, case41)

	require.NoError(t, Install(st, op))
	ranges := op.OpcodeRanges()
	require.Len(t, ranges, 2)
	require.Equal(t, uint64(0x40), ranges[0].Min)
	require.Equal(t, uint64(0x40), ranges[0].Max)
	require.Equal(t, uint64(0x41), ranges[1].Min)
	require.Equal(t, uint64(0x41), ranges[1].Max)
}

func TestOverlappingOpcodeRangesFail(t *testing.T) {
	st := New()
	format := st.CreateInteger(KindInt32, 8, FormatDecimal)
	caseA := st.Create(KindCase, st.CreateInteger(KindInt32, 0x10, FormatHex), st.Create(KindUint8))
	caseB := st.Create(KindCase, st.CreateInteger(KindInt32, 0x10, FormatHex), st.Create(KindUint32))
	op := st.Create(KindOpcode, format, caseA, caseB)

	err := Install(st, op)
	require.Error(t, err)
}

func TestSectionSymbolsAssignDenseIndices(t *testing.T) {
	ss := NewSectionSymbols()
	st := New()
	a := st.GetSymbol("alpha")
	b := st.GetSymbol("beta")

	require.Equal(t, 0, ss.Index(a))
	require.Equal(t, 1, ss.Index(b))
	require.Equal(t, 0, ss.Index(a)) // stable on re-reference
	require.Same(t, a, ss.At(0))
}

func TestEvalArityMismatch(t *testing.T) {
	st := New()
	params := st.Create(KindParamsDecl, st.Create(KindVoid))
	locals := st.Create(KindLocalsDecl)
	body := st.Create(KindSequence, st.Create(KindVoid))
	sym := st.GetSymbol("H")
	def := st.Create(KindDefine, sym, params, locals, body)

	call := st.Create(KindEval, sym) // missing the one required arg
	file := st.Create(KindFile, def, call)

	err := Install(st, file)
	require.Error(t, err)
}
