package cast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
)

func TestParseSimpleAlgorithm(t *testing.T) {
	st := ast.New()
	src := `
(algorithm
  (fileHeader (uint32 0x6d736100))
  (define File (paramsDecl) (localsDecl)
    (sequence
      (loopUnbounded
        (switch varuint32
          (case (int32 0) varuint32)
          (case (int32 1) (write varuint32 (varuint32 5))))))))
`
	n, err := Parse(st, src)
	require.NoError(t, err)
	require.Equal(t, ast.KindAlgorithm, n.Kind)
	require.Len(t, n.Children, 2)
	require.Equal(t, ast.KindFileHeader, n.Children[0].Kind)
	require.Equal(t, ast.KindDefine, n.Children[1].Kind)

	require.NoError(t, ast.Install(st, n))
}

func TestParsePrintRoundTrip(t *testing.T) {
	st := ast.New()
	src := `(sequence (write varuint32 (varuint32 7)) (write varuint32 (varuint32 9)))`
	n, err := Parse(st, src)
	require.NoError(t, err)

	printed := Print(n)

	st2 := ast.New()
	n2, err := Parse(st2, printed)
	require.NoError(t, err)

	require.Equal(t, ast.KindSequence, n2.Kind)
	require.Len(t, n2.Children, 2)
	require.Equal(t, int64(7), n2.Children[0].Children[1].IntValue)
	require.Equal(t, int64(9), n2.Children[1].Children[1].IntValue)
}

func TestParseRejectsUnknownKind(t *testing.T) {
	st := ast.New()
	_, err := Parse(st, `(notAKind)`)
	require.Error(t, err)
}
