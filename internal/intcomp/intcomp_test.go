package intcomp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/interp"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/queue"
)

func TestTrieScanCountsRepeatedWindows(t *testing.T) {
	trie := NewTrie()
	trie.Scan([]int64{1, 2, 1, 2, 1, 2, 3}, 2)

	flags := DefaultFlags()
	flags.CountCutoff = 2
	flags.WeightCutoff = 1
	candidates := Collect(trie, flags)

	var found bool
	for _, c := range candidates {
		if len(c.Path) == 2 && c.Path[0] == 1 && c.Path[1] == 2 {
			require.Equal(t, 3, c.Count)
			found = true
		}
	}
	require.True(t, found, "expected the (1,2) window to be counted 3 times")
}

func TestSelectOrdersByWeightDescending(t *testing.T) {
	candidates := []*Candidate{
		{Path: []int64{1}, Count: 5, Weight: 5},
		{Path: []int64{2}, Count: 1, Weight: 20},
		{Path: []int64{3}, Count: 3, Weight: 9},
	}
	flags := DefaultFlags()
	flags.MaxAbbreviations = 3

	selected := Select(candidates, flags)
	require.Len(t, selected, 3)
	require.Equal(t, int64(20), selected[0].Weight)
	require.Equal(t, 0, selected[0].Index)
	require.Equal(t, int64(9), selected[1].Weight)
	require.Equal(t, int64(5), selected[2].Weight)
}

func TestSelectRespectsMaxAbbreviations(t *testing.T) {
	candidates := []*Candidate{
		{Path: []int64{1}, Weight: 1},
		{Path: []int64{2}, Weight: 2},
		{Path: []int64{3}, Weight: 3},
	}
	flags := DefaultFlags()
	flags.MaxAbbreviations = 1

	selected := Select(candidates, flags)
	require.Len(t, selected, 1)
	require.Equal(t, int64(3), selected[0].Weight)
}

func TestBuildTreeEnforcesMaxPathLength(t *testing.T) {
	counts := []int{1, 1, 2, 3, 5, 8, 13, 21}
	candidates := make([]*Candidate, 0, len(counts))
	for i, n := range counts {
		candidates = append(candidates, &Candidate{Path: []int64{int64(i)}, Count: n, Index: i})
	}
	root := BuildTree(candidates, 3)
	require.NotNil(t, root)
	require.LessOrEqual(t, depthOf(root), 3)

	codes := Codes(root)
	require.Len(t, codes, len(candidates))
	for _, code := range codes {
		require.LessOrEqual(t, len(code.Bits), 3)
	}
}

// TestCompressThenInterpretRoundTrip covers spec §4.8's round-trip law: an
// abbreviated stream, run through the synthesized algorithm in
// ReadAndWrite mode, must write back out the original stream.
func TestCompressThenInterpretRoundTrip(t *testing.T) {
	st := ast.New()
	// Eight 5s (a strictly heaviest (5,5,5) 3-window once PatternLengthLimit
	// caps the scan at 3) followed by a lone 9, to make the winning
	// candidate unambiguous.
	original := []int64{5, 5, 5, 5, 5, 5, 5, 5, 9}

	c := NewCompressor()
	c.Flags.PatternLengthLimit = 3
	c.Flags.MaxAbbreviations = 1

	algo, selected := c.Compress(st, original)
	require.Len(t, selected, 1)
	require.Equal(t, []int64{5, 5, 5}, selected[0].Path)

	abbrev := Abbreviate(original, selected)
	require.Less(t, len(abbrev), len(original))

	fileSym := st.GetSymbol("File")
	callFile := st.Create(ast.KindEval, fileSym)
	root := st.Create(ast.KindFile, append(algo.Children, callFile)...)
	require.NoError(t, ast.Install(st, root))

	in := queue.New(0)
	wc := in.NewWriteCursor(0)
	require.NoError(t, writeUint32LE(wc, wasmMagic))
	for _, v := range abbrev {
		require.NoError(t, writeVaruint32(wc, uint32(v)))
	}
	in.FreezeEOF()

	out := queue.New(0)
	ip := interp.New(in, out, st)
	_, err := ip.Eval(root, interp.ReadAndWrite)
	require.NoError(t, err)

	got := readVaruint32StreamFrom(t, out, 4, len(original))
	require.Equal(t, original, got)
}

func writeUint32LE(wc *queue.WriteCursor, v uint32) error {
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

func readVaruint32StreamFrom(t *testing.T, q *queue.Queue, startAddr int, wantN int) []int64 {
	t.Helper()
	rc := q.NewReadCursor(queue.Address(startAddr))
	out := make([]int64, 0, wantN)
	for len(out) < wantN {
		var v uint32
		var shift uint
		for {
			b, ok, err := rc.ReadByte()
			require.NoError(t, err)
			require.True(t, ok)
			v |= uint32(b&0x7f) << shift
			if b&0x80 == 0 {
				break
			}
			shift += 7
		}
		out = append(out, int64(v))
	}
	return out
}
