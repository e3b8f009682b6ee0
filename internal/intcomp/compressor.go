package intcomp

import "github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"

// Compressor drives the full pipeline (spec §4.7/§4.8): scan a flattened
// integer stream for repeated windows, score and select the most
// profitable ones as abbreviations, then synthesize a replacement filter
// algorithm that decodes them back. Shaped after compress.go's own
// Compressor (a small tunable-parameter struct with a single Compress
// entry point), generalized from a byte/window LZ scan to this trie/
// abbreviation model.
type Compressor struct {
	Flags Flags
	Mode  Mode
}

// NewCompressor returns a Compressor configured with DefaultFlags running
// in ModePlain.
func NewCompressor() *Compressor {
	return &Compressor{Flags: DefaultFlags(), Mode: ModePlain}
}

// Compress scans stream, selects abbreviation candidates, and returns the
// synthesized algorithm alongside the candidates it bound (so a caller can
// also abbreviate the stream itself by substituting each candidate's
// matched windows with its assigned index).
func (c *Compressor) Compress(st *ast.SymbolTable, stream []int64) (*ast.Node, []*Candidate) {
	trie := NewTrie()
	trie.Scan(stream, c.Flags.PatternLengthLimit)

	collected := Collect(trie, c.Flags)
	selected := Select(collected, c.Flags)

	if c.Flags.UseHuffman {
		root := BuildTree(selected, c.Flags.MaxPathLength)
		_ = Codes(root) // codes are computed and discarded; the synthesized algorithm dispatches on a varuint32 selector
	}

	algo := Synthesize(st, selected, c.Mode)
	if err := ast.Install(st, algo); err != nil {
		panic("intcomp: synthesized algorithm failed to install: " + err.Error())
	}
	return algo, selected
}

// Abbreviate rewrites stream (greedy, longest-candidate-first at each
// position), replacing every matched candidate window with its
// abbreviation-selector value (index+1, since selector 0 is reserved for
// Synthesize's literal escape). A stream value that matches no candidate
// is emitted as the pair (0, value), so the synthesized algorithm's
// selector switch sees a uniform stream of selectors.
func Abbreviate(stream []int64, candidates []*Candidate) []int64 {
	byLen := make(map[int][]*Candidate)
	maxLen := 0
	for _, c := range candidates {
		l := len(c.Path)
		byLen[l] = append(byLen[l], c)
		if l > maxLen {
			maxLen = l
		}
	}

	var out []int64
	for i := 0; i < len(stream); {
		matched := false
		for l := maxLen; l >= 1; l-- {
			if i+l > len(stream) {
				continue
			}
			for _, c := range byLen[l] {
				if windowEquals(stream[i:i+l], c.Path) {
					out = append(out, int64(c.Index+1))
					i += l
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			out = append(out, 0, stream[i])
			i++
		}
	}
	return out
}

func windowEquals(a []int64, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
