// Package intcomp implements the integer-pattern compressor (spec §4.7,
// §4.8): a count-node trie over a flattened integer stream, a heap-based
// abbreviation selector under weight/count cutoffs, an optional Huffman
// encoder with bounded path length, and the synthesizer that emits a new
// filter algorithm decoding the chosen abbreviations.
//
// Grounded directly on flapc's own compress.go (window/match-length scan,
// a small tunable-parameter Compressor struct with one Compress
// entry-point) generalized from an LZ-style byte compressor to this
// domain's count-node/abbreviation model, and on
// _examples/other_examples/...huffman.go's container/heap-based tree
// build for the Huffman stage.
package intcomp

// Flags holds the compressor's tunable cutoffs (spec §4.7 step 3/5),
// named after original_source/src/intcomp/CompressionFlags.* (pattern
// length limit, count/weight cutoffs, and the Huffman max path length,
// default 32, preserved from the original).
type Flags struct {
	PatternLengthLimit int
	CountCutoff        int64
	WeightCutoff       int64
	SmallValueCutoff   int64
	MaxAbbreviations   int
	UseHuffman         bool
	MaxPathLength      int
}

// DefaultFlags returns the original's defaults.
func DefaultFlags() Flags {
	return Flags{
		PatternLengthLimit: 8,
		CountCutoff:        2,
		WeightCutoff:       4,
		SmallValueCutoff:   4,
		MaxAbbreviations:   256,
		UseHuffman:         false,
		MaxPathLength:      32,
	}
}
