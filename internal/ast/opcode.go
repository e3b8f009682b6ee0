package ast

import (
	"math/bits"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"
)

// OpcodeRange is one disjoint [Min,Max] selector-value range an OpcodeNode
// case occupies, together with the shift needed to decode any nested
// opcode selector reusing the same read (spec §4.3 OpcodeNode validation).
//
// Bit-range bookkeeping here (mask construction from a selector width)
// follows the shape of _examples/hejops-gone/mask/mask.go's byte bit-range
// helpers, generalized from a single byte to an arbitrary-width selector
// using math/bits — the same stdlib package flapc itself reaches for
// (arena.go) when it needs bit counts, so no third-party bit-twiddling
// library is warranted here (DESIGN.md: stdlib-justified).
type OpcodeRange struct {
	Key    int64 // the case's own selector value, before shifting
	Min    Max64 // inclusive
	Max    Max64
	Shift  uint // bits consumed by any nested selector reusing lastRead
	Width  uint // this case's own selector width, in bits
}

// Max64 is an inclusive 64-bit range bound (spec: "total width ≤ 64").
type Max64 = uint64

// mask returns (1<<w)-1, saturating at 64 bits.
func mask(w uint) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}

// widthFor returns the number of bits needed to address an outer-selector
// format of the given byte width (e.g. a uint8 selector → 8 bits).
func widthFor(formatBits uint) uint { return formatBits }

// BuildOpcodeRanges computes the case-range vector for an OpcodeNode
// (spec §4.3): for each `case`, compute the selector width from the outer
// format, recursively fold in the width of any nested opcode subtree that
// reuses the outer read (signaled by a lastRead child), derive
// [key<<innerWidth, (key<<innerWidth)|mask(innerWidth)], and require all
// ranges pairwise disjoint with total width <= 64.
func BuildOpcodeRanges(opcodeNode *Node, outerFormatBits uint) ([]OpcodeRange, error) {
	if opcodeNode.Kind != KindOpcode {
		return nil, ferr.New(ferr.Fatal, "BuildOpcodeRanges: not an opcode node")
	}
	if outerFormatBits == 0 || outerFormatBits > 64 {
		return nil, ferr.New(ferr.RangeError, "opcode: invalid selector width %d", outerFormatBits)
	}
	var ranges []OpcodeRange
	// Children[0] is the selector format node; remaining children are
	// `case` nodes (binary: key, body).
	for _, c := range opcodeNode.Children[1:] {
		if c.Kind != KindCase {
			continue
		}
		key := caseKey(c.Children[0])
		innerWidth := nestedSelectorWidth(c.Children[1])
		totalWidth := widthFor(outerFormatBits) + innerWidth
		if totalWidth > 64 {
			return nil, ferr.New(ferr.RangeError, "opcode: combined selector width %d exceeds 64 bits", totalWidth)
		}
		lo := uint64(key) << innerWidth
		hi := lo | mask(innerWidth)
		r := OpcodeRange{Key: key, Min: lo, Max: hi, Shift: innerWidth, Width: totalWidth}
		for _, existing := range ranges {
			if rangesOverlap(existing, r) {
				return nil, ferr.New(ferr.RangeError, "opcode: case ranges [%d,%d] and [%d,%d] overlap", existing.Min, existing.Max, r.Min, r.Max)
			}
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func rangesOverlap(a, b OpcodeRange) bool {
	return a.Min <= b.Max && b.Min <= a.Max
}

// caseKey extracts a case's selector literal value.
func caseKey(literal *Node) int64 {
	if literal.Kind == KindLiteralUse && len(literal.Children) > 0 {
		return literal.Children[0].IntValue
	}
	return literal.IntValue
}

// nestedSelectorWidth returns the additional selector width contributed by
// a nested opcode subtree under body that reuses the outer read (signaled
// by a KindLastRead child), or 0 if body does not nest another opcode.
func nestedSelectorWidth(body *Node) uint {
	if body.Kind != KindOpcode {
		return 0
	}
	if len(body.Children) == 0 || !reusesLastRead(body.Children[0]) {
		return 0
	}
	// The nested opcode's own format node carries its bit width encoded
	// as IntValue (set by the parser/builder); BuildOpcodeRanges is not
	// re-entered here because the outer build only needs the width, not
	// the nested case map (the nested node builds its own ranges when
	// Install walks down to it).
	return uint(body.Children[0].IntValue)
}

func reusesLastRead(formatNode *Node) bool {
	return formatNode.Kind == KindLastRead
}

// popcountWidth is a small math/bits-grounded helper that sizes a selector
// format for N candidates. intcomp's synthesizer does not call it; its
// selector is always a varuint32.
func popcountWidth(n int) uint {
	if n <= 1 {
		return 1
	}
	return uint(bits.Len(uint(n - 1)))
}

// MinimalSelectorWidth returns the number of bits needed to distinguish n
// values.
func MinimalSelectorWidth(n int) uint { return popcountWidth(n) }
