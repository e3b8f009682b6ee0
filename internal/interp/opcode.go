package interp

import (
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/codec"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"
)

// evalOpcode reads a selector of the node's declared width and dispatches
// to the matching case body (spec §4.4.4 opcode()). Only the single-level
// selector is handled: nested opcode selectors that reuse the outer read
// (ast.OpcodeRange.Shift > 0) are not decoded, matching the source's own
// "multibyte opcode encoding marked broken" comment (spec §9).
func (ip *Interp) evalOpcode(n *ast.Node, mode Mode) (int64, error) {
	if !mode.CanRead() {
		return 0, ferr.New(ferr.Fatal, "opcode: requires a read-capable mode")
	}
	width := uint(n.Children[0].IntValue)
	if width == 0 {
		width = 8
	}

	var v uint64
	if width%8 == 0 {
		for i := uint(0); i < width/8; i++ {
			b, err := codec.ReadUint8(ip.rc)
			if err != nil {
				return 0, err
			}
			v = (v << 8) | uint64(b)
		}
	} else {
		for i := uint(0); i < width; i++ {
			bit, ok, err := ip.rc.ReadBit()
			if err != nil {
				return 0, err
			}
			if !ok {
				return 0, ferr.New(ferr.MalformedInput, "opcode: unexpected end of input")
			}
			v = (v << 1) | uint64(bit)
		}
	}
	ip.lastRead = int64(v)

	c := n.CaseNode(int64(v))
	if c == nil {
		return 0, ferr.New(ferr.MalformedInput, "opcode: no case for selector %#x", v)
	}

	if mode.CanWrite() {
		if width%8 == 0 {
			for i := int(width/8) - 1; i >= 0; i-- {
				if err := codec.WriteUint8(ip.wc, uint8(v>>(uint(i)*8))); err != nil {
					return 0, err
				}
			}
		}
	}

	return ip.Eval(c.Children[1], mode)
}
