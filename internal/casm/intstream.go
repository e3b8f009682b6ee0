// Package casm implements flatten and inflate (spec §4.6): serializing a
// filter AST to a linear integer stream using the predefined callback
// actions as framing markers, and reconstructing the AST from that stream.
//
// flapc has no serialization layer of its own to ground this on (codegen.go
// emits machine code, not a self-describing tree); this package follows
// spec §4.6's own postorder description directly, in the teacher's texture
// (plain structs, switch-based dispatch, no reflection).
package casm

// IntStream is the flat integer-valued medium flatten writes to and inflate
// reads from (spec §4.6). A real pipeline backs this with
// internal/queue via varuint/varint codecs (see WriteTo/ReadIntStream in
// wire.go); this in-memory form is what the AST-level Flatten/Inflate
// functions operate on directly, matching spec §4.6's description of the
// shape before it is itself encoded to bytes.
type IntStream struct {
	Values []int64
}

func (s *IntStream) Write(v int64) { s.Values = append(s.Values, v) }

func (s *IntStream) Read() (int64, bool) {
	if len(s.Values) == 0 {
		return 0, false
	}
	v := s.Values[0]
	s.Values = s.Values[1:]
	return v, true
}
