package casm

import (
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ast"
	"github.com/WebAssembly/decompressor-prototype-sub000/internal/codec"
)

// WriteTo encodes s as a sequence of signed LEB128 varints to w (the
// on-disk/on-wire shape of a flattened algorithm, spec §6.1's CASM binary).
func (s *IntStream) WriteTo(w codec.ByteWriter) error {
	for _, v := range s.Values {
		if err := codec.WriteVarint64(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadIntStream decodes count varints from r into a fresh IntStream.
func ReadIntStream(r codec.ByteReader, count int) (*IntStream, error) {
	s := &IntStream{Values: make([]int64, 0, count)}
	for i := 0; i < count; i++ {
		v, err := codec.ReadVarint64(r)
		if err != nil {
			return nil, err
		}
		s.Values = append(s.Values, v)
	}
	return s, nil
}

// WriteSection writes ss's symbol names ahead of s's flattened values, so a
// CASM binary can be read back by a process that does not share ss in
// memory with the one that flattened it. Grounded on original_source's
// SymbolIndex, which persists names rather than leaving them implicit.
func WriteSection(w codec.ByteWriter, ss *ast.SectionSymbols, s *IntStream) error {
	if err := codec.WriteUint32(w, uint32(ss.Len())); err != nil {
		return err
	}
	for i := 0; i < ss.Len(); i++ {
		name := ss.At(i).Name
		if err := codec.WriteUint32(w, uint32(len(name))); err != nil {
			return err
		}
		for _, b := range []byte(name) {
			if err := codec.WriteUint8(w, b); err != nil {
				return err
			}
		}
	}
	if err := codec.WriteUint32(w, uint32(len(s.Values))); err != nil {
		return err
	}
	return s.WriteTo(w)
}

// ReadSection is WriteSection's inverse: it recreates each named symbol
// under st in writer order, so the rebuilt SectionSymbols assigns the same
// indices Inflate's Symbol_lookup tags expect, then reads the value stream.
func ReadSection(r codec.ByteReader, st *ast.SymbolTable) (*ast.SectionSymbols, *IntStream, error) {
	ss := ast.NewSectionSymbols()
	n, err := codec.ReadUint32(r)
	if err != nil {
		return nil, nil, err
	}
	for i := uint32(0); i < n; i++ {
		length, err := codec.ReadUint32(r)
		if err != nil {
			return nil, nil, err
		}
		buf := make([]byte, length)
		for j := range buf {
			b, err := codec.ReadUint8(r)
			if err != nil {
				return nil, nil, err
			}
			buf[j] = b
		}
		ss.Index(st.GetSymbol(string(buf)))
	}
	count, err := codec.ReadUint32(r)
	if err != nil {
		return nil, nil, err
	}
	s, err := ReadIntStream(r, int(count))
	if err != nil {
		return nil, nil, err
	}
	return ss, s, nil
}
