// Package codec implements the bit-exact readers and writers for the
// filter toolchain's fixed-width, LEB128, and single-bit formats (spec
// §4.2). Every function here is pure: it takes a byteReader/byteWriter
// (small interfaces satisfied by the queue cursors) and does no buffering
// of its own, matching flapc's own binary.LittleEndian-based encoders
// (compress.go, plt_got.go, elf.go) generalized from fixed 16/32-bit words
// to the filter toolchain's open set of widths and LEB128 variants.
package codec

import "github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"

// ByteReader is the minimal read side a codec needs: one byte at a time,
// with io.EOF-shaped signaling folded into the bool return (queue cursors
// implement this directly; see internal/queue).
type ByteReader interface {
	ReadByte() (b byte, ok bool, err error)
}

// ByteWriter is the minimal write side a codec needs.
type ByteWriter interface {
	WriteByte(b byte) error
}

// ReadUint8 reads one raw byte.
func ReadUint8(r ByteReader) (uint8, error) {
	b, ok, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ferr.New(ferr.MalformedInput, "uint8: unexpected end of input")
	}
	return b, nil
}

// WriteUint8 writes one raw byte.
func WriteUint8(w ByteWriter, v uint8) error {
	return w.WriteByte(v)
}

// ReadUint32 reads a little-endian fixed 4-byte word.
func ReadUint32(r ByteReader) (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, ok, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ferr.New(ferr.MalformedInput, "uint32: unexpected end of input")
		}
		v |= uint32(b) << (8 * uint(i))
	}
	return v, nil
}

// WriteUint32 writes a little-endian fixed 4-byte word.
func WriteUint32(w ByteWriter, v uint32) error {
	for i := 0; i < 4; i++ {
		if err := w.WriteByte(byte(v >> (8 * uint(i)))); err != nil {
			return err
		}
	}
	return nil
}

// ReadUint64 reads a little-endian fixed 8-byte word.
func ReadUint64(r ByteReader) (uint64, error) {
	var v uint64
	for i := 0; i < 8; i++ {
		b, ok, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ferr.New(ferr.MalformedInput, "uint64: unexpected end of input")
		}
		v |= uint64(b) << (8 * uint(i))
	}
	return v, nil
}

// WriteUint64 writes a little-endian fixed 8-byte word.
func WriteUint64(w ByteWriter, v uint64) error {
	for i := 0; i < 8; i++ {
		if err := w.WriteByte(byte(v >> (8 * uint(i)))); err != nil {
			return err
		}
	}
	return nil
}

// ReadVaruint32 reads an unsigned LEB128 value into a 32-bit word. A 5th
// byte carrying payload bits beyond bit 31, or a further continuation byte,
// is MalformedInput.
func ReadVaruint32(r ByteReader) (uint32, error) {
	v, err := readVaruint(r, 32)
	return uint32(v), err
}

// ReadVaruint64 reads an unsigned LEB128 value into a 64-bit word.
func ReadVaruint64(r ByteReader) (uint64, error) {
	return readVaruint(r, 64)
}

func readVaruint(r ByteReader, width uint) (uint64, error) {
	var result uint64
	var shift uint
	maxShift := ((width + 6) / 7) * 7
	for {
		b, ok, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ferr.New(ferr.MalformedInput, "varuint%d: unexpected end of input", width)
		}
		if (shift >= width && b&0x7f != 0) || (shift < width && uint64(b&0x7f)>>(width-shift) != 0) {
			return 0, ferr.New(ferr.MalformedInput, "varuint%d: value overflows %d bits", width, width)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift > maxShift {
			return 0, ferr.New(ferr.MalformedInput, "varuint%d: too many continuation bytes", width)
		}
	}
}

// WriteVaruint32 writes v as unsigned LEB128.
func WriteVaruint32(w ByteWriter, v uint32) error {
	return writeVaruint(w, uint64(v))
}

// WriteVaruint64 writes v as unsigned LEB128.
func WriteVaruint64(w ByteWriter, v uint64) error {
	return writeVaruint(w, v)
}

func writeVaruint(w ByteWriter, v uint64) error {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if err := w.WriteByte(b); err != nil {
			return err
		}
		if v == 0 {
			return nil
		}
	}
}

// ReadVarint32 reads a signed LEB128 value into a 32-bit word, sign
// extending per spec §4.2: "if the sign bit (bit 6 of last byte) is set and
// shift < target-width, sign-extend with ~0 << shift."
func ReadVarint32(r ByteReader) (int32, error) {
	v, err := readVarint(r, 32)
	return int32(v), err
}

// ReadVarint64 reads a signed LEB128 value into a 64-bit word.
func ReadVarint64(r ByteReader) (int64, error) {
	return readVarint(r, 64)
}

func readVarint(r ByteReader, width uint) (int64, error) {
	var result int64
	var shift uint
	var b byte
	var ok bool
	var err error
	maxShift := ((width + 6) / 7) * 7
	for {
		b, ok, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ferr.New(ferr.MalformedInput, "varint%d: unexpected end of input", width)
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift > maxShift {
			return 0, ferr.New(ferr.MalformedInput, "varint%d: too many continuation bytes", width)
		}
	}
	if shift < width && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, nil
}

// WriteVarint32 writes v as signed LEB128.
func WriteVarint32(w ByteWriter, v int32) error {
	return writeVarint(w, int64(v))
}

// WriteVarint64 writes v as signed LEB128.
func WriteVarint64(w ByteWriter, v int64) error {
	return writeVarint(w, v)
}

func writeVarint(w ByteWriter, v int64) error {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		done := (v == 0 && !signBitSet) || (v == -1 && signBitSet)
		if !done {
			b |= 0x80
		}
		if err := w.WriteByte(b); err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// FixedWidthBytes returns ceil(wordBits/7), the number of bytes a
// fixed-width varuint encoding of a wordBits-wide value occupies
// regardless of its actual value (spec §4.2, used for back-patched block
// sizes before minimization).
func FixedWidthBytes(wordBits uint) int {
	return int((wordBits + 6) / 7)
}

// WriteFixedVaruint64 writes v as unsigned LEB128 padded with continuation
// bits to exactly n bytes (spec §4.2's "fixed-width variant").
func WriteFixedVaruint64(w ByteWriter, v uint64, n int) error {
	for i := 0; i < n; i++ {
		b := byte(v & 0x7f)
		v >>= 7
		if i != n-1 {
			b |= 0x80
		}
		if err := w.WriteByte(b); err != nil {
			return err
		}
	}
	if v != 0 {
		return ferr.New(ferr.RangeError, "fixed varuint: value does not fit in %d bytes", n)
	}
	return nil
}
