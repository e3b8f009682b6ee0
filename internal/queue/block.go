package queue

import "github.com/WebAssembly/decompressor-prototype-sub000/internal/codec"

// BeginBlock reserves a fixed-width varuint32 size field at wc's current
// address (spec §4.2 "a writer reserves the fixed-width form, records the
// cursor"), returning the address of that slot so EndBlock can patch it.
func BeginBlock(wc *WriteCursor) (slot Address, err error) {
	slot = wc.Address()
	n := codec.FixedWidthBytes(32)
	if err := codec.WriteFixedVaruint64(wc, 0, n); err != nil {
		return 0, err
	}
	return slot, nil
}

// EndBlock patches the size field reserved by BeginBlock once the block
// body has been written. When minimize is false (spec scenario 3) it
// writes the fixed-width (5-byte) varuint32 encoding of the body size.
// When minimize is true (spec scenario 4) it writes the minimal varuint32
// encoding and closes the resulting gap by copying the body backward.
func EndBlock(wc *WriteCursor, slot Address, minimize bool) error {
	n := codec.FixedWidthBytes(32)
	bodyStart := slot + Address(n)
	bodyEnd := wc.Address()
	size := uint64(bodyEnd - bodyStart)

	patch := wc.q.NewWriteCursor(slot)
	defer patch.Close()

	if !minimize {
		return codec.WriteFixedVaruint64(patch, size, n)
	}

	if err := codec.WriteVaruint64(patch, size); err != nil {
		return err
	}
	minLen := Address(patch.Address() - slot)
	gap := Address(n) - minLen
	if gap == 0 {
		return nil
	}
	newBodyStart := slot + minLen
	if err := wc.q.CopyRange(newBodyStart, bodyStart, bodyEnd); err != nil {
		return err
	}
	newEnd := bodyEnd - gap
	if err := wc.q.Truncate(newEnd); err != nil {
		return err
	}
	wc.Seek(newEnd)
	return nil
}
