package queue

import (
	"testing"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/codec"
)

func writeBytes(t *testing.T, q *Queue, data []byte) {
	t.Helper()
	wc := q.NewWriteCursor(q.Length())
	defer wc.Close()
	for _, b := range data {
		if err := wc.WriteByte(b); err != nil {
			t.Fatalf("WriteByte: %v", err)
		}
	}
}

func TestQueueReadWriteRoundTrip(t *testing.T) {
	q := New(4) // small pages to force multi-page traversal
	writeBytes(t, q, []byte("hello world"))
	q.FreezeEOF()

	rc := q.NewReadCursor(0)
	defer rc.Close()
	var got []byte
	for {
		b, ok, err := rc.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, b)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestFrozenWriteFails(t *testing.T) {
	q := New(0)
	q.FreezeEOF()
	wc := q.NewWriteCursor(q.Length())
	defer wc.Close()
	if err := wc.WriteByte(1); err == nil {
		t.Fatal("expected FrozenEof error, got nil")
	}
}

func TestPageRetirementRequiresNoLivePins(t *testing.T) {
	q := New(2) // 2-byte pages
	writeBytes(t, q, []byte{1, 2, 3, 4, 5, 6})

	rc := q.NewReadCursor(0)
	// Advance past the first page but keep the cursor open at address 2,
	// pinning page index 1.
	if _, ok, err := rc.ReadByte(); err != nil || !ok {
		t.Fatalf("ReadByte: ok=%v err=%v", ok, err)
	}
	if _, ok, err := rc.ReadByte(); err != nil || !ok {
		t.Fatalf("ReadByte: ok=%v err=%v", ok, err)
	}
	// Page 0 (addresses 0-1) is no longer referenced by this cursor (now
	// at address 2); it should be eligible for retirement on next write.
	writeBytes(t, q, []byte{7, 8})
	if _, ok := q.pages[0]; ok {
		t.Fatal("page 0 should have retired once unreferenced")
	}
	rc.Close()
}

func TestBlockBackpatchNonMinimized(t *testing.T) {
	q := New(0)
	wc := q.NewWriteCursor(q.Length())
	defer wc.Close()

	slot, err := BeginBlock(wc)
	if err != nil {
		t.Fatalf("BeginBlock: %v", err)
	}
	for _, b := range []byte{0x01, 0x02, 0x03} {
		if err := wc.WriteByte(b); err != nil {
			t.Fatalf("WriteByte: %v", err)
		}
	}
	if err := EndBlock(wc, slot, false); err != nil {
		t.Fatalf("EndBlock: %v", err)
	}

	want := []byte{0x83, 0x80, 0x80, 0x80, 0x00, 0x01, 0x02, 0x03}
	got := readAll(t, q)
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestBlockBackpatchMinimized(t *testing.T) {
	q := New(0)
	wc := q.NewWriteCursor(q.Length())
	defer wc.Close()

	slot, err := BeginBlock(wc)
	if err != nil {
		t.Fatalf("BeginBlock: %v", err)
	}
	for _, b := range []byte{0x01, 0x02, 0x03} {
		if err := wc.WriteByte(b); err != nil {
			t.Fatalf("WriteByte: %v", err)
		}
	}
	if err := EndBlock(wc, slot, true); err != nil {
		t.Fatalf("EndBlock: %v", err)
	}

	want := []byte{0x03, 0x01, 0x02, 0x03}
	got := readAll(t, q)
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestEobZeroSizeBlockIsImmediatelyAtEob(t *testing.T) {
	q := New(0)
	writeBytes(t, q, []byte{0xAA})
	q.FreezeEOF()

	rc := q.NewReadCursor(0)
	defer rc.Close()
	e := q.PushEob(rc.Address(), 0)
	if e.Failed {
		t.Fatal("expected a good eob")
	}
	if !rc.AtEob() {
		t.Fatal("expected immediate atEob for a zero-size block")
	}
	q.PopEob()
}

func readAll(t *testing.T, q *Queue) []byte {
	t.Helper()
	q.FreezeEOF()
	rc := q.NewReadCursor(0)
	defer rc.Close()
	var got []byte
	for {
		b, ok, err := rc.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, b)
	}
	return got
}

func TestVaruintOverQueueCursor(t *testing.T) {
	q := New(0)
	wc := q.NewWriteCursor(q.Length())
	if err := codec.WriteVaruint32(wc, 624485); err != nil {
		t.Fatalf("WriteVaruint32: %v", err)
	}
	wc.Close()
	q.FreezeEOF()
	rc := q.NewReadCursor(0)
	defer rc.Close()
	v, err := codec.ReadVaruint32(rc)
	if err != nil {
		t.Fatalf("ReadVaruint32: %v", err)
	}
	if v != 624485 {
		t.Fatalf("got %d, want 624485", v)
	}
}
