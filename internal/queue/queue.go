// Package queue implements the paged append-only byte queue that backs
// every stream in the filter toolchain (spec §4.1): a byte-addressable
// stream stored as a linked sequence of fixed-size pages, with
// reference-counted retention, forward read/write cursors, peek
// checkpoints, and a nested end-of-block (eob) address stack.
//
// The teacher repo has no paged-stream abstraction of its own (flapc
// writes whole-program byte buffers with bytes.Buffer), so this package is
// grounded directly on spec §4.1/§9's design notes: addresses are a flat
// arena-style index space (page index = addr/pageSize) instead of the
// owning/back-referencing pointer graph the original C++ uses, with
// explicit Pin/Unpin replacing destructor-driven refcounting (spec §9:
// "use arena+index ... for the trie's parent link").
package queue

import (
	"io"

	"github.com/WebAssembly/decompressor-prototype-sub000/internal/ferr"
)

// DefaultPageSize matches spec §4.1's "16 KiB typical".
const DefaultPageSize = 16 * 1024

// Address is an absolute, monotone byte offset into a Queue. Addresses
// remain valid (spec §3.2) for as long as some cursor, eob, or explicit
// pin keeps the owning page alive.
type Address uint64

type page struct {
	buf  []byte
	refs int
}

// Eob is a (possibly nested) virtual end-of-stream used to terminate reads
// inside a sized block (spec §3.1, §3.2). A Failed eob is a sentinel that
// propagates to the enclosing eob on any write once it occurs.
type Eob struct {
	Failed bool
	At     Address
}

// Queue is a growable, page-backed byte stream (spec §3.1 PagedQueue).
type Queue struct {
	pageSize int
	pages    map[int]*page
	headIdx  int // smallest page index still resident
	length   Address
	frozen   bool
	eobs     []Eob

	source io.Reader // set for a backed reader (original_source ReadBackedQueue)
	sink   io.Writer // set for a backed writer (original_source WriteBackedQueue)
	srcEOF bool
}

// New creates an empty queue with the given page size (DefaultPageSize if
// pageSize <= 0).
func New(pageSize int) *Queue {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Queue{
		pageSize: pageSize,
		pages:    map[int]*page{0: {}},
	}
}

// NewBackedReader wraps source so that reads past the in-memory tail pull
// more pages from it on demand (original_source/src/stream/ReadBackedQueue).
func NewBackedReader(source io.Reader, pageSize int) *Queue {
	q := New(pageSize)
	q.source = source
	return q
}

// NewBackedWriter wraps sink so that retired pages spill to it instead of
// being merely discarded (original_source/src/stream/WriteBackedQueue).
func NewBackedWriter(sink io.Writer, pageSize int) *Queue {
	q := New(pageSize)
	q.sink = sink
	return q
}

// FromBytes creates a frozen, fully in-memory queue preloaded with data.
// Used at the CLI layer (cmd/cast2casm, cmd/casm2cast, cmd/compress-int,
// cmd/decompress), which reads whole files with os.ReadFile rather than
// streaming through a BackedReader.
func FromBytes(data []byte) *Queue {
	q := New(0)
	q.appendBytes(data)
	q.FreezeEOF()
	return q
}

// Bytes drains the full contents of q (0 through Length) into a plain byte
// slice. Used at the CLI layer to hand a finished in-memory queue to
// os.WriteFile; it is q's reader-side counterpart to FromBytes, not a
// substitute for BackedWriter's page-at-a-time spill.
func (q *Queue) Bytes() []byte {
	out := make([]byte, 0, q.length)
	rc := q.NewReadCursor(0)
	defer rc.Close()
	for {
		b, ok, err := rc.ReadByte()
		if err != nil || !ok {
			break
		}
		out = append(out, b)
	}
	return out
}

// Length reports the number of bytes written to the queue so far.
func (q *Queue) Length() Address { return q.length }

// FreezeEOF marks the queue as complete: no further writes succeed, and
// reads past the frozen length return ok=false with no error (spec §4.1).
func (q *Queue) FreezeEOF() { q.frozen = true }

// IsFrozen reports whether FreezeEOF has been called.
func (q *Queue) IsFrozen() bool { return q.frozen }

func (q *Queue) pageIndex(addr Address) int { return int(addr) / q.pageSize }
func (q *Queue) pageOffset(addr Address) int { return int(addr) % q.pageSize }

// pin increments the retention count of the page containing addr.
func (q *Queue) pin(addr Address) {
	idx := q.pageIndex(addr)
	p := q.pages[idx]
	if p == nil {
		p = &page{}
		q.pages[idx] = p
	}
	p.refs++
}

// unpin decrements the retention count of the page containing addr and
// opportunistically retires now-dead head pages.
func (q *Queue) unpin(addr Address) {
	idx := q.pageIndex(addr)
	if p := q.pages[idx]; p != nil && p.refs > 0 {
		p.refs--
	}
	q.retireDeadHeadPages()
}

// retireDeadHeadPages advances headIdx past any pages that are no longer
// the write tail and have a zero pin count, spilling their data to sink
// first if this is a backed writer (spec §4.1 "Algorithm — page
// retirement").
func (q *Queue) retireDeadHeadPages() {
	tailIdx := q.pageIndex(q.length)
	if q.length > 0 && q.pageOffset(q.length) == 0 {
		tailIdx-- // the tail page is the last one actually containing bytes
	}
	for q.headIdx < tailIdx {
		p := q.pages[q.headIdx]
		if p == nil {
			q.headIdx++
			continue
		}
		if p.refs > 0 {
			return
		}
		if q.sink != nil {
			q.sink.Write(p.buf)
		}
		delete(q.pages, q.headIdx)
		q.headIdx++
	}
}

// fill tries to pull one more page worth of bytes from source. It reports
// whether any bytes were appended.
func (q *Queue) fill() bool {
	if q.source == nil || q.srcEOF {
		return false
	}
	buf := make([]byte, q.pageSize)
	n, err := io.ReadFull(q.source, buf)
	if n > 0 {
		q.appendBytes(buf[:n])
	}
	if err != nil {
		q.srcEOF = true
		q.FreezeEOF()
	}
	return n > 0
}

func (q *Queue) appendBytes(data []byte) {
	for len(data) > 0 {
		idx := q.pageIndex(q.length)
		p := q.pages[idx]
		if p == nil {
			p = &page{}
			q.pages[idx] = p
		}
		room := q.pageSize - len(p.buf)
		n := room
		if n > len(data) {
			n = len(data)
		}
		p.buf = append(p.buf, data[:n]...)
		q.length += Address(n)
		data = data[n:]
	}
}

// byteAt returns the byte at addr. ok=false with a nil error means "not
// available yet, try again later" (suspension per spec §4.4.5); ok=false
// paired with a non-nil error is a genuine IOError.
func (q *Queue) byteAt(addr Address) (byte, bool, error) {
	if int(addr)/q.pageSize < q.headIdx {
		return 0, false, ferr.New(ferr.IOError, "read at address %d: page already retired", addr)
	}
	if addr >= q.length {
		if q.frozen {
			return 0, false, nil
		}
		if !q.fill() {
			return 0, false, nil
		}
		if addr >= q.length {
			return 0, false, nil
		}
	}
	p := q.pages[q.pageIndex(addr)]
	if p == nil {
		return 0, false, ferr.New(ferr.IOError, "read at address %d: missing page", addr)
	}
	return p.buf[q.pageOffset(addr)], true, nil
}

// writeByteAt appends (addr == length) or patches (addr < length, page
// still resident) a single byte.
func (q *Queue) writeByteAt(addr Address, b byte) error {
	if q.frozen {
		return ferr.New(ferr.FrozenEof, "write at address %d after freeze", addr)
	}
	switch {
	case addr == q.length:
		q.appendBytes([]byte{b})
	case addr < q.length:
		p := q.pages[q.pageIndex(addr)]
		if p == nil {
			return ferr.New(ferr.IOError, "patch at address %d: page already retired", addr)
		}
		p.buf[q.pageOffset(addr)] = b
	default:
		return ferr.New(ferr.IOError, "write at address %d: gap past current length %d", addr, q.length)
	}
	return nil
}

// Truncate shrinks the queue to newLength, used after a minimized
// back-patch compacts a block's size field (spec §4.2).
func (q *Queue) Truncate(newLength Address) error {
	if newLength > q.length {
		return ferr.New(ferr.Fatal, "truncate: %d exceeds current length %d", newLength, q.length)
	}
	q.length = newLength
	idx := q.pageIndex(newLength)
	off := q.pageOffset(newLength)
	if p := q.pages[idx]; p != nil && off < len(p.buf) {
		p.buf = p.buf[:off]
	}
	for i := idx + 1; ; i++ {
		if _, ok := q.pages[i]; !ok {
			break
		}
		delete(q.pages, i)
	}
	return nil
}

// CopyRange copies the bytes [srcStart, srcEnd) down to dst (dst <=
// srcStart), used to close the slack left by a minimized block-size
// back-patch (spec §4.2: "the slack bytes ... are closed by byte-copying
// the body backward").
func (q *Queue) CopyRange(dst, srcStart, srcEnd Address) error {
	for a := srcStart; a < srcEnd; a++ {
		b, ok, err := q.byteAt(a)
		if err != nil {
			return err
		}
		if !ok {
			return ferr.New(ferr.IOError, "CopyRange: address %d not available", a)
		}
		if err := q.writeByteAt(dst, b); err != nil {
			return err
		}
		dst++
	}
	return nil
}

// --- eob stack (spec §3.1/§3.2) ---

// topEob returns the current innermost eob, or the implicit unbounded
// "whole queue" eob when the stack is empty.
func (q *Queue) topEob() (Eob, bool) {
	if len(q.eobs) == 0 {
		return Eob{}, false
	}
	return q.eobs[len(q.eobs)-1], true
}

// PushEob pushes a new end-of-block address computed as cur+size, saving
// the previous eob. A size that would push past an already-bounded
// enclosing eob produces a Failed eob, which propagates on any write
// (spec §3.2).
func (q *Queue) PushEob(cur Address, size Address) Eob {
	at := cur + size
	e := Eob{At: at}
	if top, ok := q.topEob(); ok {
		if top.Failed || (top.At != 0 && at > top.At) {
			e = Eob{Failed: true, At: top.At}
		}
	}
	q.eobs = append(q.eobs, e)
	q.pin(at)
	return e
}

// PopEob pops the innermost eob, restoring the previous one, matching it
// to the PushEob that created it (spec §3.2 "every call frame... matched
// by exactly one pop" applies equally to eob frames).
func (q *Queue) PopEob() Eob {
	if len(q.eobs) == 0 {
		return Eob{}
	}
	e := q.eobs[len(q.eobs)-1]
	q.eobs = q.eobs[:len(q.eobs)-1]
	q.unpin(e.At)
	return e
}

// CurrentEob returns the innermost active eob.
func (q *Queue) CurrentEob() Eob {
	e, _ := q.topEob()
	return e
}

// AtEob reports whether addr has reached the innermost active eob (or, if
// none is pushed, the frozen end of the whole queue).
func (q *Queue) AtEob(addr Address) bool {
	e, ok := q.topEob()
	if !ok {
		return q.frozen && addr >= q.length
	}
	if e.Failed {
		return true
	}
	return addr >= e.At
}
