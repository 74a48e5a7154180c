// Package buffer supplies the byte-buffer primitive the codec assumes is
// available underneath it: readable-byte count, byte-at-a-time reads,
// zero-copy read-slicing, skip, first-occurrence scan, and explicit
// retain/release. RESP decoding never copies bulk-string payloads; it
// hands out views into the buffer the host appended bytes into, and the
// views keep that memory reachable for as long as anything holds a
// reference to them.
package buffer

import (
	"bytes"
	"errors"
	"sync/atomic"
)

// ErrDoubleRelease is returned when Release is called on a Bytes whose
// reference count has already reached zero.
var ErrDoubleRelease = errors.New("buffer: release of already-freed bytes")

// ErrShortBuffer is returned by ReadSlice and Skip when fewer bytes are
// readable than requested.
var ErrShortBuffer = errors.New("buffer: fewer bytes readable than requested")

// Bytes is a reference-counted view over a byte slice. Multiple Bytes
// values can share one underlying slice: ReadSlice and Retain hand out
// new views that keep the same slice alive until every view has been
// released once.
type Bytes struct {
	data   []byte
	off    int
	refs   *int32
	onZero func()
}

// Wrap adapts an externally-owned byte slice (for example, the host's
// growing inbound read buffer) into a Bytes with one outstanding
// reference. Releasing it to zero does not return anything to a pool:
// the backing slice's lifetime remains the caller's responsibility.
func Wrap(data []byte) *Bytes {
	refs := int32(1)
	return &Bytes{data: data, refs: &refs}
}

// NewSized returns a pooled, zeroed buffer of exactly n bytes with one
// outstanding reference. Releasing it to zero returns the backing array
// to the pool for reuse.
func NewSized(n int) *Bytes {
	raw := getBuf(n)
	refs := int32(1)
	b := &Bytes{data: raw[:n], refs: &refs}
	b.onZero = func() { putBuf(raw) }
	return b
}

// Len returns the number of unread bytes remaining in the view.
func (b *Bytes) Len() int {
	return len(b.data) - b.off
}

// Bytes returns the unread window as a slice sharing the underlying
// array. Mutating it mutates the buffer.
func (b *Bytes) Bytes() []byte {
	return b.data[b.off:]
}

// Append grows the buffer by copying p onto the end. It is meant for the
// single buffer a host keeps for accumulating inbound fragments, not for
// views returned by ReadSlice.
func (b *Bytes) Append(p []byte) {
	b.data = append(b.data, p...)
}

// ReadByte consumes and returns the next unread byte.
func (b *Bytes) ReadByte() (byte, error) {
	if b.Len() < 1 {
		return 0, ErrShortBuffer
	}
	v := b.data[b.off]
	b.off++
	return v, nil
}

// Peek returns the next n unread bytes without consuming them and
// without acquiring a reference on them. The returned slice is only
// valid until the next mutating call on b.
func (b *Bytes) Peek(n int) ([]byte, error) {
	if b.Len() < n {
		return nil, ErrShortBuffer
	}
	return b.data[b.off : b.off+n], nil
}

// Skip advances the read position by n bytes without returning them.
func (b *Bytes) Skip(n int) error {
	if b.Len() < n {
		return ErrShortBuffer
	}
	b.off += n
	return nil
}

// IndexByte returns the offset of the first occurrence of c in the
// unread window, relative to the current read position, or -1 if c does
// not occur.
func (b *Bytes) IndexByte(c byte) int {
	return bytes.IndexByte(b.data[b.off:], c)
}

// ReadSlice returns a new Bytes sharing the same backing array as b,
// covering the next n unread bytes, and advances b past them. The
// returned view holds its own reference on the shared backing array;
// releasing b does not invalidate it, and it must be released
// independently.
func (b *Bytes) ReadSlice(n int) (*Bytes, error) {
	if b.Len() < n {
		return nil, ErrShortBuffer
	}
	view := &Bytes{
		data:   b.data[b.off : b.off+n],
		refs:   b.refs,
		onZero: b.onZero,
	}
	atomic.AddInt32(b.refs, 1)
	b.off += n
	return view, nil
}

// RefCnt reports the shared reference count.
func (b *Bytes) RefCnt() int32 {
	return atomic.LoadInt32(b.refs)
}

// Retain increments the shared reference count and returns b for
// chaining.
func (b *Bytes) Retain() *Bytes {
	atomic.AddInt32(b.refs, 1)
	return b
}

// Release decrements the shared reference count. When it reaches zero
// and the buffer was pool-allocated, the backing array is returned to
// the pool. Releasing an already-zero buffer returns ErrDoubleRelease.
func (b *Bytes) Release() error {
	for {
		old := atomic.LoadInt32(b.refs)
		if old <= 0 {
			return ErrDoubleRelease
		}
		if atomic.CompareAndSwapInt32(b.refs, old, old-1) {
			if old == 1 && b.onZero != nil {
				b.onZero()
			}
			return nil
		}
	}
}
