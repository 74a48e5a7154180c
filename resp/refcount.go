package resp

import (
	"fmt"
	"sync/atomic"
)

// Retain increments m's reference count, for variants that carry one
// (BulkString and Array). It is a no-op for Integer, SimpleString,
// Error, and the null/empty singletons, which have no release
// obligation.
func (m *Message) Retain() *Message {
	switch {
	case m.typ == TypeBulkString && !m.bulkNull && !m.bulkEmpty:
		m.bulk.Retain()
	case m.typ == TypeArray && !m.arrNull && !m.arrEmpty:
		atomic.AddInt32(m.refs, 1)
	}
	return m
}

// Release decrements m's reference count. For a BulkString this
// releases the underlying buffer view; for an Array, reaching zero
// releases each child exactly once, recursively. A double release
// surfaces a detectable error rather than succeeding silently.
func (m *Message) Release() error {
	switch {
	case m.typ == TypeBulkString && !m.bulkNull && !m.bulkEmpty:
		return m.bulk.Release()
	case m.typ == TypeArray && !m.arrNull && !m.arrEmpty:
		return m.releaseArray()
	default:
		return nil
	}
}

// RefCnt reports m's current reference count: 1 plus the number of
// outstanding Retain calls not yet matched by a Release, or 0 once
// fully released. It is always 0 for variants with no release
// obligation (Integer, SimpleString, Error, the null/empty
// singletons), since those are never reference-counted in the first
// place.
//
// DebugRefCnt is the exported toggle a test can flip to make
// AssertRefCnt check the count and panic on a mismatch, mirroring
// the assertions Netty's RedisDecoderTest makes against
// ReferenceCounted.refCnt(). It defaults to false: production code
// should never pay for the extra check.
var DebugRefCnt = false

func (m *Message) RefCnt() int32 {
	switch {
	case m.typ == TypeBulkString && !m.bulkNull && !m.bulkEmpty:
		return m.bulk.RefCnt()
	case m.typ == TypeArray && !m.arrNull && !m.arrEmpty:
		return atomic.LoadInt32(m.refs)
	default:
		return 0
	}
}

// AssertRefCnt panics if m's current reference count does not equal
// want. It is a no-op unless DebugRefCnt is true, so tests can enable
// it without any production cost.
func (m *Message) AssertRefCnt(want int32) {
	if !DebugRefCnt {
		return
	}
	if got := m.RefCnt(); got != want {
		panic(fmt.Sprintf("resp: expected refcount %d, got %d for %s message", want, got, m.typ))
	}
}

func (m *Message) releaseArray() error {
	for {
		old := atomic.LoadInt32(m.refs)
		if old <= 0 {
			return &RefCountError{Message: m}
		}
		if atomic.CompareAndSwapInt32(m.refs, old, old-1) {
			if old != 1 {
				return nil
			}
			var first error
			for _, c := range m.children {
				if err := c.Release(); err != nil && first == nil {
					first = err
				}
			}
			return first
		}
	}
}
