package buffer

import "sync"

// defaultChunkSize is the capacity of pooled buffers below which NewSized
// reuses a pooled array instead of allocating fresh. Most RESP frames
// (simple strings, small bulk strings, command arrays) fit comfortably
// under this, so the common path never touches the allocator.
const defaultChunkSize = 16 * 1024

var chunkPool = sync.Pool{
	New: func() any {
		b := make([]byte, defaultChunkSize)
		return &b
	},
}

func getBuf(n int) []byte {
	if n > defaultChunkSize {
		return make([]byte, n)
	}
	p := chunkPool.Get().(*[]byte)
	buf := *p
	if cap(buf) < n {
		buf = make([]byte, defaultChunkSize)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

func putBuf(buf []byte) {
	if cap(buf) != defaultChunkSize {
		// oversized one-off allocation; let the GC reclaim it.
		return
	}
	buf = buf[:cap(buf)]
	chunkPool.Put(&buf)
}
