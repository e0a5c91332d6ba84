package pool

import (
	"sync"
)

// DefaultChunkSize defines the default chunk buffer size (64KB).
const DefaultChunkSize = 64 * 1024

// ChunkPool manages reusable chunk buffers of a single size.
type ChunkPool struct {
	size int
	pool *sync.Pool
}

// NewChunkPool creates a chunk pool producing buffers of the given size.
// Non-positive sizes fall back to DefaultChunkSize.
func NewChunkPool(size int) *ChunkPool {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &ChunkPool{
		size: size,
		pool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Size returns the length of the buffers this pool hands out.
func (cp *ChunkPool) Size() int {
	return cp.size
}

// Get returns a full-length chunk buffer from the pool.
// The caller is responsible for calling Put to return the buffer to the pool.
func (cp *ChunkPool) Get() []byte {
	bufPtr := cp.pool.Get().(*[]byte)
	return (*bufPtr)[:cp.size]
}

// Put returns a buffer to the pool. Buffers of a different capacity are
// dropped rather than pooled.
func (cp *ChunkPool) Put(buf []byte) {
	if cap(buf) != cp.size {
		return
	}
	buf = buf[:cp.size]
	cp.pool.Put(&buf)
}
