// File: pool/bytepool.go
// Package pool provides reusable byte buffers for the transport read path.
// License: Apache-2.0

package pool

import "sync"

// BytePool is a sync.Pool-backed implementation of api.BytePool handing
// out fixed-capacity buffers. Requests larger than the pool's buffer size
// fall through to a plain allocation.
type BytePool struct {
	size int
	p    sync.Pool
}

// NewBytePool creates a pool of buffers with the given capacity.
func NewBytePool(size int) *BytePool {
	b := &BytePool{size: size}
	b.p.New = func() any {
		return make([]byte, size)
	}
	return b
}

// Acquire returns a slice of exactly n bytes.
func (b *BytePool) Acquire(n int) []byte {
	if n > b.size {
		return make([]byte, n)
	}
	return b.p.Get().([]byte)[:n]
}

// Release returns a buffer to the pool. Oversized one-off allocations are
// left to the GC.
func (b *BytePool) Release(buf []byte) {
	if cap(buf) >= b.size {
		b.p.Put(buf[:b.size:b.size])
	}
}

// BufferSize reports the pooled buffer capacity.
func (b *BytePool) BufferSize() int {
	return b.size
}
