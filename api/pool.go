// File: api/pool.go
//
// Defines the abstract pooling API: reusable []byte allocators for the
// transport read path.

package api

// BytePool provides reusable []byte buffers for high-intensity read loops.
type BytePool interface {
	// Acquire returns a slice of exactly n bytes.
	Acquire(n int) []byte

	// Release returns a buffer to the pool.
	Release(buf []byte)
}
