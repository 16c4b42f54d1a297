// File: protocol/mask.go
// Package protocol
//
// RFC 6455 §5.3 masking transform. The transform is its own inverse: one
// XOR pass both masks and unmasks.

package protocol

// Unmask applies the masking transform to the first n bytes of raw and
// returns the result in a freshly allocated buffer. It never reads past n
// bytes of input and has no side effects; with an all-zero key it reduces
// to a copy.
func Unmask(raw []byte, n int64, key [4]byte) []byte {
	out := make([]byte, n)
	for i := int64(0); i < n; i++ {
		out[i] = raw[i] ^ key[i%4]
	}
	return out
}

// MaskBytes is the outbound direction of the same transform.
func MaskBytes(payload []byte, n int64, key [4]byte) []byte {
	return Unmask(payload, n, key)
}
