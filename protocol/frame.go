// File: protocol/frame.go
// Package protocol
//
// Decoded frame model. A Frame is immutable once produced by the decoder.

package protocol

// Frame represents a fully decoded WebSocket frame.
type Frame struct {
	Fin    bool // FIN bit: final fragment of a message
	Rsv1   byte // Reserved extension bits, zero absent negotiated extensions
	Rsv2   byte
	Rsv3   byte
	Opcode byte // Operation code
	Masked bool // Whether the frame arrived masked

	PayloadLen int64   // Exact payload byte count, independent of header width
	MaskKey    [4]byte // All-zero when Masked is false
	Payload    []byte  // Unmasked payload; len(Payload) == PayloadLen
	FrameLen   int64   // Total bytes consumed from the stream (header + payload)
}

// IsControl reports whether the frame carries a control opcode.
func (f *Frame) IsControl() bool {
	return f.Opcode&0x8 != 0
}

// FrameOptions selects the opcode and FIN bit for an outbound data frame.
// Only text and binary frames are encoded through EncodeFrame; control
// frames go through EncodeControlFrame.
type FrameOptions struct {
	Opcode byte
	Fin    bool
}
