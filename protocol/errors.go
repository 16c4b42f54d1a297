// File: protocol/errors.go
// Package protocol
//
// Typed decode errors. Both kinds are fatal to the connection: a
// ProtocolError additionally carries the status code the caller must use
// for the closing handshake, while UnsupportedLengthError is a local hard
// limitation and not a protocol-conformant closure.

package protocol

import "fmt"

// ProtocolError reports input that violates RFC 6455 framing rules.
// The connection must be closed with CloseCode; the error is never retried.
type ProtocolError struct {
	Reason    string
	CloseCode int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("websocket protocol error (close code %d): %s", e.CloseCode, e.Reason)
}

func newProtocolError(reason string) *ProtocolError {
	return &ProtocolError{Reason: reason, CloseCode: CloseProtocolError}
}

// UnsupportedLengthError reports a 64-bit extended payload length whose
// upper 32 bits are nonzero. Such lengths are rejected, not supported.
type UnsupportedLengthError struct {
	High uint32 // nonzero upper half of the 8-byte length field
}

func (e *UnsupportedLengthError) Error() string {
	return fmt.Sprintf("unsupported payload length: upper 32 bits of extended length are nonzero (0x%08x)", e.High)
}

// ErrFrameTooLarge is returned when a frame declares a payload length above
// the decoder's configured cap, before any payload bytes are buffered.
var ErrFrameTooLarge = fmt.Errorf("frame payload exceeds maximum allowed size")
