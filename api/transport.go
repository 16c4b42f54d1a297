// File: api/transport.go
//
// Defines the transport abstraction that delivers raw byte chunks from an
// already-upgraded connection and accepts wire-ready bytes to send.
//
// The codec layer never touches a socket: it only consumes chunks produced
// by a Transport and hands back byte sequences for the caller to Send.

package api

// Transport abstracts a full-duplex byte stream carrying WebSocket-framed
// data. A single Recv call may deliver part of a frame, exactly one frame,
// or several coalesced frames; the codec makes no assumption about chunk
// boundaries.
type Transport interface {
	// Recv blocks until the next chunk of bytes is available and returns it.
	// The returned slice may be pool-backed; the caller releases it once the
	// decoder has consumed it.
	Recv() ([]byte, error)

	// Send writes a wire-ready byte sequence to the connection.
	Send(p []byte) error

	// Close shuts down the connection and notifies upstream layers.
	Close() error
}
