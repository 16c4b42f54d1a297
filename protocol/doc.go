// Package protocol
//
// Implements the core WebSocket wire protocol logic (RFC 6455 §5.2) for
// chunked-ws: frame decoding over a stream delivered in arbitrary-sized
// chunks, frame encoding, and the payload masking transform.
//
// The decoder is the only stateful piece: it reassembles frames that span
// multiple transport reads and splits reads that coalesce several frames.
// Each connection owns exactly one Decoder instance; calls into it must be
// strictly sequential.
//
// Includes:
//   - Chunk-safe frame decoding with partial-frame reassembly
//   - Frame encoding into precomputed immutable buffers
//   - Masking transform per RFC 6455 §5.3 (browser client compliance)
//   - HTTP upgrade handshake at the connection boundary
package protocol
