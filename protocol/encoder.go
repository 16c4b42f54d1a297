// File: protocol/encoder.go
// Package protocol implements WebSocket frame encoding.
// License: Apache-2.0
//
// Frames are built into an immutable output buffer of precomputed size,
// each field written at a known offset. Server frames are never masked:
// only client→server frames carry a mask per RFC 6455.

package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/nresnikov/chunked-ws/api"
)

// EncodeFrame serializes a data frame (text or binary) into the exact
// wire-format byte sequence to send to a client. Lengths up to 125 are
// written directly into the second byte, 126..65535 use the 2-byte
// extended field, and larger lengths use the 8-byte field with a zero
// upper half. Lengths whose upper 32 bits would be nonzero are rejected,
// mirroring the decoder's limitation.
func EncodeFrame(payload []byte, opts FrameOptions) ([]byte, error) {
	if opts.Opcode != OpcodeText && opts.Opcode != OpcodeBinary {
		return nil, fmt.Errorf("encode frame: opcode 0x%x: %w", opts.Opcode, api.ErrNotSupported)
	}

	var b0 byte
	if opts.Fin {
		b0 = FinBit
	}
	b0 |= opts.Opcode

	plen := uint64(len(payload))
	if plen>>32 != 0 {
		return nil, &UnsupportedLengthError{High: uint32(plen >> 32)}
	}

	var headerLen int
	switch {
	case plen <= 125:
		headerLen = 2
	case plen <= 0xFFFF:
		headerLen = 4
	default:
		headerLen = 10
	}

	buf := make([]byte, headerLen+len(payload))
	buf[0] = b0
	switch headerLen {
	case 2:
		buf[1] = byte(plen)
	case 4:
		buf[1] = len16Code
		binary.BigEndian.PutUint16(buf[2:], uint16(plen))
	case 10:
		buf[1] = len64Code
		binary.BigEndian.PutUint64(buf[2:], plen)
	}
	copy(buf[headerLen:], payload)
	return buf, nil
}

// EncodeControlFrame serializes a close, ping, or pong frame. Control
// frames are always final and carry at most 125 payload bytes.
func EncodeControlFrame(opcode byte, payload []byte) ([]byte, error) {
	switch opcode {
	case OpcodeClose, OpcodePing, OpcodePong:
	default:
		return nil, fmt.Errorf("encode control frame: opcode 0x%x: %w", opcode, api.ErrNotSupported)
	}
	if len(payload) > MaxControlPayloadLen {
		return nil, newProtocolError(fmt.Sprintf("control frame payload of %d bytes exceeds %d", len(payload), MaxControlPayloadLen))
	}

	buf := make([]byte, 2+len(payload))
	buf[0] = FinBit | opcode
	buf[1] = byte(len(payload))
	copy(buf[2:], payload)
	return buf, nil
}

// EncodeCloseFrame serializes a close frame carrying the given status code.
func EncodeCloseFrame(code int) ([]byte, error) {
	var status [2]byte
	binary.BigEndian.PutUint16(status[:], uint16(code))
	return EncodeControlFrame(OpcodeClose, status[:])
}
