// Package protocol
//
// WebSocket wire protocol constants.

package protocol

const (
	// Opcodes (control opcodes have the high bit of the nibble set)
	OpcodeContinuation = 0x0
	OpcodeText         = 0x1
	OpcodeBinary       = 0x2
	OpcodeClose        = 0x8
	OpcodePing         = 0x9
	OpcodePong         = 0xA

	// Frame limit settings
	MaxControlPayloadLen = 125
	MaxFrameHeaderLen    = 14 // extended payload length plus masking key

	// Byte 0 bit masks
	FinBit     = 0x80
	Rsv1Bit    = 0x40
	Rsv2Bit    = 0x20
	Rsv3Bit    = 0x10
	RsvBits    = Rsv1Bit | Rsv2Bit | Rsv3Bit
	OpcodeBits = 0x0F

	// Byte 1 bit masks
	MaskBit = 0x80
	LenBits = 0x7F

	// LEN7 sentinel values selecting an extended length field
	len16Code = 126
	len64Code = 127

	// Close codes
	CloseNormalClosure      = 1000
	CloseGoingAway          = 1001
	CloseProtocolError      = 1002
	CloseUnsupportedData    = 1003
	CloseNoStatusRcvd       = 1005
	CloseAbnormalClosure    = 1006
	CloseInvalidPayloadData = 1007
	ClosePolicyViolation    = 1008
	CloseMessageTooBig      = 1009
	CloseMissingExtension   = 1010
	CloseInternalServerErr  = 1011
)

// DefaultMaxFramePayload is the default cap on a single frame's declared
// payload length. It bounds how much the decoder will buffer for one frame,
// protecting against hostile length headers.
const DefaultMaxFramePayload = 1 << 20 // 1 MiB
