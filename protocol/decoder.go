// File: protocol/decoder.go
// Package protocol implements chunk-safe WebSocket frame decoding.
// License: Apache-2.0
//
// The Decoder consumes raw byte chunks exactly as the transport delivers
// them: a chunk may hold part of one frame, a whole frame, or several
// coalesced frames. Completed frames accumulate in an ordered queue the
// caller drains; an incomplete trailing frame is retained as decoder state
// until more bytes arrive.

package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/eapache/queue"
	"go.uber.org/zap"
)

// decoderState is the explicit two-state tag of the reassembly machine.
type decoderState int

const (
	// stateIdle: no pending partial frame; the next byte starts a header.
	stateIdle decoderState = iota
	// stateAwaitingPayload: a header has been fully parsed but its payload
	// has not fully arrived yet.
	stateAwaitingPayload
)

// partialFrame holds every header field already parsed plus the raw
// (still masked) payload bytes buffered so far. At most one instance is
// alive per decoder, and it is never exposed outside it.
type partialFrame struct {
	fin              bool
	rsv1, rsv2, rsv3 byte
	opcode           byte
	masked           bool
	payloadLen       int64
	maskKey          [4]byte
	headerLen        int64  // stream bytes consumed by the header
	raw              []byte // masked payload bytes accumulated across chunks
}

// Decoder splits a continuous byte stream into frames despite TCP
// segmentation and coalescing. One instance per connection; calls must be
// strictly sequential (the pending slot is not safe for concurrent use).
type Decoder struct {
	state   decoderState
	pending partialFrame

	// hdr buffers the bytes of a header that is itself split across chunks
	// (fewer bytes than the fixed header, extended length, or mask key
	// require). Treated as another incomplete-frame case: buffer and await
	// more bytes rather than read out of range.
	hdr []byte

	frames     *queue.Queue
	maxPayload int64
	log        *zap.Logger
}

// DecoderOption customizes decoder initialization.
type DecoderOption func(*Decoder)

// WithMaxPayload overrides the per-frame payload cap.
func WithMaxPayload(n int64) DecoderOption {
	return func(d *Decoder) {
		d.maxPayload = n
	}
}

// WithDecoderLogger attaches a structured logger. The default is a nop
// logger; the decoder is quiet unless asked not to be.
func WithDecoderLogger(l *zap.Logger) DecoderOption {
	return func(d *Decoder) {
		d.log = l
	}
}

// NewDecoder constructs an idle decoder with an empty frame queue.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		frames:     queue.New(),
		maxPayload: DefaultMaxFramePayload,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode consumes one transport chunk. It first completes any pending
// partial frame, then parses whole frames from the remainder until fewer
// bytes remain than a header requires. Completed frames are appended to
// the queue returned by Frames.
//
// The chunk is fully consumed (into frames or internal buffers) before
// Decode returns, so the caller may reuse or release it afterwards. On a
// ProtocolError or UnsupportedLengthError the connection must be torn
// down; the decoder is not usable past a fatal decode error.
func (d *Decoder) Decode(chunk []byte) error {
	for len(chunk) > 0 {
		rest, err := d.step(chunk)
		if err != nil {
			return err
		}
		chunk = rest
	}
	return nil
}

// Frames drains the decoded-frame queue in arrival order and clears it.
func (d *Decoder) Frames() []*Frame {
	n := d.frames.Length()
	out := make([]*Frame, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, d.frames.Remove().(*Frame))
	}
	return out
}

// Queued reports how many decoded frames are waiting to be drained.
func (d *Decoder) Queued() int {
	return d.frames.Length()
}

// Buffered reports how many raw bytes are held for an incomplete frame
// (header bytes plus any partial payload).
func (d *Decoder) Buffered() int {
	if d.state == stateAwaitingPayload {
		return len(d.pending.raw)
	}
	return len(d.hdr)
}

// step advances the state machine by one transition and returns the
// unconsumed tail of the chunk. An empty tail means no further frames can
// be extracted until more bytes arrive.
func (d *Decoder) step(chunk []byte) ([]byte, error) {
	if d.state == stateAwaitingPayload {
		return d.continuePayload(chunk), nil
	}
	return d.parseFrame(chunk)
}

// continuePayload appends up to the missing byte count from chunk to the
// buffered raw payload. If the frame completes, it is emitted and the
// unconsumed tail returned for continued parsing.
func (d *Decoder) continuePayload(chunk []byte) []byte {
	remaining := d.pending.payloadLen - int64(len(d.pending.raw))
	if int64(len(chunk)) < remaining {
		d.pending.raw = append(d.pending.raw, chunk...)
		return nil
	}

	d.pending.raw = append(d.pending.raw, chunk[:remaining]...)
	rest := chunk[remaining:]

	p := &d.pending
	d.emit(p.fin, p.rsv1, p.rsv2, p.rsv3, p.opcode, p.masked, p.payloadLen, p.maskKey, p.raw, p.headerLen)

	// Clear the pending slot the instant the payload completes.
	d.pending = partialFrame{}
	d.state = stateIdle
	return rest
}

// parseFrame parses one frame header from an idle state and either emits a
// complete frame, stores a pending partial frame, or buffers a split
// header. Returns the unconsumed tail.
func (d *Decoder) parseFrame(chunk []byte) ([]byte, error) {
	raw := chunk
	if len(d.hdr) > 0 {
		raw = append(d.hdr, chunk...)
		d.hdr = nil
	}

	if len(raw) < 2 {
		d.stashHeader(raw)
		return nil, nil
	}

	b0, b1 := raw[0], raw[1]
	if b0&RsvBits != 0 {
		return nil, newProtocolError(fmt.Sprintf("nonzero reserved bits 0x%02x without negotiated extension", b0&RsvBits))
	}

	fin := b0&FinBit != 0
	rsv1 := (b0 & Rsv1Bit) >> 6
	rsv2 := (b0 & Rsv2Bit) >> 5
	rsv3 := (b0 & Rsv3Bit) >> 4
	opcode := b0 & OpcodeBits
	masked := b1&MaskBit != 0

	length := int64(b1 & LenBits)
	offset := 2

	switch length {
	case len16Code:
		if len(raw) < offset+2 {
			d.stashHeader(raw)
			return nil, nil
		}
		length = int64(binary.BigEndian.Uint16(raw[offset:]))
		offset += 2
	case len64Code:
		if len(raw) < offset+8 {
			d.stashHeader(raw)
			return nil, nil
		}
		high := binary.BigEndian.Uint32(raw[offset:])
		low := binary.BigEndian.Uint32(raw[offset+4:])
		if high != 0 {
			return nil, &UnsupportedLengthError{High: high}
		}
		length = int64(low)
		offset += 8
	}

	if length > d.maxPayload {
		return nil, fmt.Errorf("declared payload length %d: %w", length, ErrFrameTooLarge)
	}

	// All-zero key when unmasked, so the transform applied later is a no-op.
	var maskKey [4]byte
	if masked {
		if len(raw) < offset+4 {
			d.stashHeader(raw)
			return nil, nil
		}
		copy(maskKey[:], raw[offset:offset+4])
		offset += 4
	}

	avail := raw[offset:]
	if int64(len(avail)) < length {
		d.pending = partialFrame{
			fin:        fin,
			rsv1:       rsv1,
			rsv2:       rsv2,
			rsv3:       rsv3,
			opcode:     opcode,
			masked:     masked,
			payloadLen: length,
			maskKey:    maskKey,
			headerLen:  int64(offset),
			raw:        append(make([]byte, 0, length), avail...),
		}
		d.state = stateAwaitingPayload
		d.log.Debug("frame incomplete, awaiting payload",
			zap.Uint8("opcode", opcode),
			zap.Int64("payload_len", length),
			zap.Int("buffered", len(avail)))
		return nil, nil
	}

	d.emit(fin, rsv1, rsv2, rsv3, opcode, masked, length, maskKey, avail[:length], int64(offset))
	return avail[length:], nil
}

// stashHeader copies the bytes of a split header into decoder-owned memory.
func (d *Decoder) stashHeader(raw []byte) {
	d.hdr = append(make([]byte, 0, MaxFrameHeaderLen), raw...)
}

// emit unmasks the raw payload, finalizes the frame, and appends it to the
// decoded-frame queue.
func (d *Decoder) emit(fin bool, rsv1, rsv2, rsv3, opcode byte, masked bool, length int64, maskKey [4]byte, raw []byte, headerLen int64) {
	f := &Frame{
		Fin:        fin,
		Rsv1:       rsv1,
		Rsv2:       rsv2,
		Rsv3:       rsv3,
		Opcode:     opcode,
		Masked:     masked,
		PayloadLen: length,
		MaskKey:    maskKey,
		Payload:    Unmask(raw, length, maskKey),
		FrameLen:   headerLen + length,
	}
	d.frames.Add(f)
	d.log.Debug("frame decoded",
		zap.Uint8("opcode", opcode),
		zap.Bool("fin", fin),
		zap.Int64("payload_len", length))
}
