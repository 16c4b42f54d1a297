// File: websocket/conn.go
// Package websocket encapsulates a server-side WebSocket session.
// License: Apache-2.0
//
// Conn owns one protocol.Decoder per connection and drives it from the
// transport's chunk stream: every received chunk is fed to the decoder,
// completed frames are drained in order, control frames are answered
// inline, and data frames are handed to the application handler. All
// decoding for a connection happens on the Serve goroutine, satisfying the
// decoder's sequential-use contract without locks.

package websocket

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/nresnikov/chunked-ws/api"
	"github.com/nresnikov/chunked-ws/protocol"
)

// Handler processes decoded data frames. Control frames never reach it.
type Handler func(*protocol.Frame) error

// ChunkReleaser is implemented by transports whose Recv buffers are
// pool-backed.
type ChunkReleaser interface {
	ReleaseChunk(buf []byte)
}

// Conn encapsulates a full-duplex WebSocket session over an
// already-upgraded transport.
type Conn struct {
	tr      api.Transport
	dec     *protocol.Decoder
	handler Handler
	log     *zap.Logger

	done   chan struct{}
	closed int32

	bytesReceived  int64
	framesReceived int64
	framesSent     int64
}

// Option customizes connection initialization.
type Option func(*Conn)

// WithHandler registers the application handler for data frames.
func WithHandler(h Handler) Option {
	return func(c *Conn) {
		c.handler = h
	}
}

// WithLogger attaches a structured logger; the default is a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Conn) {
		c.log = l
	}
}

// WithMaxFramePayload overrides the decoder's per-frame payload cap.
func WithMaxFramePayload(n int64) Option {
	return func(c *Conn) {
		c.dec = protocol.NewDecoder(protocol.WithMaxPayload(n))
	}
}

// NewConn wraps an upgraded transport in a session with its own decoder
// instance.
func NewConn(tr api.Transport, opts ...Option) *Conn {
	c := &Conn{
		tr:   tr,
		dec:  protocol.NewDecoder(),
		log:  zap.NewNop(),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Serve runs the receive loop until the peer closes, the transport fails,
// or the stream violates the protocol. A clean close handshake returns
// nil; protocol violations return the decode error after the closing
// status code has been sent.
func (c *Conn) Serve() error {
	defer c.Close()

	for {
		select {
		case <-c.done:
			return nil
		default:
		}

		chunk, err := c.tr.Recv()
		if err != nil {
			if atomic.LoadInt32(&c.closed) == 1 {
				return nil
			}
			return err
		}
		atomic.AddInt64(&c.bytesReceived, int64(len(chunk)))

		decodeErr := c.dec.Decode(chunk)
		if r, ok := c.tr.(ChunkReleaser); ok {
			r.ReleaseChunk(chunk)
		}
		if decodeErr != nil {
			c.failConnection(decodeErr)
			return decodeErr
		}

		for _, f := range c.dec.Frames() {
			atomic.AddInt64(&c.framesReceived, 1)

			if f.IsControl() {
				if c.handleControl(f) {
					return nil
				}
				continue
			}
			if c.handler == nil {
				continue
			}
			if err := c.handler(f); err != nil {
				c.log.Warn("handler error", zap.Error(err))
				return err
			}
		}
	}
}

// handleControl answers ping with pong and echoes close. Reports true when
// the session is over. Close-handshake orchestration beyond echoing the
// status code stays with the caller.
func (c *Conn) handleControl(f *protocol.Frame) bool {
	switch f.Opcode {
	case protocol.OpcodePing:
		pong, err := protocol.EncodeControlFrame(protocol.OpcodePong, f.Payload)
		if err == nil {
			c.send(pong)
		}
		return false

	case protocol.OpcodePong:
		return false

	case protocol.OpcodeClose:
		echo, err := protocol.EncodeControlFrame(protocol.OpcodeClose, f.Payload)
		if err == nil {
			c.send(echo)
		}
		c.Close()
		return true

	default:
		c.log.Debug("ignoring reserved control opcode", zap.Uint8("opcode", f.Opcode))
		return false
	}
}

// failConnection signals a fatal decode error to the peer. Protocol
// violations get a conformant close frame with their status code;
// unsupported-length and oversize failures are local hard limits and the
// transport is simply torn down.
func (c *Conn) failConnection(err error) {
	var perr *protocol.ProtocolError
	if errors.As(err, &perr) {
		if frame, ferr := protocol.EncodeCloseFrame(perr.CloseCode); ferr == nil {
			c.send(frame)
		}
	}
	c.log.Warn("connection failed", zap.Error(err))
}

// SendText sends a single-fragment text frame.
func (c *Conn) SendText(payload []byte) error {
	return c.SendFrame(payload, protocol.FrameOptions{Opcode: protocol.OpcodeText, Fin: true})
}

// SendBinary sends a single-fragment binary frame.
func (c *Conn) SendBinary(payload []byte) error {
	return c.SendFrame(payload, protocol.FrameOptions{Opcode: protocol.OpcodeBinary, Fin: true})
}

// SendFrame encodes payload with the given options and writes it to the
// transport.
func (c *Conn) SendFrame(payload []byte, opts protocol.FrameOptions) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return api.ErrTransportClosed
	}
	data, err := protocol.EncodeFrame(payload, opts)
	if err != nil {
		return err
	}
	return c.send(data)
}

func (c *Conn) send(data []byte) error {
	if err := c.tr.Send(data); err != nil {
		return err
	}
	atomic.AddInt64(&c.framesSent, 1)
	return nil
}

// Close shuts the session down once; subsequent calls are no-ops.
func (c *Conn) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	close(c.done)
	return c.tr.Close()
}

// Done returns a channel closed when the session ends.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Stats returns a snapshot of session counters.
func (c *Conn) Stats() map[string]int64 {
	return map[string]int64{
		"bytes_received":  atomic.LoadInt64(&c.bytesReceived),
		"frames_received": atomic.LoadInt64(&c.framesReceived),
		"frames_sent":     atomic.LoadInt64(&c.framesSent),
	}
}
