package websocket_test

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/nresnikov/chunked-ws/protocol"
	"github.com/nresnikov/chunked-ws/websocket"
)

// fakeTransport feeds scripted chunks to the session and records sends.
type fakeTransport struct {
	in chan []byte

	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func newFakeTransport(chunks ...[]byte) *fakeTransport {
	ft := &fakeTransport{in: make(chan []byte, len(chunks))}
	for _, c := range chunks {
		ft.in <- c
	}
	return ft
}

func (ft *fakeTransport) Recv() ([]byte, error) {
	chunk, ok := <-ft.in
	if !ok {
		return nil, io.EOF
	}
	return chunk, nil
}

func (ft *fakeTransport) Send(p []byte) error {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.sent = append(ft.sent, append([]byte{}, p...))
	return nil
}

func (ft *fakeTransport) Close() error {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if !ft.closed {
		ft.closed = true
		close(ft.in)
	}
	return nil
}

func (ft *fakeTransport) sentFrames(t *testing.T) []*protocol.Frame {
	t.Helper()
	ft.mu.Lock()
	defer ft.mu.Unlock()

	d := protocol.NewDecoder()
	for _, p := range ft.sent {
		if err := d.Decode(p); err != nil {
			t.Fatalf("decoding sent bytes: %v", err)
		}
	}
	return d.Frames()
}

func closeFrame(t *testing.T) []byte {
	t.Helper()
	wire, err := protocol.EncodeCloseFrame(protocol.CloseNormalClosure)
	if err != nil {
		t.Fatal(err)
	}
	return wire
}

func dataFrame(t *testing.T, payload []byte) []byte {
	t.Helper()
	wire, err := protocol.EncodeFrame(payload, protocol.FrameOptions{Opcode: protocol.OpcodeText, Fin: true})
	if err != nil {
		t.Fatal(err)
	}
	return wire
}

func TestServeDeliversDataFrames(t *testing.T) {
	ft := newFakeTransport(dataFrame(t, []byte("one")), dataFrame(t, []byte("two")), closeFrame(t))

	var got [][]byte
	c := websocket.NewConn(ft, websocket.WithHandler(func(f *protocol.Frame) error {
		got = append(got, f.Payload)
		return nil
	}))

	if err := c.Serve(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || string(got[0]) != "one" || string(got[1]) != "two" {
		t.Fatalf("handler saw %q", got)
	}
	stats := c.Stats()
	if stats["frames_received"] != 3 {
		t.Fatalf("frames_received = %d", stats["frames_received"])
	}
}

func TestServeReassemblesAcrossRecvs(t *testing.T) {
	frame := dataFrame(t, []byte("split across two reads"))
	ft := newFakeTransport(frame[:5], frame[5:], closeFrame(t))

	var got []byte
	c := websocket.NewConn(ft, websocket.WithHandler(func(f *protocol.Frame) error {
		got = f.Payload
		return nil
	}))

	if err := c.Serve(); err != nil {
		t.Fatal(err)
	}
	if string(got) != "split across two reads" {
		t.Fatalf("got %q", got)
	}
}

func TestPingAnsweredWithPong(t *testing.T) {
	ping, err := protocol.EncodeControlFrame(protocol.OpcodePing, []byte("tick"))
	if err != nil {
		t.Fatal(err)
	}
	ft := newFakeTransport(ping, closeFrame(t))

	c := websocket.NewConn(ft)
	if err := c.Serve(); err != nil {
		t.Fatal(err)
	}

	frames := ft.sentFrames(t)
	if len(frames) != 2 {
		t.Fatalf("expected pong + close echo, got %d frames", len(frames))
	}
	if frames[0].Opcode != protocol.OpcodePong || !bytes.Equal(frames[0].Payload, []byte("tick")) {
		t.Fatalf("first sent frame is not the pong: %+v", frames[0])
	}
	if frames[1].Opcode != protocol.OpcodeClose {
		t.Fatalf("close was not echoed: %+v", frames[1])
	}
}

func TestProtocolErrorSendsCloseCode(t *testing.T) {
	bad := []byte{protocol.FinBit | protocol.Rsv1Bit | protocol.OpcodeText, 0x00}
	ft := newFakeTransport(bad)

	c := websocket.NewConn(ft)
	err := c.Serve()

	var perr *protocol.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}

	frames := ft.sentFrames(t)
	if len(frames) != 1 || frames[0].Opcode != protocol.OpcodeClose {
		t.Fatalf("expected a close frame, got %+v", frames)
	}
	want := []byte{0x03, 0xEA} // 1002 big-endian
	if !bytes.Equal(frames[0].Payload, want) {
		t.Fatalf("close status = % x, want % x", frames[0].Payload, want)
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	ft := newFakeTransport()
	c := websocket.NewConn(ft)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.SendText([]byte("late")); err == nil {
		t.Fatal("send after close must fail")
	}

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("Done channel not closed")
	}
}

func TestSendFrameWiresEncoder(t *testing.T) {
	ft := newFakeTransport()
	c := websocket.NewConn(ft)

	if err := c.SendBinary([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	frames := ft.sentFrames(t)
	if len(frames) != 1 || frames[0].Opcode != protocol.OpcodeBinary || !frames[0].Fin {
		t.Fatalf("sent frame mismatch: %+v", frames)
	}
	if frames[0].Masked {
		t.Fatal("server frames must not be masked")
	}
}
