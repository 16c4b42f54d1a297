// File: transport/netconn.go
// Package transport delivers raw byte chunks from an upgraded connection.
// License: Apache-2.0
//
// NetConn is the api.Transport implementation backing most deployments: a
// pool-backed wrapper over net.Conn. Each Recv returns whatever the socket
// had ready, which is exactly the arbitrary-sized chunk shape the decoder
// is built to absorb.

package transport

import (
	"net"

	"github.com/nresnikov/chunked-ws/api"
)

// DefaultReadChunkSize is the buffer size requested per Recv.
const DefaultReadChunkSize = 64 * 1024

// NetConn implements api.Transport over a net.Conn using pooled read
// buffers.
type NetConn struct {
	conn     net.Conn
	pool     api.BytePool
	readSize int
}

// NewNetConn wraps an already-upgraded connection. The socket is tuned for
// low-latency framing traffic where the platform supports it.
func NewNetConn(conn net.Conn, pool api.BytePool) *NetConn {
	tuneConn(conn)
	return &NetConn{
		conn:     conn,
		pool:     pool,
		readSize: DefaultReadChunkSize,
	}
}

// Recv reads one chunk from the connection into a pooled buffer. The
// returned slice must be handed back via ReleaseChunk once consumed.
func (n *NetConn) Recv() ([]byte, error) {
	buf := n.pool.Acquire(n.readSize)
	r, err := n.conn.Read(buf)
	if err != nil {
		n.pool.Release(buf)
		return nil, err
	}
	return buf[:r], nil
}

// Send writes the whole buffer to the connection.
func (n *NetConn) Send(p []byte) error {
	for len(p) > 0 {
		w, err := n.conn.Write(p)
		if err != nil {
			return api.NewError(api.ErrCodeInternal, "transport send").
				WithContext("remaining_bytes", len(p)).
				WithCause(err)
		}
		p = p[w:]
	}
	return nil
}

// ReleaseChunk returns a Recv buffer to the pool.
func (n *NetConn) ReleaseChunk(buf []byte) {
	n.pool.Release(buf)
}

// Close closes the underlying connection.
func (n *NetConn) Close() error {
	return n.conn.Close()
}
