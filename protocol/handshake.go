// File: protocol/handshake.go
// Package protocol implements the HTTP→WebSocket handshake boundary.
// License: Apache-2.0
//
// The codec itself assumes an already-upgraded connection; this file is
// the collaborator that produces one. It validates the upgrade request,
// computes Sec-WebSocket-Accept per RFC 6455 §4, and returns the response
// headers. Subprotocol and extension negotiation are not supported.

package protocol

import (
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nresnikov/chunked-ws/api"
)

const (
	websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

	// MaxHandshakeHeadersSize caps the combined length of handshake headers.
	MaxHandshakeHeadersSize = 8192
)

var (
	ErrInvalidUpgradeHeaders = errors.New("invalid WebSocket upgrade headers")
	ErrMissingWebSocketKey   = errors.New("missing Sec-WebSocket-Key header")
	ErrBadWebSocketVersion   = errors.New("unsupported WebSocket version; only '13' is supported")
)

// AcceptKey derives the Sec-WebSocket-Accept value for a client key.
func AcceptKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key + websocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// UpgradeToWebSocket validates the upgrade request headers, enforces the
// header size limit, and returns the response headers completing the
// handshake.
func UpgradeToWebSocket(r *http.Request) (http.Header, error) {
	total := 0
	for k, vs := range r.Header {
		total += len(k)
		for _, v := range vs {
			total += len(v)
		}
		if total > MaxHandshakeHeadersSize {
			return nil, api.NewError(api.ErrCodeInvalidArgument, "handshake headers too large").
				WithContext("limit_bytes", MaxHandshakeHeadersSize)
		}
	}

	if !headerContainsToken(r.Header, "Connection", "Upgrade") ||
		!headerContainsToken(r.Header, "Upgrade", "websocket") {
		return nil, ErrInvalidUpgradeHeaders
	}
	if r.Header.Get("Sec-WebSocket-Version") != "13" {
		return nil, ErrBadWebSocketVersion
	}
	key := r.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		return nil, ErrMissingWebSocketKey
	}

	resp := make(http.Header)
	resp.Set("Upgrade", "websocket")
	resp.Set("Connection", "Upgrade")
	resp.Set("Sec-WebSocket-Accept", AcceptKey(key))
	return resp, nil
}

// WriteHandshakeResponse writes the 101 status line and hdr to w.
func WriteHandshakeResponse(w io.Writer, hdr http.Header) error {
	if _, err := fmt.Fprintf(w, "HTTP/1.1 101 Switching Protocols\r\n"); err != nil {
		return err
	}
	for k, vs := range hdr {
		for _, v := range vs {
			if _, err := fmt.Fprintf(w, "%s: %s\r\n", k, v); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}

// headerContainsToken checks if headerName contains token, case-insensitive.
func headerContainsToken(h http.Header, headerName, token string) bool {
	vals := h[http.CanonicalHeaderKey(headerName)]
	token = strings.ToLower(token)
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if strings.ToLower(strings.TrimSpace(p)) == token {
				return true
			}
		}
	}
	return false
}
