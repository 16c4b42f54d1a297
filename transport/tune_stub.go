//go:build !linux
// +build !linux

// File: transport/tune_stub.go
//
// Non-Linux fallback: the net package defaults are left as-is.

package transport

import "net"

func tuneConn(conn net.Conn) {}
