//go:build linux
// +build linux

// File: transport/tune_linux.go
//
// Linux socket tuning: frames are small and latency-sensitive, so Nagle
// coalescing is disabled on the raw fd.

package transport

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

func tuneConn(conn net.Conn) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return
	}
	_ = raw.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
	})
}
