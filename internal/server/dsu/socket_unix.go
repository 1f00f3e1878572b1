//go:build unix

package dsu

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

func control(_, _ string, c syscall.RawConn) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return serr
}

// disableConnReset is a no-op; unix sockets do not fail reads after an ICMP
// port unreachable on a connectionless socket.
func disableConnReset(*net.UDPConn) error { return nil }
