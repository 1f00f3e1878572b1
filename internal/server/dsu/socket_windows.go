package dsu

import (
	"net"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

func control(_, _ string, c syscall.RawConn) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		serr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return serr
}

// disableConnReset turns off SIO_UDP_CONNRESET so that an ICMP port
// unreachable from a departed client does not fail the next read.
func disableConnReset(conn *net.UDPConn) error {
	rc, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	err = rc.Control(func(fd uintptr) {
		flag := uint32(0)
		var ret uint32
		serr = windows.WSAIoctl(windows.Handle(fd), windows.SIO_UDP_CONNRESET,
			(*byte)(unsafe.Pointer(&flag)), uint32(unsafe.Sizeof(flag)),
			nil, 0, &ret, nil, 0)
	})
	if err != nil {
		return err
	}
	return serr
}
