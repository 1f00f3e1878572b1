//go:build !unix && !windows

package dsu

import (
	"net"
	"syscall"
)

func control(_, _ string, _ syscall.RawConn) error { return nil }

func disableConnReset(*net.UDPConn) error { return nil }
