//go:build unix

package broadcasting

import (
	"errors"
	"net"
	"syscall"
)

// peekSocket reads from the socket with MSG_DONTWAIT. ok is false when conn
// does not expose its file descriptor.
func peekSocket(conn net.Conn, buf []byte) (closed, ok bool) {
	sc, isSyscall := conn.(syscall.Conn)
	if !isSyscall {
		return false, false
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return false, false
	}

	var n int
	var readErr error
	err = raw.Read(func(fd uintptr) bool {
		n, _, readErr = syscall.Recvfrom(int(fd), buf, syscall.MSG_DONTWAIT)
		return true
	})
	if err != nil {
		return true, true
	}
	switch {
	case n > 0:
		return false, true
	case readErr == nil:
		// Orderly shutdown by the peer.
		return true, true
	case errors.Is(readErr, syscall.EAGAIN), errors.Is(readErr, syscall.EWOULDBLOCK), errors.Is(readErr, syscall.EINTR):
		return false, true
	}
	return true, true
}
