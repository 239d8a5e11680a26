//go:build !unix

package broadcasting

import "net"

func peekSocket(net.Conn, []byte) (closed, ok bool) {
	return false, false
}
