//go:build unix

package broadcasting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPeekSocket_SeesHangUpImmediately(t *testing.T) {
	server, client := tcpPair(t)
	buf := make([]byte, readBufferSize)

	closed, ok := peekSocket(server, buf)
	require.True(t, ok)
	require.False(t, closed)

	require.NoError(t, client.Close())
	// Once the FIN has arrived, a single peek must see it.
	require.Eventually(t, func() bool {
		closed, ok := peekSocket(server, buf)
		return ok && closed
	}, time.Second, 5*time.Millisecond)
}
