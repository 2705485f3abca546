//go:build linux || darwin

package socket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListenAcceptConnectRoundTrip(t *testing.T) {
	ln, err := Listen(KindTCP, "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	local, err := ln.LocalAddr()
	require.NoError(t, err)

	client, err := Connect(KindTCP, local.String())
	require.NoError(t, err)
	defer client.Close()

	var server *Socket
	require.Eventually(t, func() bool {
		s, _, acceptErr := ln.Accept()
		if acceptErr == nil {
			server = s
			return true
		}
		return false
	}, time.Second, time.Millisecond)
	defer server.Close()

	require.Eventually(t, func() bool {
		_, werr := client.Write([]byte("ping"))
		return werr == nil
	}, time.Second, time.Millisecond)

	buf := make([]byte, 4)
	require.Eventually(t, func() bool {
		n, rerr := server.Read(buf)
		return rerr == nil && n == 4
	}, time.Second, time.Millisecond)
	require.Equal(t, "ping", string(buf))
}
