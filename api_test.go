//go:build linux || darwin

package xnet_test

import (
	"net"
	"testing"
	"time"

	xnet "github.com/kala13x/libxutils-sub001"
	"github.com/kala13x/libxutils-sub001/httpcodec"
	"github.com/kala13x/libxutils-sub001/packet"
	"github.com/kala13x/libxutils-sub001/wsframe"
	"github.com/stretchr/testify/require"
)

// pumpUntil drives the façade's Service loop until done is closed or the
// overall deadline elapses.
func pumpUntil(t *testing.T, api *xnet.Api, done <-chan struct{}, overall time.Duration) {
	t.Helper()
	deadline := time.Now().Add(overall)
	for {
		select {
		case <-done:
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for façade round trip")
		}
		require.NoError(t, api.Service(20*time.Millisecond))
	}
}

func tcpPortOf(t *testing.T, conn *xnet.Connection) (string, int) {
	t.Helper()
	addr, err := conn.Socket.LocalAddr()
	require.NoError(t, err)
	tcpAddr, ok := addr.(*net.TCPAddr)
	require.True(t, ok)
	return tcpAddr.IP.String(), tcpAddr.Port
}

// TestHTTPEchoServerRoundTrip exercises spec.md §8's HTTP echo-server
// scenario end to end: a real TCP listener and client driven by the same
// Api/reactor, a POST body echoed back verbatim.
func TestHTTPEchoServerRoundTrip(t *testing.T) {
	api := xnet.NewApi()
	var gotBody string
	done := make(chan struct{})

	cb := func(ctx *xnet.CallbackContext, conn *xnet.Connection) xnet.Disposition {
		if ctx.Reason != xnet.Read {
			return xnet.Continue
		}
		msg, ok := conn.Packet.(*httpcodec.Message)
		if !ok {
			return xnet.Continue
		}
		if conn.Role == xnet.RolePeer {
			body, _ := msg.GetBody()
			resp := httpcodec.New(0, 0)
			resp.InitResponse(200, "HTTP/1.1")
			resp.AddHeader("Content-Type", "text/plain")
			require.NoError(t, api.PutTx(conn, resp.Assemble(body)))
			return xnet.Continue
		}
		body, _ := msg.GetBody()
		gotBody = string(body)
		close(done)
		return xnet.Disconnect
	}
	api.Init(cb, nil, nil, true)

	ln, err := api.Listen(xnet.Endpoint{Role: xnet.RoleServer, Protocol: xnet.ProtoHTTP, Addr: "127.0.0.1", Port: 0})
	require.NoError(t, err)
	ip, port := tcpPortOf(t, ln)

	client, err := api.Connect(xnet.Endpoint{Role: xnet.RoleClient, Protocol: xnet.ProtoHTTP, Addr: ip, Port: port})
	require.NoError(t, err)

	req := httpcodec.New(0, 0)
	req.InitRequest(httpcodec.MethodPost, "/echo", "HTTP/1.1")
	req.AddHeader("Host", ip)
	require.NoError(t, api.PutTx(client, req.Assemble([]byte("hello-xnet"))))

	pumpUntil(t, api, done, 2*time.Second)
	require.Equal(t, "hello-xnet", gotBody)
}

// TestWebSocketEchoRoundTrip exercises spec.md §8's WebSocket echo
// scenario: both handshake directions, then one text frame echoed back.
func TestWebSocketEchoRoundTrip(t *testing.T) {
	api := xnet.NewApi()
	var gotPayload string
	done := make(chan struct{})

	cb := func(ctx *xnet.CallbackContext, conn *xnet.Connection) xnet.Disposition {
		switch ctx.Reason {
		case xnet.HandshakeResponse:
			raw, err := wsframe.Build(wsframe.OpText, true, []byte("ping-ws"), true)
			require.NoError(t, err)
			require.NoError(t, api.PutTx(conn, raw))
			return xnet.Continue
		case xnet.Read:
			f, ok := conn.Packet.(*wsframe.Frame)
			if !ok {
				return xnet.Continue
			}
			if conn.Role == xnet.RolePeer {
				raw, err := wsframe.Build(f.Opcode, true, f.Payload, false)
				require.NoError(t, err)
				require.NoError(t, api.PutTx(conn, raw))
				return xnet.Continue
			}
			gotPayload = string(f.Payload)
			close(done)
			return xnet.Disconnect
		default:
			return xnet.Continue
		}
	}
	api.Init(cb, nil, nil, true)

	ln, err := api.Listen(xnet.Endpoint{Role: xnet.RoleServer, Protocol: xnet.ProtoWS, Addr: "127.0.0.1", Port: 0})
	require.NoError(t, err)
	ip, port := tcpPortOf(t, ln)

	_, err = api.Connect(xnet.Endpoint{Role: xnet.RoleClient, Protocol: xnet.ProtoWS, Addr: ip, Port: port, URI: "/chat"})
	require.NoError(t, err)

	pumpUntil(t, api, done, 2*time.Second)
	require.Equal(t, "ping-ws", gotPayload)
}

// TestPacketRoundTrip exercises spec.md §8's Packet round-trip scenario
// over the length-prefixed JSON codec.
func TestPacketRoundTrip(t *testing.T) {
	api := xnet.NewApi()
	var gotSessionID string
	done := make(chan struct{})

	cb := func(ctx *xnet.CallbackContext, conn *xnet.Connection) xnet.Disposition {
		if ctx.Reason != xnet.Read {
			return xnet.Continue
		}
		p, ok := conn.Packet.(*packet.Packet)
		if !ok {
			return xnet.Continue
		}
		if conn.Role == xnet.RolePeer {
			hdr := p.Header
			hdr.PacketType = packet.TypeData
			raw, err := packet.Assemble(hdr, p.Payload)
			require.NoError(t, err)
			require.NoError(t, api.PutTx(conn, raw))
			return xnet.Continue
		}
		gotSessionID = p.Header.SessionID
		close(done)
		return xnet.Disconnect
	}
	api.Init(cb, nil, nil, true)

	ln, err := api.Listen(xnet.Endpoint{Role: xnet.RoleServer, Protocol: xnet.ProtoPacket, Addr: "127.0.0.1", Port: 0})
	require.NoError(t, err)
	ip, port := tcpPortOf(t, ln)

	client, err := api.Connect(xnet.Endpoint{Role: xnet.RoleClient, Protocol: xnet.ProtoPacket, Addr: ip, Port: port})
	require.NoError(t, err)

	raw, err := packet.Assemble(packet.Header{PacketType: packet.TypeData, SessionID: "sess-42"}, []byte("packet-payload"))
	require.NoError(t, err)
	require.NoError(t, api.PutTx(client, raw))

	pumpUntil(t, api, done, 2*time.Second)
	require.Equal(t, "sess-42", gotSessionID)
}

// TestAuthorizeHTTPRejectsMissingToken exercises spec.md §7's auth-reject
// scenario directly against AuthorizeHTTP, without needing a live socket.
func TestAuthorizeHTTPRejectsMissingToken(t *testing.T) {
	api := xnet.NewApi()
	req := httpcodec.New(0, 0)
	req.InitRequest(httpcodec.MethodGet, "/secure", "HTTP/1.1")

	conn := &xnet.Connection{Packet: req}
	status := api.AuthorizeHTTP(conn, "expected-token", "")
	require.Equal(t, xnet.StatusMissingToken, status)
}

func TestAuthorizeHTTPAcceptsMatchingToken(t *testing.T) {
	api := xnet.NewApi()
	req := httpcodec.New(0, 0)
	req.InitRequest(httpcodec.MethodGet, "/secure", "HTTP/1.1")
	req.AddHeader("Authorization", "Basic dXNlcjpwYXNz")

	conn := &xnet.Connection{Packet: req}
	status := api.AuthorizeHTTP(conn, "dXNlcjpwYXNz", "")
	require.Equal(t, xnet.StatusNone, status)
}

// TestBackPressureDisconnectsOversizedRequest exercises spec.md §4.2's
// back-pressure rule: a receive buffer over the configured limit while
// still Incomplete emits Error(BigContent) then disconnects, rather than
// growing unboundedly.
func TestBackPressureDisconnectsOversizedRequest(t *testing.T) {
	api := xnet.NewApi()
	api.SetRxLimit(16)
	var sawError bool
	done := make(chan struct{})

	cb := func(ctx *xnet.CallbackContext, conn *xnet.Connection) xnet.Disposition {
		if conn.Role != xnet.RolePeer {
			return xnet.Continue
		}
		if ctx.Reason == xnet.Error {
			sawError = true
			close(done)
		}
		return xnet.Continue
	}
	api.Init(cb, nil, nil, true)

	ln, err := api.Listen(xnet.Endpoint{Role: xnet.RoleServer, Protocol: xnet.ProtoHTTP, Addr: "127.0.0.1", Port: 0})
	require.NoError(t, err)
	ip, port := tcpPortOf(t, ln)

	client, err := api.Connect(xnet.Endpoint{Role: xnet.RoleClient, Protocol: xnet.ProtoRaw, Addr: ip, Port: port})
	require.NoError(t, err)

	req := httpcodec.New(0, 0)
	req.InitRequest(httpcodec.MethodPost, "/big", "HTTP/1.1")
	req.AddHeader("Host", ip)
	body := make([]byte, 512)
	require.NoError(t, api.PutTx(client, req.Assemble(body)))

	pumpUntil(t, api, done, 2*time.Second)
	require.True(t, sawError)
}
