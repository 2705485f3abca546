package wsframe

import (
	"testing"

	"github.com/kala13x/libxutils-sub001/buffer"
	"github.com/kala13x/libxutils-sub001/httpcodec"
	"github.com/stretchr/testify/require"
)

func TestAcceptKeyKnownVector(t *testing.T) {
	// RFC 6455 §1.3 worked example.
	require.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", AcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestServerHandshakeAcceptsValidUpgrade(t *testing.T) {
	req := httpcodec.New(0, 0)
	b := buffer.New(0)
	raw := BuildClientRequest("example.com", "/chat", "dGhlIHNhbXBsZSBub25jZQ==")
	require.NoError(t, b.Append(raw))
	status, err := req.Feed(b)
	require.NoError(t, err)
	require.Equal(t, httpcodec.Complete, status)

	resp, key, err := ServerHandshake(req, false)
	require.NoError(t, err)
	require.Equal(t, "dGhlIHNhbXBsZSBub25jZQ==", key)

	parsed := httpcodec.New(0, 0)
	rb := buffer.New(0)
	require.NoError(t, rb.Append(resp))
	status, err = parsed.Feed(rb)
	require.NoError(t, err)
	require.Equal(t, httpcodec.Complete, status)
	require.Equal(t, 101, parsed.StatusCode)
	require.NoError(t, ClientHandshake(parsed, "dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestServerHandshakeRejectsMissingKeyByDefault(t *testing.T) {
	req := httpcodec.New(0, 0)
	req.InitRequest(httpcodec.MethodGet, "/chat", "HTTP/1.1")
	req.AddHeader("Upgrade", "websocket")
	_, _, err := ServerHandshake(req, false)
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestFrameRoundTripUnmaskedTextFrame(t *testing.T) {
	raw, err := Build(OpText, true, []byte("hello"), false)
	require.NoError(t, err)

	b := buffer.New(0)
	require.NoError(t, b.Append(raw))
	f, status, err := Feed(b, 0)
	require.NoError(t, err)
	require.Equal(t, Complete, status)
	require.Equal(t, OpText, f.Opcode)
	require.True(t, f.FIN)
	require.Equal(t, "hello", string(f.Payload))
	require.Equal(t, 0, b.Len())
}

func TestFrameRoundTripMaskedClientFrame(t *testing.T) {
	raw, err := Build(OpBinary, true, []byte("payload-bytes"), true)
	require.NoError(t, err)

	b := buffer.New(0)
	require.NoError(t, b.Append(raw))
	f, status, err := Feed(b, 0)
	require.NoError(t, err)
	require.Equal(t, Complete, status)
	require.True(t, f.Masked)
	require.Equal(t, "payload-bytes", string(f.Payload))
}

func TestFrameIncompleteOnPartialHeader(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, b.Append([]byte{0x81}))
	_, status, err := Feed(b, 0)
	require.NoError(t, err)
	require.Equal(t, Incomplete, status)
}

func TestFrameExtendedLength16(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	raw, err := Build(OpBinary, true, payload, false)
	require.NoError(t, err)

	b := buffer.New(0)
	require.NoError(t, b.Append(raw))
	f, status, err := Feed(b, 0)
	require.NoError(t, err)
	require.Equal(t, Complete, status)
	require.Equal(t, payload, f.Payload)
}

func TestFrameBigDataRejectsOversizedPayload(t *testing.T) {
	raw, err := Build(OpBinary, true, make([]byte, 200), false)
	require.NoError(t, err)

	b := buffer.New(0)
	require.NoError(t, b.Append(raw))
	_, status, err := Feed(b, 100)
	require.NoError(t, err)
	require.Equal(t, BigData, status)
}

func TestAutoPongFrameEchoesPingPayload(t *testing.T) {
	ping := &Frame{Opcode: OpPing, Payload: []byte("ping-data")}
	raw, err := AutoPongFrame(ping, false)
	require.NoError(t, err)

	b := buffer.New(0)
	require.NoError(t, b.Append(raw))
	f, status, err := Feed(b, 0)
	require.NoError(t, err)
	require.Equal(t, Complete, status)
	require.Equal(t, OpPong, f.Opcode)
	require.Equal(t, "ping-data", string(f.Payload))
}
