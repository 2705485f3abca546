package packet

import (
	"testing"

	"github.com/kala13x/libxutils-sub001/buffer"
	"github.com/stretchr/testify/require"
)

func TestAssembleFeedRoundTrip(t *testing.T) {
	hdr := Header{
		Version:    "1",
		PacketType: TypeData,
		SessionID:  "sess-1",
	}
	raw, err := Assemble(hdr, []byte("payload-bytes"))
	require.NoError(t, err)

	b := buffer.New(0)
	require.NoError(t, b.Append(raw))
	p, status, err := Feed(b, 0, 0)
	require.NoError(t, err)
	require.Equal(t, Complete, status)
	require.Equal(t, TypeData, p.Header.PacketType)
	require.Equal(t, "sess-1", p.Header.SessionID)
	require.Equal(t, "payload-bytes", string(p.Payload))
	require.Equal(t, 0, b.Len())
}

func TestFeedIncompleteOnPartialPrefix(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, b.Append([]byte{1, 2}))
	_, status, err := Feed(b, 0, 0)
	require.NoError(t, err)
	require.Equal(t, Incomplete, status)
}

func TestFeedParsedWhenHeaderKnownButPayloadShort(t *testing.T) {
	hdr := Header{PacketType: TypePing, Payload: Payload{PayloadSize: 100}}
	raw, err := Assemble(hdr, make([]byte, 100))
	require.NoError(t, err)

	b := buffer.New(0)
	require.NoError(t, b.Append(raw[:len(raw)-50]))
	_, status, err := Feed(b, 0, 0)
	require.NoError(t, err)
	require.Equal(t, Parsed, status)
}

func TestFeedBigHeaderRejectsOversizedHeaderLen(t *testing.T) {
	hdr := Header{PacketType: TypeInfo}
	raw, err := Assemble(hdr, nil)
	require.NoError(t, err)

	b := buffer.New(0)
	require.NoError(t, b.Append(raw))
	_, status, err := Feed(b, 4, 0)
	require.NoError(t, err)
	require.Equal(t, BigHeader, status)
}

func TestFeedBigDataRejectsOversizedPayload(t *testing.T) {
	hdr := Header{PacketType: TypeData, Payload: Payload{PayloadSize: 200}}
	raw, err := Assemble(hdr, make([]byte, 200))
	require.NoError(t, err)

	b := buffer.New(0)
	require.NoError(t, b.Append(raw))
	_, status, err := Feed(b, 0, 100)
	require.NoError(t, err)
	require.Equal(t, BigData, status)
}

func TestGetTypeUnrecognizedIsInvalid(t *testing.T) {
	require.Equal(t, TypeInvalid, GetType("not-a-real-type"))
	require.Equal(t, TypeData, GetType("data"))
}

func TestNoPayloadPacketCompletesWithoutPayloadBytes(t *testing.T) {
	hdr := Header{PacketType: TypeKA}
	raw, err := Assemble(hdr, nil)
	require.NoError(t, err)

	b := buffer.New(0)
	require.NoError(t, b.Append(raw))
	p, status, err := Feed(b, 0, 0)
	require.NoError(t, err)
	require.Equal(t, Complete, status)
	require.Nil(t, p.Payload)
}
