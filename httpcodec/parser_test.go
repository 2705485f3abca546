package httpcodec

import (
	"testing"

	"github.com/kala13x/libxutils-sub001/buffer"
	"github.com/stretchr/testify/require"
)

func feedAll(t *testing.T, m *Message, b *buffer.Buffer, raw []byte, chunk int) Status {
	t.Helper()
	var last Status
	for len(raw) > 0 {
		n := chunk
		if n > len(raw) {
			n = len(raw)
		}
		require.NoError(t, b.Append(raw[:n]))
		raw = raw[n:]
		var err error
		last, err = m.Feed(b)
		require.NoError(t, err)
	}
	return last
}

func TestParseSimpleGetRequest(t *testing.T) {
	m := New(0, 0)
	b := buffer.New(0)
	raw := []byte("GET /foo HTTP/1.1\r\nHost: example.com\r\n\r\n")
	status := feedAll(t, m, b, raw, len(raw))
	require.Equal(t, Complete, status)
	require.Equal(t, MethodGet, m.Method)
	require.Equal(t, "/foo", m.URI)
	host, ok := m.GetHeader("Host")
	require.True(t, ok)
	require.Equal(t, "example.com", host)
}

func TestParseOneByteAtATimeYieldsEachStatusOnce(t *testing.T) {
	m := New(0, 0)
	b := buffer.New(0)
	raw := []byte("GET / HTTP/1.1\r\nHost: x\r\nContent-Length: 3\r\n\r\nabc")

	var parsedCount, completeCount int
	for _, c := range raw {
		require.NoError(t, b.Append([]byte{c}))
		status, err := m.Feed(b)
		require.NoError(t, err)
		switch status {
		case Parsed:
			parsedCount++
		case Complete:
			completeCount++
		}
	}
	require.Equal(t, 1, parsedCount)
	require.Equal(t, 1, completeCount)
	body, ok := m.GetBody()
	require.True(t, ok)
	require.Equal(t, "abc", string(body))
}

func TestContentLengthZeroCompletesImmediately(t *testing.T) {
	m := New(0, 0)
	b := buffer.New(0)
	raw := []byte("POST /x HTTP/1.1\r\nContent-Length: 0\r\n\r\n")
	status := feedAll(t, m, b, raw, len(raw))
	require.Equal(t, Complete, status)
	_, ok := m.GetBody()
	require.False(t, ok)
}

func TestHeaderExactlyAtCapCompletes(t *testing.T) {
	raw := []byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n")
	m := New(len(raw), 0)
	b := buffer.New(0)
	status := feedAll(t, m, b, raw, len(raw))
	require.Equal(t, Complete, status)
}

func TestHeaderOneByteOverCapIsBigHeader(t *testing.T) {
	raw := []byte("GET / HTTP/1.1\r\nHost: xx\r\n\r\n")
	m := New(len(raw)-1, 0)
	b := buffer.New(0)
	require.NoError(t, b.Append(raw))
	status, err := m.Feed(b)
	require.NoError(t, err)
	require.Equal(t, BigHeader, status)
}

func TestDuplicateHeaderFirstWins(t *testing.T) {
	m := New(0, 0)
	var dup string
	m.OnDuplicateHeader = func(name, value string) { dup = name }
	b := buffer.New(0)
	raw := []byte("GET / HTTP/1.1\r\nX-Foo: one\r\nX-Foo: two\r\n\r\n")
	feedAll(t, m, b, raw, len(raw))
	v, ok := m.GetHeader("X-Foo")
	require.True(t, ok)
	require.Equal(t, "one", v)
	require.Equal(t, "x-foo", dup)
}

func TestAssembleResponseRoundTrip(t *testing.T) {
	m := New(0, 0)
	m.InitResponse(200, "HTTP/1.1")
	m.AddHeader("Content-Type", "text/plain")
	out := m.Assemble([]byte("Here is your response."))

	parsed := New(0, 0)
	b := buffer.New(0)
	status := feedAll(t, parsed, b, out, len(out))
	require.Equal(t, Complete, status)
	require.Equal(t, 200, parsed.StatusCode)
	ct, ok := parsed.GetHeader("Content-Type")
	require.True(t, ok)
	require.Equal(t, "text/plain", ct)
	body, ok := parsed.GetBody()
	require.True(t, ok)
	require.Equal(t, "Here is your response.", string(body))
}

func TestChunkedBodyAssembledAcrossChunks(t *testing.T) {
	m := New(0, 0)
	b := buffer.New(0)
	raw := []byte("POST /x HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n")
	status := feedAll(t, m, b, raw, 7)
	require.Equal(t, Complete, status)
	body, ok := m.GetBody()
	require.True(t, ok)
	require.Equal(t, "Wikipedia", string(body))
}
