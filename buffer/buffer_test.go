package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAdvanceRoundTrip(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Append([]byte("hello ")))
	require.NoError(t, b.Append([]byte("world")))
	require.Equal(t, "hello world", string(b.Bytes()))

	b.Advance(6)
	require.Equal(t, "world", string(b.Bytes()))
	require.True(t, b.HasData())
}

func TestAdvanceBeyondLenEmptiesBuffer(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Append([]byte("abc")))
	b.Advance(100)
	require.False(t, b.HasData())
	require.Equal(t, 0, b.Len())
}

func TestShortWriteLeavesRemainderIntact(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Append([]byte("abcdef")))
	// Simulate a short write of 2 bytes: only the front 2 bytes leave.
	b.Advance(2)
	require.Equal(t, "cdef", string(b.Bytes()))
}

func TestReserveRespectsLimit(t *testing.T) {
	b := New(0)
	b.SetLimit(4)
	require.NoError(t, b.Append([]byte("abcd")))
	err := b.Append([]byte("e"))
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestClearKeepsCapacity(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Append([]byte("abcdef")))
	c := b.Cap()
	b.Clear()
	require.Equal(t, 0, b.Len())
	require.Equal(t, c, b.Cap())
}
