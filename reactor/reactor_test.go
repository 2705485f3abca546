//go:build linux

package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func makePipe(t *testing.T) (r, w int) {
	t.Helper()
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	require.NoError(t, unix.SetNonblock(fds[0], true))
	require.NoError(t, unix.SetNonblock(fds[1], true))
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestServiceDispatchesReadable(t *testing.T) {
	r, w := makePipe(t)

	var got Reason
	rx, err := New(true, func(_ *Reactor, ev *Event, reason Reason) Directive {
		got = reason
		return Continue
	})
	require.NoError(t, err)
	defer rx.Destroy()

	_, err = rx.Register(r, In, "conn")
	require.NoError(t, err)

	_, err = unix.Write(w, []byte("x"))
	require.NoError(t, err)

	require.NoError(t, rx.Service(time.Second))
	require.Equal(t, Readable, got)
}

func TestServiceDisconnectRemovesEvent(t *testing.T) {
	r, w := makePipe(t)

	calls := 0
	rx, err := New(false, func(_ *Reactor, ev *Event, reason Reason) Directive {
		calls++
		if reason == Clear {
			return Continue
		}
		return Disconnect
	})
	require.NoError(t, err)
	defer rx.Destroy()

	ev, err := rx.Register(r, In, nil)
	require.NoError(t, err)

	_, err = unix.Write(w, []byte("x"))
	require.NoError(t, err)
	require.NoError(t, rx.Service(time.Second))

	require.True(t, ev.deleted)
	require.Equal(t, 2, calls) // Readable dispatch, then Clear
}

func TestTimerFiresOnDeadline(t *testing.T) {
	fired := false
	rx, err := New(true, func(_ *Reactor, ev *Event, reason Reason) Directive {
		if reason == TimerFired {
			fired = true
		}
		return Continue
	})
	require.NoError(t, err)
	defer rx.Destroy()

	_, err = rx.AddTimer(time.Now().Add(10*time.Millisecond), "ctx")
	require.NoError(t, err)

	require.NoError(t, rx.Service(200*time.Millisecond))
	require.True(t, fired)
}

func TestWakeDeliversUserWake(t *testing.T) {
	done := make(chan struct{})
	var got Reason
	rx, err := New(true, func(_ *Reactor, ev *Event, reason Reason) Directive {
		got = reason
		close(done)
		return Continue
	})
	require.NoError(t, err)
	defer rx.Destroy()

	go func() {
		time.Sleep(10 * time.Millisecond)
		rx.Wake()
	}()

	require.NoError(t, rx.Service(time.Second))
	<-done
	require.Equal(t, UserWake, got)
}
