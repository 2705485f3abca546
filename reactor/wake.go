/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

//go:build linux || darwin || freebsd || netbsd || openbsd

package reactor

import "golang.org/x/sys/unix"

// selfPipe lets another goroutine (or, via NotifyInterrupt, an os/signal
// handler) break the reactor out of a blocking poller.wait call. Writing a
// single byte is async-signal-safe and wakes epoll/kqueue immediately; the
// reactor drains the pipe on the read side without caring how many bytes
// piled up, since a wake is a level, not an edge.
type selfPipe struct {
	r, w int
}

func newSelfPipe() (*selfPipe, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		return nil, err
	}
	return &selfPipe{r: fds[0], w: fds[1]}, nil
}

func (p *selfPipe) fd() int { return p.r }

func (p *selfPipe) signal() {
	var b [1]byte
	_, _ = unix.Write(p.w, b[:])
}

func (p *selfPipe) drain() {
	var buf [64]byte
	for {
		n, err := unix.Read(p.r, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (p *selfPipe) close() {
	_ = unix.Close(p.r)
	_ = unix.Close(p.w)
}
