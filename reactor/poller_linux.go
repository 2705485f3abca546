/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

//go:build linux

package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

// epollPoller backs poller on Linux with a level-triggered epoll instance,
// so a connection with unread input or an un-drained write buffer keeps
// reporting ready without the reactor having to track short-read/short-write
// state itself.
type epollPoller struct {
	epfd int
	// events is reused across Wait calls to avoid per-tick allocation.
	events []unix.EpollEvent
}

func newPoller() (poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{epfd: epfd, events: make([]unix.EpollEvent, 256)}, nil
}

func toEpollEvents(m Mask) uint32 {
	var ev uint32
	if m&In != 0 {
		ev |= unix.EPOLLIN
	}
	if m&Out != 0 {
		ev |= unix.EPOLLOUT
	}
	if m&Pri != 0 {
		ev |= unix.EPOLLPRI
	}
	return ev
}

func fromEpollEvents(ev uint32) Mask {
	var m Mask
	if ev&unix.EPOLLIN != 0 {
		m |= In
	}
	if ev&unix.EPOLLOUT != 0 {
		m |= Out
	}
	if ev&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		m |= Hup
	}
	if ev&unix.EPOLLERR != 0 {
		m |= Err
	}
	if ev&unix.EPOLLPRI != 0 {
		m |= Pri
	}
	return m
}

func (p *epollPoller) add(fd int, mask Mask) error {
	ev := unix.EpollEvent{Events: toEpollEvents(mask) | unix.EPOLLRDHUP, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) modify(fd int, mask Mask) error {
	ev := unix.EpollEvent{Events: toEpollEvents(mask) | unix.EPOLLRDHUP, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *epollPoller) remove(fd int) error {
	// Linux ignores the event argument on EPOLL_CTL_DEL but pre-2.6.9
	// kernels require a non-nil pointer; pass one for safety.
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, &unix.EpollEvent{})
}

func (p *epollPoller) wait(timeout time.Duration) ([]readyFD, error) {
	ms := -1
	if timeout >= 0 {
		// Round up so a wait sized to the next timer deadline does not
		// return just before that deadline.
		ms = int((timeout + time.Millisecond - 1) / time.Millisecond)
	}
	n, err := unix.EpollWait(p.epfd, p.events, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	out := make([]readyFD, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, readyFD{fd: int(p.events[i].Fd), mask: fromEpollEvents(p.events[i].Events)})
	}
	return out, nil
}

func (p *epollPoller) close() error {
	return unix.Close(p.epfd)
}
