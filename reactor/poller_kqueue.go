/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

//go:build darwin || freebsd || netbsd || openbsd

package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

// kqueuePoller backs poller on BSD-family kernels, including Darwin.
// Read and write readiness are independent filters under kqueue, unlike
// epoll's single combined event, so add/modify register or deregister
// EVFILT_READ and EVFILT_WRITE individually based on the requested mask.
type kqueuePoller struct {
	kq     int
	events []unix.Kevent_t
}

func newPoller() (poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	return &kqueuePoller{kq: kq, events: make([]unix.Kevent_t, 256)}, nil
}

func (p *kqueuePoller) changeFilter(fd int, filter int16, enable bool) error {
	flags := uint16(unix.EV_ADD | unix.EV_ENABLE)
	if !enable {
		flags = unix.EV_DELETE
	}
	ev := unix.Kevent_t{Ident: uint64(fd), Filter: filter, Flags: flags}
	_, err := unix.Kevent(p.kq, []unix.Kevent_t{ev}, nil, nil)
	if err != nil && !enable && err == unix.ENOENT {
		// Deleting a filter that was never armed is a no-op for our
		// purposes (e.g. a write-only registration being removed).
		return nil
	}
	return err
}

func (p *kqueuePoller) add(fd int, mask Mask) error {
	if err := p.changeFilter(fd, unix.EVFILT_READ, mask&In != 0); err != nil {
		return err
	}
	return p.changeFilter(fd, unix.EVFILT_WRITE, mask&Out != 0)
}

func (p *kqueuePoller) modify(fd int, mask Mask) error {
	return p.add(fd, mask)
}

func (p *kqueuePoller) remove(fd int) error {
	_ = p.changeFilter(fd, unix.EVFILT_READ, false)
	_ = p.changeFilter(fd, unix.EVFILT_WRITE, false)
	return nil
}

func (p *kqueuePoller) wait(timeout time.Duration) ([]readyFD, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		spec := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &spec
	}
	n, err := unix.Kevent(p.kq, nil, p.events, ts)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	merged := make(map[int]Mask, n)
	for i := 0; i < n; i++ {
		fd := int(p.events[i].Ident)
		var m Mask
		switch p.events[i].Filter {
		case unix.EVFILT_READ:
			m = In
		case unix.EVFILT_WRITE:
			m = Out
		}
		if p.events[i].Flags&unix.EV_EOF != 0 {
			m |= Hup
		}
		if p.events[i].Flags&unix.EV_ERROR != 0 {
			m |= Err
		}
		merged[fd] |= m
	}

	out := make([]readyFD, 0, len(merged))
	for fd, m := range merged {
		out = append(out, readyFD{fd: fd, mask: m})
	}
	return out, nil
}

func (p *kqueuePoller) close() error {
	return unix.Close(p.kq)
}
