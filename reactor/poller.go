/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package reactor

import "time"

// readyFD is one descriptor the OS reported as ready, plus the condition
// bits that fired (a subset of In/Out/Hup/Err/Pri).
type readyFD struct {
	fd   int
	mask Mask
}

// poller is the OS-specific readiness multiplexer the Reactor drives. Linux
// gets an epoll backend (poller_linux.go); Darwin/FreeBSD/NetBSD/OpenBSD get
// a kqueue backend (poller_kqueue.go). There is no Windows backend — see
// DESIGN.md.
//
// Implementations re-arm interest after every drain on edge-triggered
// platforms and leave interest persistent on level-triggered ones; either
// way Wait must keep reporting a writable fd with queued bytes and a
// readable fd with buffered input on every tick, per the reactor's unified
// readiness contract.
type poller interface {
	add(fd int, mask Mask) error
	modify(fd int, mask Mask) error
	remove(fd int) error
	wait(timeout time.Duration) ([]readyFD, error)
	close() error
}
