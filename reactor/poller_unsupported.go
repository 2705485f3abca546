/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package reactor

import (
	"fmt"
	"runtime"
	"time"
)

// newPoller fails cleanly on platforms without an epoll or kqueue backend
// (notably Windows — see DESIGN.md for why no IOCP backend is wired here).
func newPoller() (poller, error) {
	return nil, fmt.Errorf("reactor: no readiness poller backend for GOOS=%s", runtime.GOOS)
}

type unsupportedPoller struct{}

func (unsupportedPoller) add(fd int, mask Mask) error           { return errUnsupported }
func (unsupportedPoller) modify(fd int, mask Mask) error        { return errUnsupported }
func (unsupportedPoller) remove(fd int) error                   { return errUnsupported }
func (unsupportedPoller) wait(time.Duration) ([]readyFD, error) { return nil, errUnsupported }
func (unsupportedPoller) close() error                          { return nil }

var errUnsupported = fmt.Errorf("reactor: unsupported platform")
