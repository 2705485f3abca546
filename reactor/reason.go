/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package reactor

// Reason is the low-level readiness or lifecycle reason the reactor hands
// to its callback for a given event record.
type Reason int

const (
	Readable Reason = iota
	Writable
	Closed
	Hung
	TimerFired
	UserWake
	Interrupt
	Destroy
	Clear
)

func (r Reason) String() string {
	switch r {
	case Readable:
		return "Readable"
	case Writable:
		return "Writable"
	case Closed:
		return "Closed"
	case Hung:
		return "Hung"
	case TimerFired:
		return "TimerFired"
	case UserWake:
		return "UserWake"
	case Interrupt:
		return "Interrupt"
	case Destroy:
		return "Destroy"
	case Clear:
		return "Clear"
	default:
		return "Unknown"
	}
}

// Directive is what a callback returns to tell the reactor what to do next
// with the event it was just handed.
type Directive int

const (
	// Continue leaves the event's interest mask untouched.
	Continue Directive = iota
	// Disconnect deletes the event (or, for a timer event, deletes only the
	// timer, leaving its owning connection's event untouched).
	Disconnect
	// Accept marks a newly-registered event as inserted last in this tick's
	// iteration order, so it isn't serviced again until the next tick.
	Accept
	// Reloop restarts the current Service tick's iteration from the top.
	Reloop
)

// Mask is a bitfield of readiness interest/conditions.
type Mask uint32

const (
	In Mask = 1 << iota
	Out
	Hup
	Err
	Pri
)
