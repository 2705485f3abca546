/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package reactor is the single-threaded, non-blocking, readiness-based
// event loop underneath the service façade. It owns exactly one thing well:
// turning OS readiness notifications (epoll on Linux, kqueue on the BSDs)
// plus expired timers into a single ordered stream of (Event, Reason) pairs
// handed to one user-supplied callback, once per Service call.
//
// Everything protocol-aware — sockets, TLS, HTTP, WebSocket, the packet
// codec — lives above this package and is reached only through Event.Owner.
package reactor

import (
	"errors"
	"sync/atomic"
	"time"
)

// Callback is invoked once per ready (or timer-fired, or wake/interrupt)
// Event during a Service tick. It returns the Directive telling the
// reactor what to do with that event next.
type Callback func(r *Reactor, ev *Event, reason Reason) Directive

// Reactor is a single-threaded, non-blocking event loop. It is not safe for
// concurrent use except for Wake and NotifyInterrupt, which are the only
// two entry points meant to be called from outside the thread driving
// Service.
type Reactor struct {
	poller   poller
	table    table
	timers   timerHeap
	callback Callback

	wake      *selfPipe
	interrupt *selfPipe
	// interruptPending is set by NotifyInterrupt (possibly from a signal
	// handler) and consumed by the next Service tick.
	interruptPending atomic.Bool

	nextOrder int64
	destroyed bool
}

var (
	// ErrDestroyed is returned by any operation attempted after Destroy.
	ErrDestroyed = errors.New("reactor: destroyed")
	// ErrUnknownEvent is returned when Modify/Delete/ExtendTimer is given
	// an Event the reactor does not recognize (already deleted, or from a
	// different Reactor instance).
	ErrUnknownEvent = errors.New("reactor: unknown event")
)

// New builds a Reactor. use_map selects the table implementation: true for
// a map keyed by fd (fine for any fd range), false for a flat slice indexed
// by fd (faster when fds stay small and dense).
func New(useMap bool, callback Callback) (*Reactor, error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}
	wake, err := newSelfPipe()
	if err != nil {
		p.close()
		return nil, err
	}
	interrupt, err := newSelfPipe()
	if err != nil {
		wake.close()
		p.close()
		return nil, err
	}

	r := &Reactor{
		poller:    p,
		table:     newTable(useMap),
		callback:  callback,
		wake:      wake,
		interrupt: interrupt,
	}

	if wake.fd() >= 0 {
		wakeEv := &Event{FD: wake.fd(), Interest: In, Kind: KindUserWake, insertOrder: r.order()}
		r.table.put(wake.fd(), wakeEv)
		if err := p.add(wake.fd(), In); err != nil {
			r.Destroy()
			return nil, err
		}
	}
	if interrupt.fd() >= 0 {
		intEv := &Event{FD: interrupt.fd(), Interest: In, Kind: KindUserWake, insertOrder: r.order()}
		r.table.put(interrupt.fd(), intEv)
		if err := p.add(interrupt.fd(), In); err != nil {
			r.Destroy()
			return nil, err
		}
	}

	return r, nil
}

func (r *Reactor) order() int64 {
	r.nextOrder++
	return r.nextOrder
}

// Register adds fd to the reactor with the given interest mask and owner,
// returning the Event the caller must hold onto for later Modify/Delete
// calls.
func (r *Reactor) Register(fd int, interest Mask, owner any) (*Event, error) {
	if r.destroyed {
		return nil, ErrDestroyed
	}
	if err := r.poller.add(fd, interest); err != nil {
		return nil, err
	}
	ev := &Event{FD: fd, Interest: interest, Kind: KindNormal, Owner: owner, insertOrder: r.order()}
	r.table.put(fd, ev)
	return ev, nil
}

// Modify changes an event's interest mask.
func (r *Reactor) Modify(ev *Event, interest Mask) error {
	if r.destroyed {
		return ErrDestroyed
	}
	if ev == nil || ev.deleted {
		return ErrUnknownEvent
	}
	if err := r.poller.modify(ev.FD, interest); err != nil {
		return err
	}
	ev.Interest = interest
	return nil
}

// Delete removes an event from the reactor. For a descriptor event it
// deregisters the fd and then invokes the callback once with Clear so the
// owner can release its context; a timer event is only cancelled, without
// a callback. A ready event already queued for the current tick is skipped.
func (r *Reactor) Delete(ev *Event) error {
	if ev == nil || ev.deleted {
		return ErrUnknownEvent
	}
	ev.deleted = true
	if ev.Kind == KindTimer {
		return nil
	}
	_ = r.poller.remove(ev.FD)
	r.table.del(ev.FD)
	if r.callback != nil {
		r.callback(r, ev, Clear)
	}
	return nil
}

// AddTimer schedules a one-shot timer event that fires at deadline.
func (r *Reactor) AddTimer(deadline time.Time, owner any) (*Event, error) {
	if r.destroyed {
		return nil, ErrDestroyed
	}
	ev := &Event{Kind: KindTimer, Owner: owner, Deadline: deadline, insertOrder: r.order()}
	r.timers.push(ev)
	return ev, nil
}

// ExtendTimer reschedules an existing timer event to a new deadline.
func (r *Reactor) ExtendTimer(ev *Event, deadline time.Time) error {
	if ev == nil || ev.deleted || ev.Kind != KindTimer {
		return ErrUnknownEvent
	}
	r.timers.reschedule(ev, deadline)
	return nil
}

// Wake breaks the reactor out of a blocking Service call from another
// goroutine, delivering a single UserWake event on the next tick.
func (r *Reactor) Wake() {
	r.wake.signal()
}

// NotifyInterrupt is safe to call from an os/signal handler; it breaks the
// reactor out of a blocking Service call and delivers an Interrupt event on
// the next tick.
func (r *Reactor) NotifyInterrupt() {
	r.interruptPending.Store(true)
	r.interrupt.signal()
}

// tickItem is one entry in a single Service tick's fixed dispatch order.
type tickItem struct {
	ev     *Event
	reason Reason
}

// Service runs one pass of the event loop: it blocks for at most timeout
// waiting for readiness or the next timer deadline, then dispatches every
// ready event and expired timer to the callback in insertion order.
//
// A negative timeout blocks until something becomes ready. Service returns
// nil on a normal tick, including one where nothing was ready.
func (r *Reactor) Service(timeout time.Duration) error {
	if r.destroyed {
		return ErrDestroyed
	}

	waitFor := timeout
	if deadline, ok := r.timers.nextDeadline(); ok {
		until := time.Until(deadline)
		if until < 0 {
			until = 0
		}
		if timeout < 0 || until < timeout {
			waitFor = until
		}
	}

	ready, err := r.poller.wait(waitFor)
	if err != nil {
		return err
	}

	var items []tickItem
	for _, rf := range ready {
		ev, ok := r.table.get(rf.fd)
		if !ok {
			continue
		}
		if ev.Kind == KindUserWake {
			reason := UserWake
			if ev.FD == r.interrupt.fd() {
				r.interrupt.drain()
				if !r.interruptPending.Swap(false) {
					continue
				}
				reason = Interrupt
			} else {
				r.wake.drain()
			}
			items = append(items, tickItem{ev: ev, reason: reason})
			continue
		}
		items = append(items, tickItem{ev: ev, reason: reasonFromMask(rf.mask)})
	}

	for _, ev := range r.timers.popExpired(time.Now()) {
		items = append(items, tickItem{ev: ev, reason: TimerFired})
	}

	sortByInsertOrder(items)

	i := 0
	for i < len(items) {
		it := items[i]
		if it.ev.deleted {
			i++
			continue
		}
		switch r.callback(r, it.ev, it.reason) {
		case Disconnect:
			if !it.ev.deleted { // the callback may already have called Delete
				it.ev.deleted = true
				if it.ev.Kind != KindTimer {
					_ = r.poller.remove(it.ev.FD)
					r.table.del(it.ev.FD)
				}
				r.callback(r, it.ev, Clear)
			}
			i++
		case Reloop:
			i = 0
		default: // Continue, Accept
			i++
		}
	}

	return nil
}

func reasonFromMask(m Mask) Reason {
	switch {
	case m&Hup != 0:
		return Hung
	case m&Err != 0:
		return Closed
	case m&In != 0:
		return Readable
	case m&Out != 0:
		return Writable
	default:
		return Readable
	}
}

// sortByInsertOrder is a small insertion sort: tick batches are tiny (one
// fd rarely produces more than a few hundred ready events per call), so
// this beats sort.Slice's overhead and keeps the sort stable for free.
func sortByInsertOrder(items []tickItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].ev.insertOrder < items[j-1].ev.insertOrder; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// Destroy tears down the reactor, delivering Destroy then Clear to every
// remaining live event in reverse insertion order, then releases the
// poller and wake pipes. Destroy is idempotent.
func (r *Reactor) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true

	var live []*Event
	r.table.each(func(ev *Event) { live = append(live, ev) })
	for _, ev := range r.timers.items {
		if !ev.deleted {
			live = append(live, ev)
		}
	}
	sortEventsByInsertOrderDesc(live)

	for _, ev := range live {
		if ev.Kind == KindUserWake {
			continue
		}
		if r.callback != nil {
			r.callback(r, ev, Destroy)
			r.callback(r, ev, Clear)
		}
		ev.deleted = true
	}

	r.wake.close()
	r.interrupt.close()
	_ = r.poller.close()
}

func sortEventsByInsertOrderDesc(evs []*Event) {
	for i := 1; i < len(evs); i++ {
		for j := i; j > 0 && evs[j].insertOrder > evs[j-1].insertOrder; j-- {
			evs[j], evs[j-1] = evs[j-1], evs[j]
		}
	}
}
