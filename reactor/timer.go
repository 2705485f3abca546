/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package reactor

import "time"

// timerHeap is a min-heap of *Event ordered by Deadline, used to compute
// the reactor's next poll timeout and to pop expired timers after Wait
// returns. It is intentionally not container/heap: the reactor only ever
// needs push, peek-min and pop-expired, and a handful of timers rarely
// justifies the interface overhead.
type timerHeap struct {
	items []*Event
}

func (h *timerHeap) push(ev *Event) {
	h.items = append(h.items, ev)
	i := len(h.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].Deadline.Before(h.items[parent].Deadline) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *timerHeap) siftDown(i int) {
	n := len(h.items)
	for {
		left, right, smallest := 2*i+1, 2*i+2, i
		if left < n && h.items[left].Deadline.Before(h.items[smallest].Deadline) {
			smallest = left
		}
		if right < n && h.items[right].Deadline.Before(h.items[smallest].Deadline) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// reschedule updates an already-pushed timer's deadline in place and
// restores the heap invariant, instead of pushing a second entry for the
// same *Event. If ev is no longer in the heap (it already fired) it is
// pushed fresh.
func (h *timerHeap) reschedule(ev *Event, deadline time.Time) {
	for i, e := range h.items {
		if e == ev {
			ev.Deadline = deadline
			h.siftDown(i)
			h.siftUp(i)
			return
		}
	}
	ev.Deadline = deadline
	h.push(ev)
}

func (h *timerHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].Deadline.Before(h.items[parent].Deadline) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

// nextDeadline reports the soonest Deadline among live timers, if any,
// discarding any deleted timers it finds sitting at the root along the way.
func (h *timerHeap) nextDeadline() (time.Time, bool) {
	for len(h.items) > 0 {
		if !h.items[0].deleted {
			return h.items[0].Deadline, true
		}
		h.items[0] = h.items[len(h.items)-1]
		h.items = h.items[:len(h.items)-1]
		h.siftDown(0)
	}
	return time.Time{}, false
}

// popExpired removes and returns every timer whose Deadline has passed,
// in soonest-first order.
func (h *timerHeap) popExpired(now time.Time) []*Event {
	var expired []*Event
	for len(h.items) > 0 {
		top := h.items[0]
		if top.deleted {
			h.items[0] = h.items[len(h.items)-1]
			h.items = h.items[:len(h.items)-1]
			h.siftDown(0)
			continue
		}
		if top.Deadline.After(now) {
			break
		}
		expired = append(expired, top)
		h.items[0] = h.items[len(h.items)-1]
		h.items = h.items[:len(h.items)-1]
		h.siftDown(0)
	}
	return expired
}
