/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package buffer implements the appendable, reservable, advanceable
// (data, used, size) byte queue shared by the reactor's receive and
// transmit paths. It plays the role of libxutils' xbyte_buffer_t: a single
// owner of its bytes, grown geometrically, and drained from the front
// without ever reordering what's left.
package buffer

import "errors"

// ErrTooLarge is returned by Reserve when growing the buffer would exceed
// the caller-imposed ceiling (see SetLimit).
var ErrTooLarge = errors.New("buffer: requested size exceeds limit")

const defaultInitialCap = 4096

// Buffer is an appendable, reservable, advanceable byte queue. The zero
// value is usable and starts empty. Buffer is not safe for concurrent use;
// callers in this module only ever touch a Buffer from the single reactor
// goroutine.
type Buffer struct {
	data  []byte
	limit int // 0 means unlimited
}

// New returns a Buffer pre-sized to cap bytes.
func New(cap int) *Buffer {
	b := &Buffer{}
	if cap > 0 {
		b.data = make([]byte, 0, cap)
	}
	return b
}

// SetLimit caps the buffer's growth; Reserve/Append beyond the limit fail
// with ErrTooLarge instead of growing. A limit of 0 means unlimited.
func (b *Buffer) SetLimit(limit int) { b.limit = limit }

// Limit returns the configured growth cap, or 0 if unlimited.
func (b *Buffer) Limit() int { return b.limit }

// Len returns the number of bytes currently queued (the "used" count).
func (b *Buffer) Len() int { return len(b.data) }

// Cap returns the buffer's current backing capacity (the "size" count).
func (b *Buffer) Cap() int { return cap(b.data) }

// HasData reports whether any bytes are queued.
func (b *Buffer) HasData() bool { return len(b.data) > 0 }

// Bytes returns the queued bytes. The returned slice aliases the buffer's
// storage and is invalidated by the next Append, Reserve, or Advance.
func (b *Buffer) Bytes() []byte { return b.data }

// Reserve grows the backing array so that at least n more bytes can be
// appended without reallocating, respecting SetLimit.
func (b *Buffer) Reserve(n int) error {
	need := len(b.data) + n
	if b.limit > 0 && need > b.limit {
		return ErrTooLarge
	}
	if cap(b.data) >= need {
		return nil
	}
	newCap := cap(b.data)
	if newCap == 0 {
		newCap = defaultInitialCap
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
	return nil
}

// Append copies p onto the end of the buffer, growing as needed.
func (b *Buffer) Append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := b.Reserve(len(p)); err != nil {
		return err
	}
	b.data = append(b.data, p...)
	return nil
}

// Advance removes the first n bytes from the front of the buffer, sliding
// the remainder down. It is the sole mechanism by which "consumed" bytes
// leave rx/tx buffers, so a short write never reorders or drops the
// remainder (see the reactor's transmit-drain invariant).
func (b *Buffer) Advance(n int) {
	if n <= 0 {
		return
	}
	if n >= len(b.data) {
		b.data = b.data[:0]
		return
	}
	copy(b.data, b.data[n:])
	b.data = b.data[:len(b.data)-n]
}

// Clear empties the buffer without releasing its backing array.
func (b *Buffer) Clear() { b.data = b.data[:0] }

// Reset releases the backing array entirely.
func (b *Buffer) Reset() { b.data = nil }
