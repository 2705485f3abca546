/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package httpcodec

import "github.com/kala13x/libxutils-sub001/hdr"

// field is one header slot in insertion order.
type field struct {
	name  string // canonical form, e.g. "Content-Type"
	value string
}

// Headers is a case-insensitive header table that preserves insertion
// order on both parse and assemble, unlike hdr.Header (kept from the
// teacher for its wire-format helpers), which is a map and therefore
// sorts on write. This module's wire contract requires the order headers
// were added in to survive round-trips, so Headers is its own small type
// built on top of hdr's canonicalization rather than a rename of hdr.Header.
type Headers struct {
	fields []field
	index  map[string]int // canonical name -> index into fields
}

// NewHeaders returns an empty, ready-to-use header table.
func NewHeaders() *Headers {
	return &Headers{index: make(map[string]int)}
}

// Set inserts name/value. If name is already present, update decides the
// outcome: when update is false (plain Add semantics used while parsing),
// the existing value wins and the duplicate is reported via dup=true so
// the caller can log it. When update is true, a same-value insert is a
// no-op and a different-value insert replaces the stored value in place,
// preserving original position.
func (h *Headers) Set(name, value string, update bool) (dup bool) {
	key := hdr.CanonicalHeaderKey(name)
	if i, ok := h.index[key]; ok {
		if !update {
			return true
		}
		if h.fields[i].value == value {
			return false
		}
		h.fields[i].value = value
		return false
	}
	h.index[key] = len(h.fields)
	h.fields = append(h.fields, field{name: key, value: value})
	return false
}

// Get returns the value for name and whether it was present.
func (h *Headers) Get(name string) (string, bool) {
	key := hdr.CanonicalHeaderKey(name)
	i, ok := h.index[key]
	if !ok {
		return "", false
	}
	return h.fields[i].value, true
}

// Del removes name if present.
func (h *Headers) Del(name string) {
	key := hdr.CanonicalHeaderKey(name)
	i, ok := h.index[key]
	if !ok {
		return
	}
	h.fields = append(h.fields[:i], h.fields[i+1:]...)
	delete(h.index, key)
	for k, idx := range h.index {
		if idx > i {
			h.index[k] = idx - 1
		}
	}
}

// Each calls fn for every header in insertion order.
func (h *Headers) Each(fn func(name, value string)) {
	for _, f := range h.fields {
		fn(f.name, f.value)
	}
}

// Len reports the number of stored headers.
func (h *Headers) Len() int { return len(h.fields) }

// Clear empties the table for reuse.
func (h *Headers) Clear() {
	h.fields = h.fields[:0]
	for k := range h.index {
		delete(h.index, k)
	}
}
