/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package xnet

import "github.com/google/uuid"

// NewSpanID returns a UUIDv7 correlation id, minted once per connection at
// registration time and attached to every subsequent structured log event
// for that connection's lifetime.
//
// Adapted from bassosimone-nop/spanid.go: that package panics on a random
// source failure via runtimex.PanicOnError1, a dependency this module does
// not carry; a connection-registration failure path is expected here, so
// the error is returned instead of panicking.
func NewSpanID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
