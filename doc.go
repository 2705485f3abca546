/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package xnet is a single-threaded, readiness-based network service core:
// one reactor loop multiplexing listeners, clients, accepted peers, and
// custom descriptors, driving per-connection Raw/Packet/HTTP/WebSocket
// protocol state machines and a single user callback.
//
// The reactor (package reactor) only ever reports "this descriptor is
// readable/writable/closed/hung" plus timer and wake reasons. Api
// translates those into role-aware, protocol-aware reasons
// (Accepted, Connected, Read, Write, Complete, the three handshake
// reasons, Closed, Error, Status, Timeout, Interrupt, Listening,
// Registered, User) and owns each connection's receive/transmit buffers,
// HTTP/WS handshakes, and cancellation/timer plumbing.
package xnet
