/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package xnet

import (
	"github.com/kala13x/libxutils-sub001/buffer"
	"github.com/kala13x/libxutils-sub001/httpcodec"
	"github.com/kala13x/libxutils-sub001/reactor"
	"github.com/kala13x/libxutils-sub001/socket"
)

// Buffer aliases buffer.Buffer so callers of Api.GetTx/GetRx don't need a
// second import for a type they only ever borrow a pointer to.
type Buffer = buffer.Buffer

// Connection is the per-descriptor record the façade hands to the user
// callback. One exists for every registered descriptor (listener, client,
// accepted peer, or custom fd) and is destroyed when its event record
// receives reactor.Clear.
type Connection struct {
	ID uint64

	Socket *socket.Socket
	Rx, Tx *buffer.Buffer

	Role     Role
	Protocol Protocol

	RemoteAddr string
	RemotePort int
	URI        string

	// Nonce is the WebSocket client's Sec-WebSocket-Key, set only for
	// protocol=WS role=Client connections.
	Nonce string

	HandshakeStarted bool
	HandshakeDone    bool

	// ReadOnWrite/WriteOnRead latch a TLS renegotiation's cross-direction
	// request: set when a read/write returned WantWrite/WantRead, cleared
	// once the opposite-direction event resumes the original operation.
	ReadOnWrite bool
	WriteOnRead bool

	// Cancel forces disconnect after the current write flushes; set by
	// any handler (including the façade itself on assembly failure).
	Cancel bool

	// Event is the reactor's back-reference for this connection's
	// descriptor; never aliased for writes, only used to call
	// Modify/Delete/ExtendTimer.
	Event *reactor.Event

	// Timer is this connection's optional pending one-shot timer, nil
	// when none is armed. Nulled before the timer fires or is deleted so
	// a disconnecting handler never observes a dangling reference.
	Timer *reactor.Event

	// Packet is non-nil only inside a protocol-driven callback (Read,
	// HandshakeRequest, HandshakeAnswer, HandshakeResponse); it holds the
	// *httpcodec.Message, *wsframe.Frame, or *packet.Packet the callback
	// is being invoked about, and is not valid after the callback returns.
	Packet any

	// Session is the opaque, user-allocated-and-freed pointer carried
	// through from Endpoint.SessionData.
	Session any

	// SpanID correlates every log event for this connection's lifetime,
	// minted once at registration time.
	SpanID string

	savedInterest     reactor.Mask
	wsAllowMissingKey bool
	httpMsg           *httpcodec.Message
	connected         bool
}

func newConnection(id uint64, role Role, proto Protocol, s *socket.Socket, rxLimit int) *Connection {
	rx := buffer.New(0)
	rx.SetLimit(rxLimit)
	return &Connection{
		ID:       id,
		Socket:   s,
		Rx:       rx,
		Tx:       buffer.New(0),
		Role:     role,
		Protocol: proto,
	}
}
