/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package xnet

import (
	"errors"
	"io"
	"net"

	"github.com/kala13x/libxutils-sub001/buffer"
	"github.com/kala13x/libxutils-sub001/errclass"
	"github.com/kala13x/libxutils-sub001/httpcodec"
	"github.com/kala13x/libxutils-sub001/packet"
	"github.com/kala13x/libxutils-sub001/reactor"
	"github.com/kala13x/libxutils-sub001/wsframe"
)

const readChunk = 64 * 1024

// reactorCallback is the single entry point the reactor invokes for every
// dispatched event. It translates the low-level reactor.Reason into the
// role/protocol-aware Reason table from spec.md §4.2 and maps the user's
// Disposition back into a reactor.Directive.
func (a *Api) reactorCallback(r *reactor.Reactor, ev *reactor.Event, reason reactor.Reason) reactor.Directive {
	conn, _ := ev.Owner.(*Connection)
	if conn == nil {
		// Timer events registered without a *Connection owner (none in
		// this façade's own use, but a caller may AddTimer directly
		// against the reactor) have nothing to dispatch to.
		return reactor.Continue
	}

	switch reason {
	case reactor.Readable:
		return a.dispatchReadable(conn)
	case reactor.Writable:
		return a.dispatchWritable(conn)
	case reactor.TimerFired:
		conn.Timer = nil
		return a.toDirective(a.dispatchUser(conn, Timeout, StatNone, 0))
	case reactor.UserWake:
		return a.toDirective(a.dispatchUser(conn, User, StatNone, 0))
	case reactor.Interrupt:
		return a.toDirective(a.dispatchUser(conn, Interrupt, StatNone, 0))
	case reactor.Hung:
		a.dispatchUser(conn, Status, StatEvent, int(StatusHunged))
		return reactor.Disconnect
	case reactor.Closed:
		return reactor.Disconnect
	case reactor.Destroy:
		a.dispatchUser(conn, Status, StatEvent, int(StatusDestroy))
		return reactor.Continue
	case reactor.Clear:
		conn.Event = nil
		a.dispatchUser(conn, Closed, StatNone, 0)
		if conn.Socket != nil {
			conn.Socket.Close()
		}
		return reactor.Continue
	default:
		return reactor.Continue
	}
}

func (a *Api) toDirective(d Disposition) reactor.Directive {
	switch d {
	case Disconnect:
		return reactor.Disconnect
	case Reloop:
		return reactor.Reloop
	default:
		return reactor.Continue
	}
}

func (a *Api) dispatchReadable(conn *Connection) reactor.Directive {
	switch conn.Role {
	case RoleServer:
		return a.acceptPeer(conn)
	case RoleClient:
		if conn.Protocol == ProtoWS && conn.HandshakeStarted && !conn.HandshakeDone {
			return a.clientWSHandshakeResponse(conn)
		}
		return a.feedProtocol(conn)
	case RolePeer:
		return a.feedProtocol(conn)
	case RoleCustom:
		if _, err := a.readIntoRx(conn); err != nil {
			return a.handleSocketError(conn, err)
		}
		return a.toDirective(a.dispatchUser(conn, Read, StatNone, 0))
	default:
		return reactor.Continue
	}
}

func (a *Api) dispatchWritable(conn *Connection) reactor.Directive {
	switch conn.Role {
	case RoleClient:
		if !conn.connected {
			return a.clientConnectComplete(conn)
		}
		return a.drainAndComplete(conn)
	case RolePeer:
		return a.drainAndComplete(conn)
	case RoleCustom:
		if _, err := a.drainTx(conn); err != nil {
			return a.handleSocketError(conn, err)
		}
		return a.toDirective(a.dispatchUser(conn, Write, StatNone, 0))
	default:
		return reactor.Continue
	}
}

func (a *Api) acceptPeer(conn *Connection) reactor.Directive {
	peerSock, addr, err := conn.Socket.Accept()
	if err != nil {
		if cls := classify(err); cls == errclass.Retry {
			return reactor.Continue
		}
		a.dispatchUser(conn, Error, StatSocket, int(StatusErrRegister))
		return reactor.Continue
	}

	peer := newConnection(a.nextConnID(), RolePeer, conn.Protocol, peerSock, a.rxLimit)
	peer.SpanID = a.newSpanID()
	peer.wsAllowMissingKey = conn.wsAllowMissingKey
	peer.Session = conn.Session
	if tcpAddr, ok := addr.(*net.TCPAddr); ok {
		peer.RemoteAddr = tcpAddr.IP.String()
		peer.RemotePort = tcpAddr.Port
	}

	ev, err := a.reactor.Register(peerSock.FD(), reactor.In, peer)
	if err != nil {
		peerSock.Close()
		a.dispatchUser(conn, Error, StatEvent, int(StatusErrRegister))
		return reactor.Continue
	}
	peer.Event = ev
	if a.dispatchUser(peer, Accepted, StatNone, 0) == Disconnect {
		a.reactor.Delete(ev)
	}
	return reactor.Accept
}

func (a *Api) clientConnectComplete(conn *Connection) reactor.Directive {
	if err := conn.Socket.ConnectError(); err != nil {
		a.dispatchUser(conn, Error, StatSocket, int(StatusErrRegister))
		return reactor.Disconnect
	}
	conn.connected = true
	disp := a.dispatchUser(conn, Connected, StatNone, 0)
	if disp == Disconnect {
		return reactor.Disconnect
	}

	if conn.Protocol == ProtoWS && !conn.HandshakeStarted {
		nonce, err := wsframe.NewNonce()
		if err != nil {
			a.dispatchUser(conn, Error, StatEvent, int(StatusErrAlloc))
			return reactor.Disconnect
		}
		conn.Nonce = nonce
		req := wsframe.BuildClientRequest(conn.RemoteAddr, conn.URI, nonce)
		if err := conn.Tx.Append(req); err != nil {
			a.dispatchUser(conn, Error, StatEvent, int(StatusErrAlloc))
			return reactor.Disconnect
		}
		conn.HandshakeStarted = true
		a.dispatchUser(conn, HandshakeRequest, StatNone, 0)
		return a.toDirective(a.drainOnly(conn))
	}

	return a.toDirective(a.dispatchUser(conn, Write, StatNone, 0))
}

func (a *Api) drainOnly(conn *Connection) Disposition {
	if _, err := a.drainTx(conn); err != nil {
		a.handleSocketError(conn, err)
		return Disconnect
	}
	return Continue
}

// drainAndComplete implements the Peer-Writable row: drain the transmit
// buffer; on empty, disable writable interest and invoke Complete, unless
// a WS server handshake response is what just drained, in which case the
// handshake transitions to done instead of emitting Complete.
func (a *Api) drainAndComplete(conn *Connection) reactor.Directive {
	drained, err := a.drainTx(conn)
	if err != nil {
		return a.handleSocketError(conn, err)
	}
	if !drained {
		return reactor.Continue
	}

	if conn.ReadOnWrite {
		conn.ReadOnWrite = false
		if err := a.SetEvents(conn, conn.savedInterest); err != nil {
			return a.handleSocketError(conn, err)
		}
		return reactor.Continue
	}

	if conn.Role == RolePeer && conn.Protocol == ProtoWS && conn.HandshakeStarted && !conn.HandshakeDone {
		conn.HandshakeDone = true
		if err := a.DisableEvent(conn, reactor.Out); err != nil {
			return a.handleSocketError(conn, err)
		}
		return reactor.Continue
	}

	if err := a.DisableEvent(conn, reactor.Out); err != nil {
		return a.handleSocketError(conn, err)
	}
	return a.toDirective(a.dispatchUser(conn, Complete, StatNone, 0))
}

func (a *Api) clientWSHandshakeResponse(conn *Connection) reactor.Directive {
	if conn.httpMsg == nil {
		conn.httpMsg = httpcodec.New(0, 0)
	}
	if _, err := a.readIntoRx(conn); err != nil {
		return a.handleSocketError(conn, err)
	}
	status, err := conn.httpMsg.Feed(conn.Rx)
	if err != nil {
		a.dispatchUser(conn, Error, StatHTTP, 0)
		return reactor.Disconnect
	}
	switch status {
	case httpcodec.Incomplete:
		return reactor.Continue
	case httpcodec.BigHeader, httpcodec.BigContent:
		a.dispatchUser(conn, Error, StatHTTP, int(status))
		return reactor.Disconnect
	}

	if err := wsframe.ClientHandshake(conn.httpMsg, conn.Nonce); err != nil {
		a.dispatchUser(conn, Error, StatWS, 0)
		return reactor.Disconnect
	}
	conn.HandshakeDone = true
	conn.Packet = conn.httpMsg
	disp := a.dispatchUser(conn, HandshakeResponse, StatNone, 0)
	conn.Packet = nil
	conn.httpMsg = nil
	if err := a.EnableEvent(conn, reactor.Out); err != nil {
		return a.handleSocketError(conn, err)
	}
	return a.toDirective(disp)
}

// feedProtocol is the Peer-Readable / Client-Readable(non-handshake) row:
// read whatever is available into Rx, then feed the protocol codec in a
// loop (a single read can carry more than one complete frame).
func (a *Api) feedProtocol(conn *Connection) reactor.Directive {
	n, err := a.readIntoRx(conn)
	if errors.Is(err, buffer.ErrTooLarge) {
		// Back-pressure: Rx reached its limit before a full message arrived.
		switch conn.Protocol {
		case ProtoHTTP:
			a.dispatchUser(conn, Error, StatHTTP, int(httpcodec.BigContent))
		case ProtoWS:
			a.dispatchUser(conn, Error, StatWS, int(wsframe.BigData))
		case ProtoPacket:
			a.dispatchUser(conn, Error, StatPacket, int(packet.BigData))
		default:
			a.dispatchUser(conn, Error, StatSocket, 0)
		}
		return reactor.Disconnect
	}
	if err != nil {
		return a.handleSocketError(conn, err)
	}
	if n == 0 && conn.Rx.Len() == 0 {
		return reactor.Continue
	}

	switch conn.Protocol {
	case ProtoRaw:
		return a.toDirective(a.dispatchUser(conn, Read, StatNone, 0))
	case ProtoHTTP:
		return a.feedHTTP(conn)
	case ProtoWS:
		if conn.Role == RolePeer && !conn.HandshakeStarted {
			return a.feedHTTP(conn)
		}
		return a.feedWS(conn)
	case ProtoPacket:
		return a.feedPacket(conn)
	default:
		return a.toDirective(a.dispatchUser(conn, Read, StatNone, 0))
	}
}

func (a *Api) feedHTTP(conn *Connection) reactor.Directive {
	if conn.Rx.Limit() > 0 && conn.Rx.Len() > conn.Rx.Limit() {
		a.dispatchUser(conn, Error, StatHTTP, int(httpcodec.BigContent))
		return reactor.Disconnect
	}
	for {
		if conn.httpMsg == nil {
			conn.httpMsg = httpcodec.New(0, 0)
		}
		status, err := conn.httpMsg.Feed(conn.Rx)
		if err != nil {
			a.dispatchUser(conn, Error, StatHTTP, 0)
			return reactor.Disconnect
		}
		switch status {
		case httpcodec.Incomplete:
			return reactor.Continue
		case httpcodec.BigHeader, httpcodec.BigContent:
			a.dispatchUser(conn, Error, StatHTTP, int(status))
			return reactor.Disconnect
		case httpcodec.Complete:
			if conn.Protocol == ProtoWS {
				return a.serverWSHandshake(conn)
			}
			msg := conn.httpMsg
			conn.Packet = msg
			disp := a.dispatchUser(conn, Read, StatHTTP, int(status))
			conn.Packet = nil
			conn.httpMsg = nil
			if disp == Disconnect {
				return reactor.Disconnect
			}
			if conn.Cancel {
				return reactor.Disconnect
			}
			if conn.Rx.Len() == 0 {
				return a.toDirective(disp)
			}
			// Pipelined request already sitting in Rx: keep parsing.
		case httpcodec.Parsed:
			// Header block parsed; the body may already be sitting in Rx.
			continue
		default:
			return reactor.Continue
		}
	}
}

func (a *Api) serverWSHandshake(conn *Connection) reactor.Directive {
	msg := conn.httpMsg
	conn.Packet = msg
	a.dispatchUser(conn, HandshakeRequest, StatNone, 0)

	resp, _, err := wsframe.ServerHandshake(msg, conn.wsAllowMissingKey)
	if err != nil {
		conn.Packet = nil
		a.dispatchUser(conn, Error, StatWS, int(StatusMissingKey))
		return reactor.Disconnect
	}
	if err := conn.Tx.Append(resp); err != nil {
		conn.Packet = nil
		a.dispatchUser(conn, Error, StatEvent, int(StatusErrAssemble))
		return reactor.Disconnect
	}
	conn.HandshakeStarted = true
	disp := a.dispatchUser(conn, HandshakeAnswer, StatNone, 0)
	conn.Packet = nil
	conn.httpMsg = nil
	if disp == Disconnect {
		return reactor.Disconnect
	}
	if err := a.EnableEvent(conn, reactor.Out); err != nil {
		return a.handleSocketError(conn, err)
	}
	return reactor.Continue
}

func (a *Api) feedWS(conn *Connection) reactor.Directive {
	if conn.Rx.Limit() > 0 && conn.Rx.Len() > conn.Rx.Limit() {
		a.dispatchUser(conn, Error, StatWS, int(wsframe.BigData))
		return reactor.Disconnect
	}
	for {
		f, status, err := wsframe.Feed(conn.Rx, conn.Rx.Limit())
		if err != nil {
			a.dispatchUser(conn, Error, StatWS, 0)
			return reactor.Disconnect
		}
		switch status {
		case wsframe.Incomplete:
			return reactor.Continue
		case wsframe.BigData:
			a.dispatchUser(conn, Error, StatWS, int(status))
			return reactor.Disconnect
		case wsframe.Complete:
			conn.Packet = f
			disp := a.dispatchUser(conn, Read, StatWS, int(status))
			conn.Packet = nil
			if disp == Disconnect {
				return reactor.Disconnect
			}
			if conn.Cancel {
				return reactor.Disconnect
			}
			if conn.Rx.Len() == 0 {
				return a.toDirective(disp)
			}
		default:
			return reactor.Continue
		}
	}
}

func (a *Api) feedPacket(conn *Connection) reactor.Directive {
	if conn.Rx.Limit() > 0 && conn.Rx.Len() > conn.Rx.Limit() {
		a.dispatchUser(conn, Error, StatPacket, int(packet.BigData))
		return reactor.Disconnect
	}
	for {
		p, status, err := packet.Feed(conn.Rx, conn.Rx.Limit(), conn.Rx.Limit())
		if err != nil {
			a.dispatchUser(conn, Error, StatPacket, 0)
			return reactor.Disconnect
		}
		switch status {
		case packet.Incomplete, packet.Parsed:
			return reactor.Continue
		case packet.BigHeader, packet.BigData:
			a.dispatchUser(conn, Error, StatPacket, int(status))
			return reactor.Disconnect
		case packet.Complete:
			conn.Packet = p
			disp := a.dispatchUser(conn, Read, StatPacket, int(status))
			conn.Packet = nil
			if disp == Disconnect {
				return reactor.Disconnect
			}
			if conn.Cancel {
				return reactor.Disconnect
			}
			if conn.Rx.Len() == 0 {
				return a.toDirective(disp)
			}
		default:
			return reactor.Continue
		}
	}
}

// readIntoRx reads whatever is currently available on the socket into
// conn.Rx, looping until the socket reports it would block. It returns
// the total bytes read; a non-nil error always means the caller should
// stop reading (retryable errors are absorbed and reported as n, nil).
func (a *Api) readIntoRx(conn *Connection) (int, error) {
	var total int
	scratch := make([]byte, readChunk)
	for {
		n, err := conn.Socket.Read(scratch)
		if n > 0 {
			if appendErr := conn.Rx.Append(scratch[:n]); appendErr != nil {
				return total, appendErr
			}
			total += n
		}
		if err != nil {
			switch classify(err) {
			case errclass.Retry:
				return total, nil
			case errclass.Closed:
				return total, io.EOF
			default:
				return total, err
			}
		}
		if n < len(scratch) {
			return total, nil
		}
	}
}

// drainTx writes as much of conn.Tx as the socket accepts without
// blocking, advancing consumed bytes. It reports whether the buffer is
// now fully drained.
func (a *Api) drainTx(conn *Connection) (bool, error) {
	for conn.Tx.HasData() {
		n, err := conn.Socket.Write(conn.Tx.Bytes())
		if n > 0 {
			conn.Tx.Advance(n)
		}
		if err != nil {
			switch classify(err) {
			case errclass.Retry:
				return false, nil
			case errclass.Closed:
				return false, io.EOF
			default:
				return false, err
			}
		}
		if n == 0 {
			return false, nil
		}
	}
	return true, nil
}

func (a *Api) handleSocketError(conn *Connection, err error) reactor.Directive {
	if err == io.EOF {
		a.dispatchUser(conn, Status, StatEvent, int(StatusClosed))
		return reactor.Disconnect
	}
	a.dispatchUser(conn, Error, StatSocket, 0)
	return reactor.Disconnect
}
