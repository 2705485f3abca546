/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package xnet

// Reason is the high-level, protocol-and-role-aware reason the façade
// hands to the user callback, translated from the reactor's lower-level
// reactor.Reason by dispatch.go.
type Reason int

const (
	Accepted Reason = iota
	Connected
	Read
	Write
	Complete
	HandshakeRequest
	HandshakeAnswer
	HandshakeResponse
	Closed
	Error
	Status
	Timeout
	Interrupt
	Listening
	Registered
	User
)

func (r Reason) String() string {
	switch r {
	case Accepted:
		return "Accepted"
	case Connected:
		return "Connected"
	case Read:
		return "Read"
	case Write:
		return "Write"
	case Complete:
		return "Complete"
	case HandshakeRequest:
		return "HandshakeRequest"
	case HandshakeAnswer:
		return "HandshakeAnswer"
	case HandshakeResponse:
		return "HandshakeResponse"
	case Closed:
		return "Closed"
	case Error:
		return "Error"
	case Status:
		return "Status"
	case Timeout:
		return "Timeout"
	case Interrupt:
		return "Interrupt"
	case Listening:
		return "Listening"
	case Registered:
		return "Registered"
	case User:
		return "User"
	default:
		return "Unknown"
	}
}

// Disposition is what the user callback returns to tell the façade what to
// do next with the connection it was just handed.
type Disposition int

const (
	Continue Disposition = iota
	NoAction
	Disconnect
	UserCallback
	Reloop
)

// StatType identifies which enum space a CallbackContext.StatusCode value
// lives in, so the user callback can interpret it without guessing.
type StatType int

const (
	StatNone StatType = iota
	StatEvent
	StatPacket
	StatHTTP
	StatSocket
	StatWS
)

func (s StatType) String() string {
	switch s {
	case StatNone:
		return "none"
	case StatEvent:
		return "event"
	case StatPacket:
		return "packet"
	case StatHTTP:
		return "http"
	case StatSocket:
		return "socket"
	case StatWS:
		return "ws"
	default:
		return "unknown"
	}
}

// StatusCode is the façade's own status enum (the "event" StatType space),
// used for auth/allocation/register failures and terminal conditions that
// aren't owned by any one codec.
type StatusCode int

const (
	StatusNone StatusCode = iota
	StatusAuthFailure
	StatusMissingToken
	StatusInvalidToken
	StatusInvalidArgs
	StatusInvalidRole
	StatusMissingKey
	StatusInvalidKey
	StatusErrRegister
	StatusErrResolve
	StatusErrAlloc
	StatusErrAssemble
	StatusErrCrypt
	StatusClosed
	StatusHunged
	StatusDestroy
)

func (s StatusCode) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusAuthFailure:
		return "AUTH_FAILURE"
	case StatusMissingToken:
		return "MISSING_TOKEN"
	case StatusInvalidToken:
		return "INVALID_TOKEN"
	case StatusInvalidArgs:
		return "INVALID_ARGS"
	case StatusInvalidRole:
		return "INVALID_ROLE"
	case StatusMissingKey:
		return "MISSING_KEY"
	case StatusInvalidKey:
		return "INVALID_KEY"
	case StatusErrRegister:
		return "ERR_REGISTER"
	case StatusErrResolve:
		return "ERR_RESOLVE"
	case StatusErrAlloc:
		return "ERR_ALLOC"
	case StatusErrAssemble:
		return "ERR_ASSEMBLE"
	case StatusErrCrypt:
		return "ERR_CRYPT"
	case StatusClosed:
		return "CLOSED"
	case StatusHunged:
		return "HUNGED"
	case StatusDestroy:
		return "DESTROY"
	default:
		return "UNKNOWN"
	}
}

// ReasonPhrase returns the canonical reason text RespondHTTP writes into
// its JSON body for a given façade status code.
func (s StatusCode) ReasonPhrase() string {
	switch s {
	case StatusNone:
		return "ok"
	case StatusAuthFailure:
		return "authentication failure"
	case StatusMissingToken:
		return "missing authentication token"
	case StatusInvalidToken:
		return "invalid authentication token"
	case StatusInvalidArgs:
		return "invalid arguments"
	case StatusInvalidRole:
		return "invalid role"
	case StatusMissingKey:
		return "missing api key"
	case StatusInvalidKey:
		return "invalid api key"
	case StatusErrRegister:
		return "registration failed"
	case StatusErrResolve:
		return "address resolution failed"
	case StatusErrAlloc:
		return "allocation failed"
	case StatusErrAssemble:
		return "response assembly failed"
	case StatusErrCrypt:
		return "cryptographic operation failed"
	case StatusClosed:
		return "connection closed"
	case StatusHunged:
		return "connection hung up"
	case StatusDestroy:
		return "service destroyed"
	default:
		return "unknown status"
	}
}
