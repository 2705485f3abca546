/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package xnet

import (
	"errors"

	"github.com/kala13x/libxutils-sub001/reactor"
)

// Validation errors returned by Endpoint.Validate. Grounded in
// nabbar-golib/socket/config's pattern of package-level sentinel errors
// for each distinct configuration defect, so callers can errors.Is
// against a specific failure instead of parsing a message.
var (
	ErrInvalidRole     = errors.New("xnet: invalid role")
	ErrInvalidProtocol = errors.New("xnet: invalid protocol")
	ErrMissingAddr     = errors.New("xnet: missing addr")
	ErrInvalidPort     = errors.New("xnet: port required for non-unix endpoint")
	ErrMissingFD       = errors.New("xnet: fd required for peer/custom role")
	ErrMissingCerts    = errors.New("xnet: tls=true requires cert and key paths")
)

// Protocol is the per-connection protocol state machine driving a
// descriptor: Raw bytes with no framing, length-prefixed Packet, HTTP/1.1,
// or WebSocket.
type Protocol int

const (
	ProtoNone Protocol = iota
	ProtoRaw
	ProtoPacket
	ProtoHTTP
	ProtoWS
)

func (p Protocol) String() string {
	switch p {
	case ProtoNone:
		return "None"
	case ProtoRaw:
		return "Raw"
	case ProtoPacket:
		return "Packet"
	case ProtoHTTP:
		return "HTTP"
	case ProtoWS:
		return "WS"
	default:
		return "Unknown"
	}
}

// Role classifies what a descriptor is for: a listening socket, an
// outbound client connection, an accepted peer, a user-registered
// external descriptor forwarded without protocol processing, or an
// endpoint not yet registered.
type Role int

const (
	RoleInactive Role = iota
	RoleServer
	RoleClient
	RolePeer
	RoleCustom
)

func (r Role) String() string {
	switch r {
	case RoleInactive:
		return "Inactive"
	case RoleServer:
		return "Server"
	case RoleClient:
		return "Client"
	case RolePeer:
		return "Peer"
	case RoleCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// CertBundle is TLS material borrowed from the endpoint at Listen/Connect
// time; the caller must keep these paths/values alive until the
// corresponding socket is created.
type CertBundle struct {
	CAPath     string
	CertPath   string
	KeyPath    string
	VerifyFlag bool
}

// Endpoint is the immutable-after-registration configuration for one
// Listen/Connect/AddEvent call.
type Endpoint struct {
	Protocol Protocol
	Role     Role

	Addr string
	Port int
	URI  string

	TLS   bool
	Certs CertBundle

	Unix  bool
	Force bool

	// Events is the initial readiness interest mask; zero selects the
	// role's default (readable for Server, readable+writable for Client).
	Events reactor.Mask

	// FD is a pre-existing OS descriptor for AddPeer/AddEvent; otherwise
	// left at its zero value (invalid).
	FD int

	// SessionData is passed through unmodified to the new Connection's
	// Session field.
	SessionData any

	// WSAllowMissingKey relaxes wsframe's Sec-WebSocket-Key requirement
	// for this endpoint's WS connections. RFC 6455 mandates the key, so
	// the default (false) is strict.
	WSAllowMissingKey bool
}

// Validate checks an endpoint's fields for internal consistency before
// Api.AddEndpoint acts on them, independent of whether the target address
// actually resolves or the fd actually exists.
func (e Endpoint) Validate() error {
	switch e.Role {
	case RoleServer, RoleClient, RolePeer, RoleCustom:
	default:
		return ErrInvalidRole
	}

	switch e.Protocol {
	case ProtoNone, ProtoRaw, ProtoPacket, ProtoHTTP, ProtoWS:
	default:
		return ErrInvalidProtocol
	}

	switch e.Role {
	case RoleServer, RoleClient:
		if e.Addr == "" {
			return ErrMissingAddr
		}
		if !e.Unix && e.Port <= 0 {
			return ErrInvalidPort
		}
	case RolePeer, RoleCustom:
		if e.FD <= 0 {
			return ErrMissingFD
		}
	}

	if e.TLS && (e.Certs.CertPath == "" || e.Certs.KeyPath == "") {
		return ErrMissingCerts
	}

	return nil
}
