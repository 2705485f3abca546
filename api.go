/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package xnet

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/kala13x/libxutils-sub001/httpcodec"
	"github.com/kala13x/libxutils-sub001/reactor"
	"github.com/kala13x/libxutils-sub001/socket"
)

const defaultRxLimit = 5 << 20 // 5 MiB, per spec.md §4.2 set_rx_limit default.

// UserCallback is the single entry point the façade drives every
// connection lifecycle event through.
type UserCallback func(ctx *CallbackContext, conn *Connection) Disposition

// CallbackContext carries everything a user callback needs to interpret
// one invocation: the high-level reason, which status enum space
// StatusCode lives in (if any), the numeric value itself, and a
// back-pointer to the Api so handlers can call RespondHTTP/PutTx/etc.
// from inside the callback.
type CallbackContext struct {
	Reason     Reason
	StatType   StatType
	StatusCode int
	Api        *Api

	// UserCtx is the opaque value passed to Init, handed back unmodified
	// on every callback invocation.
	UserCtx any
}

// Api is the service façade: one reactor, one user callback, the set of
// live connections it owns.
type Api struct {
	reactor  *reactor.Reactor
	useMap   bool
	callback UserCallback
	userCtx  any
	logger   SLogger
	rxLimit  int
	nextID   uint64
}

// NewApi returns an Api not yet bound to a reactor; call Init before any
// other operation.
func NewApi() *Api {
	return &Api{rxLimit: defaultRxLimit, logger: DefaultSLogger()}
}

// Init sets the single user callback, its opaque context, the structured
// logger (nil selects DefaultSLogger), and the hash-map-vs-array event
// table preference passed through to the reactor on first use.
func (a *Api) Init(cb UserCallback, userCtx any, logger SLogger, useMap bool) {
	a.callback = cb
	a.userCtx = userCtx
	a.useMap = useMap
	if logger != nil {
		a.logger = logger
	}
}

// SetRxLimit caps every connection's receive buffer; back-pressure beyond
// this triggers Error(BigContent/BigData) then Disconnect. Default 5 MiB.
func (a *Api) SetRxLimit(bytes int) { a.rxLimit = bytes }

func (a *Api) ensureReactor() error {
	if a.reactor != nil {
		return nil
	}
	r, err := reactor.New(a.useMap, a.reactorCallback)
	if err != nil {
		return err
	}
	a.reactor = r
	a.logger.Debug("xnet: reactor started", "useMap", a.useMap)
	return nil
}

// Service is a thin wrapper over the reactor's Service, lazily
// constructing the reactor on first call.
func (a *Api) Service(timeout time.Duration) error {
	if err := a.ensureReactor(); err != nil {
		return err
	}
	return a.reactor.Service(timeout)
}

func (a *Api) nextConnID() uint64 {
	a.nextID++
	return a.nextID
}

func (a *Api) newSpanID() string {
	id, err := NewSpanID()
	if err != nil {
		return ""
	}
	return id
}

func endpointAddr(ep Endpoint) string {
	if ep.Unix {
		return ep.Addr
	}
	return ep.Addr + ":" + strconv.Itoa(ep.Port)
}

func socketKind(ep Endpoint) socket.Kind {
	if ep.Unix {
		return socket.KindUnix
	}
	return socket.KindTCP
}

// Listen creates a listening socket with role=Server and registers it
// with interest={readable}.
func (a *Api) Listen(ep Endpoint) (*Connection, error) {
	if err := a.ensureReactor(); err != nil {
		return nil, err
	}
	ep.Role = RoleServer
	s, err := socket.Listen(socketKind(ep), endpointAddr(ep))
	if err != nil {
		return nil, err
	}
	conn := newConnection(a.nextConnID(), RoleServer, ep.Protocol, s, a.rxLimit)
	conn.Session = ep.SessionData
	conn.SpanID = a.newSpanID()
	conn.wsAllowMissingKey = ep.WSAllowMissingKey

	interest := ep.Events
	if interest == 0 {
		interest = reactor.In
	}
	ev, err := a.reactor.Register(s.FD(), interest, conn)
	if err != nil {
		s.Close()
		return nil, err
	}
	conn.Event = ev
	a.logger.Info("xnet: listening", "spanID", conn.SpanID, "addr", ep.Addr, "port", ep.Port)
	a.dispatchUser(conn, Listening, StatNone, 0)
	return conn, nil
}

// Connect resolves the endpoint address (or copies the Unix path), opens
// a non-blocking connect, and registers it with interest={readable,
// writable} by default. The user's Connected callback fires once the
// first writable event confirms the non-blocking connect completed (see
// dispatch.go); it is not synthesized here.
func (a *Api) Connect(ep Endpoint) (*Connection, error) {
	if err := a.ensureReactor(); err != nil {
		return nil, err
	}
	ep.Role = RoleClient
	s, err := socket.Connect(socketKind(ep), endpointAddr(ep))
	if err != nil {
		return nil, err
	}
	conn := newConnection(a.nextConnID(), RoleClient, ep.Protocol, s, a.rxLimit)
	conn.Session = ep.SessionData
	conn.SpanID = a.newSpanID()
	conn.RemoteAddr = ep.Addr
	conn.RemotePort = ep.Port
	conn.URI = ep.URI
	if conn.URI == "" {
		conn.URI = "/"
	}
	conn.wsAllowMissingKey = ep.WSAllowMissingKey

	interest := ep.Events
	if interest == 0 {
		interest = reactor.In | reactor.Out
	}
	ev, err := a.reactor.Register(s.FD(), interest, conn)
	if err != nil {
		s.Close()
		return nil, err
	}
	conn.Event = ev
	a.logger.Debug("xnet: connecting", "spanID", conn.SpanID, "addr", ep.Addr, "port", ep.Port)
	return conn, nil
}

// AddEvent adopts a pre-existing, already non-blocking descriptor (e.g.
// one accepted outside this package) as role=Custom, or whatever role
// Endpoint.Role names.
func (a *Api) AddEvent(ep Endpoint) (*Connection, error) {
	if err := a.ensureReactor(); err != nil {
		return nil, err
	}
	role := ep.Role
	if role == RoleInactive {
		role = RoleCustom
	}
	conn := newConnection(a.nextConnID(), role, ep.Protocol, socket.FromFD(ep.FD, socketKind(ep)), a.rxLimit)
	conn.Session = ep.SessionData
	conn.SpanID = a.newSpanID()

	interest := ep.Events
	if interest == 0 {
		interest = reactor.In
	}
	ev, err := a.reactor.Register(ep.FD, interest, conn)
	if err != nil {
		return nil, err
	}
	conn.Event = ev
	a.dispatchUser(conn, Registered, StatNone, 0)
	return conn, nil
}

// AddPeer is shorthand for AddEvent with role=Peer, for an
// already-accepted descriptor the caller wants the façade to drive.
func (a *Api) AddPeer(ep Endpoint) (*Connection, error) {
	ep.Role = RolePeer
	return a.AddEvent(ep)
}

// AddEndpoint dispatches to Listen/Connect/AddEvent based on ep.Role.
func (a *Api) AddEndpoint(ep Endpoint) (*Connection, error) {
	switch ep.Role {
	case RoleServer:
		return a.Listen(ep)
	case RoleClient:
		return a.Connect(ep)
	case RolePeer, RoleCustom:
		return a.AddEvent(ep)
	default:
		return nil, fmt.Errorf("xnet: invalid endpoint role %v", ep.Role)
	}
}

// Disconnect deletes the connection's event record. The reactor delivers
// Clear right away, so the user's Closed callback runs and the socket is
// closed before Disconnect returns.
func (a *Api) Disconnect(conn *Connection) error {
	if conn.Event == nil {
		return errors.New("xnet: connection already disconnected")
	}
	return a.reactor.Delete(conn.Event)
}

// DeleteTimer drops the connection's pending timer, if any.
func (a *Api) DeleteTimer(conn *Connection) error {
	if conn.Timer == nil {
		return nil
	}
	err := a.reactor.Delete(conn.Timer)
	conn.Timer = nil
	return err
}

// AddTimer arms a new one-shot timer for the connection, replacing any
// existing one.
func (a *Api) AddTimer(conn *Connection, d time.Duration) error {
	if conn.Timer != nil {
		if err := a.reactor.Delete(conn.Timer); err != nil {
			return err
		}
	}
	ev, err := a.reactor.AddTimer(time.Now().Add(d), conn)
	if err != nil {
		return err
	}
	conn.Timer = ev
	return nil
}

// ExtendTimer reschedules the connection's existing timer without
// destroying the record; if none exists yet, one is created.
func (a *Api) ExtendTimer(conn *Connection, d time.Duration) error {
	if conn.Timer == nil {
		return a.AddTimer(conn, d)
	}
	return a.reactor.ExtendTimer(conn.Timer, time.Now().Add(d))
}

// SetEvents replaces the connection's readiness interest mask, keeping
// the connection's own record in sync with the reactor's.
func (a *Api) SetEvents(conn *Connection, mask reactor.Mask) error {
	if err := a.reactor.Modify(conn.Event, mask); err != nil {
		return err
	}
	conn.Event.Interest = mask
	return nil
}

// EnableEvent sets additional bits in the connection's interest mask.
func (a *Api) EnableEvent(conn *Connection, bit reactor.Mask) error {
	return a.SetEvents(conn, conn.Event.Interest|bit)
}

// DisableEvent clears bits from the connection's interest mask.
func (a *Api) DisableEvent(conn *Connection, bit reactor.Mask) error {
	return a.SetEvents(conn, conn.Event.Interest&^bit)
}

// httpStatusBody is the canonical {"status":"<reason>"} response body
// shape RespondHTTP assembles.
type httpStatusBody struct {
	Status string `json:"status"`
}

// RespondHTTP builds a canonical JSON-body HTTP response, appends
// WWW-Authenticate when apiStatus names a missing auth token, enables
// writable interest, and marks the connection cancel=true if assembly
// fails so it drops after any already-queued bytes flush.
//
// reason overrides the status code's canonical text when non-empty,
// supplementing the original XAPI_RespondHTTP()'s caller-supplied reason
// format string (see original_source/examples/http-server.c).
func (a *Api) RespondHTTP(conn *Connection, statusCode int, apiStatus StatusCode, reason string) error {
	if reason == "" {
		reason = apiStatus.ReasonPhrase()
	}
	body, err := json.Marshal(httpStatusBody{Status: reason})
	if err != nil {
		conn.Cancel = true
		return err
	}

	msg := httpcodec.New(0, 0)
	msg.InitResponse(statusCode, "HTTP/1.1")
	msg.AddHeader("Content-Type", "application/json")
	if apiStatus == StatusMissingToken {
		msg.AddHeader("WWW-Authenticate", `Basic realm="XAPI"`)
	}
	out := msg.Assemble(body)

	if err := conn.Tx.Append(out); err != nil {
		conn.Cancel = true
		return err
	}
	return a.EnableEvent(conn, reactor.Out)
}

// AuthorizeHTTP checks the inbound request's Authorization: Basic header
// and X-API-KEY header against the expected values, returning the status
// the caller uses to decide whether to RespondHTTP with 401.
func (a *Api) AuthorizeHTTP(conn *Connection, expectedToken, expectedAPIKey string) StatusCode {
	msg, _ := conn.Packet.(*httpcodec.Message)
	if msg == nil {
		return StatusInvalidArgs
	}

	if expectedToken != "" {
		auth, ok := msg.GetHeader("Authorization")
		if !ok {
			return StatusMissingToken
		}
		const prefix = "Basic "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
			return StatusInvalidToken
		}
		if auth[len(prefix):] != expectedToken {
			return StatusInvalidToken
		}
	}

	if expectedAPIKey != "" {
		key, ok := msg.GetHeader("X-API-KEY")
		if !ok {
			return StatusMissingKey
		}
		if key != expectedAPIKey {
			return StatusInvalidKey
		}
	}

	return StatusNone
}

// PutTx appends bytes to the connection's transmit buffer and enables
// writable interest so the reactor drains them on the next tick.
func (a *Api) PutTx(conn *Connection, data []byte) error {
	if err := conn.Tx.Append(data); err != nil {
		return err
	}
	return a.EnableEvent(conn, reactor.Out)
}

// GetTx returns the connection's transmit buffer for direct inspection or
// mutation from inside a callback.
func (a *Api) GetTx(conn *Connection) *Buffer { return conn.Tx }

// GetRx returns the connection's receive buffer for direct inspection or
// mutation from inside a callback.
func (a *Api) GetRx(conn *Connection) *Buffer { return conn.Rx }

// Destroy tears down the reactor, delivering Destroy then Clear for every
// remaining connection in reverse insertion order.
func (a *Api) Destroy() {
	if a.reactor == nil {
		return
	}
	a.reactor.Destroy()
}

func (a *Api) dispatchUser(conn *Connection, reason Reason, statType StatType, status int) Disposition {
	if a.callback == nil {
		return Continue
	}
	ctx := &CallbackContext{Reason: reason, StatType: statType, StatusCode: status, Api: a, UserCtx: a.userCtx}
	disp := a.callback(ctx, conn)
	for disp == UserCallback {
		ctx2 := &CallbackContext{Reason: User, StatType: StatNone, Api: a, UserCtx: a.userCtx}
		disp = a.callback(ctx2, conn)
	}
	return disp
}
