/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package socket

import (
	"context"
	"crypto/tls"
	"net"
	"time"
)

// fdConn adapts a raw, already-connected fd to net.Conn so crypto/tls can
// drive its handshake and record layer. It deliberately does not make the
// fd blocking: crypto/tls tolerates a net.Conn whose Read/Write return
// (0, os.ErrDeadlineExceeded)-shaped errors via the same EAGAIN mapping
// net.FileConn uses, as long as SetDeadline is wired through. Since this
// module's reactor retries on its own schedule rather than relying on
// conn deadlines, SetDeadline here is a no-op that always reports success.
type fdConn struct {
	s *Socket
}

func (c fdConn) Read(p []byte) (int, error)  { return c.s.Read(p) }
func (c fdConn) Write(p []byte) (int, error) { return c.s.Write(p) }
func (c fdConn) Close() error                { return nil } // Socket.Close is owned by the caller
func (c fdConn) LocalAddr() net.Addr         { return nil }
func (c fdConn) RemoteAddr() net.Addr        { return nil }
func (c fdConn) SetDeadline(time.Time) error { return nil }
func (c fdConn) SetReadDeadline(time.Time) error  { return nil }
func (c fdConn) SetWriteDeadline(time.Time) error { return nil }

// UpgradeServerTLS layers a server-side TLS handshake on top of the raw fd.
// Because the underlying fd is non-blocking, Handshake may need to be
// driven repeatedly as the fd becomes readable/writable again; callers
// should treat a net.Error with Timeout()==false wrapping EAGAIN as "call
// HandshakeStep again once the fd is ready", exactly like any other
// want-read/want-write retry in this module.
func (s *Socket) UpgradeServerTLS(cfg *tls.Config) {
	s.tlsConn = tls.Server(fdConn{s: s}, cfg)
}

// UpgradeClientTLS layers a client-side TLS handshake on top of the raw fd.
func (s *Socket) UpgradeClientTLS(cfg *tls.Config) {
	s.tlsConn = tls.Client(fdConn{s: s}, cfg)
}

// HandshakeStep advances (or completes) the TLS handshake. Call it again
// once the fd reports ready after an attempt whose error errclass
// classifies as Retry; errclass does not say which direction to wait for.
func (s *Socket) HandshakeStep() error {
	if s.tlsConn == nil {
		return nil
	}
	return s.tlsConn.HandshakeContext(context.Background())
}

// TLSState reports the negotiated connection state once the handshake has
// completed; ok is false until then.
func (s *Socket) TLSState() (state tls.ConnectionState, ok bool) {
	if s.tlsConn == nil {
		return tls.ConnectionState{}, false
	}
	st := s.tlsConn.ConnectionState()
	return st, st.HandshakeComplete
}
