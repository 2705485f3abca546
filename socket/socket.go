/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package socket wraps raw, non-blocking file descriptors for TCP and Unix
// domain sockets so the reactor can drive them by fd without Go's net
// package inserting its own blocking, per-fd goroutine machinery in the
// way (net.Conn reads/writes block the calling goroutine until data is
// available, which is exactly what a single-threaded reactor cannot do).
package socket

import (
	"crypto/tls"
	"errors"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// Kind identifies the socket family/transport.
type Kind int

const (
	KindTCP Kind = iota
	KindUnix
)

// Socket is a non-blocking, raw-fd-backed connection. All methods are
// safe to call only from the single thread driving the owning reactor.
type Socket struct {
	fd   int
	kind Kind

	tlsConn *tls.Conn
	rawConn net.Conn // non-nil only when TLS is layered on top of fd
}

// FD returns the raw file descriptor, for registering with a reactor.
func (s *Socket) FD() int { return s.fd }

// FromFD adopts a pre-existing, already non-blocking descriptor (e.g. one
// handed to AddEvent/AddPeer by the caller) without going through
// Listen/Accept/Connect.
func FromFD(fd int, kind Kind) *Socket {
	return &Socket{fd: fd, kind: kind}
}

// Listen creates a non-blocking listening socket bound to addr.
func Listen(kind Kind, addr string) (*Socket, error) {
	switch kind {
	case KindTCP:
		return listenTCP(addr)
	case KindUnix:
		return listenUnix(addr)
	default:
		return nil, errors.New("socket: unknown kind")
	}
}

func listenTCP(addr string) (*Socket, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}
	domain := unix.AF_INET
	if tcpAddr.IP != nil && tcpAddr.IP.To4() == nil {
		domain = unix.AF_INET6
	}
	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)

	sa, err := toSockaddrTCP(domain, tcpAddr)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Socket{fd: fd, kind: KindTCP}, nil
}

func listenUnix(path string) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	sa := &unix.SockaddrUnix{Name: path}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Socket{fd: fd, kind: KindUnix}, nil
}

// Accept accepts one pending connection, returning (nil, nil, errclass
// Retry-classified error) when none is pending — callers should treat any
// non-nil error as something to run through errclass and check for Retry
// before giving up.
func (s *Socket) Accept() (*Socket, net.Addr, error) {
	fd, sa, err := unix.Accept4(s.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return nil, nil, err
	}
	return &Socket{fd: fd, kind: s.kind}, sockaddrToAddr(sa), nil
}

// Connect begins a non-blocking connect; a Retry-classified error means the
// connect is in progress and the caller should watch the fd for
// writability to learn the outcome (see ConnectError).
func Connect(kind Kind, addr string) (*Socket, error) {
	switch kind {
	case KindTCP:
		return connectTCP(addr)
	case KindUnix:
		return connectUnix(addr)
	default:
		return nil, errors.New("socket: unknown kind")
	}
}

func connectTCP(addr string) (*Socket, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}
	domain := unix.AF_INET
	if tcpAddr.IP != nil && tcpAddr.IP.To4() == nil {
		domain = unix.AF_INET6
	}
	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	sa, err := toSockaddrTCP(domain, tcpAddr)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	err = unix.Connect(fd, sa)
	sock := &Socket{fd: fd, kind: KindTCP}
	if err != nil && !errors.Is(err, unix.EINPROGRESS) {
		unix.Close(fd)
		return nil, err
	}
	return sock, nil
}

func connectUnix(path string) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	sa := &unix.SockaddrUnix{Name: path}
	err = unix.Connect(fd, sa)
	sock := &Socket{fd: fd, kind: KindUnix}
	if err != nil && !errors.Is(err, unix.EINPROGRESS) {
		unix.Close(fd)
		return nil, err
	}
	return sock, nil
}

// ConnectError reads SO_ERROR to learn whether a pending non-blocking
// connect succeeded, once the fd has reported writable.
func (s *Socket) ConnectError() error {
	errno, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if errno != 0 {
		return unix.Errno(uintptr(errno))
	}
	return nil
}

// Read reads directly from the raw fd, or through the TLS layer once
// UpgradeTLS has completed the handshake.
func (s *Socket) Read(p []byte) (int, error) {
	if s.tlsConn != nil {
		return s.tlsConn.Read(p)
	}
	return unix.Read(s.fd, p)
}

// Write writes directly to the raw fd, or through the TLS layer once
// UpgradeTLS has completed the handshake.
func (s *Socket) Write(p []byte) (int, error) {
	if s.tlsConn != nil {
		return s.tlsConn.Write(p)
	}
	return unix.Write(s.fd, p)
}

// Close releases the socket. Safe to call more than once.
func (s *Socket) Close() error {
	if s.fd < 0 {
		return nil
	}
	if s.tlsConn != nil {
		_ = s.tlsConn.Close()
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}

// SetKeepAlive enables or disables TCP keepalive with the given period.
func (s *Socket) SetKeepAlive(enable bool, period time.Duration) error {
	if s.kind != KindTCP {
		return nil
	}
	on := 0
	if enable {
		on = 1
	}
	if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, on); err != nil {
		return err
	}
	if enable && period > 0 {
		secs := int(period.Seconds())
		_ = setKeepAlivePeriod(s.fd, secs)
	}
	return nil
}
