/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package socket

import (
	"net"

	"golang.org/x/sys/unix"
)

func toSockaddrTCP(domain int, addr *net.TCPAddr) (unix.Sockaddr, error) {
	port := addr.Port
	if domain == unix.AF_INET6 {
		sa := &unix.SockaddrInet6{Port: port}
		if addr.IP != nil {
			copy(sa.Addr[:], addr.IP.To16())
		}
		return sa, nil
	}
	sa := &unix.SockaddrInet4{Port: port}
	if addr.IP != nil {
		ip4 := addr.IP.To4()
		copy(sa.Addr[:], ip4)
	}
	return sa, nil
}

// LocalAddr reports the address the socket is bound to, useful after
// Listen on port 0 to learn the OS-assigned port.
func (s *Socket) LocalAddr() (net.Addr, error) {
	sa, err := unix.Getsockname(s.fd)
	if err != nil {
		return nil, err
	}
	return sockaddrToAddr(sa), nil
}

func sockaddrToAddr(sa unix.Sockaddr) net.Addr {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(v.Addr[:]), Port: v.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(v.Addr[:]), Port: v.Port}
	case *unix.SockaddrUnix:
		return &net.UnixAddr{Name: v.Name, Net: "unix"}
	default:
		return nil
	}
}
