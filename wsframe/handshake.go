/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package wsframe implements the RFC 6455 WebSocket upgrade handshake
// (both sides) and the frame parser/builder, on top of httpcodec for the
// handshake's HTTP request/response plumbing.
package wsframe

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"errors"

	"github.com/kala13x/libxutils-sub001/httpcodec"
)

// acceptGUID is the fixed RFC 6455 magic string concatenated onto the
// client's nonce before hashing.
const acceptGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// ErrMissingKey is returned by ServerHandshake when the request has no
// Sec-WebSocket-Key and the endpoint does not opt into tolerating that.
var ErrMissingKey = errors.New("wsframe: missing Sec-WebSocket-Key")

// ErrUpgradeRequired is returned when the request lacks Upgrade: websocket.
var ErrUpgradeRequired = errors.New("wsframe: missing Upgrade: websocket")

// ErrAcceptMismatch is returned by ClientHandshake when the server's
// Sec-WebSocket-Accept does not match the value computed from the nonce
// this client sent.
var ErrAcceptMismatch = errors.New("wsframe: Sec-WebSocket-Accept mismatch")

// AcceptKey computes the RFC 6455 Sec-WebSocket-Accept value for a given
// client nonce: base64(sha1(key + magic GUID)). Stdlib crypto/sha1 and
// encoding/base64 are used directly — the algorithm and GUID are fixed by
// the protocol, so a third-party SHA-1 implementation would add nothing.
func AcceptKey(key string) string {
	sum := sha1.Sum([]byte(key + acceptGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// NewNonce generates a fresh client-side Sec-WebSocket-Key: 16 random
// bytes, base64-encoded to a 24-character string (22 significant
// characters plus "==" padding, per RFC 6455).
func NewNonce() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw[:]), nil
}

// BuildClientRequest assembles the HTTP GET upgrade request a WebSocket
// client sends on the first writable event after connect.
func BuildClientRequest(host, uri, nonce string) []byte {
	msg := httpcodec.New(0, 0)
	msg.InitRequest(httpcodec.MethodGet, uri, "HTTP/1.1")
	msg.AddHeader("Host", host)
	msg.AddHeader("Upgrade", "websocket")
	msg.AddHeader("Connection", "Upgrade")
	msg.AddHeader("Sec-WebSocket-Key", nonce)
	msg.AddHeader("Sec-WebSocket-Version", "13")
	return msg.Assemble(nil)
}

// ServerHandshake validates a parsed HTTP request as a WebSocket upgrade
// and returns the 101 Switching Protocols response bytes to enqueue, and
// the request's Sec-WebSocket-Key for callers that want to log it.
//
// allowMissingKey mirrors the endpoint's WSAllowMissingKey flag; RFC 6455
// mandates the key, so the default (false) rejects a request missing it.
func ServerHandshake(req *httpcodec.Message, allowMissingKey bool) (response []byte, key string, err error) {
	upgrade, _ := req.GetHeader("Upgrade")
	if !equalFoldASCII(upgrade, "websocket") {
		return nil, "", ErrUpgradeRequired
	}

	key, hasKey := req.GetHeader("Sec-WebSocket-Key")
	if !hasKey {
		if !allowMissingKey {
			return nil, "", ErrMissingKey
		}
	}

	resp := httpcodec.New(0, 0)
	resp.InitResponse(101, "HTTP/1.1")
	resp.AddHeader("Upgrade", "websocket")
	resp.AddHeader("Connection", "Upgrade")
	if hasKey {
		resp.AddHeader("Sec-WebSocket-Accept", AcceptKey(key))
	}
	return resp.Assemble(nil), key, nil
}

// ClientHandshake validates the server's 101 response against the nonce
// this client sent with BuildClientRequest.
func ClientHandshake(resp *httpcodec.Message, nonce string) error {
	upgrade, _ := resp.GetHeader("Upgrade")
	if !equalFoldASCII(upgrade, "websocket") {
		return ErrUpgradeRequired
	}
	accept, _ := resp.GetHeader("Sec-WebSocket-Accept")
	if accept != AcceptKey(nonce) {
		return ErrAcceptMismatch
	}
	return nil
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
