/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package wsframe

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/kala13x/libxutils-sub001/buffer"
)

// Opcode is the RFC 6455 §5.2 frame opcode.
type Opcode byte

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

func (op Opcode) IsControl() bool { return op >= OpClose }

// Status mirrors httpcodec's incremental parse result vocabulary so a
// connection's dispatch code can treat both codecs uniformly.
type Status int

const (
	Incomplete Status = iota
	Complete
	BigData
)

func (s Status) String() string {
	switch s {
	case Incomplete:
		return "Incomplete"
	case Complete:
		return "Complete"
	case BigData:
		return "BigData"
	default:
		return "Unknown"
	}
}

// Frame is one parsed or about-to-be-built WebSocket frame.
type Frame struct {
	FIN     bool
	Opcode  Opcode
	Masked  bool
	MaskKey [4]byte
	Payload []byte

	consumed int
}

// Feed parses exactly one frame from the front of b's unconsumed bytes.
// On Complete, the frame's bytes are advanced out of b; on Incomplete, b is
// left untouched so the next Feed call sees the same bytes plus whatever
// arrived since. maxPayload caps the payload length to guard against a
// malicious/garbled length field demanding an unbounded allocation.
func Feed(b *buffer.Buffer, maxPayload int) (*Frame, Status, error) {
	data := b.Bytes()
	if len(data) < 2 {
		return nil, Incomplete, nil
	}

	b0, b1 := data[0], data[1]
	f := &Frame{
		FIN:    b0&0x80 != 0,
		Opcode: Opcode(b0 & 0x0F),
		Masked: b1&0x80 != 0,
	}

	payloadLen := int(b1 & 0x7F)
	pos := 2

	switch payloadLen {
	case 126:
		if len(data) < pos+2 {
			return nil, Incomplete, nil
		}
		payloadLen = int(binary.BigEndian.Uint16(data[pos:]))
		pos += 2
	case 127:
		if len(data) < pos+8 {
			return nil, Incomplete, nil
		}
		n := binary.BigEndian.Uint64(data[pos:])
		if n > uint64(maxPayload) && maxPayload > 0 {
			return nil, BigData, nil
		}
		payloadLen = int(n)
		pos += 8
	}

	if maxPayload > 0 && payloadLen > maxPayload {
		return nil, BigData, nil
	}

	if f.Masked {
		if len(data) < pos+4 {
			return nil, Incomplete, nil
		}
		copy(f.MaskKey[:], data[pos:pos+4])
		pos += 4
	}

	if len(data) < pos+payloadLen {
		return nil, Incomplete, nil
	}

	f.Payload = append([]byte(nil), data[pos:pos+payloadLen]...)
	if f.Masked {
		unmask(f.Payload, f.MaskKey)
	}
	f.consumed = pos + payloadLen
	b.Advance(f.consumed)
	return f, Complete, nil
}

func unmask(payload []byte, key [4]byte) {
	for i := range payload {
		payload[i] ^= key[i%4]
	}
}

// Build encodes one frame with the given opcode, FIN bit and payload into
// wire bytes. A client-side frame (masked=true) gets a fresh random mask
// key generated here, matching RFC 6455 §5.1's requirement that clients
// never reuse a mask.
func Build(opcode Opcode, fin bool, payload []byte, masked bool) ([]byte, error) {
	var out []byte

	b0 := byte(opcode)
	if fin {
		b0 |= 0x80
	}
	out = append(out, b0)

	var maskKey [4]byte
	if masked {
		if _, err := rand.Read(maskKey[:]); err != nil {
			return nil, err
		}
	}

	n := len(payload)
	b1 := byte(0)
	if masked {
		b1 = 0x80
	}
	switch {
	case n < 126:
		out = append(out, b1|byte(n))
	case n <= 0xFFFF:
		out = append(out, b1|126)
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(n))
		out = append(out, lenBuf[:]...)
	default:
		out = append(out, b1|127)
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(n))
		out = append(out, lenBuf[:]...)
	}

	if masked {
		out = append(out, maskKey[:]...)
		maskedPayload := append([]byte(nil), payload...)
		unmask(maskedPayload, maskKey)
		out = append(out, maskedPayload...)
		return out, nil
	}

	out = append(out, payload...)
	return out, nil
}

// AutoPongFrame builds the Pong reply to an inbound Ping, echoing its
// payload back per RFC 6455 §5.5.3. asClient controls whether the reply
// must be masked (true for a WebSocket client, false for a server).
func AutoPongFrame(ping *Frame, asClient bool) ([]byte, error) {
	return Build(OpPong, true, ping.Payload, asClient)
}

// CloseFrame builds a Close control frame carrying the given status code
// and optional reason text, per RFC 6455 §5.5.1.
func CloseFrame(code uint16, reason string, asClient bool) ([]byte, error) {
	payload := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(payload, code)
	copy(payload[2:], reason)
	return Build(OpClose, true, payload, asClient)
}
