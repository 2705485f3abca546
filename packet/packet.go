/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package packet implements the length-prefixed JSON packet codec:
// le_u32(header_len) || header_json || payload. Header (de)serialization
// uses github.com/goccy/go-json, a drop-in encoding/json-compatible
// encoder, for the same reason nabbar-golib's go.mod pulls it in: faster
// struct marshaling on the hot path of a per-packet header parse.
package packet

import (
	"encoding/binary"
	"errors"

	json "github.com/goccy/go-json"
	"github.com/kala13x/libxutils-sub001/buffer"
)

// Type is the packetType field of the JSON header. TypeInvalid and
// TypeIncomplete are internal-only markers mirroring the original
// source's XPacket_GetType; GetType returns TypeInvalid for an
// unrecognized or absent packetType string rather than erroring outright.
type Type string

const (
	TypeInvalid    Type = ""
	TypeIncomplete Type = "incomplete"

	TypeLite  Type = "lite"
	TypeMulty Type = "multy"
	TypeError Type = "error"
	TypeDummy Type = "dummy"
	TypeData  Type = "data"
	TypePing  Type = "ping"
	TypePong  Type = "pong"
	TypeInfo  Type = "info"
	TypeCmd   Type = "cmd"
	TypeEOS   Type = "eos"
	TypeKA    Type = "ka"
)

// Payload is the JSON header's nested payload descriptor.
type Payload struct {
	PayloadSize int    `json:"payloadSize"`
	PayloadType string `json:"payloadType,omitempty"`
	Crypted     bool   `json:"crypted,omitempty"`
	SsrcHash    string `json:"ssrcHash,omitempty"`
}

// Header is the JSON object carried between the 4-byte length prefix and
// the opaque payload bytes.
type Header struct {
	Version    string         `json:"version,omitempty"`
	PacketType Type           `json:"packetType,omitempty"`
	SessionID  string         `json:"sessionId,omitempty"`
	PacketID   string         `json:"packetId,omitempty"`
	TimeStamp  int64          `json:"timeStamp,omitempty"`
	Payload    Payload        `json:"payload,omitempty"`
	Extension  map[string]any `json:"extension,omitempty"`
}

// Packet is one parsed-or-being-assembled length-prefixed frame.
type Packet struct {
	Header  Header
	Payload []byte
}

// Status mirrors httpcodec's and wsframe's incremental parse result
// vocabulary.
type Status int

const (
	Incomplete Status = iota
	Parsed
	Complete
	BigHeader
	BigData
)

func (s Status) String() string {
	switch s {
	case Incomplete:
		return "Incomplete"
	case Parsed:
		return "Parsed"
	case Complete:
		return "Complete"
	case BigHeader:
		return "BigHeader"
	case BigData:
		return "BigData"
	default:
		return "Unknown"
	}
}

// ErrMalformedHeader is returned when the length-prefixed header block
// fails to unmarshal as JSON.
var ErrMalformedHeader = errors.New("packet: malformed JSON header")

const prefixLen = 4

// GetType returns the Type named by a recognized packetType string, and
// TypeInvalid for an unrecognized or empty one, matching the original
// source's XPacket_GetType. It never returns TypeIncomplete.
func GetType(raw string) Type {
	switch Type(raw) {
	case TypeLite, TypeMulty, TypeError, TypeDummy, TypeData, TypePing, TypePong, TypeInfo, TypeCmd, TypeEOS, TypeKA:
		return Type(raw)
	default:
		return TypeInvalid
	}
}

// Feed parses exactly one packet from the front of b's unconsumed bytes.
// maxHeader and maxPayload cap the header-block and payload sizes; 0
// means unlimited. On Complete the packet's bytes are advanced out of b.
func Feed(b *buffer.Buffer, maxHeader, maxPayload int) (*Packet, Status, error) {
	data := b.Bytes()
	if len(data) < prefixLen {
		return nil, Incomplete, nil
	}

	headerLen := int(binary.LittleEndian.Uint32(data[:prefixLen]))
	if maxHeader > 0 && headerLen > maxHeader {
		return nil, BigHeader, nil
	}
	if len(data) < prefixLen+headerLen {
		return nil, Incomplete, nil
	}

	var hdr Header
	if err := json.Unmarshal(data[prefixLen:prefixLen+headerLen], &hdr); err != nil {
		return nil, Incomplete, ErrMalformedHeader
	}

	payloadSize := hdr.Payload.PayloadSize
	if maxPayload > 0 && payloadSize > maxPayload {
		return nil, BigData, nil
	}

	total := prefixLen + headerLen + payloadSize
	if len(data) < total {
		return nil, Parsed, nil
	}

	p := &Packet{Header: hdr}
	if payloadSize > 0 {
		p.Payload = append([]byte(nil), data[prefixLen+headerLen:total]...)
	}
	b.Advance(total)
	return p, Complete, nil
}

// Assemble encodes a packet's wire bytes: le_u32(header_len) || header_json
// || payload. The header's payload.payloadSize is set from len(payload)
// before marshaling, so callers never have to keep the two in sync by hand.
func Assemble(hdr Header, payload []byte) ([]byte, error) {
	hdr.Payload.PayloadSize = len(payload)
	headerJSON, err := json.Marshal(hdr)
	if err != nil {
		return nil, err
	}

	out := make([]byte, prefixLen, prefixLen+len(headerJSON)+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(len(headerJSON)))
	out = append(out, headerJSON...)
	out = append(out, payload...)
	return out, nil
}
