/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package httpcodec

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/kala13x/libxutils-sub001/buffer"
)

var terminator = []byte("\r\n\r\n")

// Feed advances the parser with whatever unconsumed bytes are sitting in
// b. It consumes exactly the bytes belonging to one complete message from
// the front of b (header block plus body, if any) once Complete is
// reached; until then b is left untouched so the next Feed call sees the
// same bytes plus whatever arrived since.
func (m *Message) Feed(b *buffer.Buffer) (Status, error) {
	if m.state == StateComplete {
		return Complete, nil
	}

	data := b.Bytes()

	if m.state == StateInitial || m.state == StateHeadersPending {
		m.state = StateHeadersPending
		idx := bytes.Index(data, terminator)
		if idx < 0 {
			if len(data) > m.headerMax {
				return BigHeader, nil
			}
			return Incomplete, nil
		}
		headerLen := idx + len(terminator)
		if headerLen > m.headerMax {
			return BigHeader, nil
		}
		if err := m.parseHeaderBlock(data[:idx]); err != nil {
			return Incomplete, err
		}
		m.state = StateHeadersParsed
		m.resolveBodyLength()
		m.headerBlockLen = headerLen

		if m.chunked {
			m.state = StateBodyPending
			return Parsed, nil
		}

		if !m.hasContentLength && !m.readUntilEOF {
			// No Content-Length and no Content-Type: complete right after
			// headers, per spec.
			b.Advance(headerLen)
			m.state = StateComplete
			return Complete, nil
		}
		if m.hasContentLength && m.contentLength == 0 {
			b.Advance(headerLen)
			m.state = StateComplete
			return Complete, nil
		}

		m.state = StateBodyPending
		return Parsed, nil
	}

	if m.state == StateBodyPending {
		if m.readUntilEOF {
			// Body length is only known once the socket reports EOF; see
			// FeedEOF. Nothing more to do from a plain Feed call.
			return Incomplete, nil
		}

		if m.chunked {
			return m.feedChunked(b)
		}

		data = b.Bytes()
		need := m.headerBlockLen + m.contentLength
		if len(data) < need {
			if len(data)-m.headerBlockLen > m.contentMax {
				return BigContent, nil
			}
			return Incomplete, nil
		}
		m.Body = append([]byte(nil), data[m.headerBlockLen:need]...)
		b.Advance(need)
		m.state = StateComplete
		return Complete, nil
	}

	return Incomplete, nil
}

// FeedEOF finalizes a Content-Type-without-Content-Length body once the
// connection has reported a clean close, taking whatever is left in b as
// the full body.
func (m *Message) FeedEOF(b *buffer.Buffer) (Status, error) {
	if m.state != StateBodyPending || !m.readUntilEOF {
		return Incomplete, nil
	}
	data := b.Bytes()
	if len(data) < m.headerBlockLen {
		return Incomplete, nil
	}
	m.Body = append([]byte(nil), data[m.headerBlockLen:]...)
	b.Advance(len(data))
	m.state = StateComplete
	return Complete, nil
}

func (m *Message) parseHeaderBlock(block []byte) error {
	lines := strings.Split(string(block), "\r\n")
	if len(lines) == 0 {
		return &badRequestError{reason: "empty message"}
	}
	if err := m.parseStartLine(lines[0]); err != nil {
		return err
	}
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue // tolerate malformed continuation-less folding; not a fatal error
		}
		name := strings.ToLower(strings.TrimSpace(line[:colon]))
		value := strings.TrimLeft(line[colon+1:], " \t")
		if dup := m.Headers.Set(name, value, false); dup {
			if m.OnDuplicateHeader != nil {
				m.OnDuplicateHeader(name, value)
			}
		}
	}
	return nil
}

func (m *Message) resolveBodyLength() {
	if te, ok := m.Headers.Get("Transfer-Encoding"); ok && strings.EqualFold(strings.TrimSpace(te), "chunked") {
		m.chunked = true
		return
	}
	if cl, ok := m.Headers.Get("Content-Length"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(cl))
		if err == nil && n >= 0 {
			m.hasContentLength = true
			m.contentLength = n
			return
		}
	}
	if _, ok := m.Headers.Get("Content-Type"); ok {
		m.readUntilEOF = true
	}
}
