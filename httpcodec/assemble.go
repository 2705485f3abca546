/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package httpcodec

import (
	"strconv"
	"strings"
)

// Assemble serializes the message (request or response start line, then
// headers in insertion order, then the header terminator, then body) and
// inserts Content-Length automatically when body is non-empty and the
// caller hasn't already set one.
func (m *Message) Assemble(body []byte) []byte {
	if len(body) > 0 {
		if _, ok := m.Headers.Get("Content-Length"); !ok {
			m.Headers.Set("Content-Length", strconv.Itoa(len(body)), true)
		}
	}

	var sb strings.Builder
	if m.Kind == KindRequest {
		sb.WriteString(string(m.Method))
		sb.WriteByte(' ')
		sb.WriteString(m.URI)
		sb.WriteByte(' ')
		sb.WriteString(version(m.Version))
		sb.WriteString("\r\n")
	} else {
		sb.WriteString(version(m.Version))
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(m.StatusCode))
		sb.WriteByte(' ')
		reason := m.Reason
		if reason == "" {
			reason = ReasonPhrase(m.StatusCode)
		}
		sb.WriteString(reason)
		sb.WriteString("\r\n")
	}

	m.Headers.Each(func(name, value string) {
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\r\n")
	})
	sb.WriteString("\r\n")

	out := make([]byte, 0, sb.Len()+len(body))
	out = append(out, sb.String()...)
	out = append(out, body...)
	return out
}

func version(v string) string {
	if v == "" {
		return "HTTP/1.1"
	}
	return v
}

// ReasonPhrase returns the canonical reason phrase for a status code, or
// "Unknown" for codes this module has no opinion about.
func ReasonPhrase(code int) string {
	switch code {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 204:
		return "No Content"
	case 101:
		return "Switching Protocols"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 413:
		return "Payload Too Large"
	case 431:
		return "Request Header Fields Too Large"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 503:
		return "Service Unavailable"
	default:
		return "Unknown"
	}
}

// GetPacketSize reports how many bytes the currently parsed message
// occupied in the source buffer (header block plus body), once Complete.
func (m *Message) GetPacketSize() int {
	if m.chunked || m.readUntilEOF {
		return m.headerBlockLen + len(m.Body)
	}
	return m.headerBlockLen + m.contentLength
}

// GetBody returns the parsed body, if any.
func (m *Message) GetBody() ([]byte, bool) {
	if m.Body == nil {
		return nil, false
	}
	return m.Body, true
}
