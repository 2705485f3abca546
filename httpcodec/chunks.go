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

// feedChunked assembles a chunked-transfer-encoding body: a sequence of
// "<hex-size>[;ext]\r\n<size bytes>\r\n" chunks terminated by a zero-size
// chunk, optionally followed by trailer headers and a final blank line.
// Adapted from the field-level chunk parsing rules badu-http's now-deleted
// utils_chunks.go/chunk_writer.go encoded for a blocking bufio.Reader;
// rewritten here against the incremental byte-buffer instead.
func (m *Message) feedChunked(b *buffer.Buffer) (Status, error) {
	data := b.Bytes()
	var body []byte
	pos := m.headerBlockLen

	for {
		lineEnd := bytes.Index(data[pos:], []byte("\r\n"))
		if lineEnd < 0 {
			if len(data)-m.headerBlockLen > m.contentMax {
				return BigContent, nil
			}
			return Incomplete, nil
		}
		sizeLine := string(data[pos : pos+lineEnd])
		if semi := strings.IndexByte(sizeLine, ';'); semi >= 0 {
			sizeLine = sizeLine[:semi]
		}
		size, err := strconv.ParseInt(strings.TrimSpace(sizeLine), 16, 64)
		if err != nil || size < 0 {
			return Incomplete, &badRequestError{reason: "invalid chunk size"}
		}
		chunkStart := pos + lineEnd + 2

		if size == 0 {
			// Trailer headers (usually none) end with a blank line; with no
			// trailers the blank line directly follows the zero-size line.
			consumed := chunkStart + 2
			if !bytes.HasPrefix(data[chunkStart:], []byte("\r\n")) {
				trailerEnd := bytes.Index(data[chunkStart:], []byte("\r\n\r\n"))
				if trailerEnd < 0 {
					if len(data)-m.headerBlockLen > m.contentMax {
						return BigContent, nil
					}
					return Incomplete, nil
				}
				consumed = chunkStart + trailerEnd + 4
			}
			m.Body = body
			b.Advance(consumed)
			m.state = StateComplete
			return Complete, nil
		}

		need := chunkStart + int(size) + 2 // chunk data + trailing CRLF
		if len(data) < need {
			if len(data)-m.headerBlockLen > m.contentMax {
				return BigContent, nil
			}
			return Incomplete, nil
		}
		body = append(body, data[chunkStart:chunkStart+int(size)]...)
		pos = need
	}
}
