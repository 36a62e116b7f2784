// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader captures a job's output stream while remembering its most
// recent line, so the live view can show what a long backup is doing without
// waiting for it to finish.
package teereader

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

const ellipsis = "..."

// LastLineTeeReader wraps an io.Reader, keeps up to limit bytes of everything
// read through it, and tracks the last non-blank complete line.
// Bytes past the limit are still read (so the writer never stalls) but are dropped.
// It is safe for concurrent use.
type LastLineTeeReader struct {
	reader   io.Reader
	limit    int64
	buf      bytes.Buffer
	partial  strings.Builder
	lastLine string
	overflow bool
	mu       sync.RWMutex
}

// NewLastLineTeeReader wraps r. A limit <= 0 keeps everything.
func NewLastLineTeeReader(r io.Reader, limit int64) *LastLineTeeReader {
	return &LastLineTeeReader{
		reader: r,
		limit:  limit,
	}
}

// Read implements io.Reader.
func (lt *LastLineTeeReader) Read(p []byte) (int, error) {
	n, err := lt.reader.Read(p)
	if n > 0 {
		lt.mu.Lock()
		lt.keep(p[:n])
		lt.track(string(p[:n]))
		lt.mu.Unlock()
	}

	return n, err //nolint:wrapcheck
}

func (lt *LastLineTeeReader) keep(b []byte) {
	if lt.limit <= 0 {
		lt.buf.Write(b)
		return
	}

	room := lt.limit - int64(lt.buf.Len())
	if room <= 0 {
		lt.overflow = true
		return
	}

	if int64(len(b)) > room {
		b = b[:room]
		lt.overflow = true
	}

	lt.buf.Write(b)
}

func (lt *LastLineTeeReader) track(data string) {
	lt.partial.WriteString(data)

	pending := lt.partial.String()

	idx := strings.LastIndexByte(pending, '\n')
	if idx < 0 {
		return
	}

	lines := strings.Split(pending[:idx], "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimRight(lines[i], "\r"); strings.TrimSpace(line) != "" {
			lt.lastLine = line
			break
		}
	}

	lt.partial.Reset()
	lt.partial.WriteString(pending[idx+1:])
}

// LastLine returns the last complete non-blank line, shortened to maxLength
// with a trailing "..." when maxLength > 0.
func (lt *LastLineTeeReader) LastLine(maxLength int) string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	line := lt.lastLine
	if maxLength > len(ellipsis) && len(line) > maxLength {
		line = line[:maxLength-len(ellipsis)] + ellipsis
	}

	return line
}

// Bytes returns a copy of the data kept so far.
func (lt *LastLineTeeReader) Bytes() []byte {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return bytes.Clone(lt.buf.Bytes())
}

// Overflowed reports whether any data was dropped because of the limit.
func (lt *LastLineTeeReader) Overflowed() bool {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return lt.overflow
}
