// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import "io"

// streamBuffer is a sliding lookahead window over an io.Reader: bytes are
// pulled from the reader in chunks, held in a buffer, and released from
// the front as the caller consumes them. It underlies GzipStorage (the
// ZIP streaming mode keeps its own package-local cursor) and has no
// backward-seek capability of its own.
type streamBuffer struct {
	data   []byte
	offset int
	r      io.Reader
	err    error
}

const (
	newStreamBufferSize = 8 << 10
	minStreamReadSize   = newStreamBufferSize >> 2
)

func newStreamBuffer(r io.Reader) *streamBuffer {
	return &streamBuffer{r: r}
}

// window returns the currently buffered, unreleased bytes. It is
// invalidated by the next call to release or fill.
func (b *streamBuffer) window() []byte {
	return b.data[b.offset:]
}

// release discards n bytes from the front of the window.
func (b *streamBuffer) release(n int) {
	b.offset += n
}

// fill extends the window with data read from the underlying reader,
// returning the number of new bytes appended. It returns 0 once the
// underlying reader has been exhausted or has errored; the terminal
// error, if any other than io.EOF, is in b.err.
func (b *streamBuffer) fill() int {
	if b.err != nil {
		return 0
	}
	remaining := len(b.data) - b.offset
	if remaining == 0 {
		b.data = b.data[:0]
		b.offset = 0
	}
	switch {
	case cap(b.data)-len(b.data) >= minStreamReadSize:
		// enough room between len and cap already.
	case cap(b.data)-remaining >= minStreamReadSize:
		b.compact()
	default:
		b.grow()
	}
	remaining += b.offset
	n, err := b.r.Read(b.data[remaining:cap(b.data)])
	b.data = b.data[:remaining+n]
	b.err = err
	return n
}

func (b *streamBuffer) grow() {
	size := cap(b.data) * 2
	if size < newStreamBufferSize {
		size = newStreamBufferSize
	}
	buf := make([]byte, size)
	copy(buf, b.data[b.offset:])
	b.data = buf
	b.offset = 0
}

func (b *streamBuffer) compact() {
	copy(b.data, b.data[b.offset:])
	b.offset = 0
}

// take ensures the window holds at least length bytes (or the stream is
// exhausted), then returns up to length bytes from its front, advancing
// past them if advance is true. Bytes are copied into a caller-owned
// slice unless temporary is true, in which case a borrow of the internal
// buffer is returned; such a borrow is invalidated by the next call to
// take with advance true.
func (b *streamBuffer) take(length int, advance, temporary bool) []byte {
	for len(b.window()) < length && b.err == nil {
		if b.fill() == 0 {
			break
		}
	}
	w := b.window()
	if len(w) > length {
		w = w[:length]
	}
	var out []byte
	if temporary {
		out = w
	} else {
		out = make([]byte, len(w))
		copy(out, w)
	}
	if advance {
		b.release(len(w))
	}
	return out
}

// eofErr returns the buffer's terminal read error, normalizing io.EOF
// (which signals a clean end of stream, not a failure) to nil.
func (b *streamBuffer) eofErr() error {
	if b.err == io.EOF {
		return nil
	}
	return b.err
}
