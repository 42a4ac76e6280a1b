// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"compress/gzip"
	"io"
	"os"
)

// GzipStorage is a Storage over a gzip-compressed stream, decompressed on
// the fly through a streamBuffer. It cannot seek backward: the
// decompressor has no notion of a compressed-domain offset to rewind to.
// A forward SeekTo is emulated by reading and discarding.
type GzipStorage struct {
	f      *os.File
	gz     *gzip.Reader
	buf    *streamBuffer
	pos    int64
	closed bool
}

// OpenGzip opens name and wraps its gzip-decompressed content as a
// Storage.
func OpenGzip(name string) (*GzipStorage, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, wrapErrf(ErrOpenFailed, "opening %q: %v", name, err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, wrapErrf(ErrOpenFailed, "reading gzip header of %q: %v", name, err)
	}
	return &GzipStorage{f: f, gz: gz, buf: newStreamBuffer(gz)}, nil
}

func (s *GzipStorage) CurrentPosition() int64  { return s.pos }
func (s *GzipStorage) OriginalPosition() int64 { return s.pos }

func (s *GzipStorage) Read(length int64, flags ReadFlags) ([]byte, error) {
	if s.closed {
		return nil, wrapErr(ErrClosed, "read on closed gzip storage")
	}
	if length < 0 {
		return nil, wrapErrf(ErrEndOfStream, "negative read length %d", length)
	}
	for int64(len(s.buf.window())) < length && s.buf.err == nil {
		if s.buf.fill() == 0 {
			break
		}
	}
	remaining := int64(len(s.buf.window()))
	n, err := clampRead(remaining, length, flags)
	if err != nil {
		if werr := s.buf.eofErr(); werr != nil {
			return nil, wrapErr(werr, "reading gzip stream")
		}
		return nil, err
	}
	out := s.buf.take(int(n), !flags.Has(FlagPeek), flags.Has(FlagTemporary))
	if !flags.Has(FlagPeek) {
		s.pos += n
	}
	return out, nil
}

func (s *GzipStorage) CanSeekBack(bool) bool { return false }

func (s *GzipStorage) SeekTo(absolute int64) error {
	if absolute < s.pos {
		return wrapErrf(ErrSeekBackward, "gzip storage cannot seek backward from %d to %d", s.pos, absolute)
	}
	remaining := absolute - s.pos
	for remaining > 0 {
		n := remaining
		const maxChunk = 1 << 16
		if n > maxChunk {
			n = maxChunk
		}
		got, err := s.Read(n, FlagTemporary|FlagAllowPartial)
		if err != nil {
			return err
		}
		if len(got) == 0 {
			return wrapErr(ErrEndOfStream, "seeking past end of gzip stream")
		}
		remaining -= int64(len(got))
	}
	return nil
}

func (s *GzipStorage) SeekFromBack(int64) error {
	return wrapErr(ErrSeekFromBackUnsupported, "gzip storage has no known end until fully consumed")
}

func (s *GzipStorage) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.gz.Close(); err != nil {
		_ = s.f.Close()
		return wrapErr(err, "closing gzip reader")
	}
	return s.f.Close()
}

var _ io.Closer = (*GzipStorage)(nil)
