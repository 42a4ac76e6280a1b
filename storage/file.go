// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"io"
	"os"
)

// FileStorage is a Storage backed by an *os.File, read sequentially via
// os.File.Read and seeking via os.File.Seek. Backward-seek support is not
// assumed: it is probed once, lazily, with a zero-length SEEK_CUR/SEEK_SET
// round trip, and the result is cached.
type FileStorage struct {
	f    *os.File
	pos  int64
	size int64

	seekProbed   bool
	seekBackable bool
	closed       bool
}

// OpenFile opens name for reading and wraps it as a Storage.
func OpenFile(name string) (*FileStorage, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, wrapErrf(ErrOpenFailed, "opening %q: %v", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, wrapErrf(ErrOpenFailed, "stat %q: %v", name, err)
	}
	return &FileStorage{f: f, size: info.Size()}, nil
}

func (s *FileStorage) CurrentPosition() int64  { return s.pos }
func (s *FileStorage) OriginalPosition() int64 { return s.pos }

func (s *FileStorage) Read(length int64, flags ReadFlags) ([]byte, error) {
	if s.closed {
		return nil, wrapErr(ErrClosed, "read on closed file storage")
	}
	remaining := s.size - s.pos
	n, err := clampRead(remaining, length, flags)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.f, buf); err != nil {
		return nil, wrapErrf(ErrEndOfStream, "reading %d bytes from file: %v", n, err)
	}
	if flags.Has(FlagPeek) {
		if _, err := s.f.Seek(-n, io.SeekCurrent); err != nil {
			return nil, wrapErrf(ErrSeekBackward, "rewinding after peek: %v", err)
		}
	} else {
		s.pos += n
	}
	return buf, nil
}

// CanSeekBack probes, on first call with allowDetect true, whether the
// underlying file supports SEEK_SET to an earlier offset (regular files
// do; pipes and many character devices do not). The result is cached.
func (s *FileStorage) CanSeekBack(allowDetect bool) bool {
	if s.seekProbed {
		return s.seekBackable
	}
	if !allowDetect {
		return false
	}
	cur, err := s.f.Seek(0, io.SeekCurrent)
	if err != nil {
		s.seekProbed = true
		s.seekBackable = false
		return false
	}
	_, err = s.f.Seek(cur, io.SeekStart)
	s.seekProbed = true
	s.seekBackable = err == nil
	return s.seekBackable
}

func (s *FileStorage) SeekTo(absolute int64) error {
	if s.closed {
		return wrapErr(ErrClosed, "seek on closed file storage")
	}
	if absolute < s.pos && !s.CanSeekBack(true) {
		return wrapErrf(ErrSeekBackward, "seek to %d from %d not supported", absolute, s.pos)
	}
	if _, err := s.f.Seek(absolute, io.SeekStart); err != nil {
		return wrapErrf(ErrSeekBackward, "seeking to %d: %v", absolute, err)
	}
	s.pos = absolute
	return nil
}

func (s *FileStorage) SeekFromBack(absoluteFromEnd int64) error {
	if !s.CanSeekBack(true) {
		return wrapErr(ErrSeekFromBackUnsupported, "seek-from-back not supported")
	}
	return s.SeekTo(s.size - absoluteFromEnd)
}

func (s *FileStorage) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}

// Size returns the total size in bytes of the file.
func (s *FileStorage) Size() int64 { return s.size }
