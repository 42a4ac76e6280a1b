// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

// MmapStorage is a Storage backed by a read-only memory mapping of a whole
// file. Every Read returns a zero-copy borrow of the mapped region; it is
// always fully seekable, in both directions, since the entire file is
// already resident in the address space.
type MmapStorage struct {
	f      *os.File
	m      mmap.MMap
	pos    int64
	closed bool
}

// OpenMmap opens name and memory-maps it read-only.
func OpenMmap(name string) (*MmapStorage, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, wrapErrf(ErrOpenFailed, "opening %q: %v", name, err)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, wrapErrf(ErrOpenFailed, "mapping %q: %v", name, err)
	}
	return &MmapStorage{f: f, m: m}, nil
}

func (s *MmapStorage) CurrentPosition() int64  { return s.pos }
func (s *MmapStorage) OriginalPosition() int64 { return s.pos }

func (s *MmapStorage) Read(length int64, flags ReadFlags) ([]byte, error) {
	if s.closed {
		return nil, wrapErr(ErrClosed, "read on closed mmap storage")
	}
	remaining := int64(len(s.m)) - s.pos
	n, err := clampRead(remaining, length, flags)
	if err != nil {
		return nil, err
	}
	out := s.m[s.pos : s.pos+n]
	if !flags.Has(FlagPeek) {
		s.pos += n
	}
	return out, nil
}

func (s *MmapStorage) CanSeekBack(bool) bool { return true }

func (s *MmapStorage) SeekTo(absolute int64) error {
	if absolute < 0 {
		return wrapErrf(ErrSeekBackward, "negative absolute position %d", absolute)
	}
	s.pos = absolute
	return nil
}

func (s *MmapStorage) SeekFromBack(absoluteFromEnd int64) error {
	return s.SeekTo(int64(len(s.m)) - absoluteFromEnd)
}

func (s *MmapStorage) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.m.Unmap(); err != nil {
		_ = s.f.Close()
		return wrapErr(err, "unmapping file")
	}
	return s.f.Close()
}

// Size returns the total size in bytes of the mapped file.
func (s *MmapStorage) Size() int64 { return int64(len(s.m)) }
