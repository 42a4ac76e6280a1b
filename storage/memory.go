// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

// MemoryStorage is a Storage backed by an in-memory byte slice. All reads
// are zero-copy borrows of the backing slice; it is always fully
// seekable, in both directions.
type MemoryStorage struct {
	data []byte
	pos  int64
}

// FromMemory wraps b as a Storage. b is not copied; callers must not
// mutate it while the MemoryStorage is in use.
func FromMemory(b []byte) *MemoryStorage {
	return &MemoryStorage{data: b}
}

func (m *MemoryStorage) CurrentPosition() int64  { return m.pos }
func (m *MemoryStorage) OriginalPosition() int64 { return m.pos }

func (m *MemoryStorage) Read(length int64, flags ReadFlags) ([]byte, error) {
	remaining := int64(len(m.data)) - m.pos
	n, err := clampRead(remaining, length, flags)
	if err != nil {
		return nil, err
	}
	out := m.data[m.pos : m.pos+n]
	if !flags.Has(FlagPeek) {
		m.pos += n
	}
	return out, nil
}

func (m *MemoryStorage) CanSeekBack(bool) bool { return true }

func (m *MemoryStorage) SeekTo(absolute int64) error {
	if absolute < 0 {
		return wrapErrf(ErrSeekBackward, "negative absolute position %d", absolute)
	}
	m.pos = absolute
	return nil
}

func (m *MemoryStorage) SeekFromBack(absoluteFromEnd int64) error {
	return m.SeekTo(int64(len(m.data)) - absoluteFromEnd)
}

func (m *MemoryStorage) Close() error { return nil }

// Len returns the total size in bytes of the backing buffer.
func (m *MemoryStorage) Len() int64 { return int64(len(m.data)) }
