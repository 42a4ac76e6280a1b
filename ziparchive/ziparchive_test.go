// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziparchive

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestArchive produces a stored-method ZIP, via the standard
// library's writer, containing the given name→content members. The
// standard writer always emits a trailing data descriptor for regular
// files (archive/zip never knows sizes up front), so these fixture bytes
// exercise both ziparchive's seekable and streaming modes identically.
func buildTestArchive(t *testing.T, files map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// sequentialStorage wraps a byte slice as a forward-only storage.Storage,
// simulating a non-seekable backing source (a pipe, a plain network
// stream) so ziparchive.NewReader falls back to streaming mode.
type sequentialStorage struct {
	data []byte
	pos  int64
}

func (s *sequentialStorage) CurrentPosition() int64  { return s.pos }
func (s *sequentialStorage) OriginalPosition() int64 { return s.pos }

func (s *sequentialStorage) Read(length int64, flags storage.ReadFlags) ([]byte, error) {
	remaining := int64(len(s.data)) - s.pos
	n := length
	if n > remaining {
		if !flags.Has(storage.FlagAllowPartial) && !flags.Has(storage.FlagAllowEmpty) {
			return nil, storage.ErrEndOfStream
		}
		if n = remaining; n < 0 {
			n = 0
		}
	}
	if n == 0 && !flags.Has(storage.FlagAllowEmpty) && length > 0 {
		return nil, storage.ErrEndOfStream
	}
	out := s.data[s.pos : s.pos+n]
	if !flags.Has(storage.FlagPeek) {
		s.pos += n
	}
	return out, nil
}

func (s *sequentialStorage) CanSeekBack(bool) bool { return false }

func (s *sequentialStorage) SeekTo(absolute int64) error {
	if absolute < s.pos {
		return storage.ErrSeekBackward
	}
	s.pos = absolute
	return nil
}

func (s *sequentialStorage) SeekFromBack(int64) error {
	return storage.ErrSeekFromBackUnsupported
}

func (s *sequentialStorage) Close() error { return nil }

func TestSeekableModeReadsMembersInOrder(t *testing.T) {
	files := map[string]string{
		"prefix/a.bin": "hello",
		"prefix/b.bin": "world!!",
	}
	order := []string{"prefix/a.bin", "prefix/b.bin"}
	data := buildTestArchive(t, files, order)

	r, err := NewReader(storage.FromMemory(data))
	require.NoError(t, err)

	var seen []string
	for {
		ok, err := r.ReadNextFile()
		require.NoError(t, err)
		if !ok {
			break
		}
		entry, haveEntry := r.CurrentEntry()
		require.True(t, haveEntry)
		seen = append(seen, entry.Name)

		content, err := r.Read(int64(entry.UncompressedSize), 0)
		require.NoError(t, err)
		assert.Equal(t, files[entry.Name], string(content))
	}
	assert.Equal(t, order, seen)
}

func TestStreamingModeReadsMembersInOrder(t *testing.T) {
	files := map[string]string{
		"prefix/a.bin": "hello",
		"prefix/b.bin": "world!!",
	}
	order := []string{"prefix/a.bin", "prefix/b.bin"}
	data := buildTestArchive(t, files, order)

	r, err := NewReader(&sequentialStorage{data: data})
	require.NoError(t, err)

	var seen []string
	for {
		ok, err := r.ReadNextFile()
		require.NoError(t, err)
		if !ok {
			break
		}
		entry, haveEntry := r.CurrentEntry()
		require.True(t, haveEntry)

		var content []byte
		for {
			chunk, err := r.Read(4, storage.FlagAllowPartial|storage.FlagAllowEmpty)
			require.NoError(t, err)
			if len(chunk) == 0 {
				break
			}
			content = append(content, chunk...)
		}
		entry, _ = r.CurrentEntry()
		seen = append(seen, entry.Name)
		assert.Equal(t, files[entry.Name], string(content))
		assert.Equal(t, uint64(len(files[entry.Name])), entry.UncompressedSize)
	}
	assert.Equal(t, order, seen)
}

func TestStreamingModeSkipsUnreadMemberContent(t *testing.T) {
	files := map[string]string{
		"only/x.bin": "0123456789",
		"only/y.bin": "abcdef",
	}
	order := []string{"only/x.bin", "only/y.bin"}
	data := buildTestArchive(t, files, order)

	r, err := NewReader(&sequentialStorage{data: data})
	require.NoError(t, err)

	ok, err := r.ReadNextFile()
	require.NoError(t, err)
	require.True(t, ok)
	// Deliberately don't read "only/x.bin"'s content before advancing.

	ok, err = r.ReadNextFile()
	require.NoError(t, err)
	require.True(t, ok)
	entry, _ := r.CurrentEntry()
	assert.Equal(t, "only/y.bin", entry.Name)

	// entry.UncompressedSize is still zero here: the member's size is only
	// known once its data descriptor has been located.
	content, err := r.Read(int64(len(files[entry.Name])), 0)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(content))

	ok, err = r.ReadNextFile()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntryFlagHelpers(t *testing.T) {
	e := Entry{Flags: flagEncrypted}
	assert.True(t, e.Encrypted())
	assert.False(t, e.LengthAtEnd())

	e = Entry{Flags: flagLengthAtEnd}
	assert.False(t, e.Encrypted())
	assert.True(t, e.LengthAtEnd())
}
