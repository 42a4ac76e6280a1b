// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageReadBasic(t *testing.T) {
	m := FromMemory([]byte("hello world"))
	b, err := m.Read(5, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, int64(5), m.CurrentPosition())

	b, err = m.Read(6, 0)
	require.NoError(t, err)
	assert.Equal(t, " world", string(b))
}

func TestMemoryStoragePeekDoesNotAdvance(t *testing.T) {
	m := FromMemory([]byte("abcdef"))
	b, err := m.Read(3, FlagPeek)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))
	assert.Equal(t, int64(0), m.CurrentPosition())

	b, err = m.Read(3, 0)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))
	assert.Equal(t, int64(3), m.CurrentPosition())
}

func TestMemoryStorageEndOfStream(t *testing.T) {
	m := FromMemory([]byte("ab"))
	_, err := m.Read(3, 0)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestMemoryStorageAllowPartial(t *testing.T) {
	m := FromMemory([]byte("ab"))
	b, err := m.Read(3, FlagAllowPartial)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(b))
	assert.Equal(t, int64(2), m.CurrentPosition())
}

func TestMemoryStorageAllowEmpty(t *testing.T) {
	m := FromMemory(nil)
	b, err := m.Read(5, FlagAllowEmpty)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestMemoryStorageSeek(t *testing.T) {
	m := FromMemory([]byte("0123456789"))
	require.True(t, m.CanSeekBack(true))

	require.NoError(t, m.SeekTo(5))
	b, err := m.Read(2, 0)
	require.NoError(t, err)
	assert.Equal(t, "56", string(b))

	require.NoError(t, m.SeekTo(0))
	b, err = m.Read(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "0", string(b))

	require.NoError(t, m.SeekFromBack(3))
	b, err = m.Read(3, 0)
	require.NoError(t, err)
	assert.Equal(t, "789", string(b))
}

func TestFileStorageReadAndSeek(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("the quick brown fox"), 0o644))

	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, int64(19), f.Size())

	b, err := f.Read(3, 0)
	require.NoError(t, err)
	assert.Equal(t, "the", string(b))

	require.True(t, f.CanSeekBack(true))
	require.NoError(t, f.SeekTo(4))
	b, err = f.Read(5, 0)
	require.NoError(t, err)
	assert.Equal(t, "quick", string(b))

	require.NoError(t, f.SeekFromBack(3))
	b, err = f.Read(3, 0)
	require.NoError(t, err)
	assert.Equal(t, "fox", string(b))
}

func TestFileStorageEndOfStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.bin")
	require.NoError(t, os.WriteFile(path, []byte("ab"), 0o644))

	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Read(5, 0)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestMmapStorageReadAndSeek(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapped.bin")
	require.NoError(t, os.WriteFile(path, []byte("mmap content here"), 0o644))

	m, err := OpenMmap(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, int64(17), m.Size())

	b, err := m.Read(4, 0)
	require.NoError(t, err)
	assert.Equal(t, "mmap", string(b))

	require.NoError(t, m.SeekTo(0))
	b, err = m.Read(4, FlagPeek)
	require.NoError(t, err)
	assert.Equal(t, "mmap", string(b))
	assert.Equal(t, int64(0), m.CurrentPosition())
}

func TestGzipStorageForwardOnly(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte("decompressed payload data"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	dir := t.TempDir()
	path := filepath.Join(dir, "payload.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	g, err := OpenGzip(path)
	require.NoError(t, err)
	defer g.Close()

	assert.False(t, g.CanSeekBack(true))

	b, err := g.Read(13, 0)
	require.NoError(t, err)
	assert.Equal(t, "decompressed ", string(b))

	err = g.SeekTo(g.CurrentPosition() - 1)
	assert.ErrorIs(t, err, ErrSeekBackward)

	require.NoError(t, g.SeekTo(g.CurrentPosition()+8))
	b, err = g.Read(4, 0)
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
}

func TestRegionClampsToWindow(t *testing.T) {
	back := FromMemory([]byte("0123456789abcdef"))
	r := NewRegion(back, 4, 6) // "456789"

	b, err := r.Read(4, 0)
	require.NoError(t, err)
	assert.Equal(t, "4567", string(b))

	_, err = r.Read(4, 0)
	assert.ErrorIs(t, err, ErrEndOfStream)

	b, err = r.Read(4, FlagAllowPartial)
	require.NoError(t, err)
	assert.Equal(t, "89", string(b))

	require.NoError(t, r.SeekTo(0))
	b, err = r.Read(3, 0)
	require.NoError(t, err)
	assert.Equal(t, "456", string(b))
}

func TestReadFlagsHas(t *testing.T) {
	f := FlagPeek | FlagAllowEmpty
	assert.True(t, f.Has(FlagPeek))
	assert.True(t, f.Has(FlagAllowEmpty))
	assert.False(t, f.Has(FlagTemporary))
	assert.True(t, f.Has(FlagPeek|FlagAllowEmpty))
}
