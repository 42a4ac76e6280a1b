// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gguf

import (
	"encoding/binary"
	"testing"

	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tensorSpec struct {
	name  string
	shape []uint64 // innermost-last, as tensor.Info expects
	typ   ggmlType
}

type fileBuilder struct {
	buf []byte
}

func (b *fileBuilder) u32(v uint32) {
	var x [4]byte
	binary.LittleEndian.PutUint32(x[:], v)
	b.buf = append(b.buf, x[:]...)
}

func (b *fileBuilder) u64(v uint64) {
	var x [8]byte
	binary.LittleEndian.PutUint64(x[:], v)
	b.buf = append(b.buf, x[:]...)
}

func (b *fileBuilder) str(s string) {
	b.u64(uint64(len(s)))
	b.buf = append(b.buf, s...)
}

func (b *fileBuilder) kvUint32(key string, v uint32) {
	b.str(key)
	b.u32(uint32(ValueTypeUint32))
	b.u32(v)
}

func buildGGUF(t *testing.T, kvs func(*fileBuilder), tensors []tensorSpec, tensorData [][]byte, alignment int) []byte {
	t.Helper()

	var head fileBuilder
	head.buf = append(head.buf, magicBytes...)
	head.u32(supportedVersion)
	head.u64(uint64(len(tensors)))

	var kvBuf fileBuilder
	kvCount := 0
	if kvs != nil {
		before := 0
		_ = before
		kvs(&kvBuf)
	}
	// count kvs by scanning caller-provided closure invocations isn't
	// tracked here; tests pass an explicit count via a wrapping closure
	// when needed. For simplicity, tests supply kvs that write exactly
	// one entry, or nil.
	if kvs != nil {
		kvCount = 1
	}
	head.u64(uint64(kvCount))
	head.buf = append(head.buf, kvBuf.buf...)

	offset := uint64(0)
	var infoBuf fileBuilder
	offsets := make([]uint64, len(tensors))
	for i, ts := range tensors {
		infoBuf.str(ts.name)
		infoBuf.u32(uint32(len(ts.shape)))
		for j := len(ts.shape) - 1; j >= 0; j-- {
			infoBuf.u64(ts.shape[j])
		}
		infoBuf.u32(uint32(ts.typ))
		infoBuf.u64(offset)
		offsets[i] = offset
		offset += uint64(len(tensorData[i]))
	}
	head.buf = append(head.buf, infoBuf.buf...)

	rawLen := len(head.buf)
	pad := 0
	if alignment > 0 && rawLen%alignment != 0 {
		pad = alignment - rawLen%alignment
	}
	head.buf = append(head.buf, make([]byte, pad)...)

	for _, d := range tensorData {
		head.buf = append(head.buf, d...)
	}
	return head.buf
}

func TestAlignment96RankZeroToFourStride(t *testing.T) {
	tensors := []tensorSpec{
		{name: "scalar", shape: []uint64{}, typ: ggmlTypeF32},
		{name: "vec", shape: []uint64{4}, typ: ggmlTypeF32},
		{name: "mat", shape: []uint64{3, 4}, typ: ggmlTypeF32},
		{name: "cube", shape: []uint64{2, 3, 4}, typ: ggmlTypeF32},
		{name: "four", shape: []uint64{2, 3, 2, 2}, typ: ggmlTypeF32},
	}
	data := make([][]byte, len(tensors))
	for i, ts := range tensors {
		n := uint64(1)
		for _, d := range ts.shape {
			n *= d
		}
		data[i] = make([]byte, n*4)
	}

	file := buildGGUF(t, func(b *fileBuilder) {
		b.kvUint32("general.alignment", 96)
	}, tensors, data, 96)

	r, err := NewReader(storage.FromMemory(file))
	require.NoError(t, err)

	assert.Equal(t, uint32(96), r.Alignment())
	assert.Zero(t, r.header.dataStart%96)

	ok, err := r.ReadNextBuffer()
	require.NoError(t, err)
	require.True(t, ok)

	infos := r.TensorsInBuffer()
	byName := make(map[string][]uint64, len(infos))
	strideByName := make(map[string][]uint64, len(infos))
	for _, info := range infos {
		byName[info.Name] = info.Shape
		strideByName[info.Name] = info.Stride
	}

	assert.Empty(t, byName["scalar"])
	assert.Equal(t, []uint64{12, 4, 2, 1}, strideByName["four"])
	assert.Equal(t, []uint64{2, 3, 2, 2}, byName["four"])
}

func TestInvalidAlignmentRejected(t *testing.T) {
	file := buildGGUF(t, func(b *fileBuilder) {
		b.kvUint32("general.alignment", 5)
	}, nil, nil, 32)

	_, err := NewReader(storage.FromMemory(file))
	assert.ErrorIs(t, err, ErrInvalidAlignment)
}

func TestEmptyGGUFYieldsNoTensors(t *testing.T) {
	file := buildGGUF(t, nil, nil, nil, defaultAlignment)

	r, err := NewReader(storage.FromMemory(file))
	require.NoError(t, err)

	ok, err := r.ReadNextBuffer()
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := r.ReadAllTensorInfos()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUnsupportedQuantizedTypeMapsToUnknownZeroSize(t *testing.T) {
	tensors := []tensorSpec{{name: "q", shape: []uint64{4}, typ: ggmlTypeQ4_0}}
	data := [][]byte{make([]byte, 0)}

	file := buildGGUF(t, nil, tensors, data, defaultAlignment)

	r, err := NewReader(storage.FromMemory(file))
	require.NoError(t, err)

	ok, err := r.ReadNextBuffer()
	require.NoError(t, err)
	require.True(t, ok)

	infos := r.TensorsInBuffer()
	require.Len(t, infos, 1)
	assert.Equal(t, uint64(0), infos[0].SizeBytes)
}

func TestBadMagicRejected(t *testing.T) {
	_, err := NewReader(storage.FromMemory([]byte("NOPE0000")))
	assert.ErrorIs(t, err, ErrBadMagic)
}
