// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pytorchfmt

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/nlpodyssey/tensorcontainers/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pickleBuilder assembles raw pickle protocol-2 opcode bytes by hand, the
// same way pickle/pickle_test.go builds interpreter fixtures, since this
// module has no pickle encoder (only the decoder pytorchfmt walks).
type pickleBuilder struct {
	buf []byte
}

func (b *pickleBuilder) op(c byte) { b.buf = append(b.buf, c) }

func (b *pickleBuilder) proto(v byte) { b.buf = append(b.buf, 0x80, v) }

func (b *pickleBuilder) shortUnicode(s string) {
	b.buf = append(b.buf, 0x8c, byte(len(s)))
	b.buf = append(b.buf, s...)
}

func (b *pickleBuilder) binInt1(v byte) { b.buf = append(b.buf, 'K', v) }

func (b *pickleBuilder) global(module, name string) {
	b.buf = append(b.buf, 'c')
	b.buf = append(b.buf, module...)
	b.buf = append(b.buf, '\n')
	b.buf = append(b.buf, name...)
	b.buf = append(b.buf, '\n')
}

func (b *pickleBuilder) mark()   { b.op('(') }
func (b *pickleBuilder) tuple()  { b.op('t') }
func (b *pickleBuilder) stop()   { b.op('.') }

// buildTensorPickle produces a data.pkl payload whose root is a dict with
// one key, "weight", mapping to a torch._utils._rebuild_tensor_v2
// reduction over a 2x3 float32 storage named "0".
func buildTensorPickle(t *testing.T) []byte {
	t.Helper()
	var b pickleBuilder
	b.proto(2)
	b.op('}') // EMPTY_DICT
	b.mark()
	b.shortUnicode("weight")

	b.global("torch._utils", "_rebuild_tensor_v2")
	b.mark() // args tuple mark

	// storage persistent id: ("storage", torch.FloatStorage, "0", "cpu", 6)
	b.mark()
	b.shortUnicode("storage")
	b.global("torch", "FloatStorage")
	b.shortUnicode("0")
	b.shortUnicode("cpu")
	b.binInt1(6)
	b.tuple()
	b.op('Q') // BINPERSID

	b.binInt1(0) // storage_offset

	b.mark()
	b.binInt1(2)
	b.binInt1(3)
	b.tuple() // size (2, 3)

	b.mark()
	b.binInt1(3)
	b.binInt1(1)
	b.tuple() // stride (3, 1)

	b.op(0x89) // NEWFALSE: requires_grad
	b.op('}')  // EMPTY_DICT: backward_hooks
	b.op('N')  // NONE: metadata

	b.tuple() // args tuple
	b.op('R') // REDUCE

	b.op('u') // SETITEMS
	b.stop()
	return b.buf
}

func le32f(v float32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	return buf[:]
}

func buildTestArchive(t *testing.T, prefix string, pkl []byte, storages map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.CreateHeader(&zip.FileHeader{Name: prefix + "/data.pkl", Method: zip.Store})
	require.NoError(t, err)
	_, err = w.Write(pkl)
	require.NoError(t, err)

	for key, data := range storages {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: prefix + "/data/" + key, Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadOneFloatTensorFromStorage(t *testing.T) {
	pkl := buildTensorPickle(t)

	var data []byte
	vals := []float32{1, 2, 3, 4, 5, 6}
	for _, v := range vals {
		data = append(data, le32f(v)...)
	}

	file := buildTestArchive(t, "archive", pkl, map[string][]byte{"0": data})

	r, err := NewReader(storage.FromMemory(file))
	require.NoError(t, err)
	assert.Equal(t, "archive", r.Prefix())

	ok, err := r.ReadNextBuffer()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(24), r.BufferSize())

	infos := r.TensorsInBuffer()
	require.Len(t, infos, 1)
	info := infos[0]
	assert.Equal(t, "weight", info.Name)
	assert.Equal(t, tensor.F32, info.Type)
	assert.Equal(t, []uint64{2, 3}, info.Shape)
	assert.Equal(t, []uint64{3, 1}, info.Stride)
	assert.Equal(t, int64(0), info.OffsetStart)
	assert.Equal(t, uint64(24), info.SizeBytes)

	content, err := r.Read(24, 0)
	require.NoError(t, err)
	assert.Equal(t, data, content)

	ok, err = r.ReadNextBuffer()
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := r.ReadAllTensorInfos()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, tensor.OffsetUnknown, all[0].OffsetStart)
}

func TestMissingStorageMemberIsFatal(t *testing.T) {
	pkl := buildTensorPickle(t)
	file := buildTestArchive(t, "archive", pkl, nil)

	r, err := NewReader(storage.FromMemory(file))
	require.NoError(t, err)

	_, err = r.ReadNextBuffer()
	assert.ErrorIs(t, err, ErrMissingStorageMember)
}

func TestFirstMemberNotDataPklRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "archive/other.bin", Method: zip.Store})
	require.NoError(t, err)
	_, _ = w.Write([]byte("x"))
	require.NoError(t, zw.Close())

	_, err = NewReader(storage.FromMemory(buf.Bytes()))
	assert.ErrorIs(t, err, ErrMissingDataPickle)
}
