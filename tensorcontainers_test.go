// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensorcontainers

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSafetensorsFile(t *testing.T) []byte {
	t.Helper()
	header := map[string]any{
		"x": map[string]any{"dtype": "F32", "shape": []int{2}, "data_offsets": [2]int{0, 8}},
	}
	headerBytes, err := json.Marshal(header)
	require.NoError(t, err)

	var out []byte
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(headerBytes)))
	out = append(out, lenBuf[:]...)
	out = append(out, headerBytes...)
	out = append(out, make([]byte, 8)...)
	return out
}

func buildGGUFFile(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("GGUF")
	var u32 [4]byte
	var u64 [8]byte
	binary.LittleEndian.PutUint32(u32[:], 3)
	buf.Write(u32[:]) // version
	binary.LittleEndian.PutUint64(u64[:], 0)
	buf.Write(u64[:]) // tensor_count
	buf.Write(u64[:]) // metadata_kv_count
	return buf.Bytes()
}

func buildEmptyZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "archive/data.pkl", Method: zip.Store})
	require.NoError(t, err)
	_, err = w.Write([]byte{0x80, 2, '}', '.'}) // PROTO 2, EMPTY_DICT, STOP
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectsSafetensorsFromBraceAtByteEight(t *testing.T) {
	r, err := ReadTensors(FromMemory(buildSafetensorsFile(t)), false)
	require.NoError(t, err)
	ok, err := r.ReadNextBuffer()
	require.NoError(t, err)
	assert.True(t, ok)
	infos := r.TensorsInBuffer()
	require.Len(t, infos, 1)
	assert.Equal(t, "x", infos[0].Name)
}

func TestDetectsGGUFFromMagic(t *testing.T) {
	r, err := ReadTensors(FromMemory(buildGGUFFile(t)), false)
	require.NoError(t, err)
	ok, err := r.ReadNextBuffer()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, r.TensorsInBuffer())
}

func TestDetectsPyTorchFromZipSignature(t *testing.T) {
	r, err := ReadTensors(FromMemory(buildEmptyZip(t)), false)
	require.NoError(t, err)
	ok, err := r.ReadNextBuffer()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnknownSignatureRejected(t *testing.T) {
	_, err := ReadTensors(FromMemory([]byte("not a recognized container format")), false)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestShortStreamIsUnknownFormat(t *testing.T) {
	_, err := ReadTensors(FromMemory([]byte{1, 2, 3}), false)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestAutoDetectPeeksWithoutConsumingBytes(t *testing.T) {
	data := buildGGUFFile(t)
	s := FromMemory(data)
	_, err := ReadTensors(s, false)
	require.NoError(t, err)
	// Detection itself consumes nothing, so the GGUF parser reads its
	// whole 24-byte header starting from byte 0 and stops right after it.
	assert.Equal(t, int64(len(data)), s.CurrentPosition())
}

func TestSmallBuffersWrapsReaderInSplitter(t *testing.T) {
	header := map[string]any{
		"a": map[string]any{"dtype": "F32", "shape": []int{1}, "data_offsets": [2]int{0, 4}},
		"b": map[string]any{"dtype": "F32", "shape": []int{1}, "data_offsets": [2]int{4, 8}},
	}
	headerBytes, err := json.Marshal(header)
	require.NoError(t, err)
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(headerBytes)))
	var file []byte
	file = append(file, lenBuf[:]...)
	file = append(file, headerBytes...)
	file = append(file, make([]byte, 8)...)

	r, err := ReadTensors(FromMemory(file), true)
	require.NoError(t, err)

	var buffers int
	for {
		ok, err := r.ReadNextBuffer()
		require.NoError(t, err)
		if !ok {
			break
		}
		buffers++
		require.Len(t, r.TensorsInBuffer(), 1)
	}
	assert.Equal(t, 2, buffers)
}

func TestOpenFileMissingPathFails(t *testing.T) {
	_, err := OpenFile("/nonexistent/path/to/nowhere.bin")
	assert.Error(t, err)
}
