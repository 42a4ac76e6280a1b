// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

import (
	"math/big"
	"testing"

	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, b []byte, opts ...Option) *Item {
	t.Helper()
	it, err := NewInterpreter(storage.FromMemory(b), opts...).Load()
	require.NoError(t, err)
	return it
}

func TestLoadMaxInt64ViaLong1(t *testing.T) {
	// Protocol 2, LONG1 of 8 bytes 0xffffffffffffff7f (little-endian
	// two's-complement for 9223372036854775807), then STOP.
	data := []byte{0x80, 0x02, 0x8a, 0x08, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f, '.'}
	it := load(t, data)
	v, ok := it.AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(9223372036854775807), v)
}

func TestDecodeLongPositiveAndNegative(t *testing.T) {
	assert.Equal(t, big.NewInt(0), decodeLong(nil))
	assert.Equal(t, big.NewInt(255), decodeLong([]byte{0xff, 0x00}))
	assert.Equal(t, big.NewInt(-1), decodeLong([]byte{0xff}))
	assert.Equal(t, big.NewInt(-256), decodeLong([]byte{0x00, 0xff}))
}

func TestEmptyDictAndSetItem(t *testing.T) {
	// PROTO 2, EMPTYDICT, MARK, SHORTBINUNICODE "k" and "v" as key/value
	// via SETITEMS, STOP.
	var data []byte
	data = append(data, 0x80, 0x02)
	data = append(data, opEmptyDict)
	data = append(data, opMark)
	data = append(data, opShortBinUnicode, 1, 'k')
	data = append(data, opShortBinUnicode, 1, 'v')
	data = append(data, opSetItems)
	data = append(data, opStop)
	it := load(t, data)
	require.Equal(t, ItemDict, it.Type)
	require.Len(t, it.DictChildren, 1)
	k, _ := it.DictChildren[0].Key.AsString()
	v, _ := it.DictChildren[0].Value.AsString()
	assert.Equal(t, "k", k)
	assert.Equal(t, "v", v)
}

func TestListAppend(t *testing.T) {
	var data []byte
	data = append(data, 0x80, 0x02)
	data = append(data, opEmptyList)
	data = append(data, opBinInt1, 7)
	data = append(data, opAppend)
	data = append(data, opStop)
	it := load(t, data)
	require.Equal(t, ItemList, it.Type)
	require.Len(t, it.ListChildren, 1)
	v, ok := it.ListChildren[0].AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(7), v)
}

func TestTuple3(t *testing.T) {
	var data []byte
	data = append(data, 0x80, 0x02)
	data = append(data, opBinInt1, 1)
	data = append(data, opBinInt1, 2)
	data = append(data, opBinInt1, 3)
	data = append(data, opTuple3)
	data = append(data, opStop)
	it := load(t, data)
	require.Equal(t, ItemTuple, it.Type)
	require.Len(t, it.ListChildren, 3)
}

func TestMemoPutGet(t *testing.T) {
	var data []byte
	data = append(data, 0x80, 0x02)
	data = append(data, opBinInt1, 42)
	data = append(data, opBinPut, 0)
	data = append(data, opPop)
	data = append(data, opBinGet, 0)
	data = append(data, opStop)
	it := load(t, data)
	v, ok := it.AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(42), v)
}

func TestMemoizeAutoIncrement(t *testing.T) {
	var data []byte
	data = append(data, 0x80, 0x04)
	data = append(data, opBinInt1, 1)
	data = append(data, opMemoize)
	data = append(data, opBinInt1, 2)
	data = append(data, opMemoize)
	data = append(data, opPop)
	data = append(data, opPop)
	data = append(data, opBinGet, 0)
	data = append(data, opStop)
	it := load(t, data)
	v, ok := it.AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
}

func TestGlobalRenamedUnderProtocolBelow3(t *testing.T) {
	var data []byte
	data = append(data, 0x80, 0x02)
	data = append(data, opGlobal)
	data = append(data, []byte("__builtin__\n")...)
	data = append(data, []byte("long\n")...)
	data = append(data, opStop)
	it := load(t, data)
	require.Equal(t, ItemGlobal, it.Type)
	assert.Equal(t, "builtins", it.GlobalModule)
	assert.Equal(t, "int", it.GlobalName)
}

func TestGlobalNotRenamedUnderProtocol3(t *testing.T) {
	var data []byte
	data = append(data, 0x80, 0x03)
	data = append(data, opGlobal)
	data = append(data, []byte("__builtin__\n")...)
	data = append(data, []byte("long\n")...)
	data = append(data, opStop)
	it := load(t, data)
	assert.Equal(t, "__builtin__", it.GlobalModule)
	assert.Equal(t, "long", it.GlobalName)
}

func TestReduceCopyregReconstructorCanonicalizesToObj(t *testing.T) {
	var data []byte
	data = append(data, 0x80, 0x02)
	data = append(data, opGlobal)
	data = append(data, []byte("copy_reg\n")...)
	data = append(data, []byte("_reconstructor\n")...)
	data = append(data, opGlobal)
	data = append(data, []byte("__main__\n")...)
	data = append(data, []byte("MyClass\n")...)
	data = append(data, opGlobal)
	data = append(data, []byte("__builtin__\n")...)
	data = append(data, []byte("object\n")...)
	data = append(data, opNone)
	data = append(data, opTuple3)
	data = append(data, opReduce)
	data = append(data, opStop)
	it := load(t, data)
	require.Equal(t, ItemObj, it.Type)
	assert.Equal(t, "__main__", it.ObjClass.GlobalModule)
	assert.Equal(t, "MyClass", it.ObjClass.GlobalName)
	assert.Equal(t, 0, it.ObjArgs.Len())
}

func TestReduceNonCanonicalShapeStaysReduce(t *testing.T) {
	var data []byte
	data = append(data, 0x80, 0x02)
	data = append(data, opGlobal)
	data = append(data, []byte("builtins\n")...)
	data = append(data, []byte("dict\n")...)
	data = append(data, opEmptyTuple)
	data = append(data, opReduce)
	data = append(data, opStop)
	it := load(t, data)
	require.Equal(t, ItemReduce, it.Type)
	assert.Equal(t, "dict", it.ReduceCallable.GlobalName)
}

func TestNewObjExWithKwargs(t *testing.T) {
	var data []byte
	data = append(data, 0x80, 0x04)
	data = append(data, opGlobal)
	data = append(data, []byte("__main__\n")...)
	data = append(data, []byte("Thing\n")...)
	data = append(data, opEmptyTuple)
	data = append(data, opEmptyDict)
	data = append(data, opNewObjEx)
	data = append(data, opStop)
	it := load(t, data)
	require.Equal(t, ItemObj, it.Type)
	require.NotNil(t, it.ObjKwargs)
	assert.Equal(t, ItemDict, it.ObjKwargs.Type)
}

func TestReadonlyBufferNoTypeAssertion(t *testing.T) {
	buf := []byte{1, 2, 3}
	var data []byte
	data = append(data, 0x80, 0x05)
	data = append(data, opNextBuffer)
	data = append(data, opReadonlyBuffer)
	data = append(data, opStop)
	it := load(t, data, WithBuffers([][]byte{buf}))
	require.Equal(t, ItemBuffer, it.Type)
	assert.Equal(t, buf, it.Buffer)
}

func TestSetItemOnObjBuildState(t *testing.T) {
	// SETITEM only needs a DictChildren slot, not a real dict origin:
	// SETITEM applied directly to an ItemObj is legal here.
	var data []byte
	data = append(data, 0x80, 0x02)
	data = append(data, opGlobal)
	data = append(data, []byte("__main__\n")...)
	data = append(data, []byte("Thing\n")...)
	data = append(data, opEmptyTuple)
	data = append(data, opNewObj)
	data = append(data, opShortBinUnicode, 1, 'x')
	data = append(data, opBinInt1, 9)
	data = append(data, opSetItem)
	data = append(data, opStop)
	it := load(t, data)
	require.Equal(t, ItemObj, it.Type)
	require.Len(t, it.DictChildren, 1)
	k, _ := it.DictChildren[0].Key.AsString()
	assert.Equal(t, "x", k)
}

func TestUnterminatedStreamErrors(t *testing.T) {
	data := []byte{0x80, 0x02, opBinInt1, 1}
	_, err := NewInterpreter(storage.FromMemory(data)).Load()
	assert.Error(t, err)
}

func TestStackUnderflowErrors(t *testing.T) {
	data := []byte{0x80, 0x02, opPop, opStop}
	_, err := NewInterpreter(storage.FromMemory(data)).Load()
	assert.Error(t, err)
}

func TestBinFloatBigEndian(t *testing.T) {
	var data []byte
	data = append(data, 0x80, 0x02)
	data = append(data, opBinFloat, 0x40, 0x09, 0x21, 0xfb, 0x54, 0x44, 0x2d, 0x18)
	data = append(data, opStop)
	it := load(t, data)
	require.Equal(t, ItemFloat, it.Type)
	assert.InDelta(t, 3.141592653589793, it.Float, 1e-12)
}

func TestLegacyBooleanViaIntOpcode(t *testing.T) {
	data := []byte{opInt}
	data = append(data, []byte("01\n")...)
	data = append(data, opStop)
	it := load(t, data)
	require.Equal(t, ItemBool, it.Type)
	assert.True(t, it.Bool)
}
