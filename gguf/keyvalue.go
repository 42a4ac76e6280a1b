// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gguf

import (
	"encoding/binary"

	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/pkg/errors"
)

// Value is a single GGUF metadata value: either a fixed-width scalar, a
// length-prefixed string, or an array of Values of one element type
// (spec §4.5's "array is element-type + length + elements recursively").
type Value struct {
	Type ValueType
	// Scalar holds the raw little-endian payload for any fixed-width
	// type, or the UTF-8 bytes for ValueTypeString.
	Scalar []byte
	// ElemType is the element type when Type == ValueTypeArray.
	ElemType ValueType
	// Elements holds the decoded elements when Type == ValueTypeArray.
	Elements []Value
}

// Uint32 interprets the value as a little-endian uint32, for scalar
// integer/float/bool types narrower than or equal to 4 bytes.
func (v Value) Uint32() uint32 {
	var buf [4]byte
	copy(buf[:], v.Scalar)
	return binary.LittleEndian.Uint32(buf[:])
}

// String returns the value's bytes interpreted as UTF-8 text, valid for
// ValueTypeString.
func (v Value) String() string { return string(v.Scalar) }

// KeyValue is one metadata entry: a string key and its typed Value.
type KeyValue struct {
	Key   string
	Value Value
}

func readKeyValue(s storage.Storage) (KeyValue, error) {
	key, err := readString(s)
	if err != nil {
		return KeyValue{}, errors.Wrap(err, "reading metadata key")
	}
	tag, err := readUint32(s)
	if err != nil {
		return KeyValue{}, errors.Wrap(err, "reading metadata type tag")
	}
	val, err := readValue(s, ValueType(tag))
	if err != nil {
		return KeyValue{}, errors.Wrapf(err, "reading metadata value for key %q", key)
	}
	return KeyValue{Key: key, Value: val}, nil
}

func readValue(s storage.Storage, t ValueType) (Value, error) {
	switch t {
	case ValueTypeString:
		str, err := readString(s)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Scalar: []byte(str)}, nil
	case ValueTypeArray:
		elemTag, err := readUint32(s)
		if err != nil {
			return Value{}, errors.Wrap(err, "reading array element type")
		}
		elemType := ValueType(elemTag)
		length, err := readUint64(s)
		if err != nil {
			return Value{}, errors.Wrap(err, "reading array length")
		}
		elements := make([]Value, length)
		for i := range elements {
			elements[i], err = readValue(s, elemType)
			if err != nil {
				return Value{}, errors.Wrapf(err, "reading array element %d", i)
			}
		}
		return Value{Type: t, ElemType: elemType, Elements: elements}, nil
	default:
		width := t.fixedWidth()
		if width == 0 {
			return Value{}, errors.Wrapf(ErrUnknownValueType, "%d", t)
		}
		b, err := readExact(s, int64(width))
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Scalar: b}, nil
	}
}
