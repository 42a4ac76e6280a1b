// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gguf

import "github.com/nlpodyssey/tensorcontainers/tensor"

// ValueType tags the scalar/string/array shape of a metadata value, per
// the fixed type tags GGUF writes ahead of each KV's payload. Naming and
// numeric values follow ollama's fs/ggml value-type enum
// (other_examples/ollama-ollama__gguf.go's ValueType).
type ValueType uint32

const (
	ValueTypeUint8 ValueType = iota
	ValueTypeInt8
	ValueTypeUint16
	ValueTypeInt16
	ValueTypeUint32
	ValueTypeInt32
	ValueTypeFloat32
	ValueTypeBool
	ValueTypeString
	ValueTypeArray
	ValueTypeUint64
	ValueTypeInt64
	ValueTypeFloat64
)

// fixedWidth returns the byte width of a scalar ValueType, or 0 for
// String/Array which are not fixed-width.
func (t ValueType) fixedWidth() int {
	switch t {
	case ValueTypeUint8, ValueTypeInt8, ValueTypeBool:
		return 1
	case ValueTypeUint16, ValueTypeInt16:
		return 2
	case ValueTypeUint32, ValueTypeInt32, ValueTypeFloat32:
		return 4
	case ValueTypeUint64, ValueTypeInt64, ValueTypeFloat64:
		return 8
	default:
		return 0
	}
}

// ggmlType is GGUF's element-type tag for tensor data, a superset of
// tensor.ValueType that additionally names quantized block formats this
// module does not interpret (spec §4.5, §9 Open Questions). Numeric
// values follow the stable ggml enumeration used across the ecosystem
// (ollama's fs/ggml, gguf-parser-go's GGMLType).
type ggmlType uint32

const (
	ggmlTypeF32 ggmlType = iota
	ggmlTypeF16
	ggmlTypeQ4_0
	ggmlTypeQ4_1
	ggmlTypeQ4_2Deprecated
	ggmlTypeQ4_3Deprecated
	ggmlTypeQ5_0
	ggmlTypeQ5_1
	ggmlTypeQ8_0
	ggmlTypeQ8_1
	ggmlTypeQ2K
	ggmlTypeQ3K
	ggmlTypeQ4K
	ggmlTypeQ5K
	ggmlTypeQ6K
	ggmlTypeQ8K
	ggmlTypeIQ2XXS
	ggmlTypeIQ2XS
	ggmlTypeIQ3XXS
	ggmlTypeIQ1S
	ggmlTypeIQ4NL
	ggmlTypeIQ3S
	ggmlTypeIQ2S
	ggmlTypeIQ4XS
	ggmlTypeI8
	ggmlTypeI16
	ggmlTypeI32
	ggmlTypeI64
	ggmlTypeF64
	ggmlTypeIQ1M
	ggmlTypeBF16
)

// ggmlTypeToValueType maps the handful of ggml types this module
// interprets to tensor.ValueType. Every other (quantized block) type
// maps to tensor.Unknown with Size() == 0, per the Open Question
// resolution recorded in DESIGN.md: the numeric tag is kept per tensor
// name in the parsed header (not on Info) but not otherwise acted on.
var ggmlTypeToValueType = map[ggmlType]tensor.ValueType{
	ggmlTypeF32:  tensor.F32,
	ggmlTypeF16:  tensor.F16,
	ggmlTypeI8:   tensor.I8,
	ggmlTypeI16:  tensor.I16,
	ggmlTypeI32:  tensor.I32,
	ggmlTypeI64:  tensor.I64,
	ggmlTypeF64:  tensor.F64,
	ggmlTypeBF16: tensor.BF16,
}

func (t ggmlType) toValueType() tensor.ValueType {
	if vt, ok := ggmlTypeToValueType[t]; ok {
		return vt
	}
	return tensor.Unknown
}
