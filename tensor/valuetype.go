// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tensor defines the contract shared by every format-specific
// tensor reader: the element-type tag, tensor metadata, buffer iteration,
// and the region-scoped read view each concrete reader embeds.
package tensor

import "fmt"

// ValueType identifies the in-memory representation of a tensor's
// elements. Unlike a format-specific dtype enum, ValueType reserves zero
// for Unknown so that unsupported or quantized element kinds (GGUF's
// quantized ggml types, an unrecognized PyTorch storage global) have a
// representable, non-error value: see ValueType.Size.
type ValueType uint8

const (
	// Unknown marks an element representation this library does not
	// interpret. Size returns 0 for Unknown.
	Unknown ValueType = iota
	F32
	F64
	F16
	BF16
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F8E5M2
	F8E4M3
	Bool
	ComplexF32
	ComplexF64
	ComplexF16
)

var valueTypeSizes = [...]int{
	Unknown:    0,
	F32:        4,
	F64:        8,
	F16:        2,
	BF16:       2,
	U8:         1,
	U16:        2,
	U32:        4,
	U64:        8,
	I8:         1,
	I16:        2,
	I32:        4,
	I64:        8,
	F8E5M2:     1,
	F8E4M3:     1,
	Bool:       1,
	ComplexF32: 8,
	ComplexF64: 16,
	ComplexF16: 4,
}

var valueTypeNames = [...]string{
	Unknown:    "unknown",
	F32:        "f32",
	F64:        "f64",
	F16:        "f16",
	BF16:       "bf16",
	U8:         "u8",
	U16:        "u16",
	U32:        "u32",
	U64:        "u64",
	I8:         "i8",
	I16:        "i16",
	I32:        "i32",
	I64:        "i64",
	F8E5M2:     "f8_e5m2",
	F8E4M3:     "f8_e4m3",
	Bool:       "bool",
	ComplexF32: "complex_f32",
	ComplexF64: "complex_f64",
	ComplexF16: "complex_f16",
}

// Size returns the size in bytes of one element of this type. Unknown
// (and any value outside the closed set of known variants) returns 0.
func (v ValueType) Size() int {
	if int(v) >= len(valueTypeSizes) {
		return 0
	}
	return valueTypeSizes[v]
}

// String returns a lower-case name for the ValueType, or a placeholder
// for an out-of-range value.
func (v ValueType) String() string {
	if int(v) >= len(valueTypeNames) {
		return fmt.Sprintf("valuetype(%d)", uint8(v))
	}
	return valueTypeNames[v]
}

// IsKnown reports whether v is one of the closed set of named variants
// (including Unknown itself, which is a valid, if uninterpreted, tag).
func (v ValueType) IsKnown() bool {
	return int(v) < len(valueTypeNames)
}
