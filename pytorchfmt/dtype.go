// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pytorchfmt

import "github.com/nlpodyssey/tensorcontainers/tensor"

// storageGlobalValueType maps a torch.*Storage global (the element_global
// of a storage persistent id) to the element representation it carries,
// used for _rebuild_tensor_v2's value_type derivation (spec §4.6).
var storageGlobalValueType = map[string]tensor.ValueType{
	"FloatStorage":    tensor.F32,
	"DoubleStorage":   tensor.F64,
	"HalfStorage":     tensor.F16,
	"BFloat16Storage": tensor.BF16,
	"ByteStorage":     tensor.U8,
	"CharStorage":     tensor.I8,
	"ShortStorage":    tensor.I16,
	"IntStorage":      tensor.I32,
	"LongStorage":     tensor.I64,
	"BoolStorage":     tensor.Bool,
	"ComplexFloatStorage":  tensor.ComplexF32,
	"ComplexDoubleStorage": tensor.ComplexF64,
}

// dtypeGlobalValueType maps a torch.<dtype> global (the 7th argument of
// _rebuild_tensor_v3) to the element representation it overrides
// value_type with.
var dtypeGlobalValueType = map[string]tensor.ValueType{
	"float32":       tensor.F32,
	"float":         tensor.F32,
	"float64":       tensor.F64,
	"double":        tensor.F64,
	"float16":       tensor.F16,
	"half":          tensor.F16,
	"bfloat16":      tensor.BF16,
	"uint8":         tensor.U8,
	"int8":          tensor.I8,
	"int16":         tensor.I16,
	"short":         tensor.I16,
	"int32":         tensor.I32,
	"int":           tensor.I32,
	"int64":         tensor.I64,
	"long":          tensor.I64,
	"bool":          tensor.Bool,
	"float8_e5m2":   tensor.F8E5M2,
	"float8_e4m3fn": tensor.F8E4M3,
	"complex64":     tensor.ComplexF32,
	"complex128":    tensor.ComplexF64,
}
