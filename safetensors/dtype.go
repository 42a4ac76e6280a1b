// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safetensors

import "github.com/nlpodyssey/tensorcontainers/tensor"

// dtypeToValueType mirrors the teacher's dtype.DType string table
// (dtype/dtype.go), extended with F8_E5M2/F8_E4M3 per spec §4.4, which
// the teacher's safetensors-only DType enum predates.
var dtypeToValueType = map[string]tensor.ValueType{
	"BOOL":    tensor.Bool,
	"U8":      tensor.U8,
	"I8":      tensor.I8,
	"U16":     tensor.U16,
	"I16":     tensor.I16,
	"F16":     tensor.F16,
	"BF16":    tensor.BF16,
	"U32":     tensor.U32,
	"I32":     tensor.I32,
	"F32":     tensor.F32,
	"U64":     tensor.U64,
	"I64":     tensor.I64,
	"F64":     tensor.F64,
	"F8_E5M2": tensor.F8E5M2,
	"F8_E4M3": tensor.F8E4M3,
}

func parseDType(s string) (tensor.ValueType, bool) {
	vt, ok := dtypeToValueType[s]
	return vt, ok
}
