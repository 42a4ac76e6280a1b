// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensor

import (
	"math/bits"

	"github.com/pkg/errors"
)

// OffsetUnknown is the sentinel OffsetStart value used when an Info is
// returned without per-buffer grouping (for example, by ReadAllTensorInfos,
// whose entries may span several buffers and therefore have no single
// buffer-relative offset).
const OffsetUnknown int64 = -1

// Info is pure tensor metadata: no payload, just enough to locate and
// interpret the tensor's bytes within a BufferView.
type Info struct {
	// Name is the tensor's textual identifier. It may be empty.
	Name string
	// OffsetStart is the byte offset of the tensor's first element
	// within the buffer that contains it, or OffsetUnknown.
	OffsetStart int64
	// SizeBytes is the total number of bytes the tensor occupies.
	SizeBytes uint64
	// Type is the element representation.
	Type ValueType
	// Shape is the ordered sequence of dimension extents, innermost
	// last. Its length is the tensor's rank.
	Shape []uint64
	// Stride gives, for each dimension, the element-count offset (not
	// byte offset) between successive elements along that dimension.
	// len(Stride) == len(Shape).
	Stride []uint64
}

// BufferView is a contiguous byte range together with the tensors whose
// data lies entirely within it. Tensors within one buffer may overlap.
type BufferView struct {
	// Size is the length in bytes of the buffer.
	Size uint64
	// Tensors is the set of tensors contained in this buffer, in the
	// order the parser produced them.
	Tensors []Info
}

// RowMajorSize computes element_size * product(shape), the canonical
// row-major byte size used by Safetensors and GGUF. It returns an error
// on multiplication overflow.
func RowMajorSize(elementSize int, shape []uint64) (uint64, error) {
	n := uint64(1)
	for _, s := range shape {
		var err error
		if n, err = checkedMulU64(n, s); err != nil {
			return 0, errors.Wrap(err, "computing row-major element count")
		}
	}
	total, err := checkedMulU64(n, uint64(elementSize))
	if err != nil {
		return 0, errors.Wrap(err, "computing row-major byte size")
	}
	return total, nil
}

// StridedSize computes element_size * (1 + sum((shape[i]-1)*stride[i])),
// the byte size implied by a strided (possibly non-contiguous, possibly
// overlapping) view, as PyTorch tensors use. It returns an error on
// overflow or on len(shape) != len(stride).
func StridedSize(elementSize int, shape, stride []uint64) (uint64, error) {
	if len(shape) != len(stride) {
		return 0, errors.Errorf("shape/stride length mismatch: %d != %d", len(shape), len(stride))
	}
	acc := uint64(0)
	for i, s := range shape {
		if s == 0 {
			continue
		}
		term, err := checkedMulU64(s-1, stride[i])
		if err != nil {
			return 0, errors.Wrap(err, "computing strided extent")
		}
		acc, err = checkedAddU64(acc, term)
		if err != nil {
			return 0, errors.Wrap(err, "accumulating strided extent")
		}
	}
	elements, err := checkedAddU64(acc, 1)
	if err != nil {
		return 0, errors.Wrap(err, "computing strided element count")
	}
	total, err := checkedMulU64(elements, uint64(elementSize))
	if err != nil {
		return 0, errors.Wrap(err, "computing strided byte size")
	}
	return total, nil
}

// RowMajorStride computes the row-major (C order, innermost dimension
// last) element-count stride for the given shape.
func RowMajorStride(shape []uint64) []uint64 {
	if len(shape) == 0 {
		return nil
	}
	stride := make([]uint64, len(shape))
	acc := uint64(1)
	for i := len(shape) - 1; i >= 0; i-- {
		stride[i] = acc
		acc *= shape[i]
	}
	return stride
}

func checkedMulU64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, errors.Errorf("multiplication overflow: %d * %d", a, b)
	}
	return lo, nil
}

func checkedAddU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, errors.Errorf("addition overflow: %d + %d", a, b)
	}
	return sum, nil
}
