// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package safetensors parses the Safetensors container format: an 8-byte
// little-endian header length, a JSON header mapping tensor names to
// dtype/shape/data_offsets, and a single contiguous data buffer.
package safetensors

import "github.com/pkg/errors"

var (
	// ErrHeaderTooSmall reports a header length field too small to
	// contain even an empty JSON object.
	ErrHeaderTooSmall = errors.New("safetensors: header too small")
	// ErrHeaderTooLarge reports a header length field exceeding the
	// configured cap.
	ErrHeaderTooLarge = errors.New("safetensors: header too large")
	// ErrInvalidHeader reports malformed header JSON or a tensor entry
	// missing a required field.
	ErrInvalidHeader = errors.New("safetensors: invalid header")
	// ErrUnknownDType reports a dtype string outside the closed set
	// this parser recognizes.
	ErrUnknownDType = errors.New("safetensors: unknown dtype")
	// ErrNonContiguous reports tensors whose data_offsets, once sorted,
	// do not tile [0, buffer_size) with zero gaps and zero overlaps.
	ErrNonContiguous = errors.New("safetensors: tensor data_offsets are not contiguous")
	// ErrSizeMismatch reports a tensor whose data_offsets span disagrees
	// with the byte size implied by its shape and dtype.
	ErrSizeMismatch = errors.New("safetensors: data_offsets size disagrees with shape/dtype")
	// ErrBufferExhausted names the no-more-buffers condition. Reader's
	// ReadNextBuffer does not return it: once the single buffer has been
	// consumed it reports (false, nil).
	ErrBufferExhausted = errors.New("safetensors: no more buffers")
)
