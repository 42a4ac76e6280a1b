// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safetensors

import (
	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/nlpodyssey/tensorcontainers/tensor"
)

// Reader implements tensor.Reader over a Safetensors stream: the whole
// data region is a single buffer (spec §4.4), so ReadNextBuffer succeeds
// exactly once.
type Reader struct {
	tensor.RegionReader
	header   parsedHeader
	consumed bool
}

// NewReader parses s's 8-byte length prefix and JSON header, validating
// that tensors tile the data region contiguously, and returns a Reader
// positioned before its single buffer.
func NewReader(s storage.Storage) (*Reader, error) {
	h, err := readHeader(s)
	if err != nil {
		return nil, err
	}
	return &Reader{
		RegionReader: tensor.NewRegionReader(s),
		header:       h,
	}, nil
}

// Metadata returns the free-form __metadata__ string map captured from
// the header, matching the teacher's Header.Metadata accessor.
func (r *Reader) Metadata() map[string]string { return r.header.metadata }

func (r *Reader) ReadNextBuffer() (bool, error) {
	if r.consumed || len(r.header.tensors) == 0 {
		r.consumed = true
		return false, nil
	}
	r.consumed = true
	r.SetRegion(r.header.dataStart, int64(r.header.bufferSize))
	return true, nil
}

func (r *Reader) TensorsInBuffer() []tensor.Info {
	if !r.consumed {
		return nil
	}
	return r.header.tensors
}

func (r *Reader) BufferSize() uint64 {
	if !r.consumed {
		return 0
	}
	return r.header.bufferSize
}

func (r *Reader) ReadAllTensorInfos() ([]tensor.Info, error) {
	out := make([]tensor.Info, len(r.header.tensors))
	for i, info := range r.header.tensors {
		info.OffsetStart = tensor.OffsetUnknown
		out[i] = info
	}
	return out, nil
}
