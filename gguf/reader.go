// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gguf

import (
	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/nlpodyssey/tensorcontainers/tensor"
)

// Reader implements tensor.Reader over a GGUF stream: like Safetensors,
// every tensor lives in a single data region starting at an
// alignment-rounded offset (spec §4.5), so ReadNextBuffer succeeds
// exactly once.
type Reader struct {
	tensor.RegionReader
	header   parsedHeader
	consumed bool
}

// NewReader parses s's magic/version/count header, its metadata
// key-values, and its tensor-info records, returning a Reader positioned
// before its single data buffer.
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

// Metadata returns every key-value pair from the file's metadata block,
// in file order.
func (r *Reader) Metadata() []KeyValue { return r.header.metadata }

// MetadataValue looks up a single metadata key, reporting whether it was
// present.
func (r *Reader) MetadataValue(key string) (Value, bool) {
	for _, kv := range r.header.metadata {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return Value{}, false
}

// Architecture returns the general.architecture metadata string, or ""
// if absent.
func (r *Reader) Architecture() string { return r.stringMetadata("general.architecture") }

// Name returns the general.name metadata string, or "" if absent.
func (r *Reader) Name() string { return r.stringMetadata("general.name") }

// FileType returns the general.file_type metadata value as a uint32, or 0
// if absent.
func (r *Reader) FileType() uint32 {
	v, ok := r.MetadataValue("general.file_type")
	if !ok {
		return 0
	}
	return v.Uint32()
}

// Alignment returns the alignment byte boundary in effect for this file:
// the general.alignment override when present and valid, otherwise the
// format default of 32 (spec §4.5).
func (r *Reader) Alignment() uint32 { return r.header.alignment }

func (r *Reader) stringMetadata(key string) string {
	v, ok := r.MetadataValue(key)
	if !ok {
		return ""
	}
	return v.String()
}

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
