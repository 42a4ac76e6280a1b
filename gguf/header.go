// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gguf

import (
	"bytes"
	"sort"

	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/nlpodyssey/tensorcontainers/tensor"
	"github.com/pkg/errors"
)

var magicBytes = []byte("GGUF")

const supportedVersion = 3

// defaultAlignment is overridden by a present, valid general.alignment
// metadata key (spec §4.5).
const defaultAlignment = 32

type parsedHeader struct {
	version    uint32
	metadata   []KeyValue
	ggmlTypes  map[string]ggmlType
	tensors    []tensor.Info
	dataStart  int64
	bufferSize uint64
	alignment  uint32
}

func readHeader(s storage.Storage) (parsedHeader, error) {
	magic, err := readExact(s, 4)
	if err != nil {
		return parsedHeader{}, errors.Wrap(err, "reading magic")
	}
	if !bytes.Equal(magic, magicBytes) {
		return parsedHeader{}, ErrBadMagic
	}

	version, err := readUint32(s)
	if err != nil {
		return parsedHeader{}, errors.Wrap(err, "reading version")
	}
	if version != supportedVersion {
		return parsedHeader{}, errors.Wrapf(ErrUnsupportedVersion, "%d", version)
	}

	tensorCount, err := readUint64(s)
	if err != nil {
		return parsedHeader{}, errors.Wrap(err, "reading tensor count")
	}
	metaCount, err := readUint64(s)
	if err != nil {
		return parsedHeader{}, errors.Wrap(err, "reading metadata kv count")
	}

	metadata := make([]KeyValue, metaCount)
	for i := range metadata {
		metadata[i], err = readKeyValue(s)
		if err != nil {
			return parsedHeader{}, errors.Wrapf(err, "reading metadata entry %d", i)
		}
	}

	alignment, err := resolveAlignment(metadata)
	if err != nil {
		return parsedHeader{}, err
	}

	tensors := make([]tensor.Info, tensorCount)
	ggmlTypes := make(map[string]ggmlType, tensorCount)
	for i := range tensors {
		info, gt, err := readTensorInfo(s)
		if err != nil {
			return parsedHeader{}, errors.Wrapf(err, "reading tensor info %d", i)
		}
		tensors[i] = info
		ggmlTypes[info.Name] = gt
	}

	// tensors_in_buffer is sorted by offset_start for every format once
	// parsed (spec §5).
	sort.Slice(tensors, func(i, j int) bool { return tensors[i].OffsetStart < tensors[j].OffsetStart })

	rawDataStart := s.CurrentPosition()
	dataStart := alignUp(rawDataStart, int64(alignment))

	var bufferSize uint64
	for _, info := range tensors {
		end := uint64(info.OffsetStart) + info.SizeBytes
		if end > bufferSize {
			bufferSize = end
		}
	}

	return parsedHeader{
		version:    version,
		metadata:   metadata,
		ggmlTypes:  ggmlTypes,
		tensors:    tensors,
		dataStart:  dataStart,
		bufferSize: bufferSize,
		alignment:  alignment,
	}, nil
}

func resolveAlignment(metadata []KeyValue) (uint32, error) {
	for _, kv := range metadata {
		if kv.Key != "general.alignment" {
			continue
		}
		v := kv.Value.Uint32()
		if v == 0 || v%8 != 0 {
			return 0, errors.Wrapf(ErrInvalidAlignment, "%d", v)
		}
		return v, nil
	}
	return defaultAlignment, nil
}

func readTensorInfo(s storage.Storage) (tensor.Info, ggmlType, error) {
	name, err := readString(s)
	if err != nil {
		return tensor.Info{}, 0, errors.Wrap(err, "reading name")
	}
	rank, err := readUint32(s)
	if err != nil {
		return tensor.Info{}, 0, errors.Wrap(err, "reading rank")
	}

	// GGUF writes extents innermost-first; store innermost-last to
	// match the shared row-major convention (spec §4.5).
	rawExtents := make([]uint64, rank)
	for i := range rawExtents {
		rawExtents[i], err = readUint64(s)
		if err != nil {
			return tensor.Info{}, 0, errors.Wrapf(err, "reading extent %d", i)
		}
	}
	shape := make([]uint64, rank)
	for i, v := range rawExtents {
		shape[rank-1-uint32(i)] = v
	}

	typeTag, err := readUint32(s)
	if err != nil {
		return tensor.Info{}, 0, errors.Wrap(err, "reading ggml type")
	}
	gt := ggmlType(typeTag)

	offset, err := readUint64(s)
	if err != nil {
		return tensor.Info{}, 0, errors.Wrap(err, "reading data offset")
	}

	vt := gt.toValueType()
	sizeBytes, err := tensor.RowMajorSize(vt.Size(), shape)
	if err != nil {
		return tensor.Info{}, 0, errors.Wrap(err, "computing tensor byte size")
	}

	return tensor.Info{
		Name:        name,
		OffsetStart: int64(offset),
		SizeBytes:   sizeBytes,
		Type:        vt,
		Shape:       shape,
		Stride:      tensor.RowMajorStride(shape),
	}, gt, nil
}

func alignUp(v, alignment int64) int64 {
	if alignment <= 0 {
		return v
	}
	rem := v % alignment
	if rem == 0 {
		return v
	}
	return v + (alignment - rem)
}
