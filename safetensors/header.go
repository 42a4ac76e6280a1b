// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safetensors

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/nlpodyssey/tensorcontainers/tensor"
	"github.com/pkg/errors"
)

// maxHeaderSize bounds JSON header memory, as spec §4.4 requires.
const maxHeaderSize = 100_000_000

const metadataKey = "__metadata__"

// parsedHeader is the result of reading and validating a Safetensors
// header: the sorted, contiguous tensor list plus free-form metadata.
type parsedHeader struct {
	dataStart  int64
	bufferSize uint64
	tensors    []tensor.Info
	metadata   map[string]string
}

// readHeader reads the 8-byte length prefix and JSON header from s
// (positioned at offset 0), validates contiguity, and returns the
// parsed, sorted tensor list. It does not touch the data region itself.
func readHeader(s storage.Storage) (parsedHeader, error) {
	lenBytes, err := s.Read(8, 0)
	if err != nil {
		return parsedHeader{}, errors.Wrap(err, "reading header length")
	}
	n := binary.LittleEndian.Uint64(lenBytes)
	if n < 2 {
		return parsedHeader{}, errors.Wrapf(ErrHeaderTooSmall, "%d", n)
	}
	if n > maxHeaderSize {
		return parsedHeader{}, errors.Wrapf(ErrHeaderTooLarge, "%d", n)
	}

	headerBytes, err := s.Read(int64(n), 0)
	if err != nil {
		return parsedHeader{}, errors.Wrap(err, "reading header JSON")
	}

	raw := make(map[string]json.RawMessage)
	dec := json.NewDecoder(bytes.NewReader(headerBytes))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return parsedHeader{}, errors.Wrap(ErrInvalidHeader, err.Error())
	}

	metadata, err := extractMetadata(raw)
	if err != nil {
		return parsedHeader{}, err
	}
	delete(raw, metadataKey)

	tensors, bufferSize, err := extractTensors(raw)
	if err != nil {
		return parsedHeader{}, err
	}

	return parsedHeader{
		dataStart:  8 + int64(n),
		bufferSize: bufferSize,
		tensors:    tensors,
		metadata:   metadata,
	}, nil
}

func extractMetadata(raw map[string]json.RawMessage) (map[string]string, error) {
	rawMeta, ok := raw[metadataKey]
	if !ok {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal(rawMeta, &m); err != nil {
		return nil, errors.Wrapf(ErrInvalidHeader, "__metadata__: %s", err)
	}
	return m, nil
}

type rawTensorEntry struct {
	DType       string          `json:"dtype"`
	Shape       []json.Number   `json:"shape"`
	DataOffsets [2]json.Number  `json:"data_offsets"`
}

// extractTensors decodes every non-metadata key into a tensor.Info,
// sorts by offset_start ascending, and validates the zero-gap
// zero-overlap contiguity invariant of spec §4.4 (adapted from the
// teacher's header/validate.go, generalized past its safetensors-only
// dtype.DType to tensor.ValueType and extended with F8_E5M2/F8_E4M3).
func extractTensors(raw map[string]json.RawMessage) ([]tensor.Info, uint64, error) {
	if len(raw) == 0 {
		return nil, 0, nil
	}
	infos := make([]tensor.Info, 0, len(raw))
	for name, rawVal := range raw {
		var entry rawTensorEntry
		if err := json.Unmarshal(rawVal, &entry); err != nil {
			return nil, 0, errors.Wrapf(ErrInvalidHeader, "tensor %q: %s", name, err)
		}
		info, err := convertTensorEntry(name, entry)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "tensor %q", name)
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].OffsetStart < infos[j].OffsetStart })

	var expectedBegin int64
	for i := range infos {
		if infos[i].OffsetStart != expectedBegin {
			return nil, 0, errors.Wrapf(ErrNonContiguous,
				"expected begin %d, actual %d", expectedBegin, infos[i].OffsetStart)
		}
		end := infos[i].OffsetStart + int64(infos[i].SizeBytes)
		expectedBegin = end
	}
	return infos, uint64(expectedBegin), nil
}

func convertTensorEntry(name string, entry rawTensorEntry) (tensor.Info, error) {
	vt, ok := parseDType(entry.DType)
	if !ok {
		return tensor.Info{}, errors.Wrapf(ErrUnknownDType, "%q", entry.DType)
	}

	shape := make([]uint64, len(entry.Shape))
	for i, n := range entry.Shape {
		v, err := parseNonNegInt(n)
		if err != nil {
			return tensor.Info{}, errors.Wrapf(ErrInvalidHeader, "shape[%d]: %s", i, err)
		}
		shape[i] = v
	}

	begin, err := parseNonNegInt(entry.DataOffsets[0])
	if err != nil {
		return tensor.Info{}, errors.Wrapf(ErrInvalidHeader, "data_offsets[0]: %s", err)
	}
	end, err := parseNonNegInt(entry.DataOffsets[1])
	if err != nil {
		return tensor.Info{}, errors.Wrapf(ErrInvalidHeader, "data_offsets[1]: %s", err)
	}
	if end < begin {
		return tensor.Info{}, errors.Wrapf(ErrInvalidHeader, "data_offsets end %d < begin %d", end, begin)
	}

	shapeSize, err := tensor.RowMajorSize(vt.Size(), shape)
	if err != nil {
		return tensor.Info{}, errors.Wrap(err, "computing size from shape")
	}
	offsetsSize := end - begin
	if shapeSize != uint64(offsetsSize) {
		return tensor.Info{}, errors.Wrapf(ErrSizeMismatch,
			"shape implies %d bytes, data_offsets span %d", shapeSize, offsetsSize)
	}

	return tensor.Info{
		Name:        name,
		OffsetStart: int64(begin),
		SizeBytes:   uint64(offsetsSize),
		Type:        vt,
		Shape:       shape,
		Stride:      tensor.RowMajorStride(shape),
	}, nil
}

func parseNonNegInt(n json.Number) (uint64, error) {
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.Errorf("negative value %d", v)
	}
	return uint64(v), nil
}
