// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package splitter wraps any tensor.Reader and re-presents each of its
// buffers as several smaller ones, one per group of transitively
// overlapping tensors, so a caller that wants small, independently
// addressable regions doesn't have to reason about tensor overlap
// itself (spec §4.8).
package splitter

import (
	"sort"

	"github.com/nlpodyssey/tensorcontainers/tensor"
)

type split struct {
	offset  int64
	size    uint64
	tensors []tensor.Info
}

// Reader implements tensor.Reader by re-splitting an underlying reader's
// buffers along tensor-overlap boundaries.
type Reader struct {
	tensor.RegionReader
	underlying tensor.Reader

	queue   []split
	current split
}

// NewReader returns a Reader splitting underlying's buffers.
func NewReader(underlying tensor.Reader) *Reader {
	return &Reader{
		RegionReader: tensor.NewRegionReader(underlying),
		underlying:   underlying,
	}
}

func (r *Reader) ReadNextBuffer() (bool, error) {
	if len(r.queue) == 0 {
		ok, err := r.underlying.ReadNextBuffer()
		if err != nil {
			return false, err
		}
		if !ok {
			r.current = split{}
			return false, nil
		}
		r.queue = computeSplits(r.underlying.TensorsInBuffer(), r.underlying.BufferSize())
	}

	r.current = r.queue[0]
	r.queue = r.queue[1:]
	r.SetRegion(r.current.offset, int64(r.current.size))
	return true, nil
}

func (r *Reader) TensorsInBuffer() []tensor.Info { return r.current.tensors }

func (r *Reader) BufferSize() uint64 { return r.current.size }

func (r *Reader) ReadAllTensorInfos() ([]tensor.Info, error) {
	var out []tensor.Info
	for _, s := range r.queue {
		for _, info := range s.tensors {
			info.OffsetStart = tensor.OffsetUnknown
			out = append(out, info)
		}
	}
	rest, err := r.underlying.ReadAllTensorInfos()
	if err != nil {
		return nil, err
	}
	return append(out, rest...), nil
}

// computeSplits sorts tensors by OffsetStart and groups them into runs of
// transitively overlapping tensors: a tensor joins the current run iff
// its OffsetStart is strictly less than the maximum OffsetStart+SizeBytes
// seen so far in that run (spec §4.8).
func computeSplits(tensors []tensor.Info, bufferSize uint64) []split {
	if len(tensors) == 0 {
		return []split{{offset: 0, size: bufferSize}}
	}

	sorted := make([]tensor.Info, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OffsetStart < sorted[j].OffsetStart })

	var splits []split
	runStart := sorted[0].OffsetStart
	runMax := sorted[0].OffsetStart + int64(sorted[0].SizeBytes)
	run := []tensor.Info{sorted[0]}

	flush := func() {
		size := uint64(runMax - runStart)
		rebased := make([]tensor.Info, len(run))
		for i, info := range run {
			info.OffsetStart -= runStart
			rebased[i] = info
		}
		splits = append(splits, split{offset: runStart, size: size, tensors: rebased})
	}

	for _, info := range sorted[1:] {
		if info.OffsetStart < runMax {
			run = append(run, info)
			if end := info.OffsetStart + int64(info.SizeBytes); end > runMax {
				runMax = end
			}
			continue
		}
		flush()
		runStart = info.OffsetStart
		runMax = info.OffsetStart + int64(info.SizeBytes)
		run = []tensor.Info{info}
	}
	flush()

	return splits
}
