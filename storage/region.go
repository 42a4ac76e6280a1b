// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

// Region is a Storage restricted to a [start, start+size) byte window of
// a backing Storage, with its own zero-based logical position. Reads and
// seeks are clamped to the window and translated into absolute
// coordinates before being delegated to the backing Storage.
type Region struct {
	back  Storage
	start int64
	size  int64
	pos   int64
}

// NewRegion returns a Region over [start, start+size) of back. back must
// support seeking to start (forward seeks always do); reading the region
// out of order additionally requires back.CanSeekBack.
func NewRegion(back Storage, start, size int64) *Region {
	return &Region{back: back, start: start, size: size}
}

func (r *Region) CurrentPosition() int64  { return r.pos }
func (r *Region) OriginalPosition() int64 { return r.back.OriginalPosition() }

func (r *Region) Read(length int64, flags ReadFlags) ([]byte, error) {
	remaining := r.size - r.pos
	n, err := clampRead(remaining, length, flags)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if err := r.back.SeekTo(r.start + r.pos); err != nil {
		return nil, wrapErrf(err, "seeking to region offset %d", r.pos)
	}
	out, err := r.back.Read(n, flags&^FlagAllowPartial)
	if err != nil {
		return nil, wrapErrf(err, "reading %d bytes at region offset %d", n, r.pos)
	}
	if !flags.Has(FlagPeek) {
		r.pos += int64(len(out))
	}
	return out, nil
}

func (r *Region) CanSeekBack(allowDetect bool) bool {
	return r.back.CanSeekBack(allowDetect)
}

func (r *Region) SeekTo(absolute int64) error {
	if absolute < 0 || absolute > r.size {
		return wrapErrf(ErrEndOfStream, "seek to %d outside region of size %d", absolute, r.size)
	}
	if absolute < r.pos && !r.CanSeekBack(true) {
		return wrapErrf(ErrSeekBackward, "seek to %d from %d not supported", absolute, r.pos)
	}
	r.pos = absolute
	return nil
}

func (r *Region) SeekFromBack(absoluteFromEnd int64) error {
	return r.SeekTo(r.size - absoluteFromEnd)
}

func (r *Region) Close() error { return nil }

// Size returns the region's byte length.
func (r *Region) Size() int64 { return r.size }

// Start returns the region's starting offset within its backing Storage.
func (r *Region) Start() int64 { return r.start }
