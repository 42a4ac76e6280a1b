// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensor

import "github.com/nlpodyssey/tensorcontainers/storage"

// RegionReader is the embeddable base that safetensors.Reader,
// gguf.Reader and splitter.Reader build on (pytorchfmt.Reader does not:
// it serves each buffer from an in-memory copy instead). It satisfies
// storage.Storage by delegating
// every call to a storage.Region scoped to the current buffer, so each
// concrete reader need only track the current buffer's offset and size
// within its backing storage and reset the region when ReadNextBuffer
// moves on.
type RegionReader struct {
	back   storage.Storage
	region *storage.Region
}

// NewRegionReader returns a RegionReader with no buffer selected yet;
// SetRegion must be called (typically from ReadNextBuffer) before any
// storage.Storage method is used.
func NewRegionReader(back storage.Storage) RegionReader {
	return RegionReader{back: back}
}

// SetRegion scopes subsequent storage.Storage calls to [start, start+size)
// of the backing storage, resetting the region-relative position to zero.
func (r *RegionReader) SetRegion(start, size int64) {
	r.region = storage.NewRegion(r.back, start, size)
}

func (r *RegionReader) CurrentPosition() int64 { return r.region.CurrentPosition() }

func (r *RegionReader) OriginalPosition() int64 { return r.region.OriginalPosition() }

func (r *RegionReader) Read(length int64, flags storage.ReadFlags) ([]byte, error) {
	return r.region.Read(length, flags)
}

func (r *RegionReader) CanSeekBack(allowDetect bool) bool {
	return r.region.CanSeekBack(allowDetect)
}

func (r *RegionReader) SeekTo(absolute int64) error {
	return r.region.SeekTo(absolute)
}

func (r *RegionReader) SeekFromBack(absoluteFromEnd int64) error {
	return r.region.SeekFromBack(absoluteFromEnd)
}

// Close is a no-op: a Reader borrows its backing storage and never closes
// it (spec §5).
func (r *RegionReader) Close() error { return nil }

// Backing returns the storage this region reader was constructed over.
func (r *RegionReader) Backing() storage.Storage { return r.back }
