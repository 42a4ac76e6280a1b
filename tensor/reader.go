// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensor

import "github.com/nlpodyssey/tensorcontainers/storage"

// Reader is the contract every format-specific parser (Safetensors, GGUF,
// PyTorch) and the buffer splitter implement. Beyond storage.Storage,
// itself delegating to a region-restricted view of the current buffer, a
// Reader exposes iteration over that format's buffers and their tensors.
type Reader interface {
	storage.Storage

	// ReadNextBuffer advances to the next buffer, returning false once
	// no buffer remains. It must be called before TensorsInBuffer,
	// BufferSize, or any storage.Storage method observes the new
	// buffer's contents.
	ReadNextBuffer() (bool, error)

	// TensorsInBuffer returns the tensors of the current buffer, with
	// OffsetStart relative to the start of that buffer.
	TensorsInBuffer() []Info

	// BufferSize returns the byte length of the current buffer.
	BufferSize() uint64

	// ReadAllTensorInfos returns every tensor the format exposes, across
	// all buffers, with OffsetStart set to OffsetUnknown since a single
	// list necessarily spans buffer boundaries.
	ReadAllTensorInfos() ([]Info, error)
}
