// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tensorcontainers reads tensor metadata and raw tensor bytes from
// Safetensors, PyTorch ".pt"/".bin" ZIP archives, and GGUF files through one
// uniform tensor.Reader interface, auto-detecting the format from the
// stream's own bytes (spec §1).
//
// A typical caller opens a storage.Storage with one of the Open* functions
// or FromMemory, passes it to ReadTensors, and then walks the returned
// tensor.Reader buffer by buffer:
//
//	s, err := tensorcontainers.OpenMmap("model.safetensors")
//	if err != nil { ... }
//	defer s.Close()
//	r, err := tensorcontainers.ReadTensors(s, false)
//	if err != nil { ... }
//	for {
//		ok, err := r.ReadNextBuffer()
//		if err != nil { ... }
//		if !ok { break }
//		for _, info := range r.TensorsInBuffer() { ... }
//	}
package tensorcontainers

import (
	"github.com/nlpodyssey/tensorcontainers/gguf"
	"github.com/nlpodyssey/tensorcontainers/pytorchfmt"
	"github.com/nlpodyssey/tensorcontainers/safetensors"
	"github.com/nlpodyssey/tensorcontainers/storage"
)

// OpenFile opens path for direct reads from the file. Backward seeking is
// available when the file supports it, which is probed on first use.
func OpenFile(path string) (*storage.FileStorage, error) {
	return storage.OpenFile(path)
}

// OpenMmap memory-maps path, giving cheap random access and backward
// seeking without copying the whole file into memory.
func OpenMmap(path string) (*storage.MmapStorage, error) {
	return storage.OpenMmap(path)
}

// OpenGzip opens path as a gzip-compressed, forward-only stream.
func OpenGzip(path string) (*storage.GzipStorage, error) {
	return storage.OpenGzip(path)
}

// FromMemory wraps an already-loaded byte slice as a Storage with full
// random access and backward seeking.
func FromMemory(b []byte) *storage.MemoryStorage {
	return storage.FromMemory(b)
}

// NewSafetensorsReader parses s as a Safetensors stream.
func NewSafetensorsReader(s storage.Storage) (*safetensors.Reader, error) {
	return safetensors.NewReader(s)
}

// NewGGUFReader parses s as a GGUF stream.
func NewGGUFReader(s storage.Storage) (*gguf.Reader, error) {
	return gguf.NewReader(s)
}

// NewPyTorchReader parses s as a PyTorch ".pt"/".bin" ZIP archive.
func NewPyTorchReader(s storage.Storage) (*pytorchfmt.Reader, error) {
	return pytorchfmt.NewReader(s)
}
