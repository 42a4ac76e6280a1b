// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storage defines the uniform byte-source abstraction every format
// parser in this module reads through: a single Storage interface capable
// of sequential, peeking, partial, and (where supported) backward-seeking
// reads, implemented by a file, a memory-mapped region, an in-memory
// buffer, and a gzip stream.
package storage

// ReadFlags is a bitmask of read modifiers passed to Storage.Read.
type ReadFlags uint8

const (
	// FlagTemporary permits Read to return a slice borrowed from the
	// storage's internal buffer, valid only until the next non-peek
	// read. Without it, the returned bytes remain valid for the
	// lifetime of the storage.
	FlagTemporary ReadFlags = 1 << iota
	// FlagPeek reads without advancing CurrentPosition; a subsequent
	// read (peek or not) observes the same bytes again.
	FlagPeek
	// FlagAllowEmpty suppresses the end-of-stream error when zero
	// bytes remain to satisfy the request.
	FlagAllowEmpty
	// FlagAllowPartial suppresses the end-of-stream error when fewer
	// bytes than requested remain; Read then returns what is
	// available.
	FlagAllowPartial
)

// Has reports whether all bits of want are set in f.
func (f ReadFlags) Has(want ReadFlags) bool {
	return f&want == want
}
