// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziparchive

// Entry describes one member of a ZIP archive, with 64-bit sizes and
// offsets resolved from the ZIP64 extra field where the classic 32-bit
// fields were saturated.
type Entry struct {
	// Name is the member's path as stored in the archive.
	Name string
	// Method is the compression method; only methodStored (0) is
	// accepted.
	Method uint16
	// Flags are the general-purpose bit flags from the local/central
	// header.
	Flags uint16
	// CRC32 is the member's CRC-32 checksum.
	CRC32 uint32
	// CompressedSize and UncompressedSize are equal for stored members.
	CompressedSize   uint64
	UncompressedSize uint64
	// LocalHeaderOffset is the byte offset of the member's local file
	// header within the archive.
	LocalHeaderOffset uint64
}

// Encrypted reports whether the member's general-purpose flags mark it
// encrypted.
func (e Entry) Encrypted() bool {
	return e.Flags&flagEncrypted != 0
}

// LengthAtEnd reports whether sizes/CRC for this member are carried in a
// trailing data descriptor rather than the local header (general-purpose
// bit 3).
func (e Entry) LengthAtEnd() bool {
	return e.Flags&flagLengthAtEnd != 0
}
