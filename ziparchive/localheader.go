// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziparchive

import "github.com/nlpodyssey/tensorcontainers/storage"

// localFileHeader is the parsed fixed-size portion of a local file
// header, plus whatever it carries of its own (possibly ZIP64) sizes.
type localFileHeader struct {
	Name             string
	Flags            uint16
	Method           uint16
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
}

// readLocalFileHeader reads a local file header starting at the
// storage's current position (the caller is responsible for having
// seeked to the member's LocalHeaderOffset first) and returns it along
// with the absolute offset at which the member's data begins.
func readLocalFileHeader(s storage.Storage) (localFileHeader, int64, error) {
	var h localFileHeader
	if err := readSignature(s, localFileHeaderSignature); err != nil {
		return h, 0, err
	}
	if _, err := readUint16(s); err != nil { // version needed
		return h, 0, err
	}
	flags, err := readUint16(s)
	if err != nil {
		return h, 0, err
	}
	method, err := readUint16(s)
	if err != nil {
		return h, 0, err
	}
	if _, err := readUint16(s); err != nil { // mod time
		return h, 0, err
	}
	if _, err := readUint16(s); err != nil { // mod date
		return h, 0, err
	}
	crc, err := readUint32(s)
	if err != nil {
		return h, 0, err
	}
	compSize, err := readUint32(s)
	if err != nil {
		return h, 0, err
	}
	uncompSize, err := readUint32(s)
	if err != nil {
		return h, 0, err
	}
	nameLen, err := readUint16(s)
	if err != nil {
		return h, 0, err
	}
	extraLen, err := readUint16(s)
	if err != nil {
		return h, 0, err
	}
	nameBytes, err := readBytes(s, int(nameLen))
	if err != nil {
		return h, 0, err
	}
	extra, err := readBytes(s, int(extraLen))
	if err != nil {
		return h, 0, err
	}

	z64 := parseZip64Extra(extra, uncompSize == uint32Max, compSize == uint32Max, false)
	h.Name = string(nameBytes)
	h.Flags = flags
	h.Method = method
	h.CRC32 = crc
	h.CompressedSize = resolveSize(compSize, z64.compressedSize)
	h.UncompressedSize = resolveSize(uncompSize, z64.uncompressedSize)

	dataStart := s.CurrentPosition()
	return h, dataStart, nil
}
