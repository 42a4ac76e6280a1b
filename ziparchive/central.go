// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziparchive

import (
	"github.com/nlpodyssey/tensorcontainers/storage"
)

// totalSize returns the byte length of s, obtained via SeekFromBack(0)
// (which seeks to the end) followed by CurrentPosition.
func totalSize(s storage.Storage) (int64, error) {
	if err := s.SeekFromBack(0); err != nil {
		return 0, err
	}
	return s.CurrentPosition(), nil
}

// locateEOCD finds the End-of-Central-Directory record, searching
// backward through the last maxEOCDCommentSearchWindow bytes of s for its
// signature, and returns its absolute offset within s.
func locateEOCD(s storage.Storage) (int64, error) {
	size, err := totalSize(s)
	if err != nil {
		return 0, err
	}
	window := int64(maxEOCDCommentSearchWindow)
	if window > size {
		window = size
	}
	start := size - window
	if err := s.SeekTo(start); err != nil {
		return 0, err
	}
	buf, err := s.Read(window, storage.FlagAllowPartial)
	if err != nil {
		return 0, err
	}
	sig := []byte{0x50, 0x4b, 0x05, 0x06}
	for i := len(buf) - eocdFixedSize; i >= 0; i-- {
		if buf[i] == sig[0] && buf[i+1] == sig[1] && buf[i+2] == sig[2] && buf[i+3] == sig[3] {
			return start + int64(i), nil
		}
	}
	return 0, ErrEOCDNotFound
}

// eocdRecord is the parsed fixed-size portion of the EOCD record. When a
// ZIP64 EOCD record was followed, the 64-bit fields hold the true values
// and the 32-bit fields are saturated to their sentinel.
type eocdRecord struct {
	totalEntries uint16
	cdSize       uint32
	cdOffset     uint32

	totalEntries64 uint64
	cdSize64       uint64
	cdOffset64     uint64
}

// effectiveCDLocation returns the true (disambiguated) central directory
// offset and byte size, preferring the ZIP64 64-bit values when present.
func (r eocdRecord) effectiveCDLocation() (offset, size int64, count int) {
	offset, size = int64(r.cdOffset), int64(r.cdSize)
	count = int(r.totalEntries)
	if r.cdOffset == uint32Max && r.cdOffset64 != 0 {
		offset = int64(r.cdOffset64)
	}
	if r.cdSize == uint32Max && r.cdSize64 != 0 {
		size = int64(r.cdSize64)
	}
	if r.totalEntries == uint16Max && r.totalEntries64 != 0 {
		count = int(r.totalEntries64)
	}
	return offset, size, count
}

func readEOCD(s storage.Storage, offset int64) (eocdRecord, error) {
	var rec eocdRecord
	if err := s.SeekTo(offset); err != nil {
		return rec, err
	}
	if err := readSignature(s, endOfCentralDirSignature); err != nil {
		return rec, err
	}
	if _, err := readUint16(s); err != nil { // disk number
		return rec, err
	}
	if _, err := readUint16(s); err != nil { // disk with central directory
		return rec, err
	}
	if _, err := readUint16(s); err != nil { // entries on this disk
		return rec, err
	}
	total, err := readUint16(s)
	if err != nil {
		return rec, err
	}
	cdSize, err := readUint32(s)
	if err != nil {
		return rec, err
	}
	cdOffset, err := readUint32(s)
	if err != nil {
		return rec, err
	}
	rec.totalEntries = total
	rec.cdSize = cdSize
	rec.cdOffset = cdOffset
	return rec, nil
}

// tryReadZip64EOCD looks for a ZIP64 EOCD locator immediately before the
// classic EOCD record and, when present, follows it to the ZIP64 EOCD
// record, returning the corrected total-entries/cdSize/cdOffset.
func tryReadZip64EOCD(s storage.Storage, eocdOffset int64, rec eocdRecord) (eocdRecord, error) {
	locatorOffset := eocdOffset - zip64EOCDLocatorSize
	if locatorOffset < 0 {
		return rec, nil
	}
	if err := s.SeekTo(locatorOffset); err != nil {
		return rec, err
	}
	sig, err := readUint32(s)
	if err != nil {
		return rec, err
	}
	if sig != zip64EOCDLocatorSignature {
		return rec, nil
	}
	if _, err := readUint32(s); err != nil { // disk with zip64 EOCD
		return rec, err
	}
	zip64Offset, err := readUint64(s)
	if err != nil {
		return rec, err
	}

	if err := s.SeekTo(int64(zip64Offset)); err != nil {
		return rec, err
	}
	if err := readSignature(s, zip64EOCDRecordSignature); err != nil {
		return rec, err
	}
	if _, err := readUint64(s); err != nil { // size of this record
		return rec, err
	}
	if _, err := readUint16(s); err != nil { // version made by
		return rec, err
	}
	if _, err := readUint16(s); err != nil { // version needed
		return rec, err
	}
	if _, err := readUint32(s); err != nil { // disk number
		return rec, err
	}
	if _, err := readUint32(s); err != nil { // disk with central directory
		return rec, err
	}
	if _, err := readUint64(s); err != nil { // entries on this disk
		return rec, err
	}
	totalEntries, err := readUint64(s)
	if err != nil {
		return rec, err
	}
	cdSize, err := readUint64(s)
	if err != nil {
		return rec, err
	}
	cdOffset, err := readUint64(s)
	if err != nil {
		return rec, err
	}
	if totalEntries <= uint64(uint16Max) {
		rec.totalEntries = uint16(totalEntries)
	} else {
		rec.totalEntries = uint16Max
	}
	rec.cdSize = uint32Max
	rec.cdOffset = uint32Max
	// the 32-bit fields stay saturated; the true 64-bit values are
	// stashed in a side channel on the record, which effectiveCDLocation
	// reads whenever the matching 32-bit field is saturated.
	rec.cdSize64 = cdSize
	rec.cdOffset64 = cdOffset
	rec.totalEntries64 = totalEntries
	return rec, nil
}

// readCentralDirectory walks the central directory starting at cdOffset
// and returns one Entry per record.
func readCentralDirectory(s storage.Storage, cdOffset int64, count int) ([]Entry, error) {
	entries := make([]Entry, 0, count)
	if err := s.SeekTo(cdOffset); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		e, err := readCentralDirectoryEntry(s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func readCentralDirectoryEntry(s storage.Storage) (Entry, error) {
	var e Entry
	if err := readSignature(s, centralDirHeaderSignature); err != nil {
		return e, err
	}
	if _, err := readUint16(s); err != nil { // version made by
		return e, err
	}
	if _, err := readUint16(s); err != nil { // version needed
		return e, err
	}
	flags, err := readUint16(s)
	if err != nil {
		return e, err
	}
	method, err := readUint16(s)
	if err != nil {
		return e, err
	}
	if _, err := readUint16(s); err != nil { // mod time
		return e, err
	}
	if _, err := readUint16(s); err != nil { // mod date
		return e, err
	}
	crc, err := readUint32(s)
	if err != nil {
		return e, err
	}
	compSize, err := readUint32(s)
	if err != nil {
		return e, err
	}
	uncompSize, err := readUint32(s)
	if err != nil {
		return e, err
	}
	nameLen, err := readUint16(s)
	if err != nil {
		return e, err
	}
	extraLen, err := readUint16(s)
	if err != nil {
		return e, err
	}
	commentLen, err := readUint16(s)
	if err != nil {
		return e, err
	}
	if _, err := readUint16(s); err != nil { // disk number start
		return e, err
	}
	if _, err := readUint16(s); err != nil { // internal attrs
		return e, err
	}
	if _, err := readUint32(s); err != nil { // external attrs
		return e, err
	}
	localOffset, err := readUint32(s)
	if err != nil {
		return e, err
	}
	nameBytes, err := readBytes(s, int(nameLen))
	if err != nil {
		return e, err
	}
	extra, err := readBytes(s, int(extraLen))
	if err != nil {
		return e, err
	}
	if _, err := readBytes(s, int(commentLen)); err != nil {
		return e, err
	}

	needUncompressed := uncompSize == uint32Max
	needCompressed := compSize == uint32Max
	needOffset := localOffset == uint32Max
	z64 := parseZip64Extra(extra, needUncompressed, needCompressed, needOffset)

	e.Name = string(nameBytes)
	e.Method = method
	e.Flags = flags
	e.CRC32 = crc
	e.CompressedSize = resolveSize(compSize, z64.compressedSize)
	e.UncompressedSize = resolveSize(uncompSize, z64.uncompressedSize)
	e.LocalHeaderOffset = resolveSize(localOffset, z64.localHeaderOffset)
	return e, nil
}

func resolveSize(classic uint32, z64 *uint64) uint64 {
	if classic == uint32Max && z64 != nil {
		return *z64
	}
	return uint64(classic)
}
