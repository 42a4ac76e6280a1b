// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziparchive

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/nlpodyssey/tensorcontainers/storage"
)

// bufCursor is a forward-only lookahead buffer over a non-seekable
// backing storage.Storage, shared by every member a streaming-mode
// Reader walks: local headers, member data, and data-descriptor scanning
// all consume from the same buffer so no byte pulled from back is ever
// read twice.
type bufCursor struct {
	back storage.Storage
	buf  []byte
	off  int
	eof  bool
}

const cursorChunkSize = 8 << 10

func newBufCursor(back storage.Storage) *bufCursor {
	return &bufCursor{back: back}
}

// fill pulls one more chunk from back, returning false once back is
// exhausted.
func (c *bufCursor) fill() bool {
	if c.eof {
		return false
	}
	if c.off > 0 && c.off == len(c.buf) {
		c.buf = c.buf[:0]
		c.off = 0
	} else if c.off > cursorChunkSize {
		c.buf = append(c.buf[:0], c.buf[c.off:]...)
		c.off = 0
	}
	b, err := c.back.Read(cursorChunkSize, storage.FlagTemporary|storage.FlagAllowPartial|storage.FlagAllowEmpty)
	if err != nil {
		c.eof = true
		return false
	}
	if len(b) == 0 {
		c.eof = true
		return false
	}
	c.buf = append(c.buf, b...)
	return true
}

// peek returns up to n unconsumed bytes without advancing, filling from
// back as needed; it may return fewer than n at end of stream.
func (c *bufCursor) peek(n int) []byte {
	for len(c.buf)-c.off < n {
		if !c.fill() {
			break
		}
	}
	avail := c.buf[c.off:]
	if len(avail) > n {
		avail = avail[:n]
	}
	return avail
}

// advance discards n already-peeked bytes from the front of the window.
func (c *bufCursor) advance(n int) {
	c.off += n
}

// readN returns exactly n consumed bytes, or an end-of-stream error.
func (c *bufCursor) readN(n int) ([]byte, error) {
	w := c.peek(n)
	if len(w) < n {
		return nil, storage.ErrEndOfStream
	}
	out := make([]byte, n)
	copy(out, w)
	c.advance(n)
	return out, nil
}

func (c *bufCursor) readUint16() (uint16, error) {
	b, err := c.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *bufCursor) readUint32() (uint32, error) {
	b, err := c.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// readLocalFileHeaderFromCursor reads a local file header (signature
// already confirmed present by the caller's peek) from c.
func readLocalFileHeaderFromCursor(c *bufCursor) (localFileHeader, error) {
	var h localFileHeader
	sig, err := c.readUint32()
	if err != nil {
		return h, err
	}
	if sig != localFileHeaderSignature {
		return h, ErrBadSignature
	}
	if _, err := c.readUint16(); err != nil { // version needed
		return h, err
	}
	flags, err := c.readUint16()
	if err != nil {
		return h, err
	}
	method, err := c.readUint16()
	if err != nil {
		return h, err
	}
	if _, err := c.readUint16(); err != nil { // mod time
		return h, err
	}
	if _, err := c.readUint16(); err != nil { // mod date
		return h, err
	}
	crc, err := c.readUint32()
	if err != nil {
		return h, err
	}
	compSize, err := c.readUint32()
	if err != nil {
		return h, err
	}
	uncompSize, err := c.readUint32()
	if err != nil {
		return h, err
	}
	nameLen, err := c.readUint16()
	if err != nil {
		return h, err
	}
	extraLen, err := c.readUint16()
	if err != nil {
		return h, err
	}
	nameBytes, err := c.readN(int(nameLen))
	if err != nil {
		return h, err
	}
	extra, err := c.readN(int(extraLen))
	if err != nil {
		return h, err
	}
	z64 := parseZip64Extra(extra, uncompSize == uint32Max, compSize == uint32Max, false)
	h.Name = string(nameBytes)
	h.Flags = flags
	h.Method = method
	h.CRC32 = crc
	h.CompressedSize = resolveSize(compSize, z64.compressedSize)
	h.UncompressedSize = resolveSize(uncompSize, z64.uncompressedSize)
	return h, nil
}

// streamMember reads one member's data out of the shared cursor, either
// by consuming a known number of bytes (sizes came from the local
// header) or, when the member's length-at-end flag is set, by scanning
// ahead for the data-descriptor signature and confirming the split point
// against a running CRC-32 before releasing any of the scanned bytes to
// the caller.
type streamMember struct {
	cursor *bufCursor

	knownSize bool
	size      int64 // valid when knownSize

	pos int64

	done              bool
	data              []byte // accepted member bytes, populated by scanToEnd when !knownSize
	finalCompressed   uint64
	finalUncompressed uint64
}

func newStreamMember(cursor *bufCursor, h localFileHeader) *streamMember {
	m := &streamMember{cursor: cursor}
	if !hasLengthAtEnd(h.Flags) {
		m.knownSize = true
		m.size = int64(h.CompressedSize)
		m.finalCompressed = h.CompressedSize
		m.finalUncompressed = h.UncompressedSize
	}
	return m
}

func hasLengthAtEnd(flags uint16) bool { return flags&flagLengthAtEnd != 0 }

func (m *streamMember) read(length int64, flags storage.ReadFlags) ([]byte, error) {
	if m.knownSize {
		return m.readKnown(length, flags)
	}
	return m.readScanning(length, flags)
}

func (m *streamMember) readKnown(length int64, flags storage.ReadFlags) ([]byte, error) {
	remaining := m.size - m.pos
	n, err := clampReadForMember(remaining, length, flags)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if flags.Has(storage.FlagPeek) {
		w := m.cursor.peek(int(n))
		out := make([]byte, len(w))
		copy(out, w)
		return out, nil
	}
	out, err := m.cursor.readN(int(n))
	if err != nil {
		return nil, err
	}
	m.pos += n
	return out, nil
}

// dataDescriptorLen is the length of a data descriptor with its optional
// signature and 4-byte (non-ZIP64) size fields: 4 (signature) + 4 (crc32)
// + 4 (compressed size) + 4 (uncompressed size).
const dataDescriptorLen = 16

func (m *streamMember) readScanning(length int64, flags storage.ReadFlags) ([]byte, error) {
	if !m.done {
		if err := m.scanToEnd(); err != nil {
			return nil, err
		}
	}
	remaining := m.size - m.pos
	n, err := clampReadForMember(remaining, length, flags)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	copy(out, m.data[m.pos:m.pos+n])
	if !flags.Has(storage.FlagPeek) {
		m.pos += n
	}
	return out, nil
}

// scanToEnd consumes the member's full data plus its trailing data
// descriptor, confirming the boundary by CRC-32 before accepting it, and
// sets m.size/m.data/m.done. runningCRC is the CRC-32 of every byte
// already committed (accepted as member data, not as part of a rejected
// candidate descriptor); a candidate at window offset i is accepted only
// when extending runningCRC with window[:i] reproduces the candidate's
// own CRC-32 field. Accepted member bytes are retained in m.data rather
// than discarded: they are consumed-but-unverified until a descriptor
// candidate's CRC-32 confirms the boundary, and per spec §4.2 must still
// reach the caller once confirmed, even though the shared cursor has by
// then moved past them.
func (m *streamMember) scanToEnd() error {
	var runningCRC uint32
	var accepted int64
	buf := make([]byte, 0, cursorChunkSize)
	for {
		window := m.cursor.peek(cursorChunkSize)
		if len(window) < dataDescriptorLen {
			if !m.cursor.fill() {
				return ErrDataDescriptorNotFound
			}
			continue
		}
		found := false
		for i := 0; i+dataDescriptorLen <= len(window); i++ {
			if binary.LittleEndian.Uint32(window[i:]) != dataDescriptorSignature {
				continue
			}
			candidateCRC := binary.LittleEndian.Uint32(window[i+4:])
			if crc32.Update(runningCRC, crc32.IEEETable, window[:i]) != candidateCRC {
				continue
			}
			compSize := binary.LittleEndian.Uint32(window[i+8:])
			uncompSize := binary.LittleEndian.Uint32(window[i+12:])
			consumed, err := m.cursor.readN(i + dataDescriptorLen)
			if err != nil {
				return err
			}
			buf = append(buf, consumed[:i]...)
			m.data = buf
			m.size = accepted + int64(i)
			m.finalCompressed = uint64(compSize)
			m.finalUncompressed = uint64(uncompSize)
			m.done = true
			found = true
			break
		}
		if found {
			return nil
		}
		// No candidate in this window confirmed by CRC; commit bytes up
		// to the last position that could still start a full descriptor
		// and keep scanning. The dataDescriptorLen-1 overlap is kept
		// unconsumed so a descriptor straddling the window boundary is
		// not missed.
		advanceBy := len(window) - (dataDescriptorLen - 1)
		if advanceBy <= 0 {
			if !m.cursor.fill() {
				return ErrDataDescriptorNotFound
			}
			continue
		}
		consumed, err := m.cursor.readN(advanceBy)
		if err != nil {
			return err
		}
		buf = append(buf, consumed...)
		runningCRC = crc32.Update(runningCRC, crc32.IEEETable, consumed)
		accepted += int64(advanceBy)
	}
}

func clampReadForMember(remaining, length int64, flags storage.ReadFlags) (int64, error) {
	if length <= 0 {
		return 0, nil
	}
	if remaining >= length {
		return length, nil
	}
	if remaining <= 0 {
		if flags.Has(storage.FlagAllowEmpty) {
			return 0, nil
		}
		return 0, storage.ErrEndOfStream
	}
	if flags.Has(storage.FlagAllowPartial) {
		return remaining, nil
	}
	return 0, storage.ErrEndOfStream
}

func (m *streamMember) drainToEnd() error {
	for {
		if m.knownSize && m.pos >= m.size {
			return nil
		}
		if !m.knownSize && m.done && m.pos >= m.size {
			return nil
		}
		if _, err := m.read(cursorChunkSize, storage.FlagAllowPartial|storage.FlagAllowEmpty); err != nil {
			return err
		}
	}
}

func (m *streamMember) finalSize() int64 { return m.size }
