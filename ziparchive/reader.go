// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziparchive

import (
	"encoding/binary"

	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/pkg/errors"
)

// Reader implements storage.Storage over the current member while also
// exposing ReadNextFile/CurrentEntry to advance through the archive. It
// picks seekable (central-directory-driven) mode when the backing storage
// supports backward seeking, and falls back to sequential streaming mode
// otherwise.
type Reader struct {
	back     storage.Storage
	seekable bool

	entries  []Entry
	entryIdx int

	current     Entry
	haveCurrent bool

	region *storage.Region
	stream *streamMember
	cursor *bufCursor
}

// NewReader constructs a ziparchive.Reader over back, choosing seekable
// mode when back.CanSeekBack(true) succeeds.
func NewReader(back storage.Storage) (*Reader, error) {
	r := &Reader{back: back}
	if back.CanSeekBack(true) {
		if err := r.initSeekable(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Reader) initSeekable() error {
	eocdOffset, err := locateEOCD(r.back)
	if err != nil {
		return err
	}
	rec, err := readEOCD(r.back, eocdOffset)
	if err != nil {
		return err
	}
	rec, err = tryReadZip64EOCD(r.back, eocdOffset, rec)
	if err != nil {
		return err
	}
	cdOffset, _, count := rec.effectiveCDLocation()
	entries, err := readCentralDirectory(r.back, cdOffset, count)
	if err != nil {
		return err
	}
	r.entries = entries
	r.seekable = true
	return nil
}

// ReadNextFile advances to the next member, returning false once the
// archive is exhausted.
func (r *Reader) ReadNextFile() (bool, error) {
	if r.seekable {
		return r.readNextFileSeekable()
	}
	return r.readNextFileStreaming()
}

// CurrentEntry returns the Entry of the member ReadNextFile last
// selected. It is only valid after ReadNextFile has returned true. For a
// length-at-end streaming member, CompressedSize/UncompressedSize read
// zero until the data descriptor has been located (by reading the
// member fully or calling SeekFromBack), at which point they reflect the
// confirmed sizes.
func (r *Reader) CurrentEntry() (Entry, bool) {
	if r.haveCurrent && !r.seekable && r.stream != nil && r.stream.done {
		r.current.CompressedSize = r.stream.finalCompressed
		r.current.UncompressedSize = r.stream.finalUncompressed
	}
	return r.current, r.haveCurrent
}

func (r *Reader) readNextFileSeekable() (bool, error) {
	if r.entryIdx >= len(r.entries) {
		r.haveCurrent = false
		return false, nil
	}
	cde := r.entries[r.entryIdx]
	r.entryIdx++

	if cde.Encrypted() {
		return false, errors.Wrapf(ErrEncrypted, "member %q", cde.Name)
	}
	if cde.Method != methodStored {
		return false, errors.Wrapf(ErrUnsupportedMethod, "member %q uses method %d", cde.Name, cde.Method)
	}

	if err := r.back.SeekTo(int64(cde.LocalHeaderOffset)); err != nil {
		return false, err
	}
	lfh, dataStart, err := readLocalFileHeader(r.back)
	if err != nil {
		return false, err
	}
	if !cde.LengthAtEnd() {
		if lfh.CompressedSize != 0 && lfh.CompressedSize != cde.CompressedSize {
			return false, errors.Wrapf(ErrSizeMismatch, "member %q", cde.Name)
		}
		if lfh.UncompressedSize != 0 && lfh.UncompressedSize != cde.UncompressedSize {
			return false, errors.Wrapf(ErrSizeMismatch, "member %q", cde.Name)
		}
	}

	r.current = cde
	r.haveCurrent = true
	r.region = storage.NewRegion(r.back, dataStart, int64(cde.CompressedSize))
	r.stream = nil
	return true, nil
}

func (r *Reader) CurrentPosition() int64 {
	if r.seekable {
		return r.region.CurrentPosition()
	}
	return r.stream.pos
}

func (r *Reader) OriginalPosition() int64 {
	if r.seekable {
		return r.region.OriginalPosition()
	}
	return r.back.OriginalPosition()
}

func (r *Reader) Read(length int64, flags storage.ReadFlags) ([]byte, error) {
	if !r.haveCurrent {
		return nil, ErrNoCurrentEntry
	}
	if r.seekable {
		return r.region.Read(length, flags)
	}
	return r.stream.read(length, flags)
}

func (r *Reader) CanSeekBack(allowDetect bool) bool {
	if r.seekable {
		return r.region.CanSeekBack(allowDetect)
	}
	return false
}

func (r *Reader) SeekTo(absolute int64) error {
	if r.seekable {
		return r.region.SeekTo(absolute)
	}
	if absolute < r.stream.pos {
		return errors.Wrapf(storage.ErrSeekBackward, "streaming zip member cannot seek backward to %d from %d", absolute, r.stream.pos)
	}
	for r.stream.pos < absolute {
		n := absolute - r.stream.pos
		if _, err := r.stream.read(n, storage.FlagTemporary|storage.FlagAllowPartial); err != nil {
			return err
		}
	}
	return nil
}

// SeekFromBack, per spec §4.2, consumes remaining bytes of the current
// member; in streaming mode sizes may be unknown until the data
// descriptor is found, which this drives to completion.
func (r *Reader) SeekFromBack(absoluteFromEnd int64) error {
	if r.seekable {
		return r.region.SeekFromBack(absoluteFromEnd)
	}
	if err := r.stream.drainToEnd(); err != nil {
		return err
	}
	return r.SeekTo(r.stream.finalSize() - absoluteFromEnd)
}

func (r *Reader) Close() error { return nil }

func (r *Reader) readNextFileStreaming() (bool, error) {
	if r.cursor == nil {
		r.cursor = newBufCursor(r.back)
	}
	if r.stream != nil {
		if err := r.stream.drainToEnd(); err != nil {
			return false, err
		}
	}
	sig := r.cursor.peek(4)
	if len(sig) < 4 {
		r.haveCurrent = false
		return false, nil
	}
	if binary.LittleEndian.Uint32(sig) != localFileHeaderSignature {
		r.haveCurrent = false
		return false, nil
	}
	h, err := readLocalFileHeaderFromCursor(r.cursor)
	if err != nil {
		return false, err
	}
	if hasEncryptedFlag(h.Flags) {
		return false, errors.Wrapf(ErrEncrypted, "member %q", h.Name)
	}
	if h.Method != methodStored {
		return false, errors.Wrapf(ErrUnsupportedMethod, "member %q uses method %d", h.Name, h.Method)
	}

	r.stream = newStreamMember(r.cursor, h)
	r.region = nil
	r.current = Entry{
		Name:             h.Name,
		Method:           h.Method,
		Flags:            h.Flags,
		CRC32:            h.CRC32,
		CompressedSize:   h.CompressedSize,
		UncompressedSize: h.UncompressedSize,
	}
	r.haveCurrent = true
	return true, nil
}

func hasEncryptedFlag(flags uint16) bool { return flags&flagEncrypted != 0 }
