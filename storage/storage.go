// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

// Storage is the uniform byte-source contract every concrete source (file,
// mmap, in-memory buffer, gzip stream) and every composable wrapper (a ZIP
// member, a region-scoped tensor buffer) implements.
//
// A Storage is not safe for concurrent use: the library is single-threaded
// and cooperative (spec §5), and every method here mutates the storage's
// logical cursor.
type Storage interface {
	// CurrentPosition returns the logical offset consumed so far by the
	// caller of this Storage.
	CurrentPosition() int64

	// OriginalPosition returns the position in the ultimate backing
	// resource (for example, the file position behind a ZIP member's
	// member-relative logical position). For a storage with no
	// wrapping, this equals CurrentPosition.
	OriginalPosition() int64

	// Read returns length bytes honoring flags, per spec §4.1:
	//
	//   - Without FlagAllowPartial: returns exactly length bytes or
	//     fails.
	//   - Without FlagAllowEmpty, at end of stream: fails instead of
	//     returning an empty slice.
	//   - Without FlagTemporary: the returned bytes remain valid for
	//     the storage's lifetime. With FlagTemporary: the storage may
	//     invalidate them on the next non-peek read.
	//   - With FlagPeek: CurrentPosition is not advanced.
	Read(length int64, flags ReadFlags) ([]byte, error)

	// CanSeekBack reports whether SeekTo with a position before
	// CurrentPosition, or SeekFromBack, will succeed. If allowDetect
	// is true and seekability is not yet known, the storage may probe
	// for it (for example, by attempting a no-op seek) and cache the
	// result.
	CanSeekBack(allowDetect bool) bool

	// SeekTo moves CurrentPosition to absolute. Forward seeks (absolute
	// >= CurrentPosition) always work; backward seeks require
	// CanSeekBack.
	SeekTo(absolute int64) error

	// SeekFromBack moves CurrentPosition to absoluteFromEnd bytes
	// before the end of the storage. It requires CanSeekBack.
	SeekFromBack(absoluteFromEnd int64) error

	// Close releases any OS resource the storage holds. Storages with
	// no such resource (memory, region views) treat Close as a no-op.
	Close() error
}
