// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import "github.com/pkg/errors"

// Sentinel errors identifying the storage-level error categories named in
// spec §7. Callers should use errors.Is against these, not string
// matching. Errors from Read and the seek methods wrap one of them, except
// a decompression failure from GzipStorage, which wraps the gzip reader's
// own error; Close returns the underlying close error unwrapped.
var (
	// ErrEndOfStream reports that fewer bytes remain than required and
	// neither FlagAllowEmpty nor FlagAllowPartial was set.
	ErrEndOfStream = errors.New("storage: end of stream")
	// ErrSeekBackward reports a backward seek attempted on a storage
	// that does not support it.
	ErrSeekBackward = errors.New("storage: backward seek not supported")
	// ErrSeekFromBackUnsupported reports that seek-from-back was
	// requested on a storage that cannot seek backward at all.
	ErrSeekFromBackUnsupported = errors.New("storage: seek-from-back not supported")
	// ErrOpenFailed reports a failure to open the underlying resource.
	ErrOpenFailed = errors.New("storage: failed to open resource")
	// ErrClosed reports an operation attempted on a closed storage.
	ErrClosed = errors.New("storage: storage is closed")
)

func wrapErr(cause error, msg string) error {
	return errors.Wrap(cause, msg)
}

func wrapErrf(cause error, format string, args ...any) error {
	return errors.Wrapf(cause, format, args...)
}
