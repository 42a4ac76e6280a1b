// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ziparchive implements a minimal reader for the stored-only,
// optionally-ZIP64 subset of the PKWARE ZIP format that a PyTorch .pt
// archive uses, over the storage.Storage contract rather than os.File
// directly. It supports both a central-directory-driven seekable mode
// and a sequential streaming mode with data-descriptor scanning.
package ziparchive

import "github.com/pkg/errors"

var (
	// ErrEncrypted reports a member whose general-purpose flags mark it
	// encrypted; encrypted members are never supported.
	ErrEncrypted = errors.New("ziparchive: encrypted members are not supported")
	// ErrUnsupportedMethod reports a compression method other than
	// stored (0).
	ErrUnsupportedMethod = errors.New("ziparchive: only the stored compression method is supported")
	// ErrBadSignature reports a structure whose signature field does not
	// match what was expected at that position.
	ErrBadSignature = errors.New("ziparchive: bad signature")
	// ErrEOCDNotFound reports that no End-of-Central-Directory record
	// could be located within the search window.
	ErrEOCDNotFound = errors.New("ziparchive: end of central directory record not found")
	// ErrNotSeekable reports that seekable (central-directory-driven)
	// mode was requested over a storage that cannot seek backward.
	ErrNotSeekable = errors.New("ziparchive: backing storage cannot seek backward")
	// ErrDataDescriptorNotFound reports that streaming mode exhausted
	// the underlying storage while scanning for a member's data
	// descriptor.
	ErrDataDescriptorNotFound = errors.New("ziparchive: data descriptor not found before end of stream")
	// ErrNoCurrentEntry reports a read attempted before ReadNextFile.
	ErrNoCurrentEntry = errors.New("ziparchive: no current entry")
	// ErrSizeMismatch reports local-header sizes disagreeing with the
	// central-directory entry when length-at-end is not set.
	ErrSizeMismatch = errors.New("ziparchive: local header size disagrees with central directory")
)
