// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gguf parses the GGUF container format: a fixed magic/version/
// count header, a typed key-value metadata block, tensor-info records,
// and a single data region starting at an alignment boundary.
package gguf

import "github.com/pkg/errors"

var (
	// ErrBadMagic reports a stream not starting with the GGUF magic.
	ErrBadMagic = errors.New("gguf: bad magic")
	// ErrUnsupportedVersion reports a version other than 3.
	ErrUnsupportedVersion = errors.New("gguf: unsupported version")
	// ErrInvalidAlignment reports a general.alignment value that is
	// zero or not a multiple of 8.
	ErrInvalidAlignment = errors.New("gguf: invalid alignment")
	// ErrUnknownValueType reports a metadata or array element type tag
	// outside the closed set this parser recognizes.
	ErrUnknownValueType = errors.New("gguf: unknown metadata value type")
	// ErrBufferExhausted names the no-more-buffers condition. Reader's
	// ReadNextBuffer does not return it: once the single buffer has been
	// consumed it reports (false, nil).
	ErrBufferExhausted = errors.New("gguf: no more buffers")
)
