// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

import "github.com/pkg/errors"

var (
	// ErrStackUnderflow reports an opcode that needed more items (or
	// more marks) on a stack than were present.
	ErrStackUnderflow = errors.New("pickle: stack underflow")
	// ErrMissingMemo reports a GET/BINGET/LONG_BINGET referencing a memo
	// id that was never PUT/BINPUT/LONG_BINPUT/MEMOIZE'd.
	ErrMissingMemo = errors.New("pickle: missing memo entry")
	// ErrBadOpcode reports a byte that is not a recognized opcode.
	ErrBadOpcode = errors.New("pickle: unrecognized opcode")
	// ErrLengthOverflow reports a length field that is negative or would
	// overflow when converted to a Go int.
	ErrLengthOverflow = errors.New("pickle: length overflow")
	// ErrMalformed reports a structurally invalid opcode argument (for
	// example, an odd number of items in a DICT/SETITEMS group, a
	// non-string STACK_GLOBAL operand, or an unparsable INT/FLOAT line).
	ErrMalformed = errors.New("pickle: malformed pickle stream")
	// ErrUnterminated reports a STOP opcode reached with a mark still open
	// or with other than exactly one item on the stack. A stream that ends
	// before any STOP fails with the storage's end-of-stream error instead.
	ErrUnterminated = errors.New("pickle: stream did not terminate cleanly")
)
