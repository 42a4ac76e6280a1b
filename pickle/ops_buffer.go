// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

import "github.com/pkg/errors"

// opNextBuffer implements NEXT_BUFFER (protocol 5): consumes the next
// out-of-band buffer supplied via WithBuffers, in order.
func (p *Interpreter) opNextBuffer() error {
	if p.nextBufferIdx >= len(p.buffers) {
		return errors.Wrap(ErrMalformed, "NEXT_BUFFER: no out-of-band buffer available")
	}
	buf := p.buffers[p.nextBufferIdx]
	p.nextBufferIdx++
	p.push(&Item{Type: ItemBuffer, Buffer: buf})
	return nil
}

// opReadonlyBuffer implements READONLY_BUFFER: it marks the top item as
// read-only in CPython, a distinction this interpreter does not track.
// No type assertion is made on the top item; it is simply re-wrapped as
// an ItemBuffer carrying the top item's Buffer field (nil when the top
// item is not an ItemBuffer).
func (p *Interpreter) opReadonlyBuffer() error {
	top, err := p.pop()
	if err != nil {
		return err
	}
	p.push(&Item{Type: ItemBuffer, Buffer: top.Buffer})
	return nil
}

// opFrame implements FRAME (protocol 4): an 8-byte length prefix for the
// opcodes that follow, purely an optimization hint with no semantic
// effect on decoding.
func (p *Interpreter) opFrame() error {
	_, err := p.readUint64LE()
	return err
}

// opProto implements PROTO: records the stream's protocol version, which
// gates whether GLOBAL/STACK_GLOBAL apply the Python 2→3 rename table.
func (p *Interpreter) opProto() error {
	b, err := p.readUint8()
	if err != nil {
		return err
	}
	p.protocol = int(b)
	return nil
}
