// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

import (
	"math/big"

	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/pkg/errors"
)

// StringEncoding selects how the legacy protocol-0/1 string opcodes (S,
// T, U) and their binary counterparts decode their payload: as text or
// as raw bytes. Mirrors the "encoding" option Python's own Unpickler
// exposes for the same ambiguity.
type StringEncoding int

const (
	EncodingUTF8 StringEncoding = iota
	EncodingBytes
)

// Interpreter runs the pickle stack machine over a storage.Storage,
// producing a single Item tree per Load call.
type Interpreter struct {
	s        storage.Storage
	encoding StringEncoding
	buffers  [][]byte

	stack   []*Item
	marks   []int
	memo    map[int64]*Item
	protocol int

	nextBufferIdx int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithEncoding sets the decode mode for legacy string opcodes. Default
// is EncodingUTF8.
func WithEncoding(enc StringEncoding) Option {
	return func(p *Interpreter) { p.encoding = enc }
}

// WithBuffers supplies the out-of-band buffers NEXT_BUFFER consumes, in
// order, for protocol-5 streams produced with buffer_callback.
func WithBuffers(buffers [][]byte) Option {
	return func(p *Interpreter) { p.buffers = buffers }
}

// NewInterpreter returns an Interpreter reading opcodes from s.
func NewInterpreter(s storage.Storage, opts ...Option) *Interpreter {
	p := &Interpreter{s: s, memo: make(map[int64]*Item)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load runs the stack machine to completion (STOP), returning the single
// remaining item. It is an error for the stream to end with anything
// other than exactly one item on the stack and no open marks.
func (p *Interpreter) Load() (*Item, error) {
	for {
		op, err := p.readByte()
		if err != nil {
			return nil, errors.Wrap(err, "reading opcode")
		}
		if op == opStop {
			break
		}
		if err := p.dispatch(op); err != nil {
			return nil, errors.Wrapf(err, "executing opcode 0x%02x", op)
		}
	}
	if len(p.marks) != 0 {
		return nil, errors.Wrap(ErrUnterminated, "open mark at STOP")
	}
	if len(p.stack) != 1 {
		return nil, errors.Wrapf(ErrUnterminated, "stack has %d items at STOP, want 1", len(p.stack))
	}
	return p.stack[0], nil
}

func (p *Interpreter) dispatch(op byte) error {
	switch op {
	case opMark:
		return p.opMark()
	case opStop:
		return nil // handled by Load
	case opPop:
		return p.opPop()
	case opPopMark:
		return p.opPopMark()
	case opDup:
		return p.opDup()

	case opNone:
		return p.opNone()
	case opNewTrue:
		return p.opBool(true)
	case opNewFalse:
		return p.opBool(false)
	case opInt:
		return p.opInt()
	case opBinInt:
		return p.opBinInt()
	case opBinInt1:
		return p.opBinInt1()
	case opBinInt2:
		return p.opBinInt2()
	case opLong:
		return p.opLong()
	case opLong1:
		return p.opLong1()
	case opLong4:
		return p.opLong4()
	case opFloat:
		return p.opFloat()
	case opBinFloat:
		return p.opBinFloat()

	case opString:
		return p.opString()
	case opBinString:
		return p.opBinString()
	case opShortBinString:
		return p.opShortBinString()
	case opUnicode:
		return p.opUnicode()
	case opBinUnicode:
		return p.opBinUnicode()
	case opShortBinUnicode:
		return p.opShortBinUnicode()
	case opBinUnicode8:
		return p.opBinUnicode8()
	case opBinBytes:
		return p.opBinBytes()
	case opShortBinBytes:
		return p.opShortBinBytes()
	case opBinBytes8:
		return p.opBinBytes8()
	case opByteArray8:
		return p.opByteArray8()

	case opEmptyList:
		return p.opEmptyList()
	case opList:
		return p.opList()
	case opEmptyTuple:
		return p.opEmptyTuple()
	case opTuple:
		return p.opTuple()
	case opTuple1:
		return p.opTupleN(1)
	case opTuple2:
		return p.opTupleN(2)
	case opTuple3:
		return p.opTupleN(3)
	case opEmptyDict:
		return p.opEmptyDict()
	case opDict:
		return p.opDict()
	case opEmptySet:
		return p.opEmptySet()
	case opFrozenSet:
		return p.opFrozenSet()
	case opAddItems:
		return p.opAddItems()
	case opAppend:
		return p.opAppend()
	case opAppends:
		return p.opAppends()
	case opSetItem:
		return p.opSetItem()
	case opSetItems:
		return p.opSetItems()
	case opBuild:
		return p.opBuild()

	case opGet:
		return p.opGet()
	case opBinGet:
		return p.opBinGet()
	case opLongBinGet:
		return p.opLongBinGet()
	case opPut:
		return p.opPut()
	case opBinPut:
		return p.opBinPut()
	case opLongBinPut:
		return p.opLongBinPut()
	case opMemoize:
		return p.opMemoize()

	case opGlobal:
		return p.opGlobal()
	case opStackGlobal:
		return p.opStackGlobal()
	case opReduce:
		return p.opReduce()
	case opInst:
		return p.opInst()
	case opObj:
		return p.opObj()
	case opNewObj:
		return p.opNewObj()
	case opNewObjEx:
		return p.opNewObjEx()
	case opPersid:
		return p.opPersid()
	case opBinPersid:
		return p.opBinPersid()
	case opExt1:
		return p.opExt(1)
	case opExt2:
		return p.opExt(2)
	case opExt4:
		return p.opExt(4)

	case opNextBuffer:
		return p.opNextBuffer()
	case opReadonlyBuffer:
		return p.opReadonlyBuffer()
	case opFrame:
		return p.opFrame()
	case opProto:
		return p.opProto()

	default:
		return errors.Wrapf(ErrBadOpcode, "0x%02x", op)
	}
}

func (p *Interpreter) push(it *Item) { p.stack = append(p.stack, it) }

func (p *Interpreter) pop() (*Item, error) {
	if len(p.stack) == 0 {
		return nil, ErrStackUnderflow
	}
	it := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return it, nil
}

func (p *Interpreter) peek() (*Item, error) {
	if len(p.stack) == 0 {
		return nil, ErrStackUnderflow
	}
	return p.stack[len(p.stack)-1], nil
}

func (p *Interpreter) popN(n int) ([]*Item, error) {
	if len(p.stack) < n {
		return nil, ErrStackUnderflow
	}
	items := make([]*Item, n)
	copy(items, p.stack[len(p.stack)-n:])
	p.stack = p.stack[:len(p.stack)-n]
	return items, nil
}

func (p *Interpreter) popMarkItems() ([]*Item, error) {
	if len(p.marks) == 0 {
		return nil, ErrStackUnderflow
	}
	mark := p.marks[len(p.marks)-1]
	p.marks = p.marks[:len(p.marks)-1]
	if mark > len(p.stack) {
		return nil, ErrStackUnderflow
	}
	items := append([]*Item(nil), p.stack[mark:]...)
	p.stack = p.stack[:mark]
	return items, nil
}

func newIntOrBig(v *big.Int) *Item {
	if v.IsInt64() {
		return NewInt(v.Int64())
	}
	return NewBigInt(v)
}
