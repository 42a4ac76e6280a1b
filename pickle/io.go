// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

import (
	"encoding/binary"
	"math"

	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/pkg/errors"
)

func (p *Interpreter) readByte() (byte, error) {
	b, err := p.s.Read(1, storage.FlagTemporary)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *Interpreter) readExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if n < 0 {
		return nil, errors.Wrapf(ErrLengthOverflow, "length %d", n)
	}
	b, err := p.s.Read(int64(n), 0)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// readLine reads up to and including a '\n', returning the bytes before
// it. Used by the textual protocol-0 opcodes (I, F, L, S, g, p, ...).
func (p *Interpreter) readLine() ([]byte, error) {
	var line []byte
	for {
		b, err := p.readByte()
		if err != nil {
			return nil, err
		}
		if b == '\n' {
			return line, nil
		}
		line = append(line, b)
	}
}

func (p *Interpreter) readUint8() (uint8, error) {
	return p.readByte()
}

func (p *Interpreter) readUint16LE() (uint16, error) {
	b, err := p.readExact(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (p *Interpreter) readInt32LE() (int32, error) {
	b, err := p.readExact(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (p *Interpreter) readUint32LE() (uint32, error) {
	b, err := p.readExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (p *Interpreter) readUint64LE() (uint64, error) {
	b, err := p.readExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// readBinFloat reads BINFLOAT's payload: an IEEE-754 double in big-endian
// byte order, the one place classic pickle departs from little-endian.
func (p *Interpreter) readBinFloat() (float64, error) {
	b, err := p.readExact(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}
