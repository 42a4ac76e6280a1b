// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func (p *Interpreter) opNone() error {
	p.push(&Item{Type: ItemNone})
	return nil
}

func (p *Interpreter) opBool(v bool) error {
	p.push(NewBool(v))
	return nil
}

// opInt implements the classic 'I' opcode, which also doubles as the
// protocol-0 boolean encoding ("I01\n" / "I00\n"), matching CPython's
// Unpickler.load_int.
func (p *Interpreter) opInt() error {
	line, err := p.readLine()
	if err != nil {
		return err
	}
	s := string(line)
	switch s {
	case "00":
		p.push(NewBool(false))
		return nil
	case "01":
		p.push(NewBool(true))
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return errors.Wrapf(ErrMalformed, "INT: %q", s)
	}
	p.push(newIntOrBig(v))
	return nil
}

func (p *Interpreter) opBinInt() error {
	v, err := p.readInt32LE()
	if err != nil {
		return err
	}
	p.push(NewInt(int64(v)))
	return nil
}

func (p *Interpreter) opBinInt1() error {
	b, err := p.readUint8()
	if err != nil {
		return err
	}
	p.push(NewInt(int64(b)))
	return nil
}

func (p *Interpreter) opBinInt2() error {
	v, err := p.readUint16LE()
	if err != nil {
		return err
	}
	p.push(NewInt(int64(v)))
	return nil
}

// opLong implements the classic 'L' opcode: a decimal literal, optionally
// suffixed with Python 2's "L" long marker.
func (p *Interpreter) opLong() error {
	line, err := p.readLine()
	if err != nil {
		return err
	}
	s := strings.TrimSuffix(string(line), "L")
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return errors.Wrapf(ErrMalformed, "LONG: %q", s)
	}
	p.push(newIntOrBig(v))
	return nil
}

func (p *Interpreter) opLong1() error {
	n, err := p.readUint8()
	if err != nil {
		return err
	}
	b, err := p.readExact(int(n))
	if err != nil {
		return err
	}
	p.push(newIntOrBig(decodeLong(b)))
	return nil
}

func (p *Interpreter) opLong4() error {
	n, err := p.readInt32LE()
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.Wrap(ErrLengthOverflow, "LONG4: negative length")
	}
	b, err := p.readExact(int(n))
	if err != nil {
		return err
	}
	p.push(newIntOrBig(decodeLong(b)))
	return nil
}

func (p *Interpreter) opFloat() error {
	line, err := p.readLine()
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(string(line), 64)
	if err != nil {
		return errors.Wrapf(ErrMalformed, "FLOAT: %q", line)
	}
	p.push(NewFloat(v))
	return nil
}

func (p *Interpreter) opBinFloat() error {
	v, err := p.readBinFloat()
	if err != nil {
		return err
	}
	p.push(NewFloat(v))
	return nil
}
