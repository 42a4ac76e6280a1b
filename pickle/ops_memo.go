// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

import (
	"strconv"

	"github.com/pkg/errors"
)

func (p *Interpreter) opMark() error {
	p.marks = append(p.marks, len(p.stack))
	return nil
}

func (p *Interpreter) opPop() error {
	_, err := p.pop()
	return err
}

func (p *Interpreter) opPopMark() error {
	_, err := p.popMarkItems()
	return err
}

func (p *Interpreter) opDup() error {
	it, err := p.peek()
	if err != nil {
		return err
	}
	p.push(it)
	return nil
}

func (p *Interpreter) memoGet(id int64) error {
	it, ok := p.memo[id]
	if !ok {
		return errors.Wrapf(ErrMissingMemo, "id %d", id)
	}
	p.push(it)
	return nil
}

func (p *Interpreter) memoPut(id int64) error {
	it, err := p.peek()
	if err != nil {
		return err
	}
	p.memo[id] = it
	return nil
}

func (p *Interpreter) opGet() error {
	line, err := p.readLine()
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return errors.Wrap(ErrMalformed, "GET: non-integer memo id")
	}
	return p.memoGet(id)
}

func (p *Interpreter) opBinGet() error {
	b, err := p.readUint8()
	if err != nil {
		return err
	}
	return p.memoGet(int64(b))
}

func (p *Interpreter) opLongBinGet() error {
	v, err := p.readUint32LE()
	if err != nil {
		return err
	}
	return p.memoGet(int64(v))
}

func (p *Interpreter) opPut() error {
	line, err := p.readLine()
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return errors.Wrap(ErrMalformed, "PUT: non-integer memo id")
	}
	return p.memoPut(id)
}

func (p *Interpreter) opBinPut() error {
	b, err := p.readUint8()
	if err != nil {
		return err
	}
	return p.memoPut(int64(b))
}

func (p *Interpreter) opLongBinPut() error {
	v, err := p.readUint32LE()
	if err != nil {
		return err
	}
	return p.memoPut(int64(v))
}

func (p *Interpreter) opMemoize() error {
	return p.memoPut(int64(len(p.memo)))
}
