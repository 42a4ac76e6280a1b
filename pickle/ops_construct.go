// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

import (
	"strconv"

	"github.com/pkg/errors"
)

func (p *Interpreter) rewriteGlobalIfNeeded(module, name string) (string, string) {
	if p.protocol >= 3 {
		return module, name
	}
	return rewriteGlobal(module, name)
}

func (p *Interpreter) opGlobal() error {
	moduleLine, err := p.readLine()
	if err != nil {
		return err
	}
	nameLine, err := p.readLine()
	if err != nil {
		return err
	}
	module, name := p.rewriteGlobalIfNeeded(string(moduleLine), string(nameLine))
	p.push(&Item{Type: ItemGlobal, GlobalModule: module, GlobalName: name})
	return nil
}

func (p *Interpreter) opStackGlobal() error {
	nameItem, err := p.pop()
	if err != nil {
		return err
	}
	moduleItem, err := p.pop()
	if err != nil {
		return err
	}
	name, ok := nameItem.AsString()
	if !ok {
		return errors.Wrap(ErrMalformed, "STACK_GLOBAL: name is not string-like")
	}
	module, ok := moduleItem.AsString()
	if !ok {
		return errors.Wrap(ErrMalformed, "STACK_GLOBAL: module is not string-like")
	}
	module, name = p.rewriteGlobalIfNeeded(module, name)
	p.push(&Item{Type: ItemGlobal, GlobalModule: module, GlobalName: name})
	return nil
}

// isCopyregReconstructor reports whether g is the global
// copyreg._reconstructor, after rename resolution.
func isCopyregReconstructor(g *Item) bool {
	return g != nil && g.Type == ItemGlobal && g.GlobalModule == "copyreg" && g.GlobalName == "_reconstructor"
}

// opReduce implements REDUCE, including the canonicalization CPython's C
// unpickler applies for copyreg._reconstructor: a REDUCE combining that
// callable with args (cls, base, state) where base is builtins.object and
// state is None is indistinguishable from, and is rewritten to, an
// ItemObj built from cls with an empty argument tuple.
func (p *Interpreter) opReduce() error {
	args, err := p.pop()
	if err != nil {
		return err
	}
	callable, err := p.pop()
	if err != nil {
		return err
	}
	if isCopyregReconstructor(callable) && args.Type == ItemTuple && len(args.ListChildren) == 3 {
		cls := args.ListChildren[0]
		base := args.ListChildren[1]
		state := args.ListChildren[2]
		if base.Type == ItemGlobal && base.GlobalModule == "builtins" && base.GlobalName == "object" &&
			state.Type == ItemNone {
			p.push(&Item{Type: ItemObj, ObjClass: cls, ObjArgs: &Item{Type: ItemTuple}})
			return nil
		}
	}
	p.push(&Item{Type: ItemReduce, ReduceCallable: callable, ReduceArgs: args})
	return nil
}

func (p *Interpreter) opInst() error {
	moduleLine, err := p.readLine()
	if err != nil {
		return err
	}
	nameLine, err := p.readLine()
	if err != nil {
		return err
	}
	args, err := p.popMarkItems()
	if err != nil {
		return err
	}
	module, name := p.rewriteGlobalIfNeeded(string(moduleLine), string(nameLine))
	cls := &Item{Type: ItemGlobal, GlobalModule: module, GlobalName: name}
	p.push(&Item{Type: ItemObj, ObjClass: cls, ObjArgs: &Item{Type: ItemTuple, ListChildren: args}})
	return nil
}

func (p *Interpreter) opObj() error {
	items, err := p.popMarkItems()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.Wrap(ErrMalformed, "OBJ: empty mark group")
	}
	cls := items[0]
	args := items[1:]
	p.push(&Item{Type: ItemObj, ObjClass: cls, ObjArgs: &Item{Type: ItemTuple, ListChildren: args}})
	return nil
}

// opNewObj implements NEWOBJ. Per this interpreter's scope, cls is not
// validated as an actually-constructible callable: any ItemGlobal (or
// other item) is accepted, since the interpreter never instantiates
// Python objects, only records what a real unpickler would have built.
func (p *Interpreter) opNewObj() error {
	args, err := p.pop()
	if err != nil {
		return err
	}
	cls, err := p.pop()
	if err != nil {
		return err
	}
	p.push(&Item{Type: ItemObj, ObjClass: cls, ObjArgs: args})
	return nil
}

func (p *Interpreter) opNewObjEx() error {
	kwargs, err := p.pop()
	if err != nil {
		return err
	}
	args, err := p.pop()
	if err != nil {
		return err
	}
	cls, err := p.pop()
	if err != nil {
		return err
	}
	p.push(&Item{Type: ItemObj, ObjClass: cls, ObjArgs: args, ObjKwargs: kwargs})
	return nil
}

func (p *Interpreter) opPersid() error {
	line, err := p.readLine()
	if err != nil {
		return err
	}
	p.push(&Item{Type: ItemPersId, PersIdValue: NewString(string(line))})
	return nil
}

func (p *Interpreter) opBinPersid() error {
	v, err := p.pop()
	if err != nil {
		return err
	}
	p.push(&Item{Type: ItemPersId, PersIdValue: v})
	return nil
}

// opExt implements EXT1/EXT2/EXT4. The real copyreg._extension_registry
// mapping from code to (module, name) is a CPython runtime table this
// interpreter has no access to, so the extension code is preserved
// numerically as a placeholder global rather than resolved.
func (p *Interpreter) opExt(width int) error {
	var code uint32
	switch width {
	case 1:
		b, err := p.readUint8()
		if err != nil {
			return err
		}
		code = uint32(b)
	case 2:
		v, err := p.readUint16LE()
		if err != nil {
			return err
		}
		code = uint32(v)
	case 4:
		v, err := p.readUint32LE()
		if err != nil {
			return err
		}
		code = v
	}
	p.push(&Item{Type: ItemGlobal, GlobalModule: "copyreg._extension_registry", GlobalName: strconv.FormatUint(uint64(code), 10)})
	return nil
}
