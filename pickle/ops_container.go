// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

import "github.com/pkg/errors"

func (p *Interpreter) opEmptyList() error {
	p.push(&Item{Type: ItemList})
	return nil
}

func (p *Interpreter) opList() error {
	items, err := p.popMarkItems()
	if err != nil {
		return err
	}
	p.push(&Item{Type: ItemList, ListChildren: items})
	return nil
}

func (p *Interpreter) opEmptyTuple() error {
	p.push(&Item{Type: ItemTuple})
	return nil
}

func (p *Interpreter) opTuple() error {
	items, err := p.popMarkItems()
	if err != nil {
		return err
	}
	p.push(&Item{Type: ItemTuple, ListChildren: items})
	return nil
}

func (p *Interpreter) opTupleN(n int) error {
	items, err := p.popN(n)
	if err != nil {
		return err
	}
	p.push(&Item{Type: ItemTuple, ListChildren: items})
	return nil
}

func (p *Interpreter) opEmptyDict() error {
	p.push(&Item{Type: ItemDict})
	return nil
}

func (p *Interpreter) opDict() error {
	items, err := p.popMarkItems()
	if err != nil {
		return err
	}
	if len(items)%2 != 0 {
		return errors.Wrap(ErrMalformed, "DICT: odd number of mark items")
	}
	entries := make([]DictEntry, 0, len(items)/2)
	for i := 0; i < len(items); i += 2 {
		entries = append(entries, DictEntry{Key: items[i], Value: items[i+1]})
	}
	p.push(&Item{Type: ItemDict, DictChildren: entries})
	return nil
}

func (p *Interpreter) opEmptySet() error {
	p.push(&Item{Type: ItemSet})
	return nil
}

func (p *Interpreter) opFrozenSet() error {
	items, err := p.popMarkItems()
	if err != nil {
		return err
	}
	p.push(&Item{Type: ItemFrozenSet, ListChildren: items})
	return nil
}

func (p *Interpreter) opAddItems() error {
	items, err := p.popMarkItems()
	if err != nil {
		return err
	}
	target, err := p.peek()
	if err != nil {
		return err
	}
	target.ListChildren = append(target.ListChildren, items...)
	return nil
}

func (p *Interpreter) opAppend() error {
	value, err := p.pop()
	if err != nil {
		return err
	}
	target, err := p.peek()
	if err != nil {
		return err
	}
	target.ListChildren = append(target.ListChildren, value)
	return nil
}

func (p *Interpreter) opAppends() error {
	items, err := p.popMarkItems()
	if err != nil {
		return err
	}
	target, err := p.peek()
	if err != nil {
		return err
	}
	target.ListChildren = append(target.ListChildren, items...)
	return nil
}

// opSetItem implements SETITEM. The target only needs a DictChildren
// slot, not ItemType == ItemDict: BUILD commonly applies SETITEM-derived
// state to an ItemObj/ItemReduce result.
func (p *Interpreter) opSetItem() error {
	value, err := p.pop()
	if err != nil {
		return err
	}
	key, err := p.pop()
	if err != nil {
		return err
	}
	target, err := p.peek()
	if err != nil {
		return err
	}
	target.DictChildren = append(target.DictChildren, DictEntry{Key: key, Value: value})
	return nil
}

func (p *Interpreter) opSetItems() error {
	items, err := p.popMarkItems()
	if err != nil {
		return err
	}
	if len(items)%2 != 0 {
		return errors.Wrap(ErrMalformed, "SETITEMS: odd number of mark items")
	}
	target, err := p.peek()
	if err != nil {
		return err
	}
	for i := 0; i < len(items); i += 2 {
		target.DictChildren = append(target.DictChildren, DictEntry{Key: items[i], Value: items[i+1]})
	}
	return nil
}

// opBuild implements BUILD generically: it records the state item against
// whatever is on top of the stack, without restricting that item's Type.
func (p *Interpreter) opBuild() error {
	state, err := p.pop()
	if err != nil {
		return err
	}
	obj, err := p.peek()
	if err != nil {
		return err
	}
	obj.BuildState = state
	return nil
}
