// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pytorchfmt

import (
	"strconv"

	"github.com/nlpodyssey/tensorcontainers/pickle"
	"github.com/nlpodyssey/tensorcontainers/tensor"
	"github.com/pkg/errors"
)

// storageRef describes one distinct storage_key encountered while
// walking the pickle tree: the element representation and element count
// carried by its persistent id, used to size its buffer (spec §4.6).
type storageRef struct {
	key         string
	valueType   tensor.ValueType
	numElements uint64
	sizeBytes   uint64
}

// pendingTensor is a tensor reduction found in the pickle tree, still
// relative to its storage (not yet resolved to an absolute buffer
// offset).
type pendingTensor struct {
	name        string
	storageKey  string
	valueType   tensor.ValueType
	offsetStart uint64 // elements, relative to storage start
	shape       []uint64
	stride      []uint64
}

// treeWalker accumulates storages and tensors discovered by walking the
// root Item produced by unpickling data.pkl.
type treeWalker struct {
	storages map[string]*storageRef
	tensors  []pendingTensor
}

func newTreeWalker() *treeWalker {
	return &treeWalker{storages: make(map[string]*storageRef)}
}

func (w *treeWalker) walk(name string, node *pickle.Item) error {
	if node == nil {
		return nil
	}

	if isTensorReduction(node) {
		return w.addTensor(name, node)
	}
	if entries, ok := dictLikeEntries(node); ok {
		for _, e := range entries {
			key, ok := e.Key.AsString()
			if !ok {
				continue
			}
			if err := w.walk(joinName(name, key), e.Value); err != nil {
				return err
			}
		}
		return nil
	}
	if node.Type == pickle.ItemList || node.Type == pickle.ItemTuple {
		for i, child := range node.ListChildren {
			if err := w.walk(joinName(name, strconv.Itoa(i)), child); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func joinName(base, part string) string {
	if base == "" {
		return part
	}
	return base + "." + part
}

func isOrderedDictGlobal(g *pickle.Item) bool {
	return g != nil && g.Type == pickle.ItemGlobal &&
		g.GlobalModule == "collections" && g.GlobalName == "OrderedDict"
}

// dictLikeEntries returns the key/value entries of a plain dict or of a
// reduce(global=collections.OrderedDict, ...) node, whose entries arrive
// via SETITEM/SETITEMS directly on the reduce item's DictChildren (spec
// §9's "SETITEM only requires the DictChildren slot").
func dictLikeEntries(node *pickle.Item) ([]pickle.DictEntry, bool) {
	switch {
	case node.Type == pickle.ItemDict:
		return node.DictChildren, true
	case node.Type == pickle.ItemReduce && isOrderedDictGlobal(node.ReduceCallable):
		return node.DictChildren, true
	}
	return nil, false
}

func isTensorReduction(node *pickle.Item) bool {
	if node.Type != pickle.ItemReduce || node.ReduceCallable == nil {
		return false
	}
	g := node.ReduceCallable
	return g.Type == pickle.ItemGlobal && g.GlobalModule == "torch._utils" &&
		(g.GlobalName == "_rebuild_tensor_v2" || g.GlobalName == "_rebuild_tensor_v3")
}

func (w *treeWalker) addTensor(name string, node *pickle.Item) error {
	isV3 := node.ReduceCallable.GlobalName == "_rebuild_tensor_v3"
	args := node.ReduceArgs
	if args == nil || args.Type != pickle.ItemTuple || len(args.ListChildren) < 4 {
		return errors.Wrapf(ErrMalformedReduction, "tensor %q", name)
	}
	items := args.ListChildren

	ref, err := w.resolveStorage(items[0])
	if err != nil {
		return errors.Wrapf(err, "tensor %q", name)
	}

	offsetElems, ok := items[1].AsInt64()
	if !ok || offsetElems < 0 {
		return errors.Wrapf(ErrMalformedReduction, "tensor %q: storage_offset", name)
	}

	shape, err := intTupleToUint64(items[2])
	if err != nil {
		return errors.Wrapf(err, "tensor %q: size", name)
	}
	stride, err := intTupleToUint64(items[3])
	if err != nil {
		return errors.Wrapf(err, "tensor %q: stride", name)
	}

	valueType := ref.valueType
	if isV3 && len(items) > 6 {
		if g := items[6]; g != nil && g.Type == pickle.ItemGlobal {
			if vt, ok := dtypeGlobalValueType[g.GlobalName]; ok {
				valueType = vt
			}
		}
	}

	w.tensors = append(w.tensors, pendingTensor{
		name:        name,
		storageKey:  ref.key,
		valueType:   valueType,
		offsetStart: uint64(offsetElems),
		shape:       shape,
		stride:      stride,
	})
	return nil
}

func (w *treeWalker) resolveStorage(persIdArg *pickle.Item) (*storageRef, error) {
	if persIdArg == nil || persIdArg.Type != pickle.ItemPersId {
		return nil, ErrMalformedPersId
	}
	tup := persIdArg.PersIdValue
	if tup == nil || tup.Type != pickle.ItemTuple || len(tup.ListChildren) < 5 {
		return nil, ErrMalformedPersId
	}
	parts := tup.ListChildren

	tag, ok := parts[0].AsString()
	if !ok || tag != "storage" {
		return nil, ErrMalformedPersId
	}
	elementGlobal := parts[1]
	if elementGlobal.Type != pickle.ItemGlobal {
		return nil, ErrMalformedPersId
	}
	key, ok := storageKeyString(parts[2])
	if !ok {
		return nil, ErrMalformedPersId
	}
	numElements, ok := parts[4].AsInt64()
	if !ok || numElements < 0 {
		return nil, ErrMalformedPersId
	}

	if ref, exists := w.storages[key]; exists {
		return ref, nil
	}

	valueType, ok := storageGlobalValueType[elementGlobal.GlobalName]
	if !ok {
		// Unrecognized storage element globals (e.g. torch's newer
		// untyped storage) are treated as raw bytes: spec §4.6 derives
		// value_type from the element global, but leaves unknown
		// globals unspecified (§9 Open Question).
		valueType = tensor.U8
	}

	size, err := tensor.RowMajorSize(valueType.Size(), []uint64{uint64(numElements)})
	if err != nil {
		return nil, errors.Wrap(err, "computing storage size")
	}

	ref := &storageRef{
		key:         key,
		valueType:   valueType,
		numElements: uint64(numElements),
		sizeBytes:   size,
	}
	w.storages[key] = ref
	return ref, nil
}

func storageKeyString(item *pickle.Item) (string, bool) {
	if s, ok := item.AsString(); ok {
		return s, true
	}
	if n, ok := item.AsInt64(); ok {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}

func intTupleToUint64(item *pickle.Item) ([]uint64, error) {
	if item == nil || (item.Type != pickle.ItemTuple && item.Type != pickle.ItemList) {
		return nil, errors.New("expected a tuple of integers")
	}
	out := make([]uint64, len(item.ListChildren))
	for i, child := range item.ListChildren {
		v, ok := child.AsInt64()
		if !ok || v < 0 {
			return nil, errors.Errorf("element %d is not a non-negative integer", i)
		}
		out[i] = uint64(v)
	}
	return out, nil
}
