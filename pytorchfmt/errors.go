// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pytorchfmt parses the PyTorch ".pt"/".bin" container: a
// stored-only ZIP archive whose first member is a pickled object graph
// and whose remaining members hold raw tensor storage bytes.
package pytorchfmt

import "github.com/pkg/errors"

var (
	// ErrMissingDataPickle reports a ZIP archive whose first member is
	// not named "<prefix>/data.pkl".
	ErrMissingDataPickle = errors.New("pytorchfmt: missing data.pkl member")
	// ErrMissingStorageMember reports a storage_key referenced by the
	// pickle tree with no corresponding "<prefix>/data/<storage_key>"
	// ZIP member.
	ErrMissingStorageMember = errors.New("pytorchfmt: missing storage member")
	// ErrMalformedReduction reports a torch._utils._rebuild_tensor_v2/v3
	// reduction whose argument shape does not match spec §4.6.
	ErrMalformedReduction = errors.New("pytorchfmt: malformed tensor reduction")
	// ErrMalformedPersId reports a persistent id that is not the
	// expected 5-tuple ("storage", element_global, storage_key, device,
	// num_elements).
	ErrMalformedPersId = errors.New("pytorchfmt: malformed storage persistent id")
	// ErrBufferExhausted names the no-more-buffers condition. Reader's
	// ReadNextBuffer does not return it: once every storage's buffer has
	// been produced it reports (false, nil).
	ErrBufferExhausted = errors.New("pytorchfmt: no more buffers")
	// ErrStorageSizeMismatch reports a storage member whose ZIP-declared
	// size disagrees with the byte count implied by its persistent id's
	// num_elements.
	ErrStorageSizeMismatch = errors.New("pytorchfmt: storage member size mismatch")
)
