// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensorcontainers

import (
	"bytes"

	"github.com/nlpodyssey/tensorcontainers/splitter"
	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/nlpodyssey/tensorcontainers/tensor"
	"github.com/pkg/errors"
)

var (
	ggufMagic             = []byte("GGUF")
	zipLocalFileSignature = []byte{'P', 'K', 0x03, 0x04}
)

// ReadTensors auto-detects s's container format from its first 12 bytes
// and returns a tensor.Reader over it, without consuming those bytes
// (spec §4.9). When smallBuffers is true, the reader is wrapped in
// splitter.NewReader so no returned buffer spans more than one run of
// mutually overlapping tensors.
func ReadTensors(s storage.Storage, smallBuffers bool) (tensor.Reader, error) {
	signature, err := s.Read(12, storage.FlagPeek|storage.FlagAllowPartial|storage.FlagAllowEmpty)
	if err != nil {
		return nil, errors.Wrap(err, "peeking format signature")
	}

	r, err := detect(s, signature)
	if err != nil {
		return nil, err
	}
	if smallBuffers {
		return splitter.NewReader(r), nil
	}
	return r, nil
}

func detect(s storage.Storage, signature []byte) (tensor.Reader, error) {
	switch {
	case len(signature) >= 4 && bytes.Equal(signature[:4], ggufMagic):
		return NewGGUFReader(s)
	case len(signature) >= 4 && bytes.Equal(signature[:4], zipLocalFileSignature):
		return NewPyTorchReader(s)
	case len(signature) >= 9 && signature[8] == '{':
		return NewSafetensorsReader(s)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "signature % x", signature)
	}
}
