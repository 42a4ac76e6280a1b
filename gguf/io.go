// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gguf

import (
	"encoding/binary"

	"github.com/nlpodyssey/tensorcontainers/storage"
)

func readExact(s storage.Storage, n int64) ([]byte, error) {
	return s.Read(n, 0)
}

func readUint32(s storage.Storage) (uint32, error) {
	b, err := readExact(s, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func readUint64(s storage.Storage) (uint64, error) {
	b, err := readExact(s, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// readString reads a u64-length-prefixed UTF-8 string, the encoding GGUF
// uses for every string-valued field (metadata keys, string-typed
// values, tensor names).
func readString(s storage.Storage) (string, error) {
	n, err := readUint64(s)
	if err != nil {
		return "", err
	}
	b, err := readExact(s, int64(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
