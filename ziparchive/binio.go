// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziparchive

import (
	"encoding/binary"

	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/pkg/errors"
)

func readUint16(s storage.Storage) (uint16, error) {
	b, err := s.Read(2, storage.FlagTemporary)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func readUint32(s storage.Storage) (uint32, error) {
	b, err := s.Read(4, storage.FlagTemporary)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func readUint64(s storage.Storage) (uint64, error) {
	b, err := s.Read(8, storage.FlagTemporary)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func readBytes(s storage.Storage, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	b, err := s.Read(int64(n), 0)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func readSignature(s storage.Storage, want uint32) error {
	got, err := readUint32(s)
	if err != nil {
		return err
	}
	if got != want {
		return errors.Wrapf(ErrBadSignature, "expected 0x%08x, got 0x%08x", want, got)
	}
	return nil
}
