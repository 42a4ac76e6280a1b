// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

import "math/big"

// decodeLong decodes b, a little-endian two's-complement byte vector (as
// LONG1/LONG4 encode it), into a big.Int. The sign is taken from the top
// bit of the highest-order (last) byte; for negative values the
// magnitude is ~b + 1 computed over the byte vector.
func decodeLong(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	negative := b[len(b)-1]&0x80 != 0
	if !negative {
		return new(big.Int).SetBytes(reverseBytes(b))
	}
	inv := make([]byte, len(b))
	for i, v := range b {
		inv[i] = ^v
	}
	magnitude := new(big.Int).SetBytes(reverseBytes(inv))
	magnitude.Add(magnitude, big.NewInt(1))
	return magnitude.Neg(magnitude)
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
