// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

// clampRead resolves how many bytes a Read(length, flags) call should
// actually transfer, given remaining available bytes, applying the
// end-of-stream rules of spec §4.1 uniformly across every concrete
// Storage and the region view. It never returns n > length and never
// n > remaining.
func clampRead(remaining, length int64, flags ReadFlags) (n int64, err error) {
	if length <= 0 {
		return 0, nil
	}
	if remaining >= length {
		return length, nil
	}
	if remaining <= 0 {
		if flags.Has(FlagAllowEmpty) {
			return 0, nil
		}
		return 0, wrapErrf(ErrEndOfStream, "requested %d bytes, none remain", length)
	}
	// 0 < remaining < length: a partial read.
	if flags.Has(FlagAllowPartial) {
		return remaining, nil
	}
	return 0, wrapErrf(ErrEndOfStream, "requested %d bytes, only %d remain", length, remaining)
}
