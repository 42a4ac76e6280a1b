// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziparchive

import "encoding/binary"

// zip64Extra holds the subset of the ZIP64 extended information extra
// field (ID 0x0001) values this reader interprets. Fields are present
// only when the corresponding classic 32-bit field was saturated
// (0xFFFFFFFF); parseZip64Extra returns only the values actually encoded,
// in the fixed order the spec defines: uncompressed size, compressed
// size, local header offset, disk number.
type zip64Extra struct {
	uncompressedSize  *uint64
	compressedSize    *uint64
	localHeaderOffset *uint64
}

// parseZip64Extra scans a central-directory or local-header extra field
// block for the ZIP64 extended information record and extracts whichever
// of uncompressedSize/compressedSize/localHeaderOffset is needed, in
// the order the caller indicates by setting the "need" flags.
func parseZip64Extra(extra []byte, needUncompressed, needCompressed, needOffset bool) zip64Extra {
	var out zip64Extra
	for len(extra) >= 4 {
		id := binary.LittleEndian.Uint16(extra[0:2])
		size := binary.LittleEndian.Uint16(extra[2:4])
		if len(extra) < 4+int(size) {
			break
		}
		body := extra[4 : 4+int(size)]
		if id == zip64ExtraFieldID {
			off := 0
			if needUncompressed && off+8 <= len(body) {
				v := binary.LittleEndian.Uint64(body[off : off+8])
				out.uncompressedSize = &v
				off += 8
			}
			if needCompressed && off+8 <= len(body) {
				v := binary.LittleEndian.Uint64(body[off : off+8])
				out.compressedSize = &v
				off += 8
			}
			if needOffset && off+8 <= len(body) {
				v := binary.LittleEndian.Uint64(body[off : off+8])
				out.localHeaderOffset = &v
				off += 8
			}
			return out
		}
		extra = extra[4+int(size):]
	}
	return out
}
