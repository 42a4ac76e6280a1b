// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziparchive

const (
	localFileHeaderSignature    = 0x04034b50
	centralDirHeaderSignature   = 0x02014b50
	endOfCentralDirSignature    = 0x06054b50
	zip64EOCDLocatorSignature   = 0x07064b50
	zip64EOCDRecordSignature    = 0x06064b50
	dataDescriptorSignature     = 0x08074b50
	zip64ExtraFieldID           = 0x0001
	methodStored                = 0
	flagEncrypted               = 1 << 0
	flagLengthAtEnd             = 1 << 3
	eocdFixedSize               = 22
	zip64EOCDLocatorSize        = 20
	maxEOCDCommentSearchWindow  = eocdFixedSize + 65535
	uint32Max            uint32 = 0xFFFFFFFF
	uint16Max            uint16 = 0xFFFF
)
