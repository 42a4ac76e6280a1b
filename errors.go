// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensorcontainers

import "github.com/pkg/errors"

// ErrUnknownFormat reports that ReadTensors could not identify the
// container format from the first 12 bytes of the stream (spec §4.9).
var ErrUnknownFormat = errors.New("tensorcontainers: unknown tensor container format")
