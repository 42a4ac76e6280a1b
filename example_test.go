// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensorcontainers_test

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/nlpodyssey/tensorcontainers"
)

// ExampleReadTensors builds a minimal Safetensors stream in memory and
// reads it back through the format-agnostic entry point, which detects
// the format from the stream's own bytes rather than a file extension.
func ExampleReadTensors() {
	header := []byte(`{"weight":{"dtype":"F32","shape":[2,2],"data_offsets":[0,16]}}`)
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(header)))

	serialized := append(append(lenBuf[:], header...), make([]byte, 16)...)

	r, err := tensorcontainers.ReadTensors(tensorcontainers.FromMemory(serialized), false)
	if err != nil {
		log.Fatal(err)
	}

	ok, err := r.ReadNextBuffer()
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		log.Fatal("expected one buffer")
	}

	for _, info := range r.TensorsInBuffer() {
		fmt.Printf("name = %s, type = %s, shape = %v\n", info.Name, info.Type, info.Shape)
	}

	// Output:
	// name = weight, type = f32, shape = [2 2]
}
