// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pytorchfmt

import (
	"sort"
	"strings"

	"github.com/nlpodyssey/tensorcontainers/pickle"
	"github.com/nlpodyssey/tensorcontainers/storage"
	"github.com/nlpodyssey/tensorcontainers/tensor"
	"github.com/nlpodyssey/tensorcontainers/ziparchive"
	"github.com/pkg/errors"
)

const readChunkSize = 1 << 16

// Reader implements tensor.Reader over a PyTorch ".pt"/".bin" archive: one
// buffer per distinct storage referenced from data.pkl, produced in the
// ZIP's own member order (spec §4.6).
//
// Unlike Safetensors and GGUF, a PyTorch buffer's bytes don't live at a
// fixed offset of one seekable backing storage: each is a separate ZIP
// member, possibly arriving over a non-seekable stream. Reader therefore
// reads a buffer's member fully into a fresh storage.FromMemory rather
// than embedding tensor.RegionReader, which assumes one stable backing
// storage scoped by varying offset/size.
type Reader struct {
	zr     *ziparchive.Reader
	prefix string

	storages         map[string]*storageRef
	tensorsByStorage map[string][]tensor.Info
	pending          map[string]bool

	curBuf storage.Storage
	curKey string
}

// NewReader reads s's first ZIP member (which must be named
// "<prefix>/data.pkl"), unpickles it, and walks the resulting tree for
// tensor-building reductions, returning a Reader positioned before its
// first storage buffer.
func NewReader(s storage.Storage) (*Reader, error) {
	zr, err := ziparchive.NewReader(s)
	if err != nil {
		return nil, err
	}

	ok, err := zr.ReadNextFile()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMissingDataPickle
	}
	entry, _ := zr.CurrentEntry()
	const suffix = "/data.pkl"
	if !strings.HasSuffix(entry.Name, suffix) {
		return nil, errors.Wrapf(ErrMissingDataPickle, "first member is %q", entry.Name)
	}
	prefix := strings.TrimSuffix(entry.Name, suffix)

	pklBytes, err := readMemberBytes(zr, -1)
	if err != nil {
		return nil, errors.Wrap(err, "reading data.pkl")
	}

	root, err := pickle.NewInterpreter(storage.FromMemory(pklBytes)).Load()
	if err != nil {
		return nil, errors.Wrap(err, "unpickling data.pkl")
	}

	walker := newTreeWalker()
	if err := walker.walk("", root); err != nil {
		return nil, err
	}

	tensorsByStorage, err := groupAndValidateTensors(walker)
	if err != nil {
		return nil, err
	}

	pending := make(map[string]bool, len(walker.storages))
	for k := range walker.storages {
		pending[k] = true
	}

	return &Reader{
		zr:               zr,
		prefix:           prefix,
		storages:         walker.storages,
		tensorsByStorage: tensorsByStorage,
		pending:          pending,
	}, nil
}

func groupAndValidateTensors(w *treeWalker) (map[string][]tensor.Info, error) {
	out := make(map[string][]tensor.Info, len(w.storages))
	for _, pt := range w.tensors {
		elemSize := pt.valueType.Size()
		offsetBytes, err := tensor.RowMajorSize(elemSize, []uint64{pt.offsetStart})
		if err != nil {
			return nil, errors.Wrapf(err, "tensor %q: storage_offset overflow", pt.name)
		}
		sizeBytes, err := tensor.StridedSize(elemSize, pt.shape, pt.stride)
		if err != nil {
			return nil, errors.Wrapf(err, "tensor %q: size_bytes", pt.name)
		}

		st := w.storages[pt.storageKey]
		if offsetBytes+sizeBytes > st.sizeBytes {
			return nil, errors.Wrapf(ErrMalformedReduction,
				"tensor %q: offset_start+size_bytes exceeds storage %q size", pt.name, pt.storageKey)
		}

		out[pt.storageKey] = append(out[pt.storageKey], tensor.Info{
			Name:        pt.name,
			OffsetStart: int64(offsetBytes),
			SizeBytes:   sizeBytes,
			Type:        pt.valueType,
			Shape:       pt.shape,
			Stride:      pt.stride,
		})
	}
	for key, infos := range out {
		sort.Slice(infos, func(i, j int) bool { return infos[i].OffsetStart < infos[j].OffsetStart })
		out[key] = infos
	}
	return out, nil
}

// Prefix returns the top-level ZIP directory name captured from the
// archive's first member.
func (r *Reader) Prefix() string { return r.prefix }

func (r *Reader) ReadNextBuffer() (bool, error) {
	for {
		ok, err := r.zr.ReadNextFile()
		if err != nil {
			return false, err
		}
		if !ok {
			r.curBuf = nil
			for key := range r.pending {
				return false, errors.Wrapf(ErrMissingStorageMember, "storage %q", key)
			}
			return false, nil
		}

		entry, _ := r.zr.CurrentEntry()
		key, ok := matchStorageMember(entry.Name, r.prefix)
		if !ok {
			continue
		}
		st, known := r.storages[key]
		if !known {
			continue
		}
		delete(r.pending, key)

		content, err := readMemberBytes(r.zr, -1)
		if err != nil {
			return false, errors.Wrapf(err, "storage %q", key)
		}
		if uint64(len(content)) != st.sizeBytes {
			return false, errors.Wrapf(ErrStorageSizeMismatch, "storage %q", key)
		}

		r.curKey = key
		r.curBuf = storage.FromMemory(content)
		return true, nil
	}
}

func (r *Reader) TensorsInBuffer() []tensor.Info {
	if r.curBuf == nil {
		return nil
	}
	return r.tensorsByStorage[r.curKey]
}

func (r *Reader) BufferSize() uint64 {
	if r.curBuf == nil {
		return 0
	}
	return r.storages[r.curKey].sizeBytes
}

func (r *Reader) ReadAllTensorInfos() ([]tensor.Info, error) {
	var out []tensor.Info
	for _, infos := range r.tensorsByStorage {
		for _, info := range infos {
			info.OffsetStart = tensor.OffsetUnknown
			out = append(out, info)
		}
	}
	return out, nil
}

func (r *Reader) CurrentPosition() int64 {
	if r.curBuf == nil {
		return 0
	}
	return r.curBuf.CurrentPosition()
}

func (r *Reader) OriginalPosition() int64 {
	if r.curBuf == nil {
		return 0
	}
	return r.curBuf.OriginalPosition()
}

func (r *Reader) Read(length int64, flags storage.ReadFlags) ([]byte, error) {
	if r.curBuf == nil {
		return nil, storage.ErrEndOfStream
	}
	return r.curBuf.Read(length, flags)
}

func (r *Reader) CanSeekBack(allowDetect bool) bool {
	if r.curBuf == nil {
		return false
	}
	return r.curBuf.CanSeekBack(allowDetect)
}

func (r *Reader) SeekTo(absolute int64) error {
	if r.curBuf == nil {
		return storage.ErrEndOfStream
	}
	return r.curBuf.SeekTo(absolute)
}

func (r *Reader) SeekFromBack(absoluteFromEnd int64) error {
	if r.curBuf == nil {
		return storage.ErrEndOfStream
	}
	return r.curBuf.SeekFromBack(absoluteFromEnd)
}

// Close is a no-op: a Reader borrows its backing storage and never
// closes it (spec §5).
func (r *Reader) Close() error { return nil }

func matchStorageMember(name, prefix string) (string, bool) {
	p := prefix + "/data/"
	if !strings.HasPrefix(name, p) {
		return "", false
	}
	return strings.TrimPrefix(name, p), true
}

func readMemberBytes(zr *ziparchive.Reader, limit int64) ([]byte, error) {
	var out []byte
	for limit < 0 || int64(len(out)) < limit {
		want := int64(readChunkSize)
		if limit >= 0 {
			if remaining := limit - int64(len(out)); remaining < want {
				want = remaining
			}
		}
		chunk, err := zr.Read(want, storage.FlagAllowPartial|storage.FlagAllowEmpty)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			break
		}
		out = append(out, chunk...)
	}
	if limit >= 0 && int64(len(out)) != limit {
		return nil, errors.Wrapf(storage.ErrEndOfStream, "expected %d bytes, got %d", limit, len(out))
	}
	return out, nil
}
