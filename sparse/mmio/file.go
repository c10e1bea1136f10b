// Copyright 2025 go-sparse Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mmio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/go-sparse/spgemm/sparse"
)

// Compression is the codec wrapped around a Matrix Market stream.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// decoderMaxMemory bounds the memory a zstd decoder may allocate for a
// single file.
const decoderMaxMemory = 4 << 30

// CompressionOf picks the codec from the file extension.
func CompressionOf(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// NewReader wraps r with the decompressor for c. Closing the returned
// reader does not close r.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("mmio: opening gzip stream: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
			zstd.WithDecoderMaxMemory(decoderMaxMemory),
		)
		if err != nil {
			return nil, fmt.Errorf("mmio: opening zstd stream: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

// ReadFile reads a possibly compressed Matrix Market file.
func ReadFile(path string) (*Header, *sparse.Tuples[float64], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r, err := NewReader(f, CompressionOf(path))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	defer r.Close()

	h, t, err := Read(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, t, nil
}

// WriteFile writes t to path, compressing it when the extension asks for it.
func WriteFile(path string, t *sparse.Tuples[float64], comments ...string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	var w io.WriteCloser
	switch CompressionOf(path) {
	case CompressionGzip:
		w = gzip.NewWriter(f)
	case CompressionZstd:
		w, err = zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("mmio: opening zstd stream: %w", err)
		}
	default:
		return Write(f, t, comments...)
	}
	if err := Write(w, t, comments...); err != nil {
		_ = w.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: closing compressor: %w", path, err)
	}
	return nil
}
