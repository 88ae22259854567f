// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kernscan

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the encoding of a kernel image.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

// String returns the human-readable name of a compression.
func (compression Compression) String() string {
	switch compression {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(compression))
	}
}

// Frame magics. These are format constants of the respective
// compressors, not choices of this package.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// DetectCompression identifies the compression of a stream from its
// leading bytes. Fewer than four bytes, or an unknown prefix, is
// CompressionNone.
func DetectCompression(prefix []byte) Compression {
	switch {
	case bytes.HasPrefix(prefix, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(prefix, lz4Magic):
		return CompressionLZ4
	case bytes.HasPrefix(prefix, gzipMagic):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// decompress peeks at the head of r and returns a reader over the
// decoded image. The returned closer releases decoder state only; the
// caller still owns r.
func decompress(r io.Reader) (io.ReadCloser, Compression, error) {
	buffered := bufio.NewReader(r)
	prefix, err := buffered.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, CompressionNone, ioError("read", "", err)
	}

	compression := DetectCompression(prefix)
	switch compression {
	case CompressionGzip:
		decoder, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, compression, ioError("decompress", "", fmt.Errorf("gzip: %w", err))
		}
		return decoder, compression, nil

	case CompressionZstd:
		decoder, err := zstd.NewReader(buffered, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, compression, ioError("decompress", "", fmt.Errorf("zstd: %w", err))
		}
		return decoder.IOReadCloser(), compression, nil

	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(buffered)), compression, nil

	default:
		return io.NopCloser(buffered), CompressionNone, nil
	}
}
