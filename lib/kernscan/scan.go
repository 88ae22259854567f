// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kernscan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// marker precedes the version string in the image.
var marker = []byte("@(#)")

const (
	// DefaultChunkSize is the read size of the chunked scan.
	DefaultChunkSize = 2048

	// DefaultMaxVersionLength bounds the terminator search in span
	// mode.
	DefaultMaxVersionLength = 4096

	// MinChunkSize is the smallest chunk that can hold the marker.
	MinChunkSize = 4
)

// Options configures a [Scanner]. The zero value scans raw images in
// 2048-byte chunks, searching each chunk on its own, with no
// privilege check.
type Options struct {
	// ChunkSize is the number of bytes per read. Zero selects
	// DefaultChunkSize. Values below MinChunkSize are rejected by New.
	ChunkSize int

	// RequireRoot makes Extract fail with KindPermission unless the
	// real user ID is 0. The check runs before the image is opened.
	RequireRoot bool

	// Identity supplies the user IDs for the privilege check. Nil
	// selects the running process.
	Identity IdentitySource

	// SpanChunks finds markers and terminators across chunk
	// boundaries. Off by default.
	SpanChunks bool

	// MaxVersionLength bounds the version length in span mode. Zero
	// selects DefaultMaxVersionLength.
	MaxVersionLength int

	// Decompress scans gzip, zstd, and lz4 images after decoding
	// them. Images without a recognized magic are scanned raw.
	Decompress bool
}

// Result is the outcome of a scan.
type Result struct {
	// Version is the text after the marker, without the marker,
	// terminator, or any NUL byte. Meaningful only when Found is true.
	Version string

	// Found is false when the stream ended without a marker.
	Found bool

	// Offset is the byte offset of the marker in the scanned stream.
	Offset int64

	// Truncated is set when the version ended at a chunk boundary (or
	// at MaxVersionLength in span mode) instead of at a terminator.
	Truncated bool

	// Compression is the encoding the image was decoded from.
	Compression Compression
}

// Scanner extracts embedded version strings. A Scanner holds only its
// options and is safe for concurrent use.
type Scanner struct {
	options Options
}

// New validates options and returns a Scanner.
func New(options Options) (*Scanner, error) {
	if options.ChunkSize == 0 {
		options.ChunkSize = DefaultChunkSize
	}
	if options.ChunkSize < MinChunkSize {
		return nil, fmt.Errorf("chunk size %d is smaller than the %d-byte marker", options.ChunkSize, MinChunkSize)
	}
	if options.MaxVersionLength == 0 {
		options.MaxVersionLength = DefaultMaxVersionLength
	}
	if options.MaxVersionLength < 0 {
		return nil, fmt.Errorf("max version length %d is negative", options.MaxVersionLength)
	}
	if options.Identity == nil {
		options.Identity = ProcessIdentity{}
	}
	return &Scanner{options: options}, nil
}

// ExtractVersion scans the image at path with default options.
func ExtractVersion(path string) (Result, error) {
	scanner, _ := New(Options{})
	return scanner.Extract(path)
}

// Extract opens the image at path and scans it. The file is closed
// before Extract returns, on every path.
func (s *Scanner) Extract(path string) (Result, error) {
	if s.options.RequireRoot {
		if err := CheckPrivilege(s.options.Identity, path); err != nil {
			return Result{}, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return Result{}, ioError("open", path, err)
	}
	defer file.Close()

	result, err := s.scan(file)
	if err != nil {
		var scanError *Error
		if errors.As(err, &scanError) {
			scanError.Path = path
		}
		return Result{}, err
	}
	return result, nil
}

// Scan scans an already open stream from its current position. The
// caller keeps ownership of r.
func (s *Scanner) Scan(r io.Reader) (Result, error) {
	return s.scan(r)
}

func (s *Scanner) scan(r io.Reader) (Result, error) {
	compression := CompressionNone
	if s.options.Decompress {
		decoded, detected, err := decompress(r)
		if err != nil {
			return Result{}, err
		}
		defer decoded.Close()
		r, compression = decoded, detected
	}

	var (
		result Result
		err    error
	)
	if s.options.SpanChunks {
		result, err = s.scanSpanning(r)
	} else {
		result, err = s.scanChunks(r)
	}
	result.Compression = compression
	return result, err
}

// scanChunks is the default scan: each chunk is searched on its own
// and nothing is carried between chunks.
func (s *Scanner) scanChunks(r io.Reader) (Result, error) {
	chunk := make([]byte, s.options.ChunkSize)
	var offset int64

	for {
		filled, readErr := fill(r, chunk)
		if index := bytes.Index(filled, marker); index >= 0 {
			candidate := filled[index+len(marker):]
			end, found := findTerminator(candidate)
			if !found {
				end = len(candidate)
			}
			return Result{
				Version:   string(candidate[:end]),
				Found:     true,
				Offset:    offset + int64(index),
				Truncated: !found,
			}, nil
		}
		offset += int64(len(filled))

		if readErr == io.EOF {
			return Result{}, nil
		}
		if readErr != nil {
			return Result{}, ioError("read", "", readErr)
		}
	}
}

// scanSpanning carries the last len(marker)-1 bytes of each chunk to
// the front of the next so a straddling marker is still found.
func (s *Scanner) scanSpanning(r io.Reader) (Result, error) {
	keep := len(marker) - 1
	window := make([]byte, keep+s.options.ChunkSize)
	carried := 0
	// consumed counts stream bytes that have left the window for good.
	var consumed int64

	for {
		read, readErr := fill(r, window[carried:carried+s.options.ChunkSize])
		filled := window[:carried+len(read)]

		if index := bytes.Index(filled, marker); index >= 0 {
			version, truncated, err := s.readVersion(r, filled[index+len(marker):], readErr)
			if err != nil {
				return Result{}, err
			}
			return Result{
				Version:   version,
				Found:     true,
				Offset:    consumed + int64(index),
				Truncated: truncated,
			}, nil
		}

		if readErr == io.EOF {
			return Result{}, nil
		}
		if readErr != nil {
			return Result{}, ioError("read", "", readErr)
		}

		tail := max(len(filled)-keep, 0)
		consumed += int64(tail)
		carried = copy(window, filled[tail:])
	}
}

// readVersion completes a span-mode candidate. It keeps reading from r
// until a terminator appears, the stream ends, or MaxVersionLength
// bytes have been collected. pending is the read status of the chunk
// that held the marker.
func (s *Scanner) readVersion(r io.Reader, candidate []byte, pending error) (string, bool, error) {
	limit := s.options.MaxVersionLength
	if end, found := findTerminator(candidate); found {
		return string(candidate[:min(end, limit)]), end > limit, nil
	}

	version := append([]byte(nil), candidate...)
	chunk := make([]byte, s.options.ChunkSize)
	for pending == nil && len(version) < limit {
		var filled []byte
		filled, pending = fill(r, chunk)
		if end, found := findTerminator(filled); found {
			version = append(version, filled[:end]...)
			if len(version) > limit {
				return string(version[:limit]), true, nil
			}
			return string(version), false, nil
		}
		version = append(version, filled...)
	}
	if pending != nil && pending != io.EOF {
		return "", false, ioError("read", "", pending)
	}

	if len(version) >= limit {
		return string(version[:limit]), true, nil
	}
	// End of stream without a terminator: the image simply ends with
	// the version text.
	return string(version), false, nil
}

// fill reads until buffer is full or the stream stops. It returns the
// filled prefix and io.EOF once the stream is exhausted (possibly
// alongside a final partial chunk), or the read error.
func fill(r io.Reader, buffer []byte) ([]byte, error) {
	n, err := io.ReadFull(r, buffer)
	switch err {
	case nil:
		return buffer[:n], nil
	case io.ErrUnexpectedEOF:
		return buffer[:n], io.EOF
	default:
		return buffer[:n], err
	}
}

// findTerminator returns the index of the first newline or NUL byte in
// candidate. found is false when there is none; index 0 with found set
// is a valid, empty version.
func findTerminator(candidate []byte) (index int, found bool) {
	for i, b := range candidate {
		if b == '\n' || b == 0 {
			return i, true
		}
	}
	return 0, false
}
