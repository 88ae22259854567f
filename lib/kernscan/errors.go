// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kernscan

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied matches (via errors.Is) every [*Error] of kind
// [KindPermission].
var ErrPermissionDenied = errors.New("permission denied")

// ErrorKind classifies a scan failure.
type ErrorKind int

const (
	// KindPermission means the privilege check failed. No open or read
	// was attempted.
	KindPermission ErrorKind = iota + 1

	// KindIO means opening, reading, or decoding the image failed. The
	// underlying OS or decoder error is available through Unwrap.
	KindIO
)

// String returns the human-readable name of an error kind.
func (kind ErrorKind) String() string {
	switch kind {
	case KindPermission:
		return "permission denied"
	case KindIO:
		return "i/o error"
	default:
		return fmt.Sprintf("unknown(%d)", int(kind))
	}
}

// Error is the structured failure returned by [Scanner.Extract] and
// [Scanner.Scan].
type Error struct {
	Kind ErrorKind

	// Op is the operation that failed: "privilege", "open", "read", or
	// "decompress".
	Op string

	// Path is the image path. Empty for [Scanner.Scan].
	Path string

	Err error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is [ErrPermissionDenied] and e is a
// permission failure.
func (e *Error) Is(target error) bool {
	return target == ErrPermissionDenied && e.Kind == KindPermission
}

func ioError(op, path string, err error) *Error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}
