// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes content digests of kernel images.
//
// The embedded "@(#)" string names a kernel build, but two builds with
// the same configuration and timestamp text are indistinguishable by
// that string alone. A BLAKE3 digest of the image bytes identifies the
// installed build exactly, which is what "sysver -ikernsum" reports.
//
// The API surface is two pieces:
//
//   - [HashFile] -- streams a file through BLAKE3, returning a [Digest]
//     with constant memory usage regardless of file size
//   - [Digest.String] -- the canonical lowercase hex encoding used in
//     command output and logs
//
// This package has no dependencies on other sysver packages.
package binhash
