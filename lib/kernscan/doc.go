// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package kernscan extracts the embedded "@(#)" version string from a
// kernel executable image.
//
// BSD kernels carry an SCCS-style identification string such as
//
//	@(#)OpenBSD 7.4 (GENERIC.MP) #1397: Tue Oct 10 09:02:37 MDT 2023
//
// somewhere in their data section. [ExtractVersion] opens the image,
// streams it in fixed-size chunks, finds the first occurrence of the
// four-byte marker, and returns the text that follows it up to the
// first newline or NUL byte. No executable format is parsed: the image
// is treated as an opaque byte stream.
//
// # Outcomes
//
// A scan produces a [Result]. Result.Found distinguishes "marker
// absent" from "marker present with an empty version". Failures are
// returned as [*Error] with a [ErrorKind]:
//
//   - [KindPermission] -- the privilege check failed before the image
//     was opened (only when Options.RequireRoot is set)
//   - [KindIO] -- open, read, or decompressor failure
//
// A missing marker is never an error.
//
// # Chunk boundaries
//
// The default mode searches each 2048-byte chunk on its own, as the
// OpenBSD sysver(1) tool does, and keeps its two limitations:
//
//   - a marker whose four bytes straddle two chunks is not found
//   - the terminator search does not continue past the end of the chunk
//     holding the marker; the version is cut at the chunk end and
//     Result.Truncated is set
//
// Options.SpanChunks lifts both: the scanner carries the last three
// bytes of each chunk into the next and keeps reading until a
// terminator, end of stream, or Options.MaxVersionLength.
//
// # Compressed images
//
// With Options.Decompress the scanner peeks at the first four bytes
// and transparently decodes gzip, zstd, and lz4-frame images before
// scanning. Offsets in the Result then refer to the decompressed
// stream.
//
// The package performs no logging and holds no global state; concurrent
// calls share nothing.
package kernscan
