// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides sysver's CBOR encoding configuration for
// "--format cbor" output.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same set of facts always produces identical bytes, so fleet tooling
// can compare reports from many machines byte for byte.
//
//	data, err := codec.Marshal(report)
//	err = codec.Unmarshal(data, &report)
//
// Types emitted by the CLI carry `json` struct tags only.
// fxamacker/cbor v2 reads `json` tags when `cbor` tags are absent, so
// one tag controls field naming for JSON, YAML-adjacent tooling, and
// CBOR alike. Never put both `cbor` and `json` tags on one field.
package codec
