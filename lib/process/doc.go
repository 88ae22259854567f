// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint helper for reporting
// an unrecoverable error from main() before or after the structured
// logger exists.
package process
