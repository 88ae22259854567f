// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package kernscan

import "os"

// Getuid returns -1 on platforms without POSIX user IDs.
func (ProcessIdentity) Getuid() int { return os.Getuid() }

// Geteuid returns -1 on platforms without POSIX user IDs.
func (ProcessIdentity) Geteuid() int { return os.Geteuid() }
