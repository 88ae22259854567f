// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package kernscan

import "golang.org/x/sys/unix"

// Getuid returns the real user ID via getuid(2).
func (ProcessIdentity) Getuid() int { return unix.Getuid() }

// Geteuid returns the effective user ID via geteuid(2).
func (ProcessIdentity) Geteuid() int { return unix.Geteuid() }
