// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !openbsd

package sysfact

import "golang.org/x/sys/cpu"

// nativeByteOrder reports the ByteOrder fact for platforms without an
// hw.byteorder sysctl.
func nativeByteOrder() int {
	if cpu.IsBigEndian {
		return BigEndian
	}
	return LittleEndian
}
