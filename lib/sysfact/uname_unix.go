// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package sysfact

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// unameIdentity returns the identity record from uname(2).
func unameIdentity() (Identity, error) {
	var utsname unix.Utsname
	if err := unix.Uname(&utsname); err != nil {
		return Identity{}, fmt.Errorf("uname: %w", err)
	}
	return Identity{
		Sysname:  unix.ByteSliceToString(utsname.Sysname[:]),
		Nodename: unix.ByteSliceToString(utsname.Nodename[:]),
		Release:  unix.ByteSliceToString(utsname.Release[:]),
		Version:  unix.ByteSliceToString(utsname.Version[:]),
		Machine:  unix.ByteSliceToString(utsname.Machine[:]),
	}, nil
}
