// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sysfact

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Host returns the fact source of the running machine.
func Host() Source {
	return sysctlSource{}
}

// sysctlSource reads each fact from the hw.* sysctl node its key is
// named after.
type sysctlSource struct{}

func (sysctlSource) String(key Key) (string, error) {
	if !key.IsString() {
		return "", unknownKey(key)
	}
	value, err := unix.Sysctl(string(key))
	if err != nil {
		return "", fmt.Errorf("sysctl %s: %w", key, err)
	}
	return value, nil
}

func (sysctlSource) Int(key Key) (int, error) {
	if !key.IsInt() {
		return 0, unknownKey(key)
	}
	value, err := unix.SysctlUint32(string(key))
	if err != nil {
		return 0, fmt.Errorf("sysctl %s: %w", key, err)
	}
	// The hw.* integer nodes are C ints.
	return int(int32(value)), nil
}

func (sysctlSource) Identity() (Identity, error) {
	return unameIdentity()
}
