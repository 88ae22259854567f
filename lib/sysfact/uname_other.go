// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package sysfact

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/host"
)

// unameIdentity assembles an identity record from gopsutil's host
// information on platforms without uname(2).
func unameIdentity() (Identity, error) {
	info, err := host.Info()
	if err != nil {
		return Identity{}, fmt.Errorf("host info: %w", err)
	}
	return Identity{
		Sysname:  info.Platform,
		Nodename: info.Hostname,
		Release:  info.KernelVersion,
		Version:  info.PlatformVersion,
		Machine:  info.KernelArch,
	}, nil
}
