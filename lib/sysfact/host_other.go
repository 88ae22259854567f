// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux && !openbsd

package sysfact

import (
	"fmt"
	"strings"

	"github.com/klauspost/cpuid/v2"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
)

// Host returns the fact source of the running machine.
func Host() Source {
	return portableSource{}
}

// portableSource answers facts through gopsutil on platforms without
// OpenBSD's hw.* sysctl tree or Linux's sysfs topology.
type portableSource struct{}

func (portableSource) String(key Key) (string, error) {
	switch key {
	case Machine:
		arch, err := host.KernelArch()
		if err != nil {
			return "", fmt.Errorf("%s: %w", key, err)
		}
		return arch, nil

	case Model:
		infos, err := cpu.Info()
		if err == nil {
			for _, info := range infos {
				if model := strings.TrimSpace(info.ModelName); model != "" {
					return model, nil
				}
			}
		}
		if model := strings.TrimSpace(cpuid.CPU.BrandName); model != "" {
			return model, nil
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", key, err)
		}
		return "", fmt.Errorf("%s: no cpu model reported", key)

	default:
		return "", unknownKey(key)
	}
}

func (portableSource) Int(key Key) (int, error) {
	switch key {
	case NCPU, NCPUOnline:
		// gopsutil only reports CPUs the scheduler can use, so both
		// facts share one count here.
		count, err := cpu.Counts(true)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return count, nil

	case SMT:
		logical, logicalErr := cpu.Counts(true)
		physical, physicalErr := cpu.Counts(false)
		if logicalErr == nil && physicalErr == nil && physical > 0 {
			if logical > physical {
				return 1, nil
			}
			return 0, nil
		}
		if cpuid.CPU.ThreadsPerCore > 1 {
			return 1, nil
		}
		return 0, nil

	case ByteOrder:
		return nativeByteOrder(), nil

	default:
		return 0, unknownKey(key)
	}
}

func (portableSource) Identity() (Identity, error) {
	return unameIdentity()
}
