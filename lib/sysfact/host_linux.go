// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sysfact

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// Host returns the fact source of the running machine.
func Host() Source {
	return &linuxSource{procRoot: "/proc", sysRoot: "/sys", uname: unameIdentity}
}

// linuxSource reads facts from procfs and sysfs. The roots are fields
// so tests can point at synthetic trees.
type linuxSource struct {
	procRoot string
	sysRoot  string
	uname    func() (Identity, error)
}

func (s *linuxSource) String(key Key) (string, error) {
	switch key {
	case Machine:
		identity, err := s.uname()
		if err != nil {
			return "", fmt.Errorf("%s: %w", key, err)
		}
		return identity.Machine, nil

	case Model:
		if model := readCPUModel(filepath.Join(s.procRoot, "cpuinfo")); model != "" {
			return model, nil
		}
		if model := strings.TrimSpace(cpuid.CPU.BrandName); model != "" {
			return model, nil
		}
		return "", fmt.Errorf("%s: no cpu model reported", key)

	default:
		return "", unknownKey(key)
	}
}

func (s *linuxSource) Int(key Key) (int, error) {
	cpuBase := filepath.Join(s.sysRoot, "devices/system/cpu")

	switch key {
	case NCPU:
		if count, err := ParseCPUList(readSysfsString(filepath.Join(cpuBase, "present"))); err == nil {
			return count, nil
		}
		if count := countCPUDirectories(cpuBase); count > 0 {
			return count, nil
		}
		return 0, fmt.Errorf("%s: no cpu topology under %s", key, cpuBase)

	case NCPUOnline:
		count, err := ParseCPUList(readSysfsString(filepath.Join(cpuBase, "online")))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return count, nil

	case SMT:
		switch readSysfsString(filepath.Join(cpuBase, "smt/active")) {
		case "1":
			return 1, nil
		case "0":
			return 0, nil
		}
		// Kernels without the smt control file: infer from the first
		// CPU's thread siblings.
		if probeThreadsPerCore(cpuBase) > 1 {
			return 1, nil
		}
		return 0, nil

	case ByteOrder:
		return nativeByteOrder(), nil

	default:
		return 0, unknownKey(key)
	}
}

func (s *linuxSource) Identity() (Identity, error) {
	return s.uname()
}

// readCPUModel extracts the first "model name" line from /proc/cpuinfo.
// Some architectures (arm64, riscv) use other field names; "Hardware"
// and "uarch" are taken in that order when "model name" is absent.
func readCPUModel(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	fallbacks := map[string]string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		name, value, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		switch name {
		case "model name":
			return value
		case "Hardware", "uarch":
			if _, seen := fallbacks[name]; !seen {
				fallbacks[name] = value
			}
		}
	}
	if value := fallbacks["Hardware"]; value != "" {
		return value
	}
	return fallbacks["uarch"]
}

// countCPUDirectories counts the cpuN directories under cpuBase,
// skipping cpufreq, cpuidle, and similar siblings.
func countCPUDirectories(cpuBase string) int {
	entries, err := os.ReadDir(cpuBase)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, "cpu") {
			continue
		}
		suffix := name[3:]
		if len(suffix) == 0 || suffix[0] < '0' || suffix[0] > '9' {
			continue
		}
		count++
	}
	return count
}

// probeThreadsPerCore determines threads per core from the first CPU's
// thread_siblings_list. "0,96" and "0-1" both mean two threads share
// the core; "0" alone means one.
func probeThreadsPerCore(cpuBase string) int {
	siblings := readSysfsString(filepath.Join(cpuBase, "cpu0/topology/thread_siblings_list"))
	count, err := ParseCPUList(siblings)
	if err != nil || count < 1 {
		return 1
	}
	return count
}
