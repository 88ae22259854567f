// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sysfact

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// readSysfsString reads a single-line sysfs file and returns its
// trimmed content. Returns "" on any error.
func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ParseCPUList counts the CPUs in a kernel CPU list such as
// "0-3,8,10-11" (the format of /sys/devices/system/cpu/online).
func ParseCPUList(list string) (int, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return 0, fmt.Errorf("empty cpu list")
	}

	count := 0
	for _, part := range strings.Split(list, ",") {
		low, high, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(low)
		if err != nil {
			return 0, fmt.Errorf("cpu list %q: %w", list, err)
		}
		last := first
		if isRange {
			last, err = strconv.Atoi(high)
			if err != nil {
				return 0, fmt.Errorf("cpu list %q: %w", list, err)
			}
		}
		if first < 0 || last < first {
			return 0, fmt.Errorf("cpu list %q: bad range %q", list, part)
		}
		count += last - first + 1
	}
	return count, nil
}
