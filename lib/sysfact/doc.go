// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sysfact answers machine-identification queries: architecture,
// CPU model and count, byte order, online CPU count, SMT status, and
// the uname(2) identity record.
//
// Queries go through the [Source] interface, keyed by sysctl-style
// names ([Machine], [Model], [NCPU], [ByteOrder], [NCPUOnline], [SMT]).
// [Host] returns the implementation for the running platform:
//
//   - OpenBSD: sysctl(2) by name through golang.org/x/sys/unix, exactly
//     the hw.* nodes the keys are named after
//   - Linux: /proc/cpuinfo and the CPU topology under
//     /sys/devices/system/cpu, with klauspost/cpuid as the model
//     fallback
//   - everything else: shirou/gopsutil, with klauspost/cpuid for SMT
//
// Every lookup is a single pass-through with no caching. Values are
// copied out of any kernel buffer before the call returns.
package sysfact
