// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/sysver/lib/binhash"
	"github.com/bureau-foundation/sysver/lib/config"
	"github.com/bureau-foundation/sysver/lib/kernscan"
	"github.com/bureau-foundation/sysver/lib/sysfact"
)

// factName is the key of a fact in structured output.
type factName string

const (
	factMachine       factName = "machine"
	factModel         factName = "model"
	factNCPU          factName = "ncpu"
	factByteOrder     factName = "byte_order"
	factNCPUOnline    factName = "ncpu_online"
	factSMT           factName = "smt"
	factUname         factName = "uname"
	factOSVersion     factName = "os_version"
	factKernelVersion factName = "kernel_version"
	factKernelDigest  factName = "kernel_digest"
)

// allFacts is the -all report, in display order.
var allFacts = []factName{
	factMachine,
	factModel,
	factNCPU,
	factByteOrder,
	factNCPUOnline,
	factSMT,
	factUname,
	factOSVersion,
	factKernelVersion,
	factKernelDigest,
}

// factLabels title the rows of the -all report.
var factLabels = map[factName]string{
	factMachine:       "Machine",
	factModel:         "CPU model",
	factNCPU:          "CPUs",
	factByteOrder:     "Byte order",
	factNCPUOnline:    "Online CPUs",
	factSMT:           "SMT",
	factUname:         "Uname",
	factOSVersion:     "OS version",
	factKernelVersion: "Kernel",
	factKernelDigest:  "Kernel digest",
}

// collector answers fact queries from the platform source and the
// kernel image.
type collector struct {
	source   sysfact.Source
	identity kernscan.IdentitySource
	scanner  *kernscan.Scanner
	kernel   config.KernelConfig
	logger   *slog.Logger
}

// collect returns the value of one fact: a string, int, or bool. A
// kernel version that is not in the image is a nil value, not an
// error.
func (c *collector) collect(name factName) (any, error) {
	switch name {
	case factMachine:
		return c.source.String(sysfact.Machine)
	case factModel:
		return c.source.String(sysfact.Model)
	case factNCPU:
		return c.source.Int(sysfact.NCPU)
	case factByteOrder:
		value, err := c.source.Int(sysfact.ByteOrder)
		if err != nil {
			return nil, err
		}
		return sysfact.ByteOrderName(value), nil
	case factNCPUOnline:
		return c.source.Int(sysfact.NCPUOnline)
	case factSMT:
		value, err := c.source.Int(sysfact.SMT)
		if err != nil {
			return nil, err
		}
		return value != 0, nil
	case factUname:
		identity, err := c.source.Identity()
		if err != nil {
			return nil, fmt.Errorf("uname: %w", err)
		}
		return identity.String(), nil
	case factOSVersion:
		identity, err := c.source.Identity()
		if err != nil {
			return nil, fmt.Errorf("uname: %w", err)
		}
		return identity.Short(), nil
	case factKernelVersion:
		return c.kernelVersion()
	case factKernelDigest:
		return c.kernelDigest()
	default:
		return nil, fmt.Errorf("unknown fact %q", name)
	}
}

func (c *collector) kernelVersion() (any, error) {
	result, err := c.scanner.Extract(c.kernel.Path)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		c.logger.Debug("no version marker in kernel image", "path", c.kernel.Path)
		return nil, nil
	}
	c.logger.Debug("kernel version found",
		"path", c.kernel.Path,
		"offset", result.Offset,
		"truncated", result.Truncated,
		"compression", result.Compression.String(),
	)
	if result.Truncated {
		c.logger.Warn("kernel version truncated at a chunk boundary",
			"path", c.kernel.Path,
			"span_chunks", c.kernel.SpanChunks,
		)
	}
	return result.Version, nil
}

func (c *collector) kernelDigest() (any, error) {
	if c.kernel.RequireRoot {
		if err := kernscan.CheckPrivilege(c.identity, c.kernel.Path); err != nil {
			return nil, err
		}
	}
	digest, err := binhash.HashFile(c.kernel.Path)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("kernel digest computed", "path", c.kernel.Path, "digest", digest.String())
	return digest.String(), nil
}
