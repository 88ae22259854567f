// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// option is one entry of the selector table.
type option struct {
	name        string
	description string

	// facts are answered in order when the option is selected.
	facts []factName

	// all renders the facts as a report instead of bare values.
	all bool

	help bool
}

// options is matched in order; the first entry whose name contains the
// argument wins, so "-ikern" must precede "-ikernsum" and "cpu"
// resolves to -ncpu before -oncpu.
var options = []option{
	{name: "-machine", description: "machine architecture", facts: []factName{factMachine}},
	{name: "-model", description: "cpu model", facts: []factName{factModel}},
	{name: "-ncpu", description: "number of cpus", facts: []factName{factNCPU}},
	{name: "-border", description: "byte order", facts: []factName{factByteOrder}},
	{name: "-oncpu", description: "number of online cpus", facts: []factName{factNCPUOnline}},
	{name: "-issmt", description: "is smt enabled?", facts: []factName{factSMT}},
	{name: "-uname", description: "equivalent of uname -a", facts: []factName{factUname}},
	{name: "-bsdver", description: "operating system version", facts: []factName{factOSVersion}},
	{name: "-ikern", description: "currently installed kernel", facts: []factName{factKernelVersion}},
	{name: "-help", description: "show me", help: true},
	{name: "-ikernsum", description: "BLAKE3 digest of the installed kernel", facts: []factName{factKernelDigest}},
	{name: "-all", description: "every fact above", facts: allFacts, all: true},
}

// matchOption returns the first table entry whose name contains arg.
// A lone "-" and the empty string match nothing.
func matchOption(arg string) (option, error) {
	if arg == "-" {
		return option{}, fmt.Errorf("'%s' expects an option", arg)
	}
	if arg != "" {
		for _, candidate := range options {
			if strings.Contains(candidate.name, arg) {
				return candidate, nil
			}
		}
	}
	return option{}, fmt.Errorf("'%s' option is invalid", arg)
}

// resolveOptions matches every selector, failing on the first one that
// matches nothing.
func resolveOptions(selectors []string) ([]option, error) {
	resolved := make([]option, 0, len(selectors))
	for _, selector := range selectors {
		opt, err := matchOption(selector)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, opt)
	}
	return resolved, nil
}

// writeUsage prints the selector table followed by the flag defaults.
func writeUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "usage")
	for _, opt := range options {
		fmt.Fprintf(w, " %-10s %s\n", opt.name, opt.description)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags")
	fmt.Fprint(w, flagSet.FlagUsages())
}
