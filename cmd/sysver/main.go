// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// sysver prints machine-identification facts: architecture, CPU model
// and count, byte order, online CPU count, SMT status, the uname(2)
// record, and the version string embedded in the installed kernel
// image.
//
// Facts are selected by single-dash words matched against a fixed
// option table by substring ("cpu" selects -ncpu, "-h" selects -help).
// Several selectors are answered in order. Double-dash flags configure
// the run:
//
//	sysver -machine -ncpu
//	sysver --format json -all
//	sysver --kernel /bsd.sp -ikern
//
// Configuration comes from the file named by --config or SYSVER_CONFIG;
// without either, per-OS defaults apply and flags override both.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/sysver/lib/config"
	"github.com/bureau-foundation/sysver/lib/kernscan"
	"github.com/bureau-foundation/sysver/lib/process"
	"github.com/bureau-foundation/sysver/lib/sysfact"
	"github.com/bureau-foundation/sysver/lib/version"
)

func main() {
	a := &app{
		source:         sysfact.Host(),
		identity:       kernscan.ProcessIdentity{},
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		stderrTerminal: term.IsTerminal(int(os.Stderr.Fd())),
	}
	if err := a.run(os.Args[1:]); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}

// app holds the collaborators of one invocation. Tests replace the
// fact source, identity, and writers.
type app struct {
	source         sysfact.Source
	identity       kernscan.IdentitySource
	stdout         io.Writer
	stderr         io.Writer
	stderrTerminal bool
}

// flags are the double-dash settings of one invocation.
type flags struct {
	configPath   string
	kernelPath   string
	format       string
	color        string
	spanChunks   bool
	noDecompress bool
	verbose      bool
	showVersion  bool
}

func newFlagSet(f *flags) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("sysver", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&f.configPath, "config", "", "configuration file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&f.kernelPath, "kernel", "", "kernel image to scan for -ikern and -ikernsum")
	flagSet.StringVar(&f.format, "format", "", "output format: text, json, yaml, or cbor")
	flagSet.StringVar(&f.color, "color", "", "color the -all report: auto, always, or never")
	flagSet.BoolVar(&f.spanChunks, "span-chunks", false, "find kernel versions that cross read-chunk boundaries")
	flagSet.BoolVar(&f.noDecompress, "no-decompress", false, "scan compressed kernel images without decoding them")
	flagSet.BoolVar(&f.verbose, "verbose", false, "log scan details to stderr")
	flagSet.BoolVar(&f.showVersion, "version", false, "print the sysver version and exit")
	return flagSet
}

func (a *app) run(args []string) error {
	var f flags
	flagSet := newFlagSet(&f)

	selectors, flagArgs := splitArgs(flagSet, args)
	if err := flagSet.Parse(flagArgs); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			writeUsage(a.stdout, flagSet)
			return nil
		}
		return err
	}

	if f.showVersion {
		version.Print(a.stdout, "sysver")
		return nil
	}

	if len(selectors) == 0 {
		writeUsage(a.stderr, flagSet)
		return &exitError{code: 1}
	}

	resolved, err := resolveOptions(selectors)
	if err != nil {
		return err
	}
	for _, opt := range resolved {
		if opt.help {
			writeUsage(a.stdout, flagSet)
			return nil
		}
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, flagSet, &f)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(a.stderr, a.stderrTerminal, f.verbose)

	scanner, err := kernscan.New(kernscan.Options{
		ChunkSize:        cfg.Kernel.ChunkSize,
		RequireRoot:      cfg.Kernel.RequireRoot,
		Identity:         a.identity,
		SpanChunks:       cfg.Kernel.SpanChunks,
		MaxVersionLength: cfg.Kernel.MaxVersionLength,
		Decompress:       cfg.Kernel.Decompress,
	})
	if err != nil {
		return err
	}

	factCollector := &collector{
		source:   a.source,
		identity: a.identity,
		scanner:  scanner,
		kernel:   cfg.Kernel,
		logger:   logger,
	}
	out := &output{
		stdout: a.stdout,
		stderr: a.stderr,
		format: cfg.Output.Format,
		color:  cfg.Output.Color,
	}
	return answer(factCollector, out, resolved)
}

// splitArgs separates fact selectors from double-dash flags. A flag
// that takes a value and is not written as --name=value consumes the
// following argument. Everything after a bare "--" is a selector.
func splitArgs(flagSet *pflag.FlagSet, args []string) (selectors, flagArgs []string) {
	for index := 0; index < len(args); index++ {
		arg := args[index]
		if arg == "--" {
			selectors = append(selectors, args[index+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "--") {
			selectors = append(selectors, arg)
			continue
		}

		flagArgs = append(flagArgs, arg)
		name, _, hasValue := strings.Cut(arg[2:], "=")
		if hasValue {
			continue
		}
		if flag := flagSet.Lookup(name); flag != nil && flag.NoOptDefVal == "" && index+1 < len(args) {
			index++
			flagArgs = append(flagArgs, args[index])
		}
	}
	return selectors, flagArgs
}

// loadConfig reads the --config file, else SYSVER_CONFIG, else the
// per-OS defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNotConfigured) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// applyFlags overrides configuration values with the flags given on
// the command line.
func applyFlags(cfg *config.Config, flagSet *pflag.FlagSet, f *flags) {
	if flagSet.Changed("kernel") {
		cfg.Kernel.Path = f.kernelPath
	}
	if flagSet.Changed("format") {
		cfg.Output.Format = f.format
	}
	if flagSet.Changed("color") {
		cfg.Output.Color = f.color
	}
	if flagSet.Changed("span-chunks") {
		cfg.Kernel.SpanChunks = f.spanChunks
	}
	if flagSet.Changed("no-decompress") {
		cfg.Kernel.Decompress = !f.noDecompress
	}
}
