// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the environment variable [Load] reads.
const EnvironmentVariable = "SYSVER_CONFIG"

// MaxChunkSize is the largest accepted kernel.chunk_size.
const MaxChunkSize = 1 << 20

// ErrNotConfigured is returned by [Load] when SYSVER_CONFIG is unset.
var ErrNotConfigured = errors.New(EnvironmentVariable + " environment variable not set")

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the master configuration for sysver.
type Config struct {
	// Kernel configures the kernel image scan.
	Kernel KernelConfig `yaml:"kernel"`

	// Output configures rendering.
	Output OutputConfig `yaml:"output"`
}

// KernelConfig configures the kernel image scan.
type KernelConfig struct {
	// Path is the on-disk kernel image.
	// Default: /bsd (OpenBSD), /boot/kernel/kernel (FreeBSD), /netbsd (NetBSD)
	Path string `yaml:"path"`

	// RequireRoot refuses to read the image unless running as root.
	// Default: true on OpenBSD, false elsewhere
	RequireRoot bool `yaml:"require_root"`

	// ChunkSize is the read size of the scanner. Zero selects the
	// scanner's default of 2048.
	ChunkSize int `yaml:"chunk_size"`

	// SpanChunks finds versions that cross chunk boundaries.
	SpanChunks bool `yaml:"span_chunks"`

	// MaxVersionLength bounds the version length when SpanChunks is
	// set. Zero selects the scanner's default.
	MaxVersionLength int `yaml:"max_version_length"`

	// Decompress scans gzip, zstd, and lz4 images after decoding them.
	// Default: true
	Decompress bool `yaml:"decompress"`
}

// OutputConfig configures rendering.
type OutputConfig struct {
	// Format is one of text, json, yaml, cbor.
	// Default: text
	Format string `yaml:"format"`

	// Color is one of auto, always, never. Only the text report of
	// -all is colored.
	// Default: auto
	Color string `yaml:"color"`
}

// Default returns the default configuration for the running OS.
func Default() *Config {
	return defaultFor(runtime.GOOS)
}

func defaultFor(goos string) *Config {
	return &Config{
		Kernel: KernelConfig{
			Path:        DefaultKernelPath(goos),
			RequireRoot: goos == "openbsd",
			Decompress:  true,
		},
		Output: OutputConfig{
			Format: FormatText,
			Color:  ColorAuto,
		},
	}
}

// DefaultKernelPath returns where goos installs its kernel image.
func DefaultKernelPath(goos string) string {
	switch goos {
	case "freebsd":
		return "/boot/kernel/kernel"
	case "netbsd":
		return "/netbsd"
	default:
		return "/bsd"
	}
}

// Load loads configuration from the SYSVER_CONFIG environment
// variable. It returns [ErrNotConfigured] when the variable is unset;
// callers fall back to [Default] explicitly.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, ErrNotConfigured
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Fields the
// file does not mention keep their [Default] values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Kernel.Path = expandVars(c.Kernel.Path, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Kernel.Path == "" {
		errs = append(errs, fmt.Errorf("kernel.path is required"))
	}

	if c.Kernel.ChunkSize != 0 && (c.Kernel.ChunkSize < 4 || c.Kernel.ChunkSize > MaxChunkSize) {
		errs = append(errs, fmt.Errorf("kernel.chunk_size must be between 4 and %d, got %d", MaxChunkSize, c.Kernel.ChunkSize))
	}

	if c.Kernel.MaxVersionLength < 0 {
		errs = append(errs, fmt.Errorf("kernel.max_version_length must not be negative, got %d", c.Kernel.MaxVersionLength))
	}

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatYAML, FormatCBOR:
	default:
		errs = append(errs, fmt.Errorf("invalid output.format: %q (must be text, json, yaml, or cbor)", c.Output.Format))
	}

	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("invalid output.color: %q (must be auto, always, or never)", c.Output.Color))
	}

	return errors.Join(errs...)
}
