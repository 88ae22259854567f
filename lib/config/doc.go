// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for sysver.
//
// Configuration is loaded from a single file specified by either the
// SYSVER_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search. Without a file the command runs on [Default].
//
// Files ending in .json or .jsonc are JSON with comments and trailing
// commas, normalized through tidwall/jsonc before decoding. Every
// other file is YAML.
//
// Variable expansion is performed on kernel.path after loading:
// ${HOME} and ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- master struct with Kernel and Output sections
//   - [Default] -- per-OS defaults (kernel path, privilege requirement)
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- range and enum checks
//
// This package depends on no other sysver packages.
package config
