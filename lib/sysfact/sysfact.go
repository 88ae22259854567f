// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sysfact

import (
	"errors"
	"fmt"
)

// Key names a fact. The values are the OpenBSD sysctl names the facts
// come from on that platform.
type Key string

const (
	Machine    Key = "hw.machine"
	Model      Key = "hw.model"
	NCPU       Key = "hw.ncpu"
	ByteOrder  Key = "hw.byteorder"
	NCPUOnline Key = "hw.ncpuonline"
	SMT        Key = "hw.smt"
)

// ErrUnknownKey is returned for a key that is not a fact of the
// requested type.
var ErrUnknownKey = errors.New("unknown fact key")

// IsString reports whether key names a string fact. All other valid
// keys are integer facts.
func (key Key) IsString() bool {
	return key == Machine || key == Model
}

// IsInt reports whether key names an integer fact.
func (key Key) IsInt() bool {
	switch key {
	case NCPU, ByteOrder, NCPUOnline, SMT:
		return true
	default:
		return false
	}
}

// Source answers fact queries for one machine.
type Source interface {
	// String returns a string fact (Machine, Model).
	String(key Key) (string, error)

	// Int returns an integer fact (NCPU, ByteOrder, NCPUOnline, SMT).
	// ByteOrder is 1234 for little endian and 4321 for big endian; SMT
	// is non-zero when simultaneous multithreading is enabled.
	Int(key Key) (int, error)

	// Identity returns the uname(2) record.
	Identity() (Identity, error)
}

// Identity is the system identification record reported by uname(2).
type Identity struct {
	Sysname  string `json:"sysname" yaml:"sysname"`
	Nodename string `json:"nodename" yaml:"nodename"`
	Release  string `json:"release" yaml:"release"`
	Version  string `json:"version" yaml:"version"`
	Machine  string `json:"machine" yaml:"machine"`
}

// String formats the record like "uname -a".
func (identity Identity) String() string {
	return fmt.Sprintf("%s %s %s %s %s", identity.Sysname, identity.Nodename,
		identity.Release, identity.Version, identity.Machine)
}

// Short returns the system name and release, e.g. "OpenBSD 7.4".
func (identity Identity) Short() string {
	return identity.Sysname + " " + identity.Release
}

// Byte order values of the ByteOrder fact.
const (
	LittleEndian = 1234
	BigEndian    = 4321
)

// ByteOrderName names a ByteOrder fact value: "little", "big", or
// "mixed" for anything else.
func ByteOrderName(value int) string {
	switch value {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return "mixed"
	}
}

func unknownKey(key Key) error {
	return fmt.Errorf("%w: %q", ErrUnknownKey, string(key))
}
