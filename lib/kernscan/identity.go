// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kernscan

import "fmt"

// IdentitySource reports the real and effective user IDs of the
// running process. The privilege check consumes it so tests can
// substitute a fixed identity.
type IdentitySource interface {
	Getuid() int
	Geteuid() int
}

// ProcessIdentity is the IdentitySource of the running process.
type ProcessIdentity struct{}

// CheckPrivilege fails with a [KindPermission] error unless the real
// user ID is root. A process whose effective ID is root but whose real
// ID is not (a setuid binary run by an ordinary user) gets a distinct
// diagnostic. A nil identity checks the running process.
//
// Extract runs this check itself when Options.RequireRoot is set;
// callers reading the image by other means use it directly.
func CheckPrivilege(identity IdentitySource, path string) error {
	if identity == nil {
		identity = ProcessIdentity{}
	}
	uid := identity.Getuid()
	if uid == 0 {
		return nil
	}

	euid := identity.Geteuid()
	var cause error
	if euid != 0 {
		cause = fmt.Errorf("reading the kernel image must be run as root (uid %d)", uid)
	} else {
		cause = fmt.Errorf("real uid %d differs from effective uid %d", uid, euid)
	}
	return &Error{Kind: KindPermission, Op: "privilege", Path: path, Err: cause}
}
