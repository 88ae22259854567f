// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kernscan

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
)

// writeImage writes a synthetic kernel image and returns its path.
func writeImage(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bsd")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// padded returns content preceded by n filler bytes that cannot form
// part of a marker or terminator.
func padded(n int, content string) []byte {
	return append(bytes.Repeat([]byte{'x'}, n), content...)
}

func newScanner(t *testing.T, options Options) *Scanner {
	t.Helper()
	scanner, err := New(options)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return scanner
}

// fixedIdentity is an IdentitySource with constant user IDs.
type fixedIdentity struct {
	uid, euid int
}

func (f fixedIdentity) Getuid() int  { return f.uid }
func (f fixedIdentity) Geteuid() int { return f.euid }

func TestExtractVersionFound(t *testing.T) {
	path := writeImage(t, []byte("\x7fELF\x02\x01junk@(#)9.9-RELEASE\nTRAILING garbage"))

	result, err := ExtractVersion(path)
	if err != nil {
		t.Fatalf("ExtractVersion: %v", err)
	}
	if !result.Found {
		t.Fatal("marker not found")
	}
	if result.Version != "9.9-RELEASE" {
		t.Errorf("Version = %q, want %q", result.Version, "9.9-RELEASE")
	}
	if result.Offset != 10 {
		t.Errorf("Offset = %d, want 10", result.Offset)
	}
	if result.Truncated {
		t.Error("Truncated set for a terminated version")
	}
	if result.Compression != CompressionNone {
		t.Errorf("Compression = %s, want none", result.Compression)
	}
}

func TestExtractVersionNotFound(t *testing.T) {
	for _, content := range []string{
		"",
		"no marker in here\n",
		"@(# almost @( and (#) and @#)",
	} {
		path := writeImage(t, []byte(content))
		result, err := ExtractVersion(path)
		if err != nil {
			t.Fatalf("ExtractVersion(%q): %v", content, err)
		}
		if result.Found {
			t.Errorf("ExtractVersion(%q) found %q, want not found", content, result.Version)
		}
	}
}

func TestExtractVersionEmpty(t *testing.T) {
	path := writeImage(t, []byte("head@(#)\nX more"))

	result, err := ExtractVersion(path)
	if err != nil {
		t.Fatalf("ExtractVersion: %v", err)
	}
	if !result.Found {
		t.Fatal("empty version reported as not found")
	}
	if result.Version != "" {
		t.Errorf("Version = %q, want empty", result.Version)
	}
}

func TestExtractVersionNULTerminator(t *testing.T) {
	path := writeImage(t, []byte("@(#)OpenBSD 7.4 (GENERIC.MP) #1397\x00\x00more\n"))

	result, err := ExtractVersion(path)
	if err != nil {
		t.Fatalf("ExtractVersion: %v", err)
	}
	if result.Version != "OpenBSD 7.4 (GENERIC.MP) #1397" {
		t.Errorf("Version = %q", result.Version)
	}
}

func TestExtractVersionFirstMatchWins(t *testing.T) {
	path := writeImage(t, []byte("@(#)first\n@(#)second\n"))

	result, err := ExtractVersion(path)
	if err != nil {
		t.Fatalf("ExtractVersion: %v", err)
	}
	if result.Version != "first" {
		t.Errorf("Version = %q, want %q", result.Version, "first")
	}
}

func TestExtractVersionLaterChunk(t *testing.T) {
	content := padded(3*DefaultChunkSize+100, "@(#)7.4\n")
	path := writeImage(t, content)

	result, err := ExtractVersion(path)
	if err != nil {
		t.Fatalf("ExtractVersion: %v", err)
	}
	if result.Version != "7.4" {
		t.Errorf("Version = %q, want %q", result.Version, "7.4")
	}
	if want := int64(3*DefaultChunkSize + 100); result.Offset != want {
		t.Errorf("Offset = %d, want %d", result.Offset, want)
	}
}

func TestMarkerStraddlingChunksIsMissed(t *testing.T) {
	// Chunk size 16; the marker occupies bytes 14-17, so "@(" ends the
	// first chunk and "#)" starts the second.
	path := writeImage(t, padded(14, "@(#)7.4-current\n"))
	scanner := newScanner(t, Options{ChunkSize: 16})

	result, err := scanner.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Found {
		t.Errorf("straddling marker found (%q); chunked scan must miss it", result.Version)
	}
}

func TestMarkerEndingAtChunkEnd(t *testing.T) {
	path := writeImage(t, padded(12, "@(#)7.4\n"))
	scanner := newScanner(t, Options{ChunkSize: 16})

	result, err := scanner.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !result.Found {
		t.Fatal("marker inside the chunk not found")
	}
	if result.Version != "" || !result.Truncated {
		t.Errorf("got Version=%q Truncated=%v, want empty truncated version", result.Version, result.Truncated)
	}
}

func TestVersionTruncatedAtChunkEnd(t *testing.T) {
	// Marker at 4, version bytes 8-15 fill the rest of the first
	// chunk; the newline is in the second chunk.
	path := writeImage(t, padded(4, "@(#)ABCDEFGHIJKL\n"))
	scanner := newScanner(t, Options{ChunkSize: 16})

	result, err := scanner.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Version != "ABCDEFGH" {
		t.Errorf("Version = %q, want %q", result.Version, "ABCDEFGH")
	}
	if !result.Truncated {
		t.Error("Truncated not set")
	}
}

func TestSpanChunks(t *testing.T) {
	tests := []struct {
		name          string
		content       []byte
		maxLength     int
		wantVersion   string
		wantOffset    int64
		wantTruncated bool
	}{
		{
			name:        "straddling marker",
			content:     padded(14, "@(#)7.4-current\n"),
			wantVersion: "7.4-current",
			wantOffset:  14,
		},
		{
			name:        "marker split one byte before boundary",
			content:     padded(29, "@(#)x\n"),
			wantVersion: "x",
			wantOffset:  29,
		},
		{
			name:        "terminator in a later chunk",
			content:     padded(4, "@(#)ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789\n"),
			wantVersion: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
			wantOffset:  4,
		},
		{
			name:        "stream ends without terminator",
			content:     padded(4, "@(#)ABCDEFGHIJKLMNOPQRST"),
			wantVersion: "ABCDEFGHIJKLMNOPQRST",
			wantOffset:  4,
		},
		{
			name:          "limit inside the marker chunk",
			content:       padded(0, "@(#)ABCDEFGH\n"),
			maxLength:     5,
			wantVersion:   "ABCDE",
			wantTruncated: true,
		},
		{
			name:          "limit across chunks",
			content:       padded(4, "@(#)ABCDEFGHIJKLMNOPQRSTUVWXYZ\n"),
			maxLength:     20,
			wantVersion:   "ABCDEFGHIJKLMNOPQRST",
			wantOffset:    4,
			wantTruncated: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeImage(t, test.content)
			scanner := newScanner(t, Options{
				ChunkSize:        16,
				SpanChunks:       true,
				MaxVersionLength: test.maxLength,
			})

			result, err := scanner.Extract(path)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !result.Found {
				t.Fatal("marker not found")
			}
			if result.Version != test.wantVersion {
				t.Errorf("Version = %q, want %q", result.Version, test.wantVersion)
			}
			if result.Offset != test.wantOffset {
				t.Errorf("Offset = %d, want %d", result.Offset, test.wantOffset)
			}
			if result.Truncated != test.wantTruncated {
				t.Errorf("Truncated = %v, want %v", result.Truncated, test.wantTruncated)
			}
		})
	}
}

func TestSpanChunksNotFound(t *testing.T) {
	path := writeImage(t, bytes.Repeat([]byte("@(#"), 40))
	scanner := newScanner(t, Options{ChunkSize: 16, SpanChunks: true})

	result, err := scanner.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Found {
		t.Errorf("found %q in an image without a marker", result.Version)
	}
}

func TestExtractIdempotent(t *testing.T) {
	path := writeImage(t, padded(5000, "@(#)OpenBSD 7.4 GENERIC.MP#1397\n"))

	first, err := ExtractVersion(path)
	if err != nil {
		t.Fatalf("first ExtractVersion: %v", err)
	}
	second, err := ExtractVersion(path)
	if err != nil {
		t.Fatalf("second ExtractVersion: %v", err)
	}
	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

func TestExtractOpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := ExtractVersion(path)
	if err == nil {
		t.Fatal("ExtractVersion should fail for a missing image")
	}
	var scanError *Error
	if !errors.As(err, &scanError) {
		t.Fatalf("error %T is not *Error", err)
	}
	if scanError.Kind != KindIO || scanError.Op != "open" {
		t.Errorf("got kind=%s op=%s, want i/o error on open", scanError.Kind, scanError.Op)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v does not wrap fs.ErrNotExist", err)
	}
	if errors.Is(err, ErrPermissionDenied) {
		t.Error("open failure matched ErrPermissionDenied")
	}
}

func TestExtractReadFailure(t *testing.T) {
	// Opening a directory succeeds; reading it fails.
	_, err := ExtractVersion(t.TempDir())
	if err == nil {
		t.Fatal("ExtractVersion should fail when the image cannot be read")
	}
	var scanError *Error
	if !errors.As(err, &scanError) {
		t.Fatalf("error %T is not *Error", err)
	}
	if scanError.Kind != KindIO || scanError.Op != "read" {
		t.Errorf("got kind=%s op=%s, want i/o error on read", scanError.Kind, scanError.Op)
	}
	if scanError.Path == "" {
		t.Error("read error does not carry the image path")
	}
}

func TestScanReadErrorAfterData(t *testing.T) {
	errBoom := errors.New("device went away")
	scanner := newScanner(t, Options{})

	// Bytes returned before the failure are still scanned.
	found := io.MultiReader(strings.NewReader("@(#)7.4\n"), iotest.ErrReader(errBoom))
	result, err := scanner.Scan(found)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Version != "7.4" {
		t.Errorf("Version = %q, want %q", result.Version, "7.4")
	}

	missing := io.MultiReader(strings.NewReader("nothing here"), iotest.ErrReader(errBoom))
	_, err = scanner.Scan(missing)
	if !errors.Is(err, errBoom) {
		t.Fatalf("Scan error = %v, want wrapped %v", err, errBoom)
	}
}

func TestPermissionDenied(t *testing.T) {
	tests := []struct {
		name     string
		identity fixedIdentity
		wantText string
	}{
		{"ordinary user", fixedIdentity{uid: 1000, euid: 1000}, "must be run as root"},
		{"setuid root", fixedIdentity{uid: 1000, euid: 0}, "real uid 1000 differs from effective uid 0"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// The path does not exist: any open attempt would surface
			// as an i/o error instead.
			path := filepath.Join(t.TempDir(), "missing")
			scanner := newScanner(t, Options{RequireRoot: true, Identity: test.identity})

			_, err := scanner.Extract(path)
			if !errors.Is(err, ErrPermissionDenied) {
				t.Fatalf("error = %v, want ErrPermissionDenied", err)
			}
			var scanError *Error
			if !errors.As(err, &scanError) || scanError.Kind != KindPermission {
				t.Fatalf("error = %#v, want KindPermission", err)
			}
			if !strings.Contains(err.Error(), test.wantText) {
				t.Errorf("error %q does not mention %q", err, test.wantText)
			}
		})
	}
}

func TestPermissionGrantedForRoot(t *testing.T) {
	path := writeImage(t, []byte("@(#)7.4\n"))
	scanner := newScanner(t, Options{RequireRoot: true, Identity: fixedIdentity{uid: 0, euid: 0}})

	result, err := scanner.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Version != "7.4" {
		t.Errorf("Version = %q, want %q", result.Version, "7.4")
	}
}

func TestCheckPrivilegeDirect(t *testing.T) {
	if err := CheckPrivilege(fixedIdentity{uid: 0, euid: 0}, "/bsd"); err != nil {
		t.Errorf("root: %v", err)
	}
	err := CheckPrivilege(fixedIdentity{uid: 1000, euid: 1000}, "/bsd")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("ordinary user: got %v, want ErrPermissionDenied", err)
	}
	if !strings.Contains(err.Error(), "/bsd") {
		t.Errorf("error %q does not name the path", err)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	if _, err := New(Options{ChunkSize: 3}); err == nil {
		t.Error("New accepted a chunk smaller than the marker")
	}
	if _, err := New(Options{MaxVersionLength: -1}); err == nil {
		t.Error("New accepted a negative max version length")
	}
}

// openDescriptors counts the process's open file descriptors.
func openDescriptors(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skipf("descriptor count unavailable: %v", err)
	}
	return len(entries)
}

func TestExtractReleasesDescriptor(t *testing.T) {
	found := writeImage(t, []byte("@(#)7.4\n"))
	missing := writeImage(t, []byte("no marker"))
	unreadable := t.TempDir()

	for _, path := range []string{found, missing, unreadable, found, missing, unreadable} {
		before := openDescriptors(t)
		_, _ = ExtractVersion(path)
		if after := openDescriptors(t); after != before {
			t.Errorf("ExtractVersion(%s): %d descriptors before, %d after", path, before, after)
		}
	}
}
