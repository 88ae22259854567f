// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

// sampleReport mirrors the shape of the CLI's structured output: json
// tags only, a nullable field for facts that were not found.
type sampleReport struct {
	Machine       string  `json:"machine"`
	NCPU          int     `json:"ncpu"`
	SMT           bool    `json:"smt"`
	KernelVersion *string `json:"kernel_version"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	version := "OpenBSD 7.4 (GENERIC.MP) #1397"
	original := sampleReport{Machine: "amd64", NCPU: 8, SMT: true, KernelVersion: &version}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleReport
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Machine != original.Machine || decoded.NCPU != original.NCPU || decoded.SMT != original.SMT {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
	if decoded.KernelVersion == nil || *decoded.KernelVersion != version {
		t.Errorf("KernelVersion = %v, want %q", decoded.KernelVersion, version)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	report := map[string]any{"ncpu": 8, "machine": "amd64", "byte_order": "little"}

	first, err := Marshal(report)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Marshal(report)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("non-deterministic encoding: %x vs %x", first, again)
		}
	}
}

func TestNilPointerEncodesAsNull(t *testing.T) {
	data, err := Marshal(sampleReport{Machine: "amd64"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnostic, `"kernel_version": null`) {
		t.Errorf("diagnostic %s does not carry a null kernel_version", diagnostic)
	}
}

func TestUntypedDecodeUsesStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"machine": "arm64"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	fields, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	if fields["machine"] != "arm64" {
		t.Errorf("machine = %v, want arm64", fields["machine"])
	}
}

func TestEncoderStream(t *testing.T) {
	var buffer bytes.Buffer
	if err := NewEncoder(&buffer).Encode(sampleReport{Machine: "sparc64", NCPU: 2}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded sampleReport
	if err := Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Machine != "sparc64" || decoded.NCPU != 2 {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var decoded sampleReport
	if err := Unmarshal([]byte{0xff, 0xfe}, &decoded); err == nil {
		t.Error("Unmarshal accepted invalid CBOR")
	}
}
