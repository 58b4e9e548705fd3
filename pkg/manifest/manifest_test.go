package manifest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseJSON(t *testing.T) {
	data := []byte(`{
  "name": "gcd",
  "version": "v0.1.0",
  "description": "Greatest common divisor reference design",
  "license": "MIT",
  "authors": ["Jane Doe"],
  "dependencies": {"stdcells": "1.2.0"},
  "files": ["rtl", "constraints/gcd.sdc"]
}`)

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := &Manifest{
		Schema:       SchemaV1,
		Name:         "gcd",
		Version:      "0.1.0",
		Description:  "Greatest common divisor reference design",
		License:      "MIT",
		Authors:      []string{"Jane Doe"},
		Dependencies: map[string]string{"stdcells": "1.2.0"},
		Files:        []string{"rtl", "constraints/gcd.sdc"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
name: gcd
version: 0.1.0
files:
  - rtl
`)

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.Name != "gcd" || got.Version != "0.1.0" {
		t.Errorf("unexpected identity: %s@%s", got.Name, got.Version)
	}
	if got.Schema != SchemaV1 {
		t.Errorf("expected default schema %q, got %q", SchemaV1, got.Schema)
	}
}

func TestSetDefaults(t *testing.T) {
	m := &Manifest{Name: "gcd", Version: "v1.0.0"}
	m.SetDefaults()

	if m.Schema != SchemaV1 {
		t.Errorf("expected schema %q, got %q", SchemaV1, m.Schema)
	}
	if m.Version != "1.0.0" {
		t.Errorf("expected normalized version 1.0.0, got %q", m.Version)
	}
	if diff := cmp.Diff([]string{"."}, m.Files); diff != "" {
		t.Errorf("default files mismatch (-want +got):\n%s", diff)
	}
}

func TestArchiveNames(t *testing.T) {
	m := &Manifest{Name: "gcd", Version: "0.1.0"}
	if got := m.ArchiveName(); got != "gcd-0.1.0.tar.gz" {
		t.Errorf("unexpected archive name: %s", got)
	}
	if got := m.ManifestName(); got != "gcd-0.1.0.pkg.json" {
		t.Errorf("unexpected manifest name: %s", got)
	}
}

func TestVersionHelpers(t *testing.T) {
	tests := []struct {
		version string
		valid   bool
	}{
		{"0.1.0", true},
		{"v0.1.0", true},
		{"1.2.3-rc.1", true},
		{"latest", false},
		{"1.2", true}, // semver tolerates the short form
		{"not-a-version", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidVersion(tt.version); got != tt.valid {
			t.Errorf("ValidVersion(%q) = %v, want %v", tt.version, got, tt.valid)
		}
	}

	if CompareVersions("0.2.0", "0.10.0") >= 0 {
		t.Error("expected 0.2.0 < 0.10.0 under semver ordering")
	}
	if CompareVersions("v1.0.0", "1.0.0") != 0 {
		t.Error("expected v-prefixed and bare versions to compare equal")
	}
}
