package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func entry(sha string) *VersionEntry {
	return &VersionEntry{
		Manifest: "gcd/0.1.0/gcd-0.1.0.pkg.json",
		Archive:  "gcd/0.1.0/gcd-0.1.0.tar.gz",
		SHA256:   sha,
		Size:     42,
	}
}

func TestIndexAddTracksLatest(t *testing.T) {
	idx := NewIndex()
	idx.Add("gcd", "0.1.0", "gcd design", entry("aa"))
	idx.Add("gcd", "0.10.0", "", entry("bb"))
	idx.Add("gcd", "0.2.0", "", entry("cc"))

	pkg := idx.Packages["gcd"]
	if pkg == nil {
		t.Fatal("package entry missing")
	}
	if pkg.Latest != "0.10.0" {
		t.Errorf("expected latest 0.10.0, got %s", pkg.Latest)
	}
	if pkg.Description != "gcd design" {
		t.Errorf("description lost: %q", pkg.Description)
	}

	want := []string{"0.10.0", "0.2.0", "0.1.0"}
	if diff := cmp.Diff(want, pkg.SortedVersions()); diff != "" {
		t.Errorf("version order mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexResolve(t *testing.T) {
	idx := NewIndex()
	idx.Add("gcd", "0.1.0", "", entry("aa"))
	idx.Add("gcd", "0.2.0", "", entry("bb"))

	tests := []struct {
		name        string
		pkg         string
		version     string
		want        string
		expectError bool
	}{
		{"latest keyword", "gcd", "latest", "0.2.0", false},
		{"empty version", "gcd", "", "0.2.0", false},
		{"exact version", "gcd", "0.1.0", "0.1.0", false},
		{"v-prefixed version", "gcd", "v0.1.0", "0.1.0", false},
		{"unknown version", "gcd", "9.9.9", "", true},
		{"unknown package", "nope", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resolved, err := idx.Resolve(tt.pkg, tt.version)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if resolved != tt.want {
				t.Errorf("resolved %s, want %s", resolved, tt.want)
			}
		})
	}
}

func TestIndexMarshalRoundTrip(t *testing.T) {
	idx := NewIndex()
	idx.Add("gcd", "0.1.0", "gcd design", entry("aa"))

	data, err := idx.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	parsed, err := ParseIndex(data)
	if err != nil {
		t.Fatalf("ParseIndex failed: %v", err)
	}
	if diff := cmp.Diff(idx.Packages, parsed.Packages); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIndexEmptyPackages(t *testing.T) {
	parsed, err := ParseIndex([]byte(`{"schema":"v1"}`))
	if err != nil {
		t.Fatalf("ParseIndex failed: %v", err)
	}
	if parsed.Packages == nil {
		t.Error("Packages map should be initialized")
	}
}
