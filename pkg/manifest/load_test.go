package manifest

import (
	"testing"

	"github.com/spf13/afero"
)

func TestLoadFromFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "build/gcd.pkg.json", []byte(`{"name": "gcd", "version": "v0.1.0"}`), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	m, err := Load(fs, "build/gcd.pkg.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Name != "gcd" || m.Version != "0.1.0" {
		t.Errorf("unexpected manifest: %s@%s", m.Name, m.Version)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(afero.NewMemMapFs(), "nope.pkg.json"); err == nil {
		t.Fatal("expected error for missing manifest file")
	}
}
