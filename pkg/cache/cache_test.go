package cache

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/siliconpkg/sup/pkg/archive"
	"github.com/siliconpkg/sup/pkg/manifest"
)

// payload builds a small tar.gz archive in memory.
func payload(t *testing.T) *bytes.Buffer {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "src/rtl/gcd.v", []byte("module gcd;\nendmodule\n"), 0644); err != nil {
		t.Fatalf("failed to write payload: %v", err)
	}

	var buf bytes.Buffer
	if err := archive.Create(fs, "src", []string{"rtl"}, &buf); err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	return &buf
}

func receipt(name, version string) Receipt {
	return Receipt{
		Name:     name,
		Version:  version,
		Registry: "test_registry",
		SHA256:   strings.Repeat("a", 64),
		Size:     128,
		Manifest: &manifest.Manifest{Name: name, Version: version},
	}
}

func TestInstallAndShow(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := New(fs, "home/cache")

	if err := c.Install(receipt("gcd", "0.1.0"), payload(t)); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if !c.IsInstalled("gcd", "0.1.0") {
		t.Error("IsInstalled should report the installed version")
	}
	if ok, _ := afero.Exists(fs, "home/cache/gcd/0.1.0/rtl/gcd.v"); !ok {
		t.Error("payload file not extracted into cache")
	}

	rcpt, err := c.Show("gcd", "")
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if rcpt.Version != "0.1.0" || rcpt.Registry != "test_registry" {
		t.Errorf("unexpected receipt: %+v", rcpt)
	}
	if rcpt.InstalledAt.IsZero() || rcpt.InstalledAt.After(time.Now().Add(time.Minute)) {
		t.Errorf("unexpected install timestamp: %v", rcpt.InstalledAt)
	}
}

func TestInstallReplacesStaleFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := New(fs, "home/cache")

	if err := afero.WriteFile(fs, "home/cache/gcd/0.1.0/stale.txt", []byte("old"), 0644); err != nil {
		t.Fatalf("failed to seed stale file: %v", err)
	}

	if err := c.Install(receipt("gcd", "0.1.0"), payload(t)); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if ok, _ := afero.Exists(fs, "home/cache/gcd/0.1.0/stale.txt"); ok {
		t.Error("reinstall should remove files from previous installs")
	}
}

func TestListOrdersByNameAndVersion(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := New(fs, "home/cache")

	for _, pv := range [][2]string{{"stdcells", "1.2.0"}, {"gcd", "0.1.0"}, {"gcd", "0.10.0"}} {
		if err := c.Install(receipt(pv[0], pv[1]), payload(t)); err != nil {
			t.Fatalf("Install %s@%s failed: %v", pv[0], pv[1], err)
		}
	}

	receipts, err := c.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var got []string
	for _, r := range receipts {
		got = append(got, r.Name+"@"+r.Version)
	}
	want := []string{"gcd@0.10.0", "gcd@0.1.0", "stdcells@1.2.0"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("unexpected order: got %v, want %v", got, want)
	}
}

func TestUninstall(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := New(fs, "home/cache")

	for _, v := range []string{"0.1.0", "0.2.0"} {
		if err := c.Install(receipt("gcd", v), payload(t)); err != nil {
			t.Fatalf("Install failed: %v", err)
		}
	}

	removed, err := c.Uninstall("gcd", "0.1.0")
	if err != nil {
		t.Fatalf("Uninstall failed: %v", err)
	}
	if len(removed) != 1 || removed[0] != "0.1.0" {
		t.Errorf("unexpected removed versions: %v", removed)
	}
	if !c.IsInstalled("gcd", "0.2.0") {
		t.Error("other versions must survive a one-version uninstall")
	}

	// Removing the remaining version drops the package directory.
	if _, err := c.Uninstall("gcd", ""); err != nil {
		t.Fatalf("Uninstall all failed: %v", err)
	}
	if ok, _ := afero.DirExists(fs, "home/cache/gcd"); ok {
		t.Error("empty package directory should be removed")
	}
}

func TestUninstallNotInstalled(t *testing.T) {
	c := New(afero.NewMemMapFs(), "home/cache")

	_, err := c.Uninstall("gcd", "")
	if err == nil {
		t.Fatal("expected error for not-installed package")
	}
	if !strings.Contains(err.Error(), "not installed") {
		t.Errorf("unexpected error: %v", err)
	}

	if err := c.Install(receipt("gcd", "0.1.0"), payload(t)); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if _, err := c.Uninstall("gcd", "9.9.9"); err == nil {
		t.Error("expected error for not-installed version")
	}
}
