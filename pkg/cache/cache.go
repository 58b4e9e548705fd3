// Package cache manages the local install cache. Installed packages
// live under <root>/<name>/<version>/ with a receipt recording where
// the payload came from.
package cache

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/siliconpkg/sup/pkg/archive"
	"github.com/siliconpkg/sup/pkg/manifest"
)

// ReceiptFileName marks an installed version and records its origin.
const ReceiptFileName = ".sup-receipt.json"

// Receipt records one installed package version.
type Receipt struct {
	Name        string             `json:"name"`
	Version     string             `json:"version"`
	Registry    string             `json:"registry"`
	SHA256      string             `json:"sha256"`
	Size        int64              `json:"size"`
	InstalledAt time.Time          `json:"installedAt"`
	Manifest    *manifest.Manifest `json:"manifest"`
}

// Cache is the install cache rooted at a directory.
type Cache struct {
	fs   afero.Fs
	root string
}

// New opens the cache rooted at root.
func New(fs afero.Fs, root string) *Cache {
	return &Cache{fs: fs, root: root}
}

// Root returns the cache root directory.
func (c *Cache) Root() string { return c.root }

// Dir returns the payload directory for a package version.
func (c *Cache) Dir(name, version string) string {
	return filepath.Join(c.root, name, version)
}

// IsInstalled reports whether a receipt exists for name@version.
func (c *Cache) IsInstalled(name, version string) bool {
	ok, _ := afero.Exists(c.fs, filepath.Join(c.Dir(name, version), ReceiptFileName))
	return ok
}

// Install extracts the payload archive into the cache and writes the
// receipt. An existing install of the same version is replaced.
func (c *Cache) Install(rcpt Receipt, payload io.Reader) error {
	dir := c.Dir(rcpt.Name, rcpt.Version)

	// Replace any previous content so a reinstall cannot leave stale
	// files behind.
	if err := c.fs.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "failed to clear cache directory: %s", dir)
	}
	if err := c.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create cache directory: %s", dir)
	}

	if err := archive.Extract(c.fs, payload, dir); err != nil {
		return errors.Wrapf(err, "failed to extract %s@%s", rcpt.Name, rcpt.Version)
	}

	if rcpt.InstalledAt.IsZero() {
		rcpt.InstalledAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(&rcpt, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode receipt")
	}
	if err := afero.WriteFile(c.fs, filepath.Join(dir, ReceiptFileName), append(data, '\n'), 0644); err != nil {
		return errors.Wrap(err, "failed to write receipt")
	}
	return nil
}

// Uninstall removes installed versions of a package. An empty version
// removes every installed version. The removed versions are returned;
// removing a package that is not installed is an error.
func (c *Cache) Uninstall(name, version string) ([]string, error) {
	receipts, err := c.Installed(name)
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, errors.Errorf("package %q is not installed", name)
	}

	var removed []string
	for _, rcpt := range receipts {
		if version != "" && rcpt.Version != version {
			continue
		}
		if err := c.fs.RemoveAll(c.Dir(name, rcpt.Version)); err != nil {
			return removed, errors.Wrapf(err, "failed to remove %s@%s", name, rcpt.Version)
		}
		removed = append(removed, rcpt.Version)
	}
	if len(removed) == 0 {
		return nil, errors.Errorf("package %s@%s is not installed", name, version)
	}

	// Drop the now-empty package directory.
	if remaining, err := afero.ReadDir(c.fs, filepath.Join(c.root, name)); err == nil && len(remaining) == 0 {
		_ = c.fs.RemoveAll(filepath.Join(c.root, name))
	}
	return removed, nil
}

// Installed returns receipts for every installed version of a package,
// highest version first.
func (c *Cache) Installed(name string) ([]Receipt, error) {
	infos, err := afero.ReadDir(c.fs, filepath.Join(c.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read cache for package: %s", name)
	}

	var receipts []Receipt
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		rcpt, err := c.readReceipt(name, info.Name())
		if err != nil {
			continue
		}
		receipts = append(receipts, *rcpt)
	}
	sort.Slice(receipts, func(i, j int) bool {
		return manifest.CompareVersions(receipts[i].Version, receipts[j].Version) > 0
	})
	return receipts, nil
}

// List returns receipts for every installed package, sorted by name
// and then by version, highest first.
func (c *Cache) List() ([]Receipt, error) {
	infos, err := afero.ReadDir(c.fs, c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read install cache")
	}

	var all []Receipt
	for _, info := range infos {
		if !info.IsDir() || info.Name()[0] == '.' {
			continue
		}
		receipts, err := c.Installed(info.Name())
		if err != nil {
			return nil, err
		}
		all = append(all, receipts...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return manifest.CompareVersions(all[i].Version, all[j].Version) > 0
	})
	return all, nil
}

// Show returns the receipt for name@version; an empty version selects
// the highest installed one.
func (c *Cache) Show(name, version string) (*Receipt, error) {
	receipts, err := c.Installed(name)
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, errors.Errorf("package %q is not installed", name)
	}
	if version == "" {
		return &receipts[0], nil
	}
	for i := range receipts {
		if receipts[i].Version == version {
			return &receipts[i], nil
		}
	}
	return nil, errors.Errorf("package %s@%s is not installed", name, version)
}

func (c *Cache) readReceipt(name, version string) (*Receipt, error) {
	data, err := afero.ReadFile(c.fs, filepath.Join(c.Dir(name, version), ReceiptFileName))
	if err != nil {
		return nil, err
	}
	var rcpt Receipt
	if err := json.Unmarshal(data, &rcpt); err != nil {
		return nil, errors.Wrapf(err, "corrupt receipt for %s@%s", name, version)
	}
	return &rcpt, nil
}
