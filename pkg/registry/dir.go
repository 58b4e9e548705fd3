package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/siliconpkg/sup/pkg/checksums"
	"github.com/siliconpkg/sup/pkg/manifest"
)

// Dir is a registry stored as a directory tree:
//
//	<root>/index.json
//	<root>/<name>/<version>/<name>-<version>.pkg.json
//	<root>/<name>/<version>/<name>-<version>.tar.gz
type Dir struct {
	fs     afero.Fs
	root   string
	source string
}

// NewDir opens (or designates) a directory registry rooted at root.
func NewDir(fs afero.Fs, root string) *Dir {
	return &Dir{fs: fs, root: root, source: root}
}

// Source implements Registry.
func (d *Dir) Source() string { return d.source }

// LoadIndex implements Registry.
func (d *Dir) LoadIndex(ctx context.Context) (*Index, error) {
	data, err := afero.ReadFile(d.fs, filepath.Join(d.root, IndexFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("registry %s has no index: run \"sup index --registry %s\" first", d.source, d.source)
		}
		return nil, errors.Wrapf(err, "failed to read registry index: %s", d.source)
	}
	return ParseIndex(data)
}

// FetchArchive implements Registry by copying the artifact between
// filesystems.
func (d *Dir) FetchArchive(ctx context.Context, relPath string, destFs afero.Fs, destPath string) error {
	src, err := d.fs.Open(filepath.Join(d.root, filepath.FromSlash(relPath)))
	if err != nil {
		return errors.Wrapf(err, "failed to open registry artifact: %s", relPath)
	}
	defer src.Close()

	if err := destFs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}
	dst, err := destFs.Create(destPath)
	if err != nil {
		return errors.Wrap(err, "failed to create destination file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "failed to copy registry artifact: %s", relPath)
	}
	return dst.Close()
}

// Publish stores a package version: the manifest, the payload archive
// read from payload, and an updated index entry. Publishing an already
// present version fails unless force is set.
func (d *Dir) Publish(ctx context.Context, m *manifest.Manifest, manifestData []byte, payload io.Reader, force bool) (*VersionEntry, error) {
	relManifest := path.Join(m.Name, m.Version, m.ManifestName())
	relArchive := path.Join(m.Name, m.Version, m.ArchiveName())

	archivePath := filepath.Join(d.root, filepath.FromSlash(relArchive))
	if exists, _ := afero.Exists(d.fs, archivePath); exists && !force {
		return nil, errors.Errorf("package %s@%s already published to %s (use --force to overwrite)", m.Name, m.Version, d.source)
	}

	versionDir := filepath.Dir(archivePath)
	if err := d.fs.MkdirAll(versionDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create registry directory")
	}

	out, err := d.fs.Create(archivePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create archive in registry")
	}
	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(out, hasher), payload)
	if err != nil {
		out.Close()
		return nil, errors.Wrap(err, "failed to store archive in registry")
	}
	if err := out.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close archive in registry")
	}

	manifestPath := filepath.Join(d.root, filepath.FromSlash(relManifest))
	if err := afero.WriteFile(d.fs, manifestPath, manifestData, 0644); err != nil {
		return nil, errors.Wrap(err, "failed to store manifest in registry")
	}

	entry := &VersionEntry{
		Manifest: relManifest,
		Archive:  relArchive,
		SHA256:   hex.EncodeToString(hasher.Sum(nil)),
		Size:     size,
	}

	idx, err := d.loadIndexForUpdate()
	if err != nil {
		return nil, err
	}
	idx.Add(m.Name, m.Version, m.Description, entry)
	if err := d.WriteIndex(idx); err != nil {
		return nil, err
	}

	return entry, nil
}

// loadIndexForUpdate loads the index for an incremental update. A
// missing index starts a fresh one; a corrupt index is an error so a
// publish never silently discards existing entries.
func (d *Dir) loadIndexForUpdate() (*Index, error) {
	data, err := afero.ReadFile(d.fs, filepath.Join(d.root, IndexFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return NewIndex(), nil
		}
		return nil, errors.Wrapf(err, "failed to read registry index: %s", d.source)
	}
	idx, err := ParseIndex(data)
	if err != nil {
		return nil, errors.Wrapf(err, "registry index is corrupt, rebuild it with \"sup index --registry %s\"", d.source)
	}
	return idx, nil
}

// WriteIndex persists the index at the registry root.
func (d *Dir) WriteIndex(idx *Index) error {
	data, err := idx.Marshal()
	if err != nil {
		return err
	}
	if err := d.fs.MkdirAll(d.root, 0755); err != nil {
		return errors.Wrap(err, "failed to create registry directory")
	}
	if err := afero.WriteFile(d.fs, filepath.Join(d.root, IndexFileName), data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write registry index: %s", d.source)
	}
	return nil
}

// RebuildIndex scans the registry tree and builds a fresh index from
// what is actually on disk. Versions whose manifest or archive is
// missing or unreadable are skipped with a warning.
func (d *Dir) RebuildIndex(ctx context.Context) (*Index, error) {
	idx := NewIndex()

	names, err := d.subdirs(d.root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan registry: %s", d.source)
	}

	for _, name := range names {
		versions, err := d.subdirs(filepath.Join(d.root, name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to scan registry package: %s", name)
		}
		for _, version := range versions {
			entry, m, err := d.scanVersion(name, version)
			if err != nil {
				log.WithError(err).Warnf("skipping %s@%s", name, version)
				continue
			}
			idx.Add(name, version, m.Description, entry)
		}
	}

	if err := d.WriteIndex(idx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (d *Dir) scanVersion(name, version string) (*VersionEntry, *manifest.Manifest, error) {
	relManifest := path.Join(name, version, name+"-"+version+".pkg.json")
	relArchive := path.Join(name, version, name+"-"+version+".tar.gz")

	data, err := afero.ReadFile(d.fs, filepath.Join(d.root, filepath.FromSlash(relManifest)))
	if err != nil {
		return nil, nil, errors.Wrap(err, "manifest unreadable")
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	if m.Name != name || m.Version != version {
		return nil, nil, errors.Errorf("manifest identifies %s@%s, expected %s@%s", m.Name, m.Version, name, version)
	}

	archivePath := filepath.Join(d.root, filepath.FromSlash(relArchive))
	info, err := d.fs.Stat(archivePath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "archive missing")
	}
	digest, err := checksums.ComputeHash(d.fs, archivePath, checksums.DefaultAlgorithm)
	if err != nil {
		return nil, nil, err
	}

	return &VersionEntry{
		Manifest: relManifest,
		Archive:  relArchive,
		SHA256:   digest,
		Size:     info.Size(),
	}, m, nil
}

// subdirs lists immediate subdirectory names, ignoring files and
// dot-directories.
func (d *Dir) subdirs(dir string) ([]string, error) {
	infos, err := afero.ReadDir(d.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() && info.Name()[0] != '.' {
			names = append(names, info.Name())
		}
	}
	return names, nil
}
