// Package archive packs package payloads into tar.gz archives and
// extracts them again at install time.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Create writes a tar.gz archive of the given payload paths to w.
// Paths are relative to baseDir; directories are walked recursively.
// Entries are written in sorted order so the same payload always
// produces the same archive layout.
func Create(fs afero.Fs, baseDir string, paths []string, w io.Writer) error {
	entries, err := collectEntries(fs, baseDir, paths)
	if err != nil {
		return err
	}

	gzWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzWriter)

	for _, entry := range entries {
		if err := writeEntry(fs, baseDir, entry, tarWriter); err != nil {
			return err
		}
	}

	if err := tarWriter.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize tar archive")
	}
	if err := gzWriter.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize gzip stream")
	}
	return nil
}

// collectEntries expands the payload paths into a sorted, de-duplicated
// list of archive-relative file paths.
func collectEntries(fs afero.Fs, baseDir string, paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var entries []string

	for _, p := range paths {
		full := filepath.Join(baseDir, p)
		info, err := fs.Stat(full)
		if err != nil {
			return nil, errors.Wrapf(err, "payload path not found: %s", p)
		}

		if !info.IsDir() {
			rel := filepath.ToSlash(filepath.Clean(p))
			if !seen[rel] {
				seen[rel] = true
				entries = append(entries, rel)
			}
			continue
		}

		err = afero.Walk(fs, full, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(baseDir, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if !seen[rel] {
				seen[rel] = true
				entries = append(entries, rel)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to walk payload directory: %s", p)
		}
	}

	sort.Strings(entries)
	return entries, nil
}

func writeEntry(fs afero.Fs, baseDir, rel string, tw *tar.Writer) error {
	full := filepath.Join(baseDir, filepath.FromSlash(rel))
	info, err := fs.Stat(full)
	if err != nil {
		return errors.Wrapf(err, "failed to stat payload file: %s", rel)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return errors.Wrapf(err, "failed to build tar header: %s", rel)
	}
	header.Name = rel

	if err := tw.WriteHeader(header); err != nil {
		return errors.Wrapf(err, "failed to write tar header: %s", rel)
	}

	file, err := fs.Open(full)
	if err != nil {
		return errors.Wrapf(err, "failed to open payload file: %s", rel)
	}
	defer file.Close()

	if _, err := io.Copy(tw, file); err != nil {
		return errors.Wrapf(err, "failed to archive payload file: %s", rel)
	}
	return nil
}

// Extract unpacks a tar.gz stream into destDir. Entries that would
// escape destDir are rejected.
func Extract(fs afero.Fs, r io.Reader, destDir string) error {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "failed to create gzip reader")
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "failed to read tar entry")
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := fs.MkdirAll(target, 0755); err != nil {
				return errors.Wrapf(err, "failed to create directory: %s", header.Name)
			}
		case tar.TypeReg:
			if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return errors.Wrapf(err, "failed to create parent directory: %s", header.Name)
			}
			out, err := fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode)&0777)
			if err != nil {
				return errors.Wrapf(err, "failed to create file: %s", header.Name)
			}
			if _, err := io.Copy(out, tarReader); err != nil {
				out.Close()
				return errors.Wrapf(err, "failed to extract file: %s", header.Name)
			}
			if err := out.Close(); err != nil {
				return errors.Wrapf(err, "failed to close file: %s", header.Name)
			}
		default:
			// Symlinks and special files are not part of the payload
			// format and are skipped.
		}
	}

	return nil
}

// safeJoin joins name onto destDir and rejects path traversal.
func safeJoin(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("archive entry escapes destination: %s", name)
	}
	return filepath.Join(destDir, cleaned), nil
}
