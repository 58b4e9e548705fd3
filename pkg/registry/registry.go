// Package registry reads and writes sup package registries. A registry
// is addressed by a directory path or an http(s) URL; directory
// registries are read-write, remote ones are fetch-only.
package registry

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Registry is a source of published packages.
type Registry interface {
	// Source returns the registry identifier as the user gave it.
	Source() string

	// LoadIndex reads and parses the registry's index.json.
	LoadIndex(ctx context.Context) (*Index, error)

	// FetchArchive copies the artifact at relPath (slash-separated,
	// relative to the registry root) to destPath on destFs.
	FetchArchive(ctx context.Context, relPath string, destFs afero.Fs, destPath string) error
}

// Open resolves a registry identifier to a backend. http(s) URLs get
// the read-only remote backend; anything else is a directory path on fs.
func Open(fs afero.Fs, source string) (Registry, error) {
	if source == "" {
		return nil, errors.New("registry not specified: use --registry or set SUP_REGISTRY")
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewHTTP(source), nil
	}
	return NewDir(fs, source), nil
}

// OpenWritable resolves a registry identifier to a directory backend,
// failing for remote registries which cannot be published to.
func OpenWritable(fs afero.Fs, source string) (*Dir, error) {
	reg, err := Open(fs, source)
	if err != nil {
		return nil, err
	}
	dir, ok := reg.(*Dir)
	if !ok {
		return nil, errors.Errorf("registry %s is read-only: publish and index require a directory registry", source)
	}
	return dir, nil
}
