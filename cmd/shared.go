package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/siliconpkg/sup/pkg/cache"
	"github.com/siliconpkg/sup/pkg/config"
	"github.com/siliconpkg/sup/pkg/manifest"
	"github.com/siliconpkg/sup/pkg/registry"
)

// splitPackageArg splits a "name@version" argument. A bare name
// returns an empty version, which resolves to "latest" or "all
// installed versions" depending on the command.
func splitPackageArg(arg string) (name, version string) {
	if i := strings.IndexByte(arg, '@'); i >= 0 {
		return arg[:i], arg[i+1:]
	}
	return arg, ""
}

// openCache opens the local install cache under the sup home.
func openCache() *cache.Cache {
	return cache.New(appFs, config.CacheDir())
}

// fetchRegistryManifest downloads and parses the manifest for an index
// entry.
func fetchRegistryManifest(ctx context.Context, reg registry.Registry, entry *registry.VersionEntry) (*manifest.Manifest, error) {
	tmpDir, err := afero.TempDir(appFs, "", "sup-manifest")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}
	defer appFs.RemoveAll(tmpDir)

	dest := filepath.Join(tmpDir, filepath.Base(entry.Manifest))
	if err := reg.FetchArchive(ctx, entry.Manifest, appFs, dest); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(appFs, dest)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read fetched manifest")
	}
	return manifest.Parse(data)
}
