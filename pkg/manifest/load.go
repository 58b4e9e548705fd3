package manifest

import (
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Load reads and parses a manifest from the given path on fs. A path
// of "-" reads from stdin. Defaults are applied; validation is the
// caller's responsibility.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read manifest from stdin")
		}
	} else {
		data, err = afero.ReadFile(fs, path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read manifest file: %s", path)
		}
	}

	return Parse(data)
}

// Parse decodes manifest bytes. JSON manifests parse unchanged because
// JSON is a YAML subset.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}
	m.SetDefaults()
	return &m, nil
}
