// Package manifest defines the package manifest format consumed by sup.
// A manifest describes a named, versioned package: the payload files it
// ships and the metadata under which it is published to a registry.
package manifest

import (
	"strings"

	"golang.org/x/mod/semver"
)

// SchemaV1 is the only manifest schema version currently understood.
const SchemaV1 = "v1"

// Manifest describes a package. It is read from a <name>.pkg.json file
// (JSON or YAML; JSON is parsed as a YAML subset).
type Manifest struct {
	Schema      string            `yaml:"schema,omitempty" json:"schema,omitempty"`
	Name        string            `yaml:"name" json:"name"`
	Version     string            `yaml:"version" json:"version"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	License     string            `yaml:"license,omitempty" json:"license,omitempty"`
	Authors     []string          `yaml:"authors,omitempty" json:"authors,omitempty"`
	Homepage    string            `yaml:"homepage,omitempty" json:"homepage,omitempty"`

	// Dependencies maps package names to exact versions or "latest".
	Dependencies map[string]string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	// Files lists payload paths relative to the manifest's directory.
	Files []string `yaml:"files,omitempty" json:"files,omitempty"`

	// Metadata carries free-form tool-specific keys that sup preserves
	// but does not interpret.
	Metadata map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// SetDefaults fills in defaultable fields before validation.
func (m *Manifest) SetDefaults() {
	if m.Schema == "" {
		m.Schema = SchemaV1
	}
	if len(m.Files) == 0 {
		m.Files = []string{"."}
	}
	m.Version = NormalizeVersion(m.Version)
}

// ArchiveName returns the canonical payload archive filename for the
// manifest, e.g. "gcd-0.1.0.tar.gz".
func (m *Manifest) ArchiveName() string {
	return m.Name + "-" + m.Version + ".tar.gz"
}

// ManifestName returns the canonical published manifest filename,
// e.g. "gcd-0.1.0.pkg.json".
func (m *Manifest) ManifestName() string {
	return m.Name + "-" + m.Version + ".pkg.json"
}

// NormalizeVersion strips a leading "v" so versions are stored in the
// bare form used throughout registry layouts and the index.
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}

// ValidVersion reports whether version is acceptable after
// normalization: a semantic version, with or without leading "v".
func ValidVersion(version string) bool {
	return semver.IsValid("v" + NormalizeVersion(version))
}

// CompareVersions orders two normalized versions semver-wise.
// It returns -1, 0, or +1 like semver.Compare.
func CompareVersions(a, b string) int {
	return semver.Compare("v"+NormalizeVersion(a), "v"+NormalizeVersion(b))
}
