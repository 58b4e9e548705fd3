package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/siliconpkg/sup/pkg/manifest"
)

// IndexFileName is the registry index file at the registry root.
const IndexFileName = "index.json"

// Index is the lookup structure over a registry's contents. It is the
// only file install consults to resolve a package name to an artifact.
type Index struct {
	Schema    string                   `json:"schema"`
	Generated time.Time                `json:"generated"`
	Packages  map[string]*PackageEntry `json:"packages"`
}

// PackageEntry describes every published version of one package.
type PackageEntry struct {
	Latest      string                   `json:"latest"`
	Description string                   `json:"description,omitempty"`
	Versions    map[string]*VersionEntry `json:"versions"`
}

// VersionEntry locates and authenticates one published version.
// Manifest and Archive are slash-separated paths relative to the
// registry root.
type VersionEntry struct {
	Manifest string `json:"manifest"`
	Archive  string `json:"archive"`
	SHA256   string `json:"sha256"`
	Size     int64  `json:"size"`
}

// NewIndex returns an empty index stamped with the current time.
func NewIndex() *Index {
	return &Index{
		Schema:    manifest.SchemaV1,
		Generated: time.Now().UTC(),
		Packages:  map[string]*PackageEntry{},
	}
}

// ParseIndex decodes index.json bytes.
func ParseIndex(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse registry index: %w", err)
	}
	if idx.Packages == nil {
		idx.Packages = map[string]*PackageEntry{}
	}
	return &idx, nil
}

// Marshal encodes the index for storage.
func (idx *Index) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode registry index: %w", err)
	}
	return append(data, '\n'), nil
}

// Add records a version entry, creating the package entry if needed
// and keeping Latest pointed at the highest semver.
func (idx *Index) Add(name, version, description string, entry *VersionEntry) {
	pkg, ok := idx.Packages[name]
	if !ok {
		pkg = &PackageEntry{Versions: map[string]*VersionEntry{}}
		idx.Packages[name] = pkg
	}
	pkg.Versions[version] = entry
	if description != "" {
		pkg.Description = description
	}
	if pkg.Latest == "" || manifest.CompareVersions(version, pkg.Latest) > 0 {
		pkg.Latest = version
	}
	idx.Generated = time.Now().UTC()
}

// Resolve maps a package name and requested version to a version entry.
// An empty or "latest" version resolves to the package's Latest.
func (idx *Index) Resolve(name, version string) (*VersionEntry, string, error) {
	pkg, ok := idx.Packages[name]
	if !ok {
		return nil, "", fmt.Errorf("package %q not found in index", name)
	}
	if version == "" || version == "latest" {
		version = pkg.Latest
	} else {
		version = manifest.NormalizeVersion(version)
	}
	entry, ok := pkg.Versions[version]
	if !ok {
		return nil, "", fmt.Errorf("package %q has no version %q in index", name, version)
	}
	return entry, version, nil
}

// Names returns the package names in sorted order.
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.Packages))
	for name := range idx.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedVersions returns a package's versions, highest first.
func (pkg *PackageEntry) SortedVersions() []string {
	versions := make([]string, 0, len(pkg.Versions))
	for v := range pkg.Versions {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return manifest.CompareVersions(versions[i], versions[j]) > 0
	})
	return versions
}
