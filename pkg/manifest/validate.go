package manifest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// namePattern constrains package names to registry- and
// filesystem-safe identifiers.
var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidationError reports every problem found in a manifest, not just
// the first one.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid manifest: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid manifest: %d problems:\n  - %s",
		len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

// Validate checks the manifest after defaults have been applied. It
// returns a *ValidationError listing all violations, or nil.
func (m *Manifest) Validate() error {
	var problems []string

	if m.Schema != SchemaV1 {
		problems = append(problems, fmt.Sprintf("unsupported schema %q (expected %q)", m.Schema, SchemaV1))
	}

	if m.Name == "" {
		problems = append(problems, "name is required")
	} else if !namePattern.MatchString(m.Name) {
		problems = append(problems, fmt.Sprintf("name %q must match %s", m.Name, namePattern))
	}

	if m.Version == "" {
		problems = append(problems, "version is required")
	} else if !ValidVersion(m.Version) {
		problems = append(problems, fmt.Sprintf("version %q is not a semantic version", m.Version))
	}

	for _, f := range m.Files {
		if filepath.IsAbs(f) {
			problems = append(problems, fmt.Sprintf("file path %q must be relative", f))
			continue
		}
		clean := filepath.Clean(f)
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			problems = append(problems, fmt.Sprintf("file path %q escapes the manifest directory", f))
		}
	}

	for dep, ver := range m.Dependencies {
		if !namePattern.MatchString(dep) {
			problems = append(problems, fmt.Sprintf("dependency name %q must match %s", dep, namePattern))
		}
		if ver != "latest" && !ValidVersion(ver) {
			problems = append(problems, fmt.Sprintf("dependency %s version %q must be a semantic version or \"latest\"", dep, ver))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
