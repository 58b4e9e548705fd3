package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/siliconpkg/sup/pkg/manifest"
)

var (
	// Flags for check command
	checkCheckFiles bool
)

// CheckCommand represents the check command
var CheckCommand = &cobra.Command{
	Use:   "check MANIFEST",
	Short: "Check and validate a package manifest",
	Long: `Checks a package manifest by:
- Parsing the manifest file (JSON or YAML)
- Validating required fields, the package name, and the version
- Checking that every declared payload path exists (default: enabled)

This makes it easy to validate a manifest before publishing it.`,
	Example: `  # Check a manifest
  sup check build/gcd/job0/gcd.pkg.json

  # Skip the payload file existence check
  sup check gcd.pkg.json --check-files=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath := args[0]
		log.Debugf("Reading manifest from: %s", manifestPath)

		m, err := manifest.Load(appFs, manifestPath)
		if err != nil {
			log.WithError(err).Errorf("Failed to load manifest: %s", manifestPath)
			return err
		}

		if err := m.Validate(); err != nil {
			log.WithError(err).Error("Manifest validation failed")
			return fmt.Errorf("validation failed: %w", err)
		}
		log.Infof("✓ Manifest valid: %s@%s", m.Name, m.Version)

		if !checkCheckFiles {
			return nil
		}

		missing, err := displayPayloadFiles(m, filepath.Dir(manifestPath))
		if err != nil {
			return err
		}
		if missing > 0 {
			return fmt.Errorf("payload check failed: %d path(s) missing", missing)
		}

		log.Info("✓ Check completed successfully")
		return nil
	},
}

// displayPayloadFiles prints a table of the manifest's payload paths
// with their existence status, returning how many are missing.
func displayPayloadFiles(m *manifest.Manifest, baseDir string) (int, error) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PAYLOAD PATH\tSTATUS")
	fmt.Fprintln(w, "------------\t------")

	missing := 0
	for _, f := range m.Files {
		status := "✓ EXISTS"
		if exists, _ := afero.Exists(appFs, filepath.Join(baseDir, f)); !exists {
			status = "✗ MISSING"
			missing++
		}
		fmt.Fprintf(w, "%s\t%s\n", f, status)
	}

	if err := w.Flush(); err != nil {
		return 0, err
	}
	return missing, nil
}

func init() {
	// Flags specific to check command
	CheckCommand.Flags().BoolVar(&checkCheckFiles, "check-files", true, "Check that declared payload paths exist")
}
