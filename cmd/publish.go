package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/apex/log"
	"github.com/docker/go-units"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/siliconpkg/sup/pkg/archive"
	"github.com/siliconpkg/sup/pkg/manifest"
)

var (
	// Flags for publish command
	publishForce bool
)

// PublishCommand represents the publish command
var PublishCommand = &cobra.Command{
	Use:   "publish MANIFEST",
	Short: "Publish a package to a registry",
	Long: `Publish validates the manifest, packs the declared payload files
into a tar.gz archive, and stores the archive and manifest in the
registry together with an updated index entry.`,
	Example: `  # Publish to a directory registry
  sup publish build/gcd/job0/gcd.pkg.json --registry test_registry

  # Republish an existing version
  sup publish gcd.pkg.json --registry test_registry --force`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	manifestPath := args[0]

	m, err := manifest.Load(appFs, manifestPath)
	if err != nil {
		log.WithError(err).Errorf("Failed to load manifest: %s", manifestPath)
		return err
	}
	if err := m.Validate(); err != nil {
		log.WithError(err).Error("Manifest validation failed")
		return fmt.Errorf("validation failed: %w", err)
	}

	reg, err := openWritableRegistry()
	if err != nil {
		return err
	}

	// Pack the payload into a temporary archive so the digest covers
	// exactly what ends up in the registry.
	tmp, err := afero.TempFile(appFs, "", "sup-publish-*.tar.gz")
	if err != nil {
		return fmt.Errorf("failed to create temporary archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer appFs.Remove(tmpPath)

	baseDir := filepath.Dir(manifestPath)
	log.Debugf("Packing payload from: %s", baseDir)
	if err := archive.Create(appFs, baseDir, m.Files, tmp); err != nil {
		tmp.Close()
		log.WithError(err).Error("Failed to pack payload archive")
		return fmt.Errorf("failed to pack payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary archive: %w", err)
	}

	// The registry stores the manifest in canonical JSON regardless of
	// the input format.
	manifestData, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	manifestData = append(manifestData, '\n')

	payload, err := appFs.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to reopen payload archive: %w", err)
	}
	defer payload.Close()

	entry, err := reg.Publish(cmd.Context(), m, manifestData, payload, publishForce)
	if err != nil {
		log.WithError(err).Error("Publish failed")
		return err
	}

	log.Infof("✓ Published %s@%s to %s (%s, sha256:%s)",
		m.Name, m.Version, reg.Source(), units.HumanSize(float64(entry.Size)), entry.SHA256[:12])
	return nil
}

func init() {
	// Flags specific to publish command
	PublishCommand.Flags().BoolVar(&publishForce, "force", false, "Overwrite an already published version")
}
