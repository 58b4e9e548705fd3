package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/siliconpkg/sup/pkg/cache"
	"github.com/siliconpkg/sup/pkg/checksums"
	"github.com/siliconpkg/sup/pkg/fetch"
	"github.com/siliconpkg/sup/pkg/manifest"
	"github.com/siliconpkg/sup/pkg/registry"
)

var (
	// Flags for install command
	installForce  bool
	installNoDeps bool
)

// InstallCommand represents the install command
var InstallCommand = &cobra.Command{
	Use:   "install PACKAGE[@VERSION]",
	Short: "Install a package from a registry by name",
	Long: `Install resolves a package name against the registry index, fetches
the payload archive, verifies its sha256 digest, and extracts it into
the local cache. Declared dependencies are installed the same way.

Without an explicit version the package's latest indexed version is
installed.`,
	Example: `  # Install the latest version
  sup install gcd --registry test_registry

  # Install a specific version
  sup install gcd@0.1.0 --registry test_registry

  # Reinstall even if already present
  sup install gcd --force`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	InstallCommand.Flags().BoolVar(&installForce, "force", false, "Reinstall even if the version is already installed")
	InstallCommand.Flags().BoolVar(&installNoDeps, "no-deps", false, "Do not install declared dependencies")
}

func runInstall(cmd *cobra.Command, args []string) error {
	name, version := splitPackageArg(args[0])

	reg, err := openRegistry()
	if err != nil {
		return err
	}

	// Attach a progress bar for remote downloads on a terminal.
	if hreg, ok := reg.(*registry.HTTP); ok && isatty.IsTerminal(os.Stderr.Fd()) && !quiet {
		hreg.Progress = downloadProgress()
	}

	idx, err := reg.LoadIndex(cmd.Context())
	if err != nil {
		log.WithError(err).Error("Failed to load registry index")
		return err
	}

	c := openCache()
	visited := map[string]bool{}
	if err := installOne(cmd.Context(), reg, idx, c, name, version, visited); err != nil {
		log.WithError(err).Errorf("Failed to install %s", args[0])
		return err
	}
	return nil
}

// installOne installs a single package version, then recurses into its
// declared dependencies. visited breaks dependency cycles.
func installOne(ctx context.Context, reg registry.Registry, idx *registry.Index, c *cache.Cache, name, version string, visited map[string]bool) error {
	entry, resolved, err := idx.Resolve(name, version)
	if err != nil {
		return err
	}

	key := name + "@" + resolved
	if visited[key] {
		return nil
	}
	visited[key] = true

	m, err := fetchRegistryManifest(ctx, reg, entry)
	if err != nil {
		return fmt.Errorf("failed to fetch manifest for %s: %w", key, err)
	}

	if c.IsInstalled(name, resolved) && !installForce {
		log.Infof("%s already installed, skipping (use --force to reinstall)", key)
	} else {
		if err := materialize(ctx, reg, c, m, entry, resolved); err != nil {
			return err
		}
		log.Infof("✓ Installed %s into %s", key, c.Dir(name, resolved))
	}

	if installNoDeps {
		return nil
	}
	for dep, depVersion := range m.Dependencies {
		if depVersion == "latest" {
			depVersion = ""
		}
		if err := installOne(ctx, reg, idx, c, dep, depVersion, visited); err != nil {
			return fmt.Errorf("failed to install dependency %s of %s: %w", dep, key, err)
		}
	}
	return nil
}

// materialize fetches, verifies, and extracts one package version.
func materialize(ctx context.Context, reg registry.Registry, c *cache.Cache, m *manifest.Manifest, entry *registry.VersionEntry, resolved string) error {
	tmpDir, err := afero.TempDir(appFs, "", "sup-install")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer appFs.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, filepath.Base(entry.Archive))
	log.Debugf("Fetching %s from %s", entry.Archive, reg.Source())
	if err := reg.FetchArchive(ctx, entry.Archive, appFs, archivePath); err != nil {
		return fmt.Errorf("failed to fetch archive: %w", err)
	}

	if err := checksums.VerifyFile(appFs, archivePath, checksums.DefaultAlgorithm, entry.SHA256); err != nil {
		return err
	}

	payload, err := appFs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open fetched archive: %w", err)
	}
	defer payload.Close()

	return c.Install(cache.Receipt{
		Name:     m.Name,
		Version:  resolved,
		Registry: reg.Source(),
		SHA256:   entry.SHA256,
		Size:     entry.Size,
		Manifest: m,
	}, payload)
}

// downloadProgress renders a byte progress bar on stderr, restarting
// it for each new artifact.
func downloadProgress() fetch.ProgressFunc {
	var bar *progressbar.ProgressBar
	var barTotal int64
	return func(downloaded, total int64) {
		if bar == nil || barTotal != total {
			bar = progressbar.DefaultBytes(total, "downloading")
			barTotal = total
		}
		_ = bar.Set64(downloaded)
	}
}
