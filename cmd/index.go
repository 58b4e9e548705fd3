package cmd

import (
	"github.com/apex/log"
	"github.com/spf13/cobra"
)

// IndexCommand represents the index command
var IndexCommand = &cobra.Command{
	Use:   "index",
	Short: "Rebuild a registry's lookup index",
	Long: `Index scans the registry tree and rebuilds index.json from the
packages actually stored there. Stale entries are pruned, digests and
sizes are recomputed, and each package's latest version is refreshed.

Publish keeps the index up to date incrementally; a full rebuild is
needed after packages are removed or copied into the registry by hand.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openWritableRegistry()
		if err != nil {
			return err
		}

		idx, err := reg.RebuildIndex(cmd.Context())
		if err != nil {
			log.WithError(err).Error("Index rebuild failed")
			return err
		}

		versions := 0
		for _, pkg := range idx.Packages {
			versions += len(pkg.Versions)
		}
		log.Infof("✓ Indexed %s: %d package(s), %d version(s)", reg.Source(), len(idx.Packages), versions)
		return nil
	},
}
