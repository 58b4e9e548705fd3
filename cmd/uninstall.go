package cmd

import (
	"strings"

	"github.com/apex/log"
	"github.com/spf13/cobra"
)

// UninstallCommand represents the uninstall command
var UninstallCommand = &cobra.Command{
	Use:   "uninstall PACKAGE[@VERSION]",
	Short: "Remove an installed package",
	Long: `Uninstall removes a package from the local install cache. Without an
explicit version every installed version of the package is removed.`,
	Example: `  # Remove every installed version
  sup uninstall gcd

  # Remove one version only
  sup uninstall gcd@0.1.0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, version := splitPackageArg(args[0])

		removed, err := openCache().Uninstall(name, version)
		if err != nil {
			log.WithError(err).Errorf("Failed to uninstall %s", args[0])
			return err
		}

		log.Infof("✓ Uninstalled %s@%s", name, strings.Join(removed, ", "))
		return nil
	},
}
