package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/apex/log"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/siliconpkg/sup/pkg/manifest"
)

var (
	// Flags for show command
	showRemote bool
)

// ShowCommand represents the show command
var ShowCommand = &cobra.Command{
	Use:   "show PACKAGE[@VERSION]",
	Short: "Display metadata for a package",
	Long: `Show prints the metadata of an installed package: name, version,
description, license, authors, dependencies, payload size, the registry
it came from, and when it was installed.

With --remote the package is looked up in the registry index instead,
so packages can be inspected before installing them.`,
	Example: `  # Show an installed package
  sup show gcd

  # Show a specific installed version
  sup show gcd@0.1.0

  # Show a package straight from the registry
  sup show gcd --remote --registry test_registry`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, version := splitPackageArg(args[0])

		if showRemote {
			return showFromRegistry(cmd, name, version)
		}
		return showInstalled(name, version)
	},
}

func showInstalled(name, version string) error {
	rcpt, err := openCache().Show(name, version)
	if err != nil {
		log.WithError(err).Errorf("Failed to show %s", name)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	writeManifestRows(w, rcpt.Manifest)
	fmt.Fprintf(w, "Size:\t%s\n", units.HumanSize(float64(rcpt.Size)))
	fmt.Fprintf(w, "SHA256:\t%s\n", rcpt.SHA256)
	fmt.Fprintf(w, "Registry:\t%s\n", rcpt.Registry)
	fmt.Fprintf(w, "Installed:\t%s\n", rcpt.InstalledAt.Format(time.RFC3339))
	return w.Flush()
}

func showFromRegistry(cmd *cobra.Command, name, version string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	idx, err := reg.LoadIndex(cmd.Context())
	if err != nil {
		return err
	}
	entry, resolved, err := idx.Resolve(name, version)
	if err != nil {
		log.WithError(err).Errorf("Failed to show %s", name)
		return err
	}
	m, err := fetchRegistryManifest(cmd.Context(), reg, entry)
	if err != nil {
		return fmt.Errorf("failed to fetch manifest for %s@%s: %w", name, resolved, err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	writeManifestRows(w, m)
	fmt.Fprintf(w, "Size:\t%s\n", units.HumanSize(float64(entry.Size)))
	fmt.Fprintf(w, "SHA256:\t%s\n", entry.SHA256)
	fmt.Fprintf(w, "Registry:\t%s\n", reg.Source())
	return w.Flush()
}

func writeManifestRows(w *tabwriter.Writer, m *manifest.Manifest) {
	if m == nil {
		return
	}
	fmt.Fprintf(w, "Name:\t%s\n", m.Name)
	fmt.Fprintf(w, "Version:\t%s\n", m.Version)
	if m.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", m.Description)
	}
	if m.License != "" {
		fmt.Fprintf(w, "License:\t%s\n", m.License)
	}
	if len(m.Authors) > 0 {
		fmt.Fprintf(w, "Authors:\t%s\n", strings.Join(m.Authors, ", "))
	}
	if m.Homepage != "" {
		fmt.Fprintf(w, "Homepage:\t%s\n", m.Homepage)
	}
	if len(m.Dependencies) > 0 {
		deps := make([]string, 0, len(m.Dependencies))
		for dep, ver := range m.Dependencies {
			deps = append(deps, dep+"@"+ver)
		}
		sort.Strings(deps)
		fmt.Fprintf(w, "Dependencies:\t%s\n", strings.Join(deps, ", "))
	}
}

func init() {
	// Flags specific to show command
	ShowCommand.Flags().BoolVar(&showRemote, "remote", false, "Look the package up in the registry index instead of the install cache")
}
