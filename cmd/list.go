package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	// Flags for list command
	listRemote bool
)

// ListCommand represents the list command
var ListCommand = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Long: `List prints a table of the packages in the local install cache.

With --remote the registry index is listed instead, showing every
published package with its available versions.`,
	Example: `  # List installed packages
  sup list

  # List a registry's contents
  sup list --remote --registry test_registry`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listRemote {
			return listRegistry(cmd)
		}
		return listInstalled()
	},
}

func listInstalled() error {
	receipts, err := openCache().List()
	if err != nil {
		return err
	}
	if len(receipts) == 0 {
		fmt.Println("No packages installed")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Version", "Size", "Registry", "Installed")
	for _, rcpt := range receipts {
		_ = table.Append([]string{
			rcpt.Name,
			rcpt.Version,
			units.HumanSize(float64(rcpt.Size)),
			rcpt.Registry,
			rcpt.InstalledAt.Format(time.RFC3339),
		})
	}
	return table.Render()
}

func listRegistry(cmd *cobra.Command) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	idx, err := reg.LoadIndex(cmd.Context())
	if err != nil {
		return err
	}
	if len(idx.Packages) == 0 {
		fmt.Printf("Registry %s is empty\n", reg.Source())
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Latest", "Versions", "Description")
	for _, name := range idx.Names() {
		pkg := idx.Packages[name]
		_ = table.Append([]string{
			name,
			pkg.Latest,
			strings.Join(pkg.SortedVersions(), ", "),
			pkg.Description,
		})
	}
	return table.Render()
}

func init() {
	// Flags specific to list command
	ListCommand.Flags().BoolVar(&listRemote, "remote", false, "List the registry index instead of the install cache")
}
