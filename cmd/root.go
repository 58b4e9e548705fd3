package cmd

import (
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/siliconpkg/sup/pkg/config"
	"github.com/siliconpkg/sup/pkg/registry"
)

var (
	// Global flags
	configFile   string
	registryFlag string
	verbose      bool
	quiet        bool
)

// appFs is the filesystem all commands operate on. Tests replace it.
var appFs afero.Fs = afero.NewOsFs()

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "sup",
	Short: "Package lifecycle CLI for silicon design packages",
	Long: `sup publishes, indexes, and installs silicon design packages.

A package is described by a manifest (<name>.pkg.json). Manifests are
checked, published into a registry (a directory or an HTTP URL), made
discoverable with an index, and installed into a local cache by name.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetHandler(cli.Default)
		if verbose {
			log.SetLevel(log.DebugLevel)
			log.Debugf("Verbose logging enabled")
		} else if quiet {
			log.SetLevel(log.ErrorLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		log.WithError(err).Fatal("command execution failed")
	}
}

// resolveRegistry turns the --registry flag (or environment/config
// fallbacks) into a concrete registry source string.
func resolveRegistry() (string, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return "", err
	}
	source := cfg.ResolveRegistry(registryFlag)
	if source == "" {
		return "", errors.New("registry not specified: use --registry, set SUP_REGISTRY, or configure default_registry")
	}
	return source, nil
}

// openRegistry opens the selected registry for reading.
func openRegistry() (registry.Registry, error) {
	source, err := resolveRegistry()
	if err != nil {
		return nil, err
	}
	log.Debugf("Using registry: %s", source)
	return registry.Open(appFs, source)
}

// openWritableRegistry opens the selected registry for publish/index.
func openWritableRegistry() (*registry.Dir, error) {
	source, err := resolveRegistry()
	if err != nil {
		return nil, err
	}
	log.Debugf("Using registry: %s", source)
	return registry.OpenWritable(appFs, source)
}

func init() {
	// Disable automatic command sorting to maintain lifecycle order
	cobra.EnableCommandSorting = false

	// Add global flags
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to sup config file (default: "+config.DefaultConfigPath+")")
	RootCmd.PersistentFlags().StringVarP(&registryFlag, "registry", "r", "", "Registry directory or URL (default: $SUP_REGISTRY or $REGISTRY)")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Increase log verbosity")
	RootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress progress output")

	// Add command groups
	RootCmd.AddGroup(&cobra.Group{
		ID:    "lifecycle",
		Title: "Lifecycle Commands:",
	})
	RootCmd.AddGroup(&cobra.Group{
		ID:    "utility",
		Title: "Utility Commands:",
	})

	// Set group for built-in commands
	RootCmd.SetHelpCommandGroupID("utility")
	RootCmd.SetCompletionCommandGroupID("utility")

	// Add subcommands with groups, in lifecycle order
	CheckCommand.GroupID = "lifecycle"
	PublishCommand.GroupID = "lifecycle"
	IndexCommand.GroupID = "lifecycle"
	InstallCommand.GroupID = "lifecycle"
	ShowCommand.GroupID = "lifecycle"
	ListCommand.GroupID = "lifecycle"
	UninstallCommand.GroupID = "lifecycle"
	SchemaCommand.GroupID = "utility"

	RootCmd.AddCommand(CheckCommand)     // Step 1: Validate manifest
	RootCmd.AddCommand(PublishCommand)   // Step 2: Publish to registry
	RootCmd.AddCommand(IndexCommand)     // Step 3: Rebuild registry index
	RootCmd.AddCommand(InstallCommand)   // Step 4: Install by name
	RootCmd.AddCommand(ShowCommand)      // Inspect installed packages
	RootCmd.AddCommand(ListCommand)      // Enumerate packages
	RootCmd.AddCommand(UninstallCommand) // Remove installed packages
	RootCmd.AddCommand(SchemaCommand)    // Utility: Display manifest schema
}
