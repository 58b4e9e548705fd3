package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/siliconpkg/sup/schema"
)

// SchemaCommand represents the schema command
var SchemaCommand = &cobra.Command{
	Use:   "schema",
	Short: "Display the manifest schema",
	Long: `Display the JSON schema for sup package manifests. Useful for editor
integration and for validating manifests generated by other tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return RunSchema(format, os.Stdout)
	},
}

// RunSchema writes the manifest schema in the requested format.
func RunSchema(format string, w io.Writer) error {
	switch format {
	case "json":
		_, err := w.Write(schema.GetManifestSchemaRaw())
		return err
	case "yaml":
		parsed, err := schema.GetManifestSchema()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(parsed)
		if err != nil {
			return fmt.Errorf("failed to convert schema to yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("format %s not implemented", format)
	}
}

func init() {
	// Flags specific to schema command
	SchemaCommand.Flags().String("format", "json", "Output format (json or yaml)")
}
