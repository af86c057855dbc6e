// ABOUTME: CLI commands for exporting and importing growth data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/growth/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput  string
	exportCreator string
	exportChild   string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export growth data",
	Long: `Export measurements in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export grouped by child (human-readable)
  markdown   One table per child, ordered by age

OPTIONS:

  --output, -o   Write to file instead of stdout
  --creator-id   Only measurements recorded by this creator
  --child        Only one child, by child ID

EXAMPLES:

  growth export json                        # Export all data as JSON
  growth export json -o backup.json         # Save to file
  growth export yaml                        # Export as YAML
  growth export markdown --child local-Budi-L`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := &storage.MeasurementFilter{
			CreatorID: exportCreator,
			ChildID:   exportChild,
		}

		var data []byte
		var err error

		switch args[0] {
		case "json":
			data, err = storage.ExportJSON(cmd.Context(), repo, filter)
		case "yaml":
			data, err = storage.ExportYAML(cmd.Context(), repo, filter)
		case "markdown", "md":
			var md string
			md, err = storage.ExportMarkdown(cmd.Context(), repo, filter)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import growth data from JSON",
	Long: `Import measurements from a JSON backup file.

Stored categories are kept as exported. Measurements whose ID already
exists are skipped, so importing the same file twice is harmless.

EXAMPLES:

  growth import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		summary, err := storage.ImportJSON(cmd.Context(), repo, data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		fmt.Printf("  Imported: %d\n", summary.Imported)
		if summary.Skipped > 0 {
			fmt.Printf("  Skipped (already present): %d\n", summary.Skipped)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportCreator, "creator-id", "", "filter by creator")
	exportCmd.Flags().StringVar(&exportChild, "child", "", "filter by child ID")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
