// ABOUTME: CLI command for deleting measurements.
// ABOUTME: Supports deletion by full ID or ID prefix.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a measurement",
	Long: `Delete a measurement by its ID or ID prefix.

You can use either the full UUID or just the first few characters (prefix).
The ID prefix is shown in the first column of 'growth list' output.

EXAMPLES:

  growth delete abc12345                    # Delete by 8-char prefix
  growth rm abc1                            # Short prefix (if unique)

If the prefix matches multiple measurements, an error is returned.
Deleted measurements are kept as tombstones and still migrate between backends.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := app.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("measurement not found: %w", err)
		}

		if err := app.Delete(cmd.Context(), m.ID.String()); err != nil {
			return fmt.Errorf("failed to delete measurement: %w", err)
		}

		color.Yellow("✗ Deleted measurement of %s", m.ChildName)
		fmt.Printf("  %s %s  %.1f cm  %.1f kg\n",
			color.New(color.Faint).Sprint(m.ShortID()),
			m.AgeText, m.Height, m.Weight)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
