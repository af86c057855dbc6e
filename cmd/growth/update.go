// ABOUTME: CLI command for correcting a measurement.
// ABOUTME: Changes age, height or weight and re-runs classification.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/growth/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	updateAgeMonths int
	updateHeight    float64
	updateWeight    float64
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Aliases: []string{"edit"},
	Short:   "Correct a measurement",
	Long: `Change the age, height or weight of a measurement by ID or ID prefix.

BMI and all categories are recomputed. Setting --age-months rewrites the age
as "N tahun M bulan". To rename a child or fix its sex use 'growth child rename'.

EXAMPLES:

  growth update abc12345 --height 76.5
  growth update abc12345 --age-months 14 --weight 9.8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in tracker.UpdateInput
		if cmd.Flags().Changed("age-months") {
			in.AgeInMonths = &updateAgeMonths
		}
		if cmd.Flags().Changed("height") {
			in.Height = &updateHeight
		}
		if cmd.Flags().Changed("weight") {
			in.Weight = &updateWeight
		}

		m, err := app.Update(cmd.Context(), args[0], in)
		if err != nil {
			return fmt.Errorf("failed to update measurement: %w", err)
		}

		color.Green("✓ Updated %s", m.ShortID())
		fmt.Printf("  %s  %.1f cm  %.1f kg  BMI %.2f\n", m.AgeText, m.Height, m.Weight, m.BMI)
		printCategories(m.HeightCategory, m.WeightCategory, m.BMICategory)
		return nil
	},
}

func init() {
	updateCmd.Flags().IntVar(&updateAgeMonths, "age-months", 0, "age in months")
	updateCmd.Flags().Float64Var(&updateHeight, "height", 0, "height in cm")
	updateCmd.Flags().Float64Var(&updateWeight, "weight", 0, "weight in kg")
	rootCmd.AddCommand(updateCmd)
}
