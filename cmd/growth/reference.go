// ABOUTME: CLI command for inspecting the WHO reference tables.
// ABOUTME: Prints SD thresholds by month for one indicator and sex.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/reference"
	"github.com/spf13/cobra"
)

var (
	refSex   string
	refMonth int
)

var referenceCmd = &cobra.Command{
	Use:         "reference",
	Aliases:     []string{"ref"},
	Short:       "Inspect the WHO growth reference tables",
	Annotations: map[string]string{noStorage: "true"},
}

var referenceShowCmd = &cobra.Command{
	Use:   "show <indicator>",
	Short: "Print thresholds for an indicator",
	Long: `Print the -3SD..+3SD thresholds used for classification.

INDICATORS:

  length   length/height-for-age (cm)
  weight   weight-for-age (kg)
  bmi      BMI-for-age (kg/m²)

EXAMPLES:

  growth reference show bmi --sex P
  growth reference show length --sex L --month 24`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ind, err := reference.ParseIndicator(args[0])
		if err != nil {
			return err
		}
		sex, err := models.ParseSex(refSex)
		if err != nil {
			return err
		}

		rows := evaluator.Dataset().Rows(ind, sex)
		if cmd.Flags().Changed("month") {
			row, ok := evaluator.Dataset().Row(ind, sex, refMonth)
			if !ok {
				return fmt.Errorf("no reference row for month %d (valid: %d-%d)", refMonth, reference.MinMonth, reference.MaxMonth)
			}
			rows = []reference.Row{row}
		}

		color.New(color.Bold).Printf("%s, %s\n", ind, sex)
		fmt.Printf("%5s %7s %7s %7s %7s %7s %7s %7s\n", "month", "-3SD", "-2SD", "-1SD", "median", "+1SD", "+2SD", "+3SD")
		for _, r := range rows {
			fmt.Printf("%5d %7.1f %7.1f %7.1f %7.1f %7.1f %7.1f %7.1f\n",
				r.Month, r.SD3neg, r.SD2neg, r.SD1neg, r.SD0, r.SD1, r.SD2, r.SD3)
		}
		return nil
	},
}

func init() {
	referenceShowCmd.Flags().StringVarP(&refSex, "sex", "s", "L", "sex (L or P)")
	referenceShowCmd.Flags().IntVarP(&refMonth, "month", "m", 0, "only this month")
	referenceCmd.AddCommand(referenceShowCmd)
	rootCmd.AddCommand(referenceCmd)
}
