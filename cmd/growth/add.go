// ABOUTME: CLI commands for recording and evaluating measurements.
// ABOUTME: Parses sex, age text, height and weight from positional arguments.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/nutrition"
	"github.com/harperreed/growth/internal/tracker"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:     "add <name> <sex> <age> <height> <weight>",
	Aliases: []string{"a"},
	Short:   "Record a measurement",
	Long: `Record a child's height (cm) and weight (kg) at a given age.

BMI and the three nutritional-status categories are computed immediately
and stored with the measurement. Measurements of the same name and sex by
the same creator belong to one child.

SEX:

  L, Laki-laki, M    boy
  P, Perempuan, F    girl

EXAMPLES:

  growth add Budi L "1 tahun 2 bulan" 76 9.5
  growth add Siti P "7 bulan" 66.2 7.4
  growth add Siti P "2 tahun" 86 12 --creator posyandu-3`,
	Args: cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		sex, height, weight, err := parseBody(args[1], args[3], args[4])
		if err != nil {
			return err
		}

		m, err := app.Record(cmd.Context(), tracker.NewMeasurementInput{
			ChildName: args[0],
			Sex:       sex,
			AgeText:   args[2],
			Height:    height,
			Weight:    weight,
		}, creatorID())
		if err != nil {
			return fmt.Errorf("failed to add measurement: %w", err)
		}

		color.Green("✓ Added measurement for %s", m.ChildName)
		fmt.Printf("  %s %s  %.1f cm  %.1f kg  BMI %.2f\n",
			color.New(color.Faint).Sprint(m.ShortID()),
			m.AgeText, m.Height, m.Weight, m.BMI)
		printCategories(m.HeightCategory, m.WeightCategory, m.BMICategory)
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint("child: "+m.ChildID))
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:     "evaluate <sex> <age> <height> <weight>",
	Aliases: []string{"eval"},
	Short:   "Classify a measurement without saving it",
	Long: `Compute BMI and the nutritional-status categories for one measurement.

Nothing is stored. Ages outside 0-60 months or in an unknown format give
"No Data" for every category; BMI is always computed.

EXAMPLES:

  growth evaluate P "1 tahun 11 bulan" 100 20
  growth evaluate L "5 bulan" 65 7`,
	Args:        cobra.ExactArgs(4),
	Annotations: map[string]string{noStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		sex, height, weight, err := parseBody(args[0], args[2], args[3])
		if err != nil {
			return err
		}

		r := evaluator.Evaluate(height, weight, sex, args[1])
		printResult(r)
		return nil
	},
}

// parseBody validates the sex, height and weight arguments.
func parseBody(sexArg, heightArg, weightArg string) (models.Sex, float64, float64, error) {
	sex, err := models.ParseSex(sexArg)
	if err != nil {
		return "", 0, 0, err
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(heightArg), 64)
	if err != nil || height <= 0 {
		return "", 0, 0, fmt.Errorf("invalid height: %s", heightArg)
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(weightArg), 64)
	if err != nil || weight <= 0 {
		return "", 0, 0, fmt.Errorf("invalid weight: %s", weightArg)
	}
	return sex, height, weight, nil
}

func printResult(r nutrition.Result) {
	age := "unknown"
	if r.Months != nil {
		age = fmt.Sprintf("%d months", *r.Months)
	}
	fmt.Printf("Age:  %s\n", age)
	fmt.Printf("BMI:  %.2f\n", r.BMI)
	printCategories(r.HeightCategory, r.WeightCategory, r.BMICategory)
}

func printCategories(height, weight, mass string) {
	fmt.Printf("  height: %s\n", colorCategory(height))
	fmt.Printf("  weight: %s\n", colorCategory(weight))
	fmt.Printf("  mass:   %s\n", colorCategory(mass))
}

// colorCategory highlights a category by severity.
func colorCategory(c string) string {
	switch {
	case c == models.CategoryNormal:
		return color.GreenString(c)
	case c == models.CategoryNoData:
		return color.New(color.Faint).Sprint(c)
	case strings.HasPrefix(c, "Severely"):
		return color.RedString(c)
	default:
		return color.YellowString(c)
	}
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(evaluateCmd)
}
