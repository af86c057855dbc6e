// ABOUTME: CLI commands for listing and showing measurements.
// ABOUTME: Supports category and creator filters with page/limit windowing.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/growth/internal/children"
	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	listCategory string
	listCreator  string
	listMine     bool
	listPage     int
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List measurements",
	Long: `List measurements, newest first.

OUTPUT FORMAT:

  Each line shows: ID  DATE  NAME  AGE  HEIGHT  WEIGHT  BMI  CATEGORIES

  The ID is an 8-character prefix you can use with show, update and delete.

FILTERING:

  --category, -c   Match any of the three categories (substring, any case)
  --creator-id     Only measurements recorded by this creator
  --mine           Only measurements recorded by the current creator

EXAMPLES:

  growth list                      # First 20 measurements
  growth list -c stunted           # Stunted or severely stunted
  growth list --page 2 -n 10       # Second page of 10
  growth list --mine`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := children.WindowFromPage(listPage, listLimit)
		if err != nil {
			return fmt.Errorf("%w: page must be >= 1 and limit > 0", err)
		}

		creator := listCreator
		if listMine {
			creator = creatorID()
		}

		page, err := app.ListMeasurements(cmd.Context(), tracker.ListFilter{
			Category:  listCategory,
			CreatorID: creator,
			Window:    w,
		})
		if err != nil {
			return fmt.Errorf("failed to list measurements: %w", err)
		}

		if len(page.Rows) == 0 {
			fmt.Println("No measurements found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, m := range page.Rows {
			fmt.Printf("%s %s %s %s %6.1f cm %5.1f kg %6.2f  %s\n",
				faint.Sprint(m.ShortID()),
				faint.Sprint(m.CreatedAt.Local().Format("2006-01-02")),
				padRight(truncate(m.ChildName, 16), 16),
				padRight(m.AgeText, 18),
				m.Height, m.Weight, m.BMI,
				categorySummary(m))
		}
		printMeta(page.Meta, "measurements")
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one measurement",
	Long: `Show a measurement by its ID or ID prefix.

EXAMPLES:

  growth show abc12345`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := app.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("measurement not found: %w", err)
		}
		printMeasurement(m)
		return nil
	},
}

func printMeasurement(m *models.Measurement) {
	faint := color.New(color.Faint)
	fmt.Printf("%s %s\n", color.New(color.Bold).Sprint(m.ChildName), faint.Sprint(m.ID.String()))
	fmt.Printf("  Child:   %s (%s)\n", m.ChildID, m.Sex)
	age := m.AgeText
	if m.AgeInMonths != nil {
		age = fmt.Sprintf("%s (%d months)", m.AgeText, *m.AgeInMonths)
	}
	fmt.Printf("  Age:     %s\n", age)
	fmt.Printf("  Height:  %.1f cm\n", m.Height)
	fmt.Printf("  Weight:  %.1f kg\n", m.Weight)
	fmt.Printf("  BMI:     %.2f\n", m.BMI)
	printCategories(m.HeightCategory, m.WeightCategory, m.BMICategory)
	fmt.Printf("  Creator: %s\n", m.CreatorID)
	fmt.Printf("  %s\n", faint.Sprintf("created %s, updated %s",
		m.CreatedAt.Local().Format("2006-01-02 15:04"),
		m.UpdatedAt.Local().Format("2006-01-02 15:04")))
}

func categorySummary(m *models.Measurement) string {
	return strings.Join([]string{
		colorCategory(m.HeightCategory),
		colorCategory(m.WeightCategory),
		colorCategory(m.BMICategory),
	}, " / ")
}

func printMeta(meta *children.PageMeta, noun string) {
	if meta == nil {
		return
	}
	fmt.Println(color.New(color.Faint).Sprintf("page %d of %d (%d %s)",
		meta.Page, max(meta.PageSize, 1), meta.TotalData, noun))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "filter by category (substring)")
	listCmd.Flags().StringVar(&listCreator, "creator-id", "", "filter by creator")
	listCmd.Flags().BoolVar(&listMine, "mine", false, "only measurements by the current creator")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "page size")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
