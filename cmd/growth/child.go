// ABOUTME: CLI commands for child-level views and edits.
// ABOUTME: Lists children with their latest status, shows history, renames and deletes.
package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/growth/internal/children"
	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	childName    string
	childCreator string
	childPage    int
	childLimit   int
	childSex     string
	childYes     bool
)

var childCmd = &cobra.Command{
	Use:     "child",
	Aliases: []string{"children", "c"},
	Short:   "View and manage children",
	Long: `A child is every measurement with the same creator, name and sex.
Its ID looks like "local-Budi-L".

COMMANDS:

  list      Children with their latest measurement
  show      One child's latest status and full history
  rename    Change a child's name or sex on every measurement
  delete    Delete a child and all of its measurements`,
}

var childListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List children with their latest status",
	Long: `List children, each with the status of its measurement at the greatest age.

Children are counted before paging, so --limit always means children,
not measurements.

EXAMPLES:

  growth child list
  growth child list --name budi
  growth child list --page 2 -n 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := children.WindowFromPage(childPage, childLimit)
		if err != nil {
			return fmt.Errorf("%w: page must be >= 1 and limit > 0", err)
		}

		page, err := app.ListChildren(cmd.Context(), tracker.ChildFilter{
			Name:      childName,
			CreatorID: childCreator,
			Window:    w,
		})
		if err != nil {
			return fmt.Errorf("failed to list children: %w", err)
		}

		if len(page.Rows) == 0 {
			fmt.Println("No children found.")
			return nil
		}

		for _, c := range page.Rows {
			fmt.Printf("%s %s %s %6.1f cm %5.1f kg  %s\n",
				padRight(truncate(c.ChildID, 28), 28),
				padRight(truncate(c.ChildName, 16), 16),
				padRight(c.LatestAge, 18),
				c.LatestHeight, c.LatestWeight,
				strings.Join([]string{
					colorCategory(c.LatestHeightCategory),
					colorCategory(c.LatestWeightCategory),
					colorCategory(c.LatestBMICategory),
				}, " / "))
		}
		printMeta(page.Meta, "children")
		return nil
	},
}

var childShowCmd = &cobra.Command{
	Use:   "show <child-id>",
	Short: "Show a child's status and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.GetChild(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("child not found: %w", err)
		}
		printChild(c)
		return nil
	},
}

var childRenameCmd = &cobra.Command{
	Use:   "rename <child-id> [new-name]",
	Short: "Rename a child or change its sex",
	Long: `Rewrite the name and/or sex on every measurement of a child.

The child's ID changes with its name and sex. When the new identity
matches an existing child, the two histories merge. A sex change
recomputes every category.

EXAMPLES:

  growth child rename local-Budi-L Budiman
  growth child rename local-Budi-L --sex P`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var upd tracker.ChildUpdate
		if len(args) == 2 {
			upd.Name = &args[1]
		}
		if childSex != "" {
			sex, err := models.ParseSex(childSex)
			if err != nil {
				return err
			}
			upd.Sex = &sex
		}

		c, err := app.UpdateChild(cmd.Context(), args[0], upd)
		if err != nil {
			return fmt.Errorf("failed to update child: %w", err)
		}

		color.Green("✓ Updated %s → %s", args[0], c.ChildID)
		fmt.Printf("  %d measurements\n", len(c.History))
		return nil
	},
}

var childDeleteCmd = &cobra.Command{
	Use:     "delete <child-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a child and all of its measurements",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.GetChild(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("child not found: %w", err)
		}

		if !childYes {
			fmt.Printf("Delete %s and its %d measurements? [y/N]: ", c.ChildName, len(c.History))
			response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				fmt.Println("Canceled.")
				return nil
			}
		}

		n, err := app.DeleteChild(cmd.Context(), c.ChildID)
		if err != nil {
			return fmt.Errorf("failed to delete child: %w", err)
		}

		color.Yellow("✗ Deleted %s (%d measurements)", c.ChildName, n)
		return nil
	},
}

func printChild(c *models.ChildSummary) {
	faint := color.New(color.Faint)
	fmt.Printf("%s %s\n", color.New(color.Bold).Sprint(c.ChildName), faint.Sprint(c.ChildID))
	fmt.Printf("  Sex:     %s\n", c.Sex)
	fmt.Printf("  Creator: %s\n", c.CreatorID)
	fmt.Printf("  Latest:  %s  %.1f cm  %.1f kg  BMI %.2f\n",
		c.LatestAge, c.LatestHeight, c.LatestWeight, c.LatestBMI)
	printCategories(c.LatestHeightCategory, c.LatestWeightCategory, c.LatestBMICategory)

	fmt.Println()
	fmt.Println("History:")
	for _, m := range c.History {
		fmt.Printf("  %s %s %6.1f cm %5.1f kg %6.2f  %s\n",
			faint.Sprint(m.ShortID()),
			padRight(m.AgeText, 18),
			m.Height, m.Weight, m.BMI,
			categorySummary(m))
	}
}

func init() {
	childListCmd.Flags().StringVar(&childName, "name", "", "filter by name (substring)")
	childListCmd.Flags().StringVar(&childCreator, "creator-id", "", "filter by creator")
	childListCmd.Flags().IntVarP(&childPage, "page", "p", 1, "page number")
	childListCmd.Flags().IntVarP(&childLimit, "limit", "n", 20, "page size")
	childRenameCmd.Flags().StringVar(&childSex, "sex", "", "new sex (L or P)")
	childDeleteCmd.Flags().BoolVarP(&childYes, "yes", "y", false, "skip confirmation prompt")

	childCmd.AddCommand(childListCmd)
	childCmd.AddCommand(childShowCmd)
	childCmd.AddCommand(childRenameCmd)
	childCmd.AddCommand(childDeleteCmd)
	rootCmd.AddCommand(childCmd)
}
