// ABOUTME: CLI commands for Charm-based sync.
// ABOUTME: Supports link, unlink, status, repair, reset, and wipe operations.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/harperreed/growth/internal/charm"
	"github.com/harperreed/growth/internal/config"
	"github.com/harperreed/growth/internal/storage"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync growth data across devices",
	Long: `Sync growth data across devices using Charm Cloud.

Requires "backend": "charm" in your config (or GROWTH_BACKEND=charm).
Data is E2E encrypted with your SSH key before upload.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     growth sync link

  2. On other devices, link with the same Charm account:
     growth sync link

  3. Check sync status:
     growth sync status

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  repair      Repair database corruption (checkpoints WAL, removes SHM, vacuums)
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)

Data syncs automatically after each write.`,
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account.

If you don't have a Charm account, one will be created using your SSH key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}

		color.Green("\n✓ Device linked to Charm")

		if c, err := charmClient(); err == nil {
			if err := c.Sync(); err != nil {
				color.Yellow("⚠ Initial sync failed: %v", err)
			} else {
				color.Green("✓ Initial sync complete")
			}
		} else {
			fmt.Println("Set \"backend\": \"charm\" in your config to start syncing.")
		}
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:         "unlink",
	Short:       "Disconnect from Charm",
	Annotations: map[string]string{noStorage: "true"},
	Long: `Disconnect this device from Charm.

This does not delete your local growth data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}

		color.Green("✓ Device unlinked from Charm")
		fmt.Println("Your local growth data is preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := charmClient()
		if err != nil {
			color.Yellow("%v", err)
			return nil
		}

		id, err := c.ID()
		if err != nil {
			color.Yellow("Not linked to Charm")
			fmt.Println("\nRun 'growth sync link' to connect to Charm.")
			return nil
		}

		fmt.Println("Charm ID:", id)
		if c.IsReadOnly() {
			color.Yellow("⚠ Read-only: another process holds the database")
		}
		fmt.Println()

		all, err := c.ListMeasurements(cmd.Context(), &storage.MeasurementFilter{IncludeDeleted: true})
		if err != nil {
			return fmt.Errorf("failed to count measurements: %w", err)
		}
		live := 0
		for _, m := range all {
			if !m.IsDeleted() {
				live++
			}
		}

		color.Green("✓ Connected to Charm")
		fmt.Printf("  Measurements: %d\n", live)
		fmt.Printf("  Deleted:      %d\n", len(all)-live)

		mine, err := app.ListByCreator(cmd.Context(), creatorID())
		if err != nil {
			return fmt.Errorf("failed to count own measurements: %w", err)
		}
		fmt.Printf("  By %s: %d\n", creatorID(), len(mine))
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:         "wipe",
	Short:       "Delete all cloud and local data",
	Annotations: map[string]string{noStorage: "true"},
	Long: `Delete all cloud backups and local data.

This is a DESTRUCTIVE operation. ALL data will be permanently deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, "This will PERMANENTLY DELETE all cloud backups and local growth data.\nType 'wipe' to confirm: ", "wipe") {
			fmt.Println("Canceled.")
			return nil
		}

		result, err := kv.Wipe(charm.DBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		color.Green("✓ Data wiped successfully")
		fmt.Printf("  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Printf("  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:         "repair",
	Short:       "Repair database corruption",
	Annotations: map[string]string{noStorage: "true"},
	Long: `Repair database corruption by checkpointing WAL, removing SHM files, checking integrity, and vacuuming.

Run with --force to attempt recovery even if integrity checks fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		fmt.Println("Repairing growth database...")
		result, err := kv.Repair(charm.DBName, force)

		if result.WalCheckpointed {
			color.Green("  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			color.Green("  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			color.Green("  ✓ Integrity check passed")
		} else {
			color.Red("  ✗ Integrity check failed")
		}
		if result.Vacuumed {
			color.Green("  ✓ Database vacuumed")
		}

		if err != nil {
			if !force {
				color.Yellow("\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		color.Green("\n✓ Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local data and restore from cloud",
	Long: `Delete all local data and restore from Charm Cloud.

This is a destructive operation. All local data will be lost and restored from cloud.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := charmClient()
		if err != nil {
			return err
		}

		if !confirm(cmd, "This will DELETE all local growth data and restore from cloud.\nContinue? [y/N]: ", "y") {
			fmt.Println("Canceled.")
			return nil
		}

		if err := c.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		color.Green("✓ Local data reset and restored from cloud")
		return nil
	},
}

// charmClient returns the open repository when it is the synced charm backend.
func charmClient() (*charm.Client, error) {
	c, ok := repo.(*charm.Client)
	if !ok || !c.IsRemote() {
		backend := config.BackendSQLite
		if cfg != nil {
			backend = cfg.GetBackend()
		}
		return nil, fmt.Errorf("sync requires the charm backend (current: %s)", backend)
	}
	return c, nil
}

func runCharm(arg string) error {
	charmCmd := exec.Command("charm", arg)
	charmCmd.Stdin = os.Stdin
	charmCmd.Stdout = os.Stdout
	charmCmd.Stderr = os.Stderr
	return charmCmd.Run()
}

// confirm prints prompt and reports whether the reply equals want, ignoring case.
func confirm(cmd *cobra.Command, prompt, want string) bool {
	fmt.Print(prompt)
	reply, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(reply), want)
}

func init() {
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	syncRepairCmd.Flags().Bool("force", false, "Attempt recovery even if integrity checks fail")

	rootCmd.AddCommand(syncCmd)
}
