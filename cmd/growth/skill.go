// ABOUTME: Install Claude Code skill for growth
// ABOUTME: Embeds and installs the skill definition to ~/.claude/skills/

package main

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

var skillSkipConfirm bool

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install Claude Code skill",
	Long: `Install the growth skill for Claude Code.

This copies the skill definition to ~/.claude/skills/growth/
so Claude Code can use growth tools contextually.`,
	Annotations: map[string]string{noStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		return installSkill(home, cmd.InOrStdin(), skillSkipConfirm)
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(installSkillCmd)
}

// skillPath returns where the skill is installed under home.
func skillPath(home string) string {
	return filepath.Join(home, ".claude", "skills", "growth", "SKILL.md")
}

func installSkill(home string, in io.Reader, skipConfirm bool) error {
	path := skillPath(home)

	fmt.Println("This will install the growth skill, enabling Claude Code to:")
	fmt.Println()
	fmt.Println("  • Record children's height and weight")
	fmt.Println("  • Classify stunting, wasting and overweight")
	fmt.Println("  • Review a child's growth history")
	fmt.Println()
	fmt.Println("Destination:")
	fmt.Printf("  %s\n", path)
	fmt.Println()

	if _, err := os.Stat(path); err == nil {
		fmt.Println("Note: A skill file already exists and will be overwritten.")
		fmt.Println()
	}

	if !skipConfirm {
		fmt.Print("Install the growth skill? [y/N] ")
		response, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read response: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Installation canceled.")
			return nil
		}
		fmt.Println()
	}

	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return fmt.Errorf("failed to read embedded skill: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}

	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	fmt.Println("✓ Installed growth skill successfully!")
	fmt.Println()
	fmt.Println("Try asking Claude: \"Budi is 14 months, 76 cm and 9.5 kg. Is he stunted?\"")
	return nil
}
