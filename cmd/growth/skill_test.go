// ABOUTME: Tests for the install-skill command.
// ABOUTME: Validates skill installation, confirmation handling, and file content.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestInstallSkillWritesFile verifies the skill lands under the given home
// with its directories created.
func TestInstallSkillWritesFile(t *testing.T) {
	home := t.TempDir()

	if err := installSkill(home, strings.NewReader(""), true); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	path := skillPath(home)
	if path != filepath.Join(home, ".claude", "skills", "growth", "SKILL.md") {
		t.Errorf("unexpected skill path %s", path)
	}

	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Skill directory not created: %v", err)
	}
	if info.Mode()&0700 != 0700 {
		t.Errorf("Expected directory to be rwx for owner, got %v", info.Mode())
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read written skill file: %v", err)
	}
	embedded, _ := skillFS.ReadFile("skill/SKILL.md")
	if string(written) != string(embedded) {
		t.Error("Written skill does not match embedded content")
	}
}

// TestInstallSkillConfirmation verifies the prompt answers.
func TestInstallSkillConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		installed bool
	}{
		{"yes", "y\n", true},
		{"full yes", "YES\n", true},
		{"no", "n\n", false},
		{"empty input", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			if err := installSkill(home, strings.NewReader(tt.input), false); err != nil {
				t.Fatalf("installSkill failed: %v", err)
			}
			_, err := os.Stat(skillPath(home))
			if got := err == nil; got != tt.installed {
				t.Errorf("installed = %v, want %v", got, tt.installed)
			}
		})
	}
}

// TestInstallSkillOverwritesExistingFile verifies a stale skill is replaced.
func TestInstallSkillOverwritesExistingFile(t *testing.T) {
	home := t.TempDir()
	path := skillPath(home)

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("Failed to create skill directory: %v", err)
	}
	if err := os.WriteFile(path, []byte("# Old Skill\nstale content"), 0600); err != nil {
		t.Fatalf("Failed to write old skill file: %v", err)
	}

	if err := installSkill(home, strings.NewReader(""), true); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read skill file: %v", err)
	}
	if strings.Contains(string(data), "stale content") {
		t.Error("Old content should have been replaced")
	}
}

// TestSkillFSContent verifies frontmatter, sections and tool references.
func TestSkillFSContent(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill/SKILL.md: %v", err)
	}

	s := string(content)
	if !strings.HasPrefix(s, "---") {
		t.Error("Expected SKILL.md to start with YAML frontmatter (---)")
	}

	markers := []string{
		"name: growth",
		"description:",
		"## When to use growth",
		"## Categories",
		"Severely Stunted",
		"Obese",
	}
	for _, tool := range []string{
		"evaluate_measurement", "add_measurement", "update_measurement",
		"delete_measurement", "get_measurement", "list_measurements",
		"list_children", "get_child", "update_child", "delete_child",
	} {
		markers = append(markers, "mcp__growth__"+tool)
	}

	for _, m := range markers {
		if !strings.Contains(s, m) {
			t.Errorf("Expected SKILL.md to contain %q", m)
		}
	}
}

// TestSkillSkipConfirmFlag verifies the flag exists and has correct defaults.
func TestSkillSkipConfirmFlag(t *testing.T) {
	flag := installSkillCmd.Flags().Lookup("yes")
	if flag == nil {
		t.Fatal("Expected --yes flag to be defined")
	}
	if flag.Shorthand != "y" {
		t.Errorf("Expected shorthand 'y', got %q", flag.Shorthand)
	}
	if flag.DefValue != "false" {
		t.Errorf("Expected default value 'false', got %q", flag.DefValue)
	}
}
