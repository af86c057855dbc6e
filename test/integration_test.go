// ABOUTME: Integration tests for growth CLI.
// ABOUTME: Builds the binary and runs a full record, review and export workflow.
package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	// Build the binary
	projectRoot, _ := filepath.Abs("..")
	growthBinary := filepath.Join(projectRoot, "growth")

	buildCmd := exec.Command("go", "build", "-o", growthBinary, "./cmd/growth")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}
	defer os.Remove(growthBinary)

	// Isolated config and data directories
	tmpDir := t.TempDir()
	env := append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(tmpDir, "config"),
		"XDG_DATA_HOME="+filepath.Join(tmpDir, "data"),
		"GROWTH_BACKEND=sqlite",
		"GROWTH_CREATOR_ID=posyandu",
		"NO_COLOR=1",
	)

	run := func(args ...string) (string, error) {
		cmd := exec.Command(growthBinary, args...)
		cmd.Env = env
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	expect := func(output string, want ...string) {
		t.Helper()
		for _, w := range want {
			if !strings.Contains(output, w) {
				t.Errorf("Expected %q in output, got: %s", w, output)
			}
		}
	}

	// Evaluate without storing
	output, err := run("evaluate", "P", "1 tahun 11 bulan", "100", "20")
	if err != nil {
		t.Fatalf("Failed to evaluate: %v\n%s", err, output)
	}
	expect(output, "23 months", "20.00", "Overweight")

	// Record two measurements for one child
	output, err = run("add", "Siti", "P", "1 tahun 11 bulan", "100", "20")
	if err != nil {
		t.Fatalf("Failed to add: %v\n%s", err, output)
	}
	expect(output, "Added measurement for Siti", "posyandu-Siti-P")

	output, err = run("add", "Siti", "P", "2 tahun", "86", "12")
	if err != nil {
		t.Fatalf("Failed to add: %v\n%s", err, output)
	}

	// Listing
	output, err = run("list")
	if err != nil {
		t.Fatalf("Failed to list: %v\n%s", err, output)
	}
	expect(output, "Siti", "2 tahun")

	// Children are aggregated
	output, err = run("child", "list")
	if err != nil {
		t.Fatalf("Failed to list children: %v\n%s", err, output)
	}
	expect(output, "posyandu-Siti-P")
	if strings.Count(output, "posyandu-Siti-P") != 1 {
		t.Errorf("Expected one child row, got: %s", output)
	}

	// Markdown export
	output, err = run("export", "markdown")
	if err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}
	expect(output, "Siti")

	// Reference tables need no storage
	output, err = run("reference", "show", "bmi", "--sex", "P", "--month", "23")
	if err != nil {
		t.Fatalf("Failed to show reference: %v\n%s", err, output)
	}
	expect(output, "median")
}
