package tui

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunShellCommand(t *testing.T) {
	t.Run("Captures output lines", func(t *testing.T) {
		result := runShellCommand(t.TempDir(), "echo hello; echo world")
		if result.exitCode != 0 {
			t.Errorf("Expected exit 0, got %d", result.exitCode)
		}
		if len(result.lines) != 2 || result.lines[0] != "hello" || result.lines[1] != "world" {
			t.Errorf("Unexpected output: %v", result.lines)
		}
	})

	t.Run("Runs in the given directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		result := runShellCommand(dir, "ls")
		found := false
		for _, line := range result.lines {
			if line == "marker.txt" {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected marker.txt in listing, got %v", result.lines)
		}
	})

	t.Run("Silent command reports no output", func(t *testing.T) {
		result := runShellCommand(t.TempDir(), "true")
		if len(result.lines) != 1 || result.lines[0] != "(no output)" {
			t.Errorf("Unexpected output: %v", result.lines)
		}
	})

	t.Run("Failing command keeps output and exit code", func(t *testing.T) {
		result := runShellCommand(t.TempDir(), "echo before; exit 3")
		if result.exitCode != 3 {
			t.Errorf("Expected exit 3, got %d", result.exitCode)
		}
		if len(result.lines) != 1 || result.lines[0] != "before" {
			t.Errorf("Unexpected output: %v", result.lines)
		}
	})
}
