package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCommand runs the root command with the given CLI arguments.
func executeCommand(t *testing.T, args ...string) error {
	t.Helper()
	RootCmd.SetArgs(args)
	return RootCmd.Execute()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name        string
		manifest    string
		payload     bool
		expectError bool
		errorMsg    string
	}{
		{
			name:     "valid manifest with payload",
			manifest: `{"name": "gcd", "version": "0.1.0", "files": ["rtl"]}`,
			payload:  true,
		},
		{
			name:        "missing payload path",
			manifest:    `{"name": "gcd", "version": "0.1.0", "files": ["rtl"]}`,
			payload:     false,
			expectError: true,
			errorMsg:    "payload check failed",
		},
		{
			name:        "missing version",
			manifest:    `{"name": "gcd"}`,
			payload:     true,
			expectError: true,
			errorMsg:    "version is required",
		},
		{
			name:        "bad name",
			manifest:    `{"name": "GCD!", "version": "0.1.0"}`,
			payload:     true,
			expectError: true,
			errorMsg:    "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			manifestPath := filepath.Join(dir, "gcd.pkg.json")
			writeFile(t, manifestPath, tt.manifest)
			if tt.payload {
				writeFile(t, filepath.Join(dir, "rtl", "gcd.v"), "module gcd;\nendmodule\n")
			}

			err := executeCommand(t, "check", manifestPath)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected check to fail")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got: %v", tt.errorMsg, err)
				}
			} else if err != nil {
				t.Errorf("check failed: %v", err)
			}
		})
	}
}

func TestCheckCommandMissingManifest(t *testing.T) {
	err := executeCommand(t, "check", filepath.Join(t.TempDir(), "nope.pkg.json"))
	if err == nil {
		t.Fatal("expected error for missing manifest file")
	}
}

func TestCheckCommandSkipFiles(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "gcd.pkg.json")
	writeFile(t, manifestPath, `{"name": "gcd", "version": "0.1.0", "files": ["rtl"]}`)

	// With --check-files=false a missing payload is not an error.
	if err := executeCommand(t, "check", manifestPath, "--check-files=false"); err != nil {
		t.Errorf("check failed: %v", err)
	}
	// Restore the default for other tests.
	checkCheckFiles = true
}
