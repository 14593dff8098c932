package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	// Create temporary directory for testing
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir")

	// Directory should not exist initially
	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	// Create directory
	err := CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	// Directory should now exist
	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	err = CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestDefaultDownloadDir(t *testing.T) {
	dir := DefaultDownloadDir()
	if filepath.Base(dir) != DefaultDownloadDirName {
		t.Errorf("Expected directory to end with %q, got: %s", DefaultDownloadDirName, dir)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`plain title`, `plain title`},
		{`a\b/c*d?e:f"g<h>i|j`, `abcdefghij`},
		{`What? Really: "Yes" <3 | no`, `What Really Yes 3  no`},
		{`keep-these_chars.(ok) [x] {y} #1 & 'q'`, `keep-these_chars.(ok) [x] {y} #1 & 'q'`},
		{`Ünïcødé 日本語 🎬`, `Ünïcødé 日本語 🎬`},
		{``, ``},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := SanitizeFileName(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeFileName(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
			if again := SanitizeFileName(result); again != result {
				t.Errorf("SanitizeFileName is not idempotent: %q -> %q", result, again)
			}
			if strings.ContainsAny(result, UnsafeFileNameChars) {
				t.Errorf("SanitizeFileName(%q) left unsafe characters: %q", tt.input, result)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		dir, title, ext string
		expected        string
	}{
		{"/tmp/dl", "My Video", "mp4", "/tmp/dl/My Video.mp4"},
		{"/tmp/dl", "AC/DC: Live?", "mp3", "/tmp/dl/ACDC Live.mp3"},
		{"/tmp/dl", "???", "mp4", "/tmp/dl/download.mp4"},
	}

	for _, tt := range tests {
		result := OutputPath(tt.dir, tt.title, tt.ext)
		if result != filepath.FromSlash(tt.expected) {
			t.Errorf("OutputPath(%q, %q, %q) = %q, expected %q", tt.dir, tt.title, tt.ext, result, tt.expected)
		}
	}
}
