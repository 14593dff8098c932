package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Default directory name under the system temp dir
const (
	DefaultDownloadDirName = "yt-downloader-bot"
)

// UnsafeFileNameChars are stripped from titles before they are used as file names
const UnsafeFileNameChars = `\/*?:"<>|`

// Fallback name for titles made only of unsafe characters
const (
	FallbackFileName = "download"
)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// DefaultDownloadDir returns the directory used when none is configured
func DefaultDownloadDir() string {
	return filepath.Join(os.TempDir(), DefaultDownloadDirName)
}

// SanitizeFileName removes exactly the characters \ / * ? : " < > | and
// leaves everything else untouched. It is idempotent.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(UnsafeFileNameChars, r) {
			return -1
		}
		return r
	}, name)
}

// OutputPath builds "<dir>/<sanitized title>.<ext>"
func OutputPath(dir, title, ext string) string {
	name := SanitizeFileName(title)
	if strings.TrimSpace(name) == "" {
		name = FallbackFileName
	}
	return filepath.Join(dir, fmt.Sprintf("%s.%s", name, ext))
}
