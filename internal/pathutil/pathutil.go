// Package pathutil provides path validation and small filesystem helpers
// shared by the file-oriented writers, filters and CLI commands.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateFilePath rejects paths that are empty, contain null bytes, or
// climb out of their base via a ".." segment. Detection is segment-based
// so "lists/../secret.txt" is caught before any cleaning could hide it.
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("file path contains a null byte")
	}
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == ".." {
			return fmt.Errorf("file path contains path traversal: %q", path)
		}
	}
	return nil
}

// EnsureParentDir creates the parent directory of path, including any
// missing ancestors. A parent of "." or "/" is left as is.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// SplitExt splits path into its stem and extension, keeping the directory
// part on the stem. The extension includes the leading dot and is empty
// when the name has none.
func SplitExt(path string) (stem, ext string) {
	ext = filepath.Ext(path)
	return strings.TrimSuffix(path, ext), ext
}
