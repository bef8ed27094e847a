package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathInsideRoots reports whether path equals one of the library roots or
// lives underneath one. Used to reject mapped paths pointing outside the
// configured library.
func PathInsideRoots(path string, roots []string) bool {
	if path == "" {
		return false
	}
	cleaned := filepath.Clean(path)
	for _, root := range roots {
		if root == "" {
			continue
		}
		rootClean := filepath.Clean(root)
		if cleaned == rootClean || strings.HasPrefix(cleaned, rootClean+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

// ValidateMappedPath checks that a series' mapped path is usable: non-empty,
// free of traversal segments, inside a configured library root, and an
// existing directory.
func ValidateMappedPath(path string, roots []string) error {
	if path == "" {
		return fmt.Errorf("mapped path cannot be empty")
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("mapped path contains invalid directory traversal")
	}
	if !PathInsideRoots(path, roots) {
		return fmt.Errorf("mapped path is outside the configured library roots: %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access mapped path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mapped path exists but is not a directory: %s", path)
	}
	return nil
}
