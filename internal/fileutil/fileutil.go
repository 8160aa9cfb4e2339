// Package fileutil provides small filesystem helpers shared by the
// library and download layers.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// Exists reports whether path exists as a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDir creates path (and any missing parents) with default
// permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// RemoveTree deletes path and everything under it, continuing past
// individual failures so one stubborn entry does not strand the rest.
// It reports an error when the directory or any entry could not be
// removed.
func RemoveTree(path string) error {
	failed := removeTree(path)
	if failed > 0 {
		return fmt.Errorf("remove %s: %d entries could not be deleted", path, failed)
	}
	return nil
}

func removeTree(path string) int {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		return 1
	}

	failed := 0
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			failed += removeTree(child)
			continue
		}
		if err := os.Remove(child); err != nil {
			failed++
		}
	}

	if err := os.Remove(path); err != nil {
		failed++
	}
	return failed
}
