package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
)

// CreatePrivateDirectory ensures path exists with access restricted to the owner.
func CreatePrivateDirectory(path string) error {
	return os.MkdirAll(path, 0700)
}

func IsDirectory(path string) bool {
	fs, err := os.Stat(path)
	if err != nil {
		return false
	}

	return fs.IsDir()
}

// Realpath canonicalizes p: absolute, symlinks and dot components resolved.
func Realpath(p string) (string, error) {
	p, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}

	return resolved, nil
}

// RestoreTimes puts back access and modification times captured from a prior
// stat, so that a rewrite of the file is not detectable by mtime-based tools.
func RestoreTimes(path string, info os.FileInfo) error {
	return os.Chtimes(path, info.ModTime(), info.ModTime())
}
