package generator

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrInstallRootNotFound means no ancestor directory carries the tool
// installation markers.
var ErrInstallRootNotFound = errors.New("install root not found (no templates/ and core/ directories in any ancestor)")

// FindInstallRoot walks upward from start looking for a directory that
// contains both templates/ and core/. That directory holds the on-disk
// template overrides and the feature trees copied into generated projects.
func FindInstallRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		templatesDir := filepath.Join(dir, "templates")
		coreDir := filepath.Join(dir, "core")
		if isDir(templatesDir) && isDir(coreDir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrInstallRootNotFound
		}
		dir = parent
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
