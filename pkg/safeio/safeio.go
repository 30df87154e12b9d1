// Package safeio guards file I/O that crosses a trust boundary: output
// directories supplied on the command line and template files read from a
// discovered installation root.
package safeio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CleanUserPath normalizes a caller-supplied path, such as the sync --output
// directory, and rejects anything that climbs out of its tree. The result
// uses forward slashes.
func CleanUserPath(p string) (string, error) {
	clean := filepath.Clean(p)
	if clean == ".." || strings.Contains(clean, "..") {
		return "", fmt.Errorf("path %q: traversal not allowed", p)
	}
	return filepath.ToSlash(clean), nil
}

// ReadFileContained reads filePath only when it resolves inside baseDir. The
// generator routes installation-root template reads through this so a
// misconfigured root cannot pull content from outside its own tree.
func ReadFileContained(baseDir, filePath string) ([]byte, error) {
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory %s: %w", baseDir, err)
	}
	target, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", filePath, err)
	}

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return nil, fmt.Errorf("relate %s to %s: %w", filePath, baseDir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%s escapes %s", filePath, baseDir)
	}

	return os.ReadFile(target) // #nosec G304 -- containment checked above
}

// WriteFilePreservePerms writes a generated file, keeping the mode of any
// file it replaces. New files get 0644.
func WriteFilePreservePerms(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		if perm := st.Mode() & 0o777; perm != 0 {
			mode = perm
		}
	}
	return os.WriteFile(path, data, mode)
}
