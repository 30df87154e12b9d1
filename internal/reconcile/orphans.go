package reconcile

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cradle-dev/cradle/pkg/ignore"
)

// FindOrphans walks the generated tree at root and reports files that are
// neither expected artifacts nor protected by the keep matcher. Paths in
// expected and in the result are slash-separated and relative to root.
func FindOrphans(root string, expected map[string]struct{}, keep *ignore.KeepMatcher) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var orphans []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if keep != nil && keep.KeepDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if keep != nil && keep.Keep(rel) {
			return nil
		}
		if _, ok := expected[rel]; !ok {
			orphans = append(orphans, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(orphans)
	return orphans, nil
}
