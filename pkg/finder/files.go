package finder

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ritzau/pathlink/pkg/codec"
)

// FindDocuments walks root and returns every file with a known document
// extension, sorted. Hidden directories are skipped.
func FindDocuments(root string) ([]string, error) {
	var documents []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden directories like .git, but not root itself
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if _, err := codec.ForPath(path); err == nil {
			documents = append(documents, path)
		}
		return nil
	})

	sort.Strings(documents)
	return documents, err
}
