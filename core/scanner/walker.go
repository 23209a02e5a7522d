package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/models"
)

type WalkOptions struct {
	// Extensions accepted, e.g. ".ts". Empty accepts every file.
	Extensions []string
	// Exclude holds directory names or doublestar patterns matched against
	// the slash path relative to the walk root.
	Exclude []string
}

var DefaultExclude = []string{".git", "node_modules", "dist", ".angular"}

// Walk lists the files under root that pass the extension filter.
func Walk(root string, opts WalkOptions) (*models.SourceTree, error) {
	tree := &models.SourceTree{Root: root}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if isExcluded(relPath, d.Name(), opts.Exclude) {
				logger.Debug("Excluding directory: %s", relPath)
				return filepath.SkipDir
			}
			return nil
		}

		if !HasExtension(relPath, opts.Extensions) {
			return nil
		}
		tree.Files = append(tree.Files, relPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(tree.Files)
	return tree, nil
}

func HasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(path)))
}

func isExcluded(relPath, name string, exclude []string) bool {
	for _, ex := range exclude {
		if ex == name || ex == relPath {
			return true
		}
		if ok, err := doublestar.Match(ex, relPath); err == nil && ok {
			return true
		}
	}
	return false
}
