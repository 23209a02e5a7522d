package scanner

import (
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/tristendillon/carve/core/cache"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/models"
)

// Lexical import shapes. The first capture group is the module string.
// Comments and string contents are not understood, so an import inside a
// comment is still reported.
var patterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"named", regexp.MustCompile(`import\s+(?:type\s+)?\{[^}]*\}\s*from\s*['"]([^'"\n]+)['"]`)},
	{"default", regexp.MustCompile(`import\s+(?:type\s+)?[\w$]+\s*(?:,\s*(?:\{[^}]*\}|\*\s*as\s+[\w$]+)\s*)?from\s*['"]([^'"\n]+)['"]`)},
	{"namespace", regexp.MustCompile(`import\s*\*\s*as\s+[\w$]+\s+from\s*['"]([^'"\n]+)['"]`)},
	{"side-effect", regexp.MustCompile(`import\s*['"]([^'"\n]+)['"]`)},
}

// Extract returns the module strings referenced by content in file order.
// A statement that fits several shapes is reported once.
func Extract(file string, content []byte) []models.RawReference {
	seen := make(map[int]bool)
	var refs []models.RawReference

	for _, p := range patterns {
		for _, m := range p.re.FindAllSubmatchIndex(content, -1) {
			start, end := m[2], m[3]
			if seen[start] {
				continue
			}
			seen[start] = true
			refs = append(refs, models.RawReference{
				File:   file,
				Module: string(content[start:end]),
				Offset: start,
			})
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Offset < refs[j].Offset })
	return refs
}

type Scanner struct {
	cache *cache.FileCache
}

// New returns a Scanner. fc may be nil to always read from disk.
func New(fc *cache.FileCache) *Scanner {
	return &Scanner{cache: fc}
}

// References yields every reference in tree. The sequence reads files lazily
// and can be ranged over again; each pass reflects the files at that time.
func (s *Scanner) References(tree *models.SourceTree) iter.Seq[models.RawReference] {
	return func(yield func(models.RawReference) bool) {
		for _, file := range tree.Files {
			for _, ref := range s.fileReferences(tree.Root, file) {
				if !yield(ref) {
					return
				}
			}
		}
	}
}

func (s *Scanner) fileReferences(root, file string) []models.RawReference {
	absPath := filepath.Join(root, filepath.FromSlash(file))

	if s.cache != nil {
		if refs, ok := s.cache.ValidateAndGet(absPath); ok {
			return refs
		}
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		logger.Debug("Failed to read %s: %v", absPath, err)
		return nil
	}

	refs := Extract(file, content)
	if s.cache != nil {
		if err := s.cache.Set(absPath, refs); err != nil {
			logger.Debug("Failed to cache references for %s: %v", absPath, err)
		}
	}
	return refs
}
