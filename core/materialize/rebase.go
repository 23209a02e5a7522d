package materialize

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var relativeString = regexp.MustCompile("(['\"`])(\\.\\.?/[^'\"`\\s]*)(['\"`])")

// RebaseContent rewrites the relative strings in content written for oldFile
// so they resolve to the same targets from newFile. Targets that moved
// themselves are located through relocate. Strings that still resolve
// correctly are left byte-for-byte alone.
func RebaseContent(content []byte, oldFile, newFile string, relocate func(string) string) []byte {
	oldDir := path.Dir(oldFile)
	newDir := path.Dir(newFile)

	return relativeString.ReplaceAllFunc(content, func(match []byte) []byte {
		sub := relativeString.FindSubmatch(match)
		quote, spec := string(sub[1]), string(sub[2])
		if string(sub[3]) != quote {
			return match
		}

		target := relocate(path.Clean(path.Join(oldDir, spec)))
		if path.Clean(path.Join(newDir, spec)) == target {
			return match
		}

		rebased := Relative(newDir, target)
		if strings.HasSuffix(spec, "/") && !strings.HasSuffix(rebased, "/") {
			rebased += "/"
		}
		return []byte(quote + rebased + quote)
	})
}

// Relative expresses target relative to dir as a module string that always
// starts with ./ or ../.
func Relative(dir, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(target))
	if err != nil {
		return target
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "./"
	}
	if !strings.HasPrefix(rel, "../") && rel != ".." {
		rel = "./" + rel
	}
	return rel
}
