package classifier

import (
	"path"
	"slices"
	"strings"

	"github.com/tristendillon/carve/core/models"
)

// bucketOrder is checked first to last; the first substring found wins.
var bucketOrder = []struct {
	needle string
	bucket models.Bucket
}{
	{"services", models.BucketServices},
	{"models", models.BucketModels},
	{"shared", models.BucketShared},
	{"components", models.BucketComponents},
}

// Classifier categorizes the references found while analyzing one component.
// All paths are forward-slash and relative to the project root.
type Classifier struct {
	Scope          string // framework root scope, e.g. "@angular/"
	ComponentsRoot string // e.g. "src/app/components"
	ComponentDir   string // e.g. "src/app/components/word-cloud"
}

func New(scope, componentsRoot, componentDir string) *Classifier {
	return &Classifier{
		Scope:          scope,
		ComponentsRoot: strings.TrimSuffix(componentsRoot, "/"),
		ComponentDir:   strings.TrimSuffix(componentDir, "/"),
	}
}

// CategoryOf derives the category from the shape of raw alone.
func CategoryOf(raw, scope string) models.Category {
	switch {
	case strings.HasPrefix(raw, "."):
		return models.CategoryLocal
	case scope != "" && strings.HasPrefix(raw, scope):
		return models.CategoryFramework
	default:
		return models.CategoryExternal
	}
}

// Resolve joins a relative module string onto the directory of origin.
func Resolve(origin, raw string) string {
	return path.Clean(path.Join(path.Dir(origin), raw))
}

// Classify is pure: the same origin and raw string always give the same result.
func (c *Classifier) Classify(origin, raw string) models.ImportReference {
	ref := models.ImportReference{
		Origin:   origin,
		Raw:      raw,
		Category: CategoryOf(raw, c.Scope),
	}
	if ref.Category != models.CategoryLocal {
		return ref
	}

	ref.Resolved = Resolve(origin, raw)
	ref.Bucket = c.bucketOf(ref.Resolved)
	if ref.Bucket == models.BucketComponents {
		ref.Resolved = c.componentRoot(ref.Resolved)
	}
	return ref
}

func (c *Classifier) bucketOf(resolved string) models.Bucket {
	if resolved == ".." || strings.HasPrefix(resolved, "../") {
		return models.BucketNone
	}
	for _, candidate := range bucketOrder {
		if !strings.Contains(resolved, candidate.needle) {
			continue
		}
		if candidate.bucket == models.BucketComponents && c.underComponent(resolved) {
			return models.BucketNone
		}
		return candidate.bucket
	}
	return models.BucketNone
}

func (c *Classifier) underComponent(resolved string) bool {
	if c.ComponentDir == "" {
		return false
	}
	return resolved == c.ComponentDir || strings.HasPrefix(resolved, c.ComponentDir+"/")
}

// componentRoot maps src/app/components/legend/legend.ts to src/app/components/legend,
// since sibling components are copied as whole directories.
func (c *Classifier) componentRoot(resolved string) string {
	prefix := c.ComponentsRoot + "/"
	if c.ComponentsRoot == "" || !strings.HasPrefix(resolved, prefix) {
		return resolved
	}
	name, _, _ := strings.Cut(strings.TrimPrefix(resolved, prefix), "/")
	return prefix + name
}

// PackageName extracts the installable package from an external reference:
// "@scope/name/sub" gives "@scope/name", "lodash/fp" gives "lodash".
// Relative and absolute references are not packages. Framework-scope packages
// listed in core are supplied by the baseline and are not reported either;
// others such as "@angular/material" are.
func PackageName(raw, scope string, core []string) (string, bool) {
	if raw == "" || strings.HasPrefix(raw, ".") || strings.HasPrefix(raw, "/") {
		return "", false
	}

	parts := strings.Split(raw, "/")
	name := parts[0]
	if strings.HasPrefix(raw, "@") {
		if len(parts) < 2 || parts[1] == "" {
			return "", false
		}
		name = parts[0] + "/" + parts[1]
	}
	if scope != "" && strings.HasPrefix(raw, scope) && slices.Contains(core, name) {
		return "", false
	}
	return name, true
}
