package closure

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tristendillon/carve/core/cache"
	"github.com/tristendillon/carve/core/classifier"
	"github.com/tristendillon/carve/core/config"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/manifest"
	"github.com/tristendillon/carve/core/models"
	"github.com/tristendillon/carve/core/reconcile"
	"github.com/tristendillon/carve/core/scanner"
)

var ErrComponentNotFound = errors.New("component not found")

// Analyzer computes the closure of one component inside a project.
type Analyzer struct {
	cfg         *config.Config
	projectRoot string
	scanner     *scanner.Scanner
}

// NewAnalyzer returns an Analyzer reading through fc; fc may be nil.
func NewAnalyzer(cfg *config.Config, projectRoot string, fc *cache.FileCache) *Analyzer {
	return &Analyzer{
		cfg:         cfg,
		projectRoot: projectRoot,
		scanner:     scanner.New(fc),
	}
}

// ComponentDir is the slash path of a component relative to the project root.
func (a *Analyzer) ComponentDir(component string) string {
	return a.cfg.Layout.ComponentsRoot() + "/" + component
}

// Components lists the directories under the components root.
func (a *Analyzer) Components() []string {
	entries, err := os.ReadDir(a.abs(a.cfg.Layout.ComponentsRoot()))
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// CheckComponent fails with the available component names when component does not exist.
// The name must be a single directory name under the components root.
func (a *Analyzer) CheckComponent(component string) error {
	if validName(component) {
		info, err := os.Stat(a.abs(a.ComponentDir(component)))
		if err == nil && info.IsDir() {
			return nil
		}
	}
	available := a.Components()
	if len(available) == 0 {
		return fmt.Errorf("%w: %s (no components under %s)", ErrComponentNotFound, component, a.cfg.Layout.ComponentsRoot())
	}
	return fmt.Errorf("%w: %s (available: %s)", ErrComponentNotFound, component, strings.Join(available, ", "))
}

func validName(component string) bool {
	return component != "" && component != "." && component != ".." && !strings.ContainsAny(component, `/\`)
}

// Analyze scans the component, classifies every reference, merges the
// optional declaration and collects the external packages in use.
func (a *Analyzer) Analyze(component string) (*models.Closure, error) {
	if err := a.CheckComponent(component); err != nil {
		return nil, err
	}
	componentDir := a.ComponentDir(component)
	cls := classifier.New(a.cfg.Framework.Scope, a.cfg.Layout.ComponentsRoot(), componentDir)

	sources, err := a.walk(componentDir, a.cfg.Scan.SourceExtensions)
	if err != nil {
		return nil, err
	}

	inferred := make(map[models.Bucket]models.StringSet)
	for raw := range a.scanner.References(sources) {
		ref := cls.Classify(path.Join(componentDir, raw.File), raw.Module)
		if ref.Category != models.CategoryLocal {
			continue
		}
		if ref.Bucket == models.BucketNone {
			if !a.resolves(ref.Resolved) {
				logger.Debug("Unresolved local reference %q in %s", ref.Raw, ref.Origin)
			}
			continue
		}
		if inferred[ref.Bucket] == nil {
			inferred[ref.Bucket] = models.NewStringSet()
		}
		inferred[ref.Bucket].Add(ref.Resolved)
	}

	declared, declPath, err := reconcile.LoadDeclaration(a.abs(componentDir))
	if err != nil {
		logger.Warn("Ignoring dependency declaration: %v", err)
		declared = nil
	} else if declared != nil {
		logger.Info("Found %s", filepath.Base(declPath))
	} else {
		logger.Info("No dependency declaration, using auto-detection")
	}

	result := reconcile.Reconcile(component, declared, inferred)

	packages, err := a.packages(componentDir)
	if err != nil {
		return nil, err
	}
	result.Packages = packages
	logger.Info("Found %d npm packages", packages.Len())

	return result, nil
}

// FilterManifest reduces the project's package.json to what c needs. A project
// without package.json yields nil with no error.
func (a *Analyzer) FilterManifest(c *models.Closure) (*models.Manifest, manifest.Stats, error) {
	src := a.abs("package.json")
	if _, err := os.Stat(src); os.IsNotExist(err) {
		logger.Warn("package.json not found, skipping manifest filtering")
		return nil, manifest.Stats{}, nil
	}
	full, err := manifest.Load(src)
	if err != nil {
		return nil, manifest.Stats{}, err
	}
	filtered, stats := manifest.Filter(full, c.Packages, manifest.Baseline{
		CorePackages: a.cfg.Framework.CorePackages,
		DevPackages:  a.cfg.Framework.DevPackages,
		DevPrefixes:  a.cfg.Framework.DevPrefixes,
	})
	return filtered, stats, nil
}

func (a *Analyzer) packages(componentDir string) (models.StringSet, error) {
	tree, err := a.walk(componentDir, a.cfg.Scan.PackageExtensions)
	if err != nil {
		return nil, err
	}
	found := models.NewStringSet()
	for raw := range a.scanner.References(tree) {
		if name, ok := classifier.PackageName(raw.Module, a.cfg.Framework.Scope, a.cfg.Framework.CorePackages); ok {
			found.Add(name)
		}
	}
	return found, nil
}

func (a *Analyzer) walk(dir string, extensions []string) (*models.SourceTree, error) {
	tree, err := scanner.Walk(a.abs(dir), scanner.WalkOptions{
		Extensions: extensions,
		Exclude:    a.cfg.Scan.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return tree, nil
}

// resolves reports whether a resolved module path exists as written, as a
// .ts file or as a directory index.
func (a *Analyzer) resolves(resolved string) bool {
	for _, candidate := range []string{resolved, resolved + ".ts", resolved + "/index.ts"} {
		if info, err := os.Stat(a.abs(candidate)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

func (a *Analyzer) abs(rel string) string {
	return filepath.Join(a.projectRoot, filepath.FromSlash(rel))
}
