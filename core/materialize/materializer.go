package materialize

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tristendillon/carve/core/config"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/manifest"
	"github.com/tristendillon/carve/core/models"
	"github.com/tristendillon/carve/core/scanner"
	"github.com/tristendillon/carve/core/template_engine"
)

var ErrComponentNotFound = errors.New("component not found")

type Options struct {
	ProjectRoot          string
	OutputDir            string
	AppRoot              string // e.g. src/app
	ComponentsDir        string // e.g. components
	EnvironmentsDir      string
	BaseFiles            []string
	AlwaysIncludeFolders []string
	AlwaysIncludeFiles   []string
	Documentation        []string
	RewriteExtensions    []string
}

func OptionsFromConfig(cfg *config.Config, projectRoot, outputDir string) Options {
	return Options{
		ProjectRoot:          projectRoot,
		OutputDir:            outputDir,
		AppRoot:              cfg.Layout.AppRoot,
		ComponentsDir:        cfg.Layout.ComponentsDir,
		EnvironmentsDir:      cfg.Layout.EnvironmentsDir,
		BaseFiles:            cfg.BaseFiles,
		AlwaysIncludeFolders: cfg.AlwaysIncludeFolders,
		AlwaysIncludeFiles:   cfg.AlwaysIncludeFiles,
		Documentation:        cfg.Documentation,
		RewriteExtensions:    cfg.Scan.RewriteExtensions,
	}
}

func (o Options) componentsRoot() string {
	return o.AppRoot + "/" + o.ComponentsDir
}

// Materializer copies a closure into OutputDir. Components are flattened from
// <AppRoot>/<ComponentsDir>/<name> to <AppRoot>/<name>.
type Materializer struct {
	opts      Options
	tree      *models.OutputTree
	flattened []string
}

func New(opts Options) *Materializer {
	return &Materializer{
		opts: opts,
		tree: models.NewOutputTree(opts.OutputDir),
	}
}

// Flattened lists the component names placed directly under the app root.
func (m *Materializer) Flattened() []string {
	return m.flattened
}

func (m *Materializer) Tree() *models.OutputTree {
	return m.tree
}

// Assemble copies base files, the filtered manifest, the component and every
// bucket entry. Missing optional sources are skipped.
func (m *Materializer) Assemble(closure *models.Closure, filtered *models.Manifest) (*models.OutputTree, error) {
	if err := os.MkdirAll(m.opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	copied, skipped := 0, 0
	for _, file := range m.opts.BaseFiles {
		if path.Base(file) == "package.json" && path.Dir(file) == "." {
			continue
		}
		ok, err := m.copyFile(file, file)
		if err != nil {
			return nil, err
		}
		if ok {
			copied++
		} else {
			skipped++
		}
	}
	logger.Info("Copied %d base files (%d not found, skipped)", copied, skipped)

	if filtered != nil {
		if err := manifest.Write(filepath.Join(m.opts.OutputDir, "package.json"), filtered); err != nil {
			return nil, err
		}
		m.tree.AddFile("package.json", "")
	}

	componentSrc := m.opts.componentsRoot() + "/" + closure.Component
	if !m.isDir(componentSrc) {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, componentSrc)
	}
	if err := m.copyComponent(componentSrc); err != nil {
		return nil, err
	}

	count := 0
	for _, bucket := range models.Buckets {
		for _, entry := range closure.Bucket(bucket).Sorted() {
			dep, err := m.copyBucketEntry(bucket, entry, closure.Component)
			if err != nil {
				return nil, fmt.Errorf("failed to copy %s %s: %w", bucket, entry, err)
			}
			if dep == nil {
				logger.Debug("Skipping %s entry %s (missing or already copied)", bucket, entry)
				continue
			}
			m.tree.Copied = append(m.tree.Copied, *dep)
			count++
		}
	}

	for _, folder := range m.expand(m.opts.AlwaysIncludeFolders) {
		if dep, err := m.copyPath(models.BucketNone, folder, folder, false); err != nil {
			return nil, err
		} else if dep != nil {
			count++
		}
	}
	for _, file := range m.expand(m.opts.AlwaysIncludeFiles) {
		ok, err := m.copyFile(file, file)
		if err != nil {
			return nil, err
		}
		if ok {
			count++
		}
	}
	if closure.Environments && m.opts.EnvironmentsDir != "" {
		if dep, err := m.copyPath(models.BucketNone, m.opts.EnvironmentsDir, m.opts.EnvironmentsDir, false); err != nil {
			return nil, err
		} else if dep != nil {
			count++
		}
	}

	logger.Info("Copied %d dependencies", count)
	return m.tree, nil
}

func (m *Materializer) copyComponent(src string) error {
	name := path.Base(src)
	dst := m.opts.AppRoot + "/" + name
	files, err := m.copyDir(src, dst, true)
	if err != nil {
		return fmt.Errorf("failed to copy component %s: %w", name, err)
	}
	m.markFlattened(name)
	logger.Info("Component copied to %s/ (%d files)", dst, len(files))
	return nil
}

func (m *Materializer) markFlattened(name string) {
	if !slices.Contains(m.flattened, name) {
		m.flattened = append(m.flattened, name)
	}
}

func (m *Materializer) copyBucketEntry(bucket models.Bucket, entry, component string) (*models.CopiedDependency, error) {
	switch bucket {
	case models.BucketComponents:
		name := path.Base(entry)
		if name == component {
			return nil, nil
		}
		if !m.isDir(entry) {
			return nil, nil
		}
		files, err := m.copyDir(entry, m.opts.AppRoot+"/"+name, true)
		if err != nil {
			return nil, err
		}
		m.markFlattened(name)
		return &models.CopiedDependency{Bucket: bucket, OriginalPath: entry, GeneratedPath: m.opts.AppRoot + "/" + name, Files: files}, nil
	case models.BucketAssets:
		return m.copyPath(bucket, entry, entry, false)
	default:
		return m.copyResolved(bucket, entry, component)
	}
}

// copyResolved tries entry as written (file or directory), then with .ts appended.
// Entries under the components root follow their component to the app root.
// Entries inside the deployed component were copied with it and are skipped.
func (m *Materializer) copyResolved(bucket models.Bucket, entry, component string) (*models.CopiedDependency, error) {
	own := m.opts.componentsRoot() + "/" + component
	if entry == own || strings.HasPrefix(entry, own+"/") {
		logger.Debug("%s entry %s is part of component %s", bucket, entry, component)
		return nil, nil
	}
	for _, candidate := range []string{entry, entry + ".ts"} {
		if !m.exists(candidate) {
			continue
		}
		if name := m.owningComponent(candidate); name != "" {
			m.markFlattened(name)
		}
		return m.copyPath(bucket, candidate, m.flatten(candidate), false)
	}
	return nil, nil
}

// owningComponent names the component directory holding p, or "" outside the components root.
func (m *Materializer) owningComponent(p string) string {
	rest, ok := strings.CutPrefix(p, m.opts.componentsRoot()+"/")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, "/")
	return name
}

func (m *Materializer) copyPath(bucket models.Bucket, src, dst string, skipDocs bool) (*models.CopiedDependency, error) {
	if !m.exists(src) {
		return nil, nil
	}
	var files []string
	if m.isDir(src) {
		var err error
		if files, err = m.copyDir(src, dst, skipDocs); err != nil {
			return nil, err
		}
	} else {
		if src != dst && scanner.HasExtension(dst, m.opts.RewriteExtensions) {
			if err := m.copyRebased(src, dst); err != nil {
				return nil, err
			}
		} else if _, err := m.copyFile(src, dst); err != nil {
			return nil, err
		}
		files = []string{dst}
	}
	logger.Debug("Copied %s -> %s (%d files)", src, dst, len(files))
	return &models.CopiedDependency{Bucket: bucket, OriginalPath: src, GeneratedPath: dst, Files: files}, nil
}

// copyDir copies src to dst recursively. Relative references inside a moved
// directory are rebased so they still resolve from the new location.
func (m *Materializer) copyDir(src, dst string, skipDocs bool) ([]string, error) {
	var files []string
	srcAbs := m.source(src)

	err := filepath.WalkDir(srcAbs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcAbs, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			return os.MkdirAll(m.target(path.Join(dst, rel)), 0755)
		}
		if skipDocs && m.isDocumentation(d.Name()) {
			logger.Debug("Skipping documentation file %s", path.Join(src, rel))
			return nil
		}

		from := path.Join(src, rel)
		to := path.Join(dst, rel)
		if from != to && scanner.HasExtension(to, m.opts.RewriteExtensions) {
			if err := m.copyRebased(from, to); err != nil {
				return err
			}
		} else if _, err := m.copyFile(from, to); err != nil {
			return err
		}
		files = append(files, to)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (m *Materializer) copyRebased(from, to string) error {
	content, err := os.ReadFile(m.source(from))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", from, err)
	}
	rebased := RebaseContent(content, from, to, m.flatten)
	if err := m.write(to, rebased); err != nil {
		return err
	}
	m.tree.AddFile(to, from)
	return nil
}

// flatten maps a project path under the components root to its output location.
func (m *Materializer) flatten(p string) string {
	rest, ok := strings.CutPrefix(p, m.opts.componentsRoot()+"/")
	if !ok {
		return p
	}
	return m.opts.AppRoot + "/" + rest
}

func (m *Materializer) isDocumentation(name string) bool {
	for _, doc := range m.opts.Documentation {
		if strings.EqualFold(doc, name) {
			return true
		}
	}
	return false
}

// copyFile reports false when src does not exist.
func (m *Materializer) copyFile(src, dst string) (bool, error) {
	in, err := os.Open(m.source(src))
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Source not found, skipping: %s", src)
			return false, nil
		}
		return false, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	target := m.target(dst)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return false, fmt.Errorf("failed to create target directory: %w", err)
	}
	out, err := os.Create(target)
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return false, fmt.Errorf("failed to copy %s: %w", src, err)
	}
	m.tree.AddFile(dst, src)
	return true, nil
}

func (m *Materializer) write(dst string, content []byte) error {
	target := m.target(dst)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}
	return os.WriteFile(target, content, 0644)
}

// expand resolves doublestar patterns against the project root. Plain paths pass through.
func (m *Materializer) expand(patterns []string) []string {
	var out []string
	fsys := os.DirFS(m.opts.ProjectRoot)
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			out = append(out, pattern)
			continue
		}
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			logger.Warn("Invalid include pattern %q: %v", pattern, err)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

func (m *Materializer) source(rel string) string {
	return filepath.Join(m.opts.ProjectRoot, filepath.FromSlash(rel))
}

func (m *Materializer) target(rel string) string {
	return filepath.Join(m.opts.OutputDir, filepath.FromSlash(rel))
}

func (m *Materializer) exists(rel string) bool {
	_, err := os.Stat(m.source(rel))
	return err == nil
}

func (m *Materializer) isDir(rel string) bool {
	info, err := os.Stat(m.source(rel))
	return err == nil && info.IsDir()
}

// WriteReadme copies the component's own README when it has one, otherwise renders the default.
func (m *Materializer) WriteReadme(engine *template_engine.TemplateEngine, data template_engine.ReadmeData) error {
	own := m.opts.componentsRoot() + "/" + data.Component + "/README.md"
	if m.exists(own) {
		if _, err := m.copyFile(own, "README.md"); err != nil {
			return err
		}
		logger.Info("Using component-specific README.md")
		return nil
	}
	if err := engine.GenerateFile(template_engine.TEMPLATES.README.Ref, m.target("README.md"), data); err != nil {
		return fmt.Errorf("failed to generate README.md: %w", err)
	}
	m.tree.AddFile("README.md", "")
	logger.Info("Generated default README.md")
	return nil
}

// WriteGitignore keeps a .gitignore that came with the base files.
func (m *Materializer) WriteGitignore(engine *template_engine.TemplateEngine) error {
	wrote, err := engine.GenerateFileIfAbsent(template_engine.TEMPLATES.GITIGNORE.Ref, m.target(".gitignore"), nil)
	if err != nil {
		return fmt.Errorf("failed to generate .gitignore: %w", err)
	}
	if wrote {
		m.tree.AddFile(".gitignore", "")
	}
	return nil
}
