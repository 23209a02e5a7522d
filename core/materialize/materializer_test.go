package materialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/carve/core/models"
	"github.com/tristendillon/carve/core/template_engine"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func sampleProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"angular.json":                                `{"projects":{"sample":{}}}`,
		"package.json":                                `{"name":"sample"}`,
		"src/main.ts":                                 "import { App } from './app/app';\n",
		"src/app/app.ts":                              "import { WordCloud } from './components/word-cloud/word-cloud';\n",
		"src/app/components/word-cloud/word-cloud.ts": "import { hue } from '../../shared/color-utils';\n" +
			"import { Legend } from '../legend/legend';\n" +
			"@Component({ templateUrl: './word-cloud.html' })\n",
		"src/app/components/word-cloud/word-cloud.html": "<app-legend></app-legend>\n",
		"src/app/components/word-cloud/README.md":       "# Word Cloud docs\n",
		"src/app/components/legend/legend.ts":           "export class Legend {}\n",
		"src/app/components/legend/readme.MD":           "legend docs\n",
		"src/app/components/unused/unused.ts":           "export class Unused {}\n",
		"src/app/shared/color-utils.ts":                 "export const hue = 1;\n",
		"src/environments/environment.ts":               "export const environment = {};\n",
		"public/favicon.ico":                            "ico",
		"public/fonts/a.woff":                           "woff",
	})
}

func sampleOptions(root, out string) Options {
	return Options{
		ProjectRoot:          root,
		OutputDir:            out,
		AppRoot:              "src/app",
		ComponentsDir:        "components",
		EnvironmentsDir:      "src/environments",
		BaseFiles:            []string{"angular.json", "package.json", "src/main.ts", "src/app/app.ts", "tsconfig.json"},
		AlwaysIncludeFolders: []string{"public"},
		Documentation:        []string{"README.md"},
		RewriteExtensions:    []string{".ts", ".js", ".html"},
	}
}

func sampleClosure() *models.Closure {
	closure := models.NewClosure("word-cloud")
	closure.Bucket(models.BucketShared).Add("src/app/shared/color-utils")
	closure.Bucket(models.BucketComponents).Add("src/app/components/legend")
	closure.Bucket(models.BucketServices).Add("src/app/services/missing")
	closure.Environments = true
	return closure
}

func readOut(t *testing.T, out, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
	require.NoError(t, err, rel)
	return string(data)
}

func TestAssembleFlattensAndCopies(t *testing.T) {
	root := sampleProject(t)
	out := filepath.Join(t.TempDir(), "temp-deploy")
	filtered := &models.Manifest{Name: "sample", Dependencies: map[string]string{"rxjs": "~7.8.0"}}

	m := New(sampleOptions(root, out))
	tree, err := m.Assemble(sampleClosure(), filtered)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"word-cloud", "legend"}, m.Flattened())

	assert.FileExists(t, filepath.Join(out, "src/app/word-cloud/word-cloud.ts"))
	assert.FileExists(t, filepath.Join(out, "src/app/word-cloud/word-cloud.html"))
	assert.NoFileExists(t, filepath.Join(out, "src/app/word-cloud/README.md"))
	assert.FileExists(t, filepath.Join(out, "src/app/legend/legend.ts"))
	assert.NoFileExists(t, filepath.Join(out, "src/app/legend/readme.MD"))
	assert.NoDirExists(t, filepath.Join(out, "src/app/components"))
	assert.NoDirExists(t, filepath.Join(out, "src/app/unused"))

	assert.Equal(t, "export const hue = 1;\n", readOut(t, out, "src/app/shared/color-utils.ts"))
	assert.FileExists(t, filepath.Join(out, "public/fonts/a.woff"))
	assert.FileExists(t, filepath.Join(out, "src/environments/environment.ts"))
	assert.NoFileExists(t, filepath.Join(out, "tsconfig.json"))

	assert.Contains(t, readOut(t, out, "package.json"), `"rxjs": "~7.8.0"`)

	wc := readOut(t, out, "src/app/word-cloud/word-cloud.ts")
	assert.Contains(t, wc, "from '../shared/color-utils'")
	assert.Contains(t, wc, "from '../legend/legend'")
	assert.Contains(t, wc, "templateUrl: './word-cloud.html'")

	assert.True(t, tree.Has("src/app/word-cloud/word-cloud.ts"))
	require.Len(t, tree.Copied, 2)
}

func TestAssembleThenRewrite(t *testing.T) {
	root := sampleProject(t)
	out := filepath.Join(t.TempDir(), "temp-deploy")

	m := New(sampleOptions(root, out))
	_, err := m.Assemble(sampleClosure(), nil)
	require.NoError(t, err)

	r := NewRewriter(m.Flattened(), "app", "components", []string{"@app", "src/app"})
	updated, err := r.RewriteTree(out, []string{".ts", ".js", ".html"})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, "import { WordCloud } from './word-cloud/word-cloud';\n", readOut(t, out, "src/app/app.ts"))
}

func TestAssembleMissingComponent(t *testing.T) {
	root := sampleProject(t)
	m := New(sampleOptions(root, filepath.Join(t.TempDir(), "out")))

	_, err := m.Assemble(models.NewClosure("nope"), nil)
	assert.ErrorIs(t, err, ErrComponentNotFound)
}

func TestWriteReadmeAndGitignore(t *testing.T) {
	root := sampleProject(t)
	out := filepath.Join(t.TempDir(), "out")
	engine := template_engine.NewTemplateEngine()

	m := New(sampleOptions(root, out))
	_, err := m.Assemble(sampleClosure(), nil)
	require.NoError(t, err)

	require.NoError(t, m.WriteReadme(engine, template_engine.ReadmeData{Component: "word-cloud"}))
	assert.Equal(t, "# Word Cloud docs\n", readOut(t, out, "README.md"))

	require.NoError(t, m.WriteReadme(engine, template_engine.ReadmeData{Component: "legend"}))
	assert.Contains(t, readOut(t, out, "README.md"), "# Legend")

	require.NoError(t, m.WriteGitignore(engine))
	assert.Contains(t, readOut(t, out, ".gitignore"), "/node_modules")
}

func TestExpandGlobs(t *testing.T) {
	root := sampleProject(t)
	m := New(sampleOptions(root, t.TempDir()))

	assert.ElementsMatch(t, []string{"public/favicon.ico", "public/fonts/a.woff"}, m.expand([]string{"public/**/*.*"}))
	assert.Equal(t, []string{"plain/path"}, m.expand([]string{"plain/path"}))
}

func TestAssembleFlattensNestedBucketEntries(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/app/components/word-cloud/word-cloud.ts": "import { Word } from './models/word';\n" +
			"import { Api } from '../legend/services/api';\n",
		"src/app/components/word-cloud/models/word.ts": "export interface Word {}\n",
		"src/app/components/legend/services/api.ts":    "import { hue } from '../../../shared/color-utils';\nexport class Api {}\n",
		"src/app/shared/color-utils.ts":                "export const hue = 1;\n",
	})
	out := filepath.Join(t.TempDir(), "temp-deploy")

	closure := models.NewClosure("word-cloud")
	closure.Bucket(models.BucketModels).Add("src/app/components/word-cloud/models/word")
	closure.Bucket(models.BucketServices).Add("src/app/components/legend/services/api")
	closure.Bucket(models.BucketShared).Add("src/app/shared/color-utils")

	m := New(sampleOptions(root, out))
	tree, err := m.Assemble(closure, nil)
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(out, "src/app/components"))
	assert.FileExists(t, filepath.Join(out, "src/app/word-cloud/models/word.ts"))
	assert.FileExists(t, filepath.Join(out, "src/app/legend/services/api.ts"))
	assert.ElementsMatch(t, []string{"word-cloud", "legend"}, m.Flattened())

	// the moved service still reaches shared code
	assert.Contains(t, readOut(t, out, "src/app/legend/services/api.ts"), "from '../../shared/color-utils'")
	assert.Contains(t, readOut(t, out, "src/app/word-cloud/word-cloud.ts"), "from '../legend/services/api'")

	require.Len(t, tree.Copied, 2)
	for _, dep := range tree.Copied {
		assert.NotContains(t, dep.GeneratedPath, "components/")
	}
}
