package pages

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/carve/core/models"
	"github.com/tristendillon/carve/core/template_engine"
	"gopkg.in/yaml.v3"
)

func TestWorkflowStructure(t *testing.T) {
	content, err := Workflow(WorkflowOptions{Repo: "word-cloud", Project: "sample"})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(content, &doc))

	assert.Equal(t, "Deploy to GitHub Pages", doc["name"])
	perms := doc["permissions"].(map[string]any)
	assert.Equal(t, "write", perms["pages"])
	assert.Equal(t, "write", perms["id-token"])

	jobs := doc["jobs"].(map[string]any)
	build := jobs["build"].(map[string]any)
	steps := build["steps"].([]any)
	require.Len(t, steps, 6)
	assert.Equal(t, "npm run build -- --base-href /word-cloud/", steps[3].(map[string]any)["run"])
	assert.Equal(t, "dist/sample/browser", steps[5].(map[string]any)["with"].(map[string]any)["path"])

	deploy := jobs["deploy"].(map[string]any)
	assert.Equal(t, "build", deploy["needs"])

	on := doc["on"].(map[string]any)
	assert.Equal(t, []any{"main"}, on["push"].(map[string]any)["branches"])
}

func TestWorkflowRequiresNames(t *testing.T) {
	_, err := Workflow(WorkflowOptions{Repo: "x"})
	assert.Error(t, err)
}

func TestSetBaseHref(t *testing.T) {
	path := filepath.Join(t.TempDir(), "angular.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "version": 1,
  "projects": {
    "sample": {"architect": {"build": {"builder": "@angular/build:application", "options": {"outputPath": "dist/sample"}}}},
    "lib": {}
  }
}`), 0644))

	names, err := SetBaseHref(path, "/word-cloud/")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib", "sample"}, names)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Projects map[string]struct {
			Architect struct {
				Build struct {
					Options map[string]string `json:"options"`
				} `json:"build"`
			} `json:"architect"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "/word-cloud/", doc.Projects["sample"].Architect.Build.Options["baseHref"])
	assert.Equal(t, "dist/sample", doc.Projects["sample"].Architect.Build.Options["outputPath"])
	assert.Equal(t, "/word-cloud/", doc.Projects["lib"].Architect.Build.Options["baseHref"])
}

func TestAddDeployScript(t *testing.T) {
	m := &models.Manifest{Scripts: json.RawMessage(`{"build":"ng build"}`)}
	require.NoError(t, AddDeployScript(m, "word-cloud"))

	var scripts map[string]string
	require.NoError(t, json.Unmarshal(m.Scripts, &scripts))
	assert.Equal(t, "ng build", scripts["build"])
	assert.Equal(t, "ng build --base-href /word-cloud/", scripts["deploy"])

	empty := &models.Manifest{}
	require.NoError(t, AddDeployScript(empty, "x"))
	assert.JSONEq(t, `{"deploy":"ng build --base-href /x/"}`, string(empty.Scripts))
}

func TestWrite404AndWorkflowFiles(t *testing.T) {
	root := t.TempDir()
	out, err := Write404(template_engine.NewTemplateEngine(), root, NotFoundData{Component: "word-cloud", BaseHref: "/word-cloud/"})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "var base = '/word-cloud/';")
	assert.Contains(t, string(data), "<title>Word Cloud</title>")

	wf, err := WriteWorkflow(root, WorkflowOptions{Repo: "word-cloud", Project: "sample"})
	require.NoError(t, err)
	assert.FileExists(t, wf)
	assert.Equal(t, filepath.Join(root, ".github", "workflows", "deploy.yml"), wf)
}
