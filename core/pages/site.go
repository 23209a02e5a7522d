package pages

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/models"
	"github.com/tristendillon/carve/core/template_engine"
)

// SetBaseHref sets projects.*.architect.build.options.baseHref in angular.json
// and returns the project names, sorted.
func SetBaseHref(angularJSON, href string) ([]string, error) {
	data, err := os.ReadFile(angularJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", angularJSON, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", angularJSON, err)
	}

	projects, _ := doc["projects"].(map[string]any)
	names := make([]string, 0, len(projects))
	for name, raw := range projects {
		project, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		options := child(child(child(project, "architect"), "build"), "options")
		options["baseHref"] = href
		names = append(names, name)
	}
	sort.Strings(names)

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(angularJSON, append(out, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", angularJSON, err)
	}
	logger.Debug("Set baseHref %s for projects %v", href, names)
	return names, nil
}

func child(m map[string]any, key string) map[string]any {
	if c, ok := m[key].(map[string]any); ok {
		return c
	}
	c := map[string]any{}
	m[key] = c
	return c
}

// AddDeployScript adds an npm "deploy" script building with the pages base href.
func AddDeployScript(m *models.Manifest, repo string) error {
	scripts := map[string]any{}
	if len(m.Scripts) > 0 {
		if err := json.Unmarshal(m.Scripts, &scripts); err != nil {
			return fmt.Errorf("failed to parse scripts: %w", err)
		}
	}
	scripts["deploy"] = "ng build --base-href " + BaseHref(repo)

	raw, err := json.Marshal(scripts)
	if err != nil {
		return err
	}
	m.Scripts = raw
	return nil
}

type NotFoundData struct {
	Component string
	BaseHref  string
}

// Write404 writes public/404.html, a redirect back to the app for deep links.
func Write404(engine *template_engine.TemplateEngine, root string, data NotFoundData) (string, error) {
	out := filepath.Join(root, "public", "404.html")
	if err := engine.GenerateFile(template_engine.TEMPLATES.NOT_FOUND.Ref, out, data); err != nil {
		return "", fmt.Errorf("failed to generate 404.html: %w", err)
	}
	return out, nil
}

// WriteWorkflow renders the workflow into root.
func WriteWorkflow(root string, opts WorkflowOptions) (string, error) {
	content, err := Workflow(opts)
	if err != nil {
		return "", err
	}
	out := filepath.Join(root, filepath.FromSlash(WorkflowPath))
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", fmt.Errorf("failed to create workflow directory: %w", err)
	}
	if err := os.WriteFile(out, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write workflow: %w", err)
	}
	return out, nil
}
