package pages

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const WorkflowPath = ".github/workflows/deploy.yml"

type WorkflowOptions struct {
	Repo        string
	Project     string // angular.json project, names the dist folder
	Branch      string
	NodeVersion string
}

type workflow struct {
	Name        string            `yaml:"name"`
	On          trigger           `yaml:"on"`
	Permissions map[string]string `yaml:"permissions"`
	Concurrency concurrency       `yaml:"concurrency"`
	Jobs        jobs              `yaml:"jobs"`
}

type trigger struct {
	Push             pushTrigger `yaml:"push"`
	WorkflowDispatch struct{}    `yaml:"workflow_dispatch"`
}

type pushTrigger struct {
	Branches []string `yaml:"branches"`
}

type concurrency struct {
	Group            string `yaml:"group"`
	CancelInProgress bool   `yaml:"cancel-in-progress"`
}

type jobs struct {
	Build  job `yaml:"build"`
	Deploy job `yaml:"deploy"`
}

type job struct {
	RunsOn      string       `yaml:"runs-on"`
	Needs       string       `yaml:"needs,omitempty"`
	Environment *environment `yaml:"environment,omitempty"`
	Steps       []step       `yaml:"steps"`
}

type environment struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type step struct {
	Name string            `yaml:"name,omitempty"`
	ID   string            `yaml:"id,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	Run  string            `yaml:"run,omitempty"`
	With map[string]string `yaml:"with,omitempty"`
}

// Workflow renders the GitHub Actions workflow that builds the project with
// the repository base href and publishes it to GitHub Pages.
func Workflow(opts WorkflowOptions) ([]byte, error) {
	if opts.Repo == "" || opts.Project == "" {
		return nil, fmt.Errorf("workflow needs a repository and a project name")
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.NodeVersion == "" {
		opts.NodeVersion = "20"
	}

	wf := workflow{
		Name: "Deploy to GitHub Pages",
		On:   trigger{Push: pushTrigger{Branches: []string{opts.Branch}}},
		Permissions: map[string]string{
			"contents": "read",
			"pages":    "write",
			"id-token": "write",
		},
		Concurrency: concurrency{Group: "pages", CancelInProgress: false},
		Jobs: jobs{
			Build: job{
				RunsOn: "ubuntu-latest",
				Steps: []step{
					{Name: "Checkout", Uses: "actions/checkout@v4"},
					{Name: "Setup Node", Uses: "actions/setup-node@v4", With: map[string]string{
						"node-version": opts.NodeVersion,
						"cache":        "npm",
					}},
					{Name: "Install dependencies", Run: "npm ci"},
					{Name: "Build", Run: fmt.Sprintf("npm run build -- --base-href %s", BaseHref(opts.Repo))},
					{Name: "Setup Pages", Uses: "actions/configure-pages@v5"},
					{Name: "Upload artifact", Uses: "actions/upload-pages-artifact@v3", With: map[string]string{
						"path": fmt.Sprintf("dist/%s/browser", opts.Project),
					}},
				},
			},
			Deploy: job{
				RunsOn: "ubuntu-latest",
				Needs:  "build",
				Environment: &environment{
					Name: "github-pages",
					URL:  "${{ steps.deployment.outputs.page_url }}",
				},
				Steps: []step{
					{Name: "Deploy to GitHub Pages", ID: "deployment", Uses: "actions/deploy-pages@v4"},
				},
			},
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(wf); err != nil {
		return nil, fmt.Errorf("failed to encode workflow: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BaseHref is the path a project repository is served under on GitHub Pages.
func BaseHref(repo string) string {
	return "/" + repo + "/"
}
