package template_engine

import "embed"

//go:embed templates
var TemplateFS embed.FS

type templateEntry struct {
	Ref TemplateRef
}

// TEMPLATES names every embedded template.
var TEMPLATES = struct {
	README        templateEntry
	GITIGNORE     templateEntry
	NOT_FOUND     templateEntry
	DEPLOY_CONFIG templateEntry
	INIT          templateEntry
}{
	README:        templateEntry{Ref: TemplateRef{Path: "readme/README.md.tmpl"}},
	GITIGNORE:     templateEntry{Ref: TemplateRef{Path: "git/gitignore"}},
	NOT_FOUND:     templateEntry{Ref: TemplateRef{Path: "pages/404.html.tmpl"}},
	DEPLOY_CONFIG: templateEntry{Ref: TemplateRef{Path: "init/deploy-config.yaml.tmpl"}},
	INIT:          templateEntry{Ref: TemplateRef{Path: "init", IsDir: true}},
}

// ReadmeData feeds the README template.
type ReadmeData struct {
	Component   string
	Repo        string
	Description string
}
