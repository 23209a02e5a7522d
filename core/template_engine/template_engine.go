package template_engine

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"strings"
	"text/template"
	"time"

	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/shared"
)

type TemplateRef struct {
	Path  string
	IsDir bool
}

func (tr TemplateRef) IsFile() bool {
	return !tr.IsDir
}

func (tr TemplateRef) IsDirectory() bool {
	return tr.IsDir
}

type TemplateEngine struct {
	funcMap template.FuncMap
}

func getDefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"title":     shared.ToTitle,
		"trim":      strings.TrimSpace,
		"replace":   strings.ReplaceAll,
		"hasPrefix": strings.HasPrefix,
		"join":      strings.Join,

		"kebabTitle": shared.TitleFromKebab,
		"year":       func() int { return time.Now().Year() },

		"default": func(def, val interface{}) interface{} {
			if val == nil || val == "" {
				return def
			}
			return val
		},
		"len": func(v interface{}) int { return reflect.ValueOf(v).Len() },
		"not": func(b bool) bool { return !b },
	}
}

func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		funcMap: getDefaultFuncMap(),
	}
}

// Render executes a single file template and returns the output.
func (te *TemplateEngine) Render(templateRef TemplateRef, data interface{}) ([]byte, error) {
	if templateRef.IsDirectory() {
		return nil, fmt.Errorf("cannot render directory reference: %s", templateRef.Path)
	}

	templatePath := path.Join("templates", templateRef.Path)
	content, err := TemplateFS.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", templatePath, err)
	}

	if !strings.HasSuffix(templatePath, ".tmpl") {
		return content, nil
	}

	tmpl, err := template.New(path.Base(templateRef.Path)).Funcs(te.funcMap).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateRef.Path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", templateRef.Path, err)
	}
	return buf.Bytes(), nil
}

func (te *TemplateEngine) GenerateFile(templateRef TemplateRef, outputPath string, data interface{}) error {
	content, err := te.Render(templateRef, data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outputPath, err)
	}
	logger.Debug("Generated %s from %s", outputPath, templateRef.Path)
	return nil
}

// GenerateFileIfAbsent leaves an existing outputPath untouched and reports whether it wrote.
func (te *TemplateEngine) GenerateFileIfAbsent(templateRef TemplateRef, outputPath string, data interface{}) (bool, error) {
	if _, err := os.Stat(outputPath); err == nil {
		logger.Debug("Keeping existing %s", outputPath)
		return false, nil
	}
	if err := te.GenerateFile(templateRef, outputPath, data); err != nil {
		return false, err
	}
	return true, nil
}

func (te *TemplateEngine) GenerateFolder(templateRef TemplateRef, outputDir string, data interface{}) error {
	if templateRef.IsFile() {
		return fmt.Errorf("cannot generate folder from file reference: %s", templateRef.Path)
	}

	templateDir := path.Join("templates", templateRef.Path)
	logger.Debug("Generating folder from template reference: %s", templateDir)

	return fs.WalkDir(TemplateFS, templateDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == templateDir {
			return nil
		}

		relPath := strings.TrimPrefix(p, templateDir+"/")
		outputPath := filepath.Join(outputDir, filepath.FromSlash(relPath))

		if d.IsDir() {
			return os.MkdirAll(outputPath, os.ModePerm)
		}

		ref := TemplateRef{Path: strings.TrimPrefix(p, "templates/")}
		return te.GenerateFile(ref, strings.TrimSuffix(outputPath, ".tmpl"), data)
	})
}

func (te *TemplateEngine) ValidateTemplate(templateRef TemplateRef) error {
	templatePath := path.Join("templates", templateRef.Path)

	info, err := fs.Stat(TemplateFS, templatePath)
	if err != nil {
		return fmt.Errorf("template not found: %s", templateRef.Path)
	}

	if info.IsDir() != templateRef.IsDirectory() {
		return fmt.Errorf("template reference type mismatch for %s: expected dir=%t, got dir=%t",
			templateRef.Path, templateRef.IsDirectory(), info.IsDir())
	}

	return nil
}
