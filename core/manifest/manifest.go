package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tristendillon/carve/core/models"
)

// Baseline holds the entries kept whether or not the scan saw them.
type Baseline struct {
	CorePackages []string
	DevPackages  []string
	DevPrefixes  []string
}

type Stats struct {
	Dependencies    int `json:"dependencies"`
	DevDependencies int `json:"devDependencies"`
	Total           int `json:"total"`
}

func Load(path string) (*models.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	var m models.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Write stores m with two-space indentation and a trailing newline.
func Write(path string, m *models.Manifest) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// TypesPackage derives the type-declaration package for name:
// "d3" gives "@types/d3", "@scope/pkg" gives "@types/scope__pkg".
func TypesPackage(name string) string {
	derived := strings.Replace(name, "@", "", 1)
	derived = strings.Replace(derived, "/", "__", 1)
	return "@types/" + derived
}

// Filter reduces src to what the detected packages and the baseline need.
// Nothing absent from src is ever added.
func Filter(src *models.Manifest, packages models.StringSet, baseline Baseline) (*models.Manifest, Stats) {
	out := &models.Manifest{
		Name:            src.Name,
		Version:         src.Version,
		Scripts:         src.Scripts,
		Private:         src.Private,
		Dependencies:    make(map[string]string),
		DevDependencies: make(map[string]string),
	}

	keep := func(dst, from map[string]string, name string) {
		if v, ok := from[name]; ok {
			dst[name] = v
		}
	}

	for _, name := range baseline.CorePackages {
		keep(out.Dependencies, src.Dependencies, name)
	}
	for _, name := range packages.Sorted() {
		keep(out.Dependencies, src.Dependencies, name)
	}

	for _, name := range baseline.DevPackages {
		keep(out.DevDependencies, src.DevDependencies, name)
	}
	for name, v := range src.DevDependencies {
		for _, prefix := range baseline.DevPrefixes {
			if strings.HasPrefix(name, prefix) {
				out.DevDependencies[name] = v
				break
			}
		}
	}
	for _, name := range packages.Sorted() {
		keep(out.DevDependencies, src.DevDependencies, TypesPackage(name))
		keep(out.DevDependencies, src.DevDependencies, name)
	}

	stats := Stats{
		Dependencies:    len(out.Dependencies),
		DevDependencies: len(out.DevDependencies),
	}
	stats.Total = stats.Dependencies + stats.DevDependencies
	return out, stats
}
