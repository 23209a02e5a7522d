package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/carve/core/models"
)

func sourceManifest() *models.Manifest {
	private := true
	return &models.Manifest{
		Name:    "angular-project-sample",
		Version: "0.0.0",
		Scripts: json.RawMessage(`{"ng":"ng","build":"ng build"}`),
		Private: &private,
		Dependencies: map[string]string{
			"@angular/core":   "^20.0.0",
			"@angular/common": "^20.0.0",
			"rxjs":            "~7.8.0",
			"zone.js":         "~0.15.0",
			"d3":              "^7.9.0",
			"@ngrx/store":     "^20.0.0",
			"moment":          "^2.30.1",
		},
		DevDependencies: map[string]string{
			"@angular/cli":                  "^20.0.0",
			"@angular/language-service":     "^20.0.0",
			"@angular-devkit/build-angular": "^20.0.0",
			"typescript":                    "~5.8.0",
			"@types/d3":                     "^7.4.3",
			"@types/ngrx__store":            "^1.0.0",
			"eslint":                        "^9.0.0",
			"chart.js":                      "^4.4.0",
		},
	}
}

func baseline() Baseline {
	return Baseline{
		CorePackages: []string{"@angular/core", "@angular/common", "@angular/forms", "rxjs", "tslib", "zone.js"},
		DevPackages:  []string{"typescript", "karma"},
		DevPrefixes:  []string{"@angular-devkit/", "@angular/", "@schematics/"},
	}
}

func TestTypesPackage(t *testing.T) {
	assert.Equal(t, "@types/d3", TypesPackage("d3"))
	assert.Equal(t, "@types/ngrx__store", TypesPackage("@ngrx/store"))
}

func TestFilterSelection(t *testing.T) {
	src := sourceManifest()
	out, stats := Filter(src, models.NewStringSet("d3", "@ngrx/store", "lodash", "chart.js"), baseline())

	assert.Equal(t, map[string]string{
		"@angular/core":   "^20.0.0",
		"@angular/common": "^20.0.0",
		"rxjs":            "~7.8.0",
		"zone.js":         "~0.15.0",
		"d3":              "^7.9.0",
		"@ngrx/store":     "^20.0.0",
	}, out.Dependencies)

	assert.Equal(t, map[string]string{
		"@angular/cli":                  "^20.0.0",
		"@angular/language-service":     "^20.0.0",
		"@angular-devkit/build-angular": "^20.0.0",
		"typescript":                    "~5.8.0",
		"@types/d3":                     "^7.4.3",
		"@types/ngrx__store":            "^1.0.0",
		"chart.js":                      "^4.4.0",
	}, out.DevDependencies)

	assert.NotContains(t, out.Dependencies, "lodash")
	assert.NotContains(t, out.Dependencies, "moment")
	assert.NotContains(t, out.DevDependencies, "eslint")
	assert.Equal(t, Stats{Dependencies: 6, DevDependencies: 7, Total: 13}, stats)
}

func TestFilterIsSubsetOfSource(t *testing.T) {
	src := sourceManifest()
	out, _ := Filter(src, models.NewStringSet("lodash", "left-pad", "d3"), baseline())

	for name, v := range out.Dependencies {
		assert.Equal(t, src.Dependencies[name], v, name)
	}
	for name, v := range out.DevDependencies {
		assert.Equal(t, src.DevDependencies[name], v, name)
	}
	for _, core := range baseline().CorePackages {
		if _, ok := src.Dependencies[core]; ok {
			assert.Contains(t, out.Dependencies, core)
		}
	}
}

func TestFilterCopiesMetadataVerbatim(t *testing.T) {
	src := sourceManifest()
	out, _ := Filter(src, nil, baseline())

	assert.Equal(t, src.Name, out.Name)
	assert.Equal(t, src.Version, out.Version)
	assert.JSONEq(t, string(src.Scripts), string(out.Scripts))
	require.NotNil(t, out.Private)
	assert.True(t, *out.Private)
}

func TestLoadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "name": "sample",
  "version": "1.2.3",
  "scripts": {"start": "ng serve", "test": "ng test"},
  "dependencies": {"rxjs": "~7.8.0"},
  "devDependencies": {"typescript": "~5.8.0"}
}`), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, m.Private)

	out := filepath.Join(dir, "out.json")
	require.NoError(t, Write(out, m))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"start": "ng serve"`)
	assert.NotContains(t, string(data), `"private"`)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "package.json"))
	assert.Error(t, err)
}
