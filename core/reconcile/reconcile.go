package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/models"
	"gopkg.in/yaml.v3"
)

var ErrMalformedDeclaration = errors.New("malformed dependency declaration")

// DeclarationFiles are looked up in the component directory, first match wins.
var DeclarationFiles = []string{
	"dependencies.json",
	"dependencies.yaml",
	"dependencies.yml",
}

// LoadDeclaration reads the component's declaration file. A missing file
// returns nil with no error.
func LoadDeclaration(componentDir string) (*models.DeclaredDependencies, string, error) {
	for _, name := range DeclarationFiles {
		file := filepath.Join(componentDir, name)
		data, err := os.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, file, fmt.Errorf("failed to read %s: %w", file, err)
		}

		decl, err := ParseDeclaration(name, data)
		if err != nil {
			return nil, file, err
		}
		return decl, file, nil
	}
	return nil, "", nil
}

// ParseDeclaration decodes JSON or YAML depending on name's extension.
func ParseDeclaration(name string, data []byte) (*models.DeclaredDependencies, error) {
	var decl models.DeclaredDependencies
	var err error
	if strings.HasSuffix(name, ".json") {
		err = json.Unmarshal(data, &decl)
	} else {
		err = yaml.Unmarshal(data, &decl)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDeclaration, name, err)
	}
	return &decl, nil
}

// Reconcile unions the declared and inferred entries bucket by bucket.
// Every result bucket contains both inputs; overlapping entries appear once.
func Reconcile(component string, declared *models.DeclaredDependencies, inferred map[models.Bucket]models.StringSet) *models.Closure {
	closure := models.NewClosure(component)
	closure.Declared = declared != nil
	if declared != nil {
		closure.Environments = declared.Dependencies.Environments
	}

	for _, b := range models.Buckets {
		merged := models.NewStringSet(normalize(declared.Bucket(b))...)
		closure.Buckets[b] = merged.Union(inferred[b])
	}
	return closure
}

// normalize cleans declared entries. Entries leaving the project root are dropped.
func normalize(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(filepath.ToSlash(e))
		if e == "" {
			continue
		}
		e = path.Clean(e)
		if e == ".." || strings.HasPrefix(e, "../") {
			logger.Warn("Ignoring declared dependency outside the project: %s", e)
			continue
		}
		if e != "." {
			out = append(out, e)
		}
	}
	return out
}
