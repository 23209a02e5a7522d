package reconcile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/carve/core/models"
)

func TestLoadDeclarationMissing(t *testing.T) {
	decl, path, err := LoadDeclaration(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, decl)
	assert.Empty(t, path)
}

func TestLoadDeclarationJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dependencies.json"), []byte(`{
  "dependencies": {
    "services": ["src/app/services/data.service"],
    "sharedModules": ["src/app/shared/x"],
    "assets": ["src/assets/fonts"],
    "environments": true
  }
}`), 0644))

	decl, path, err := LoadDeclaration(dir)
	require.NoError(t, err)
	require.NotNil(t, decl)
	assert.Equal(t, filepath.Join(dir, "dependencies.json"), path)
	assert.Equal(t, []string{"src/app/services/data.service"}, decl.Dependencies.Services)
	assert.Equal(t, []string{"src/app/shared/x"}, decl.Dependencies.SharedModules)
	assert.True(t, decl.Dependencies.Environments)
}

func TestLoadDeclarationYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dependencies.yaml"), []byte(`
dependencies:
  components: [src/app/components/legend]
  models:
    - src/app/models/palette
`), 0644))

	decl, _, err := LoadDeclaration(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app/components/legend"}, decl.Dependencies.Components)
	assert.Equal(t, []string{"src/app/models/palette"}, decl.Dependencies.Models)
}

func TestLoadDeclarationMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dependencies.json"), []byte(`{"dependencies": [`), 0644))

	decl, _, err := LoadDeclaration(dir)
	assert.Nil(t, decl)
	assert.True(t, errors.Is(err, ErrMalformedDeclaration))
}

func TestReconcileDeduplicatesOverlap(t *testing.T) {
	decl := &models.DeclaredDependencies{Dependencies: models.DeclaredBuckets{
		SharedModules: []string{"src/app/shared/x"},
	}}
	inferred := map[models.Bucket]models.StringSet{
		models.BucketShared: models.NewStringSet("src/app/shared/x"),
	}

	closure := Reconcile("word-cloud", decl, inferred)
	assert.Equal(t, []string{"src/app/shared/x"}, closure.Bucket(models.BucketShared).Sorted())
	assert.True(t, closure.Declared)
}

func TestReconcileUnionProperty(t *testing.T) {
	decl := &models.DeclaredDependencies{Dependencies: models.DeclaredBuckets{
		Services: []string{"./src/app/services/a", "src/app/services/b/"},
		Assets:   []string{"src/assets/logo.svg"},
	}}
	inferred := map[models.Bucket]models.StringSet{
		models.BucketServices: models.NewStringSet("src/app/services/b", "src/app/services/c"),
	}

	closure := Reconcile("word-cloud", decl, inferred)
	services := closure.Bucket(models.BucketServices)

	for _, p := range []string{"src/app/services/a", "src/app/services/b", "src/app/services/c"} {
		assert.True(t, services.Has(p), p)
	}
	assert.LessOrEqual(t, services.Len(), 2+2)
	assert.Equal(t, 3, services.Len())
	assert.True(t, closure.Bucket(models.BucketAssets).Has("src/assets/logo.svg"))
}

func TestReconcileDropsEntriesOutsideProject(t *testing.T) {
	decl := &models.DeclaredDependencies{Dependencies: models.DeclaredBuckets{
		SharedModules: []string{"../outside/x", "src/app/../../../etc", "..", "src/app/shared/./y", "."},
	}}

	closure := Reconcile("word-cloud", decl, nil)
	assert.Equal(t, []string{"src/app/shared/y"}, closure.Bucket(models.BucketShared).Sorted())
}

func TestReconcileWithoutDeclaration(t *testing.T) {
	inferred := map[models.Bucket]models.StringSet{
		models.BucketModels: models.NewStringSet("src/app/models/palette"),
	}

	closure := Reconcile("word-cloud", nil, inferred)
	assert.False(t, closure.Declared)
	assert.False(t, closure.Environments)
	assert.Equal(t, 1, closure.DependencyCount())
}
