package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, "public", cfg.DefaultVisibility)
	assert.Equal(t, "temp-deploy", cfg.WorkDir)
	assert.Equal(t, []string{"README.md"}, cfg.Documentation)
	assert.Equal(t, "@angular/", cfg.Framework.Scope)
	assert.Contains(t, cfg.Framework.CorePackages, "zone.js")
	assert.Equal(t, "src/app/components", cfg.Layout.ComponentsRoot())
	assert.Equal(t, 10*time.Minute, cfg.Verify.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Poll.Interval)
	assert.False(t, cfg.Rollback.RemoteOnAnyFailure)
	assert.True(t, cfg.GithubPages.CreateWorkflow)
	assert.Empty(t, cfg.Source)
}

func TestLoadYAMLOverrides(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "deploy-config.yaml"), `
defaultVisibility: private
githubUsername: octo
baseFiles: [angular.json, package.json]
githubPages:
  enabled: true
  create404: false
poll:
  interval: 3s
  maxAttempts: 4
`)

	cfg, err := Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, "private", cfg.DefaultVisibility)
	assert.Equal(t, "octo", cfg.GithubUsername)
	assert.Equal(t, []string{"angular.json", "package.json"}, cfg.BaseFiles)
	assert.True(t, cfg.GithubPages.Enabled)
	assert.False(t, cfg.GithubPages.Create404)
	assert.True(t, cfg.GithubPages.CreateWorkflow)
	assert.Equal(t, 3*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 4, cfg.Poll.MaxAttempts)
	assert.Equal(t, filepath.Join(root, "deploy-config.yaml"), cfg.Source)
}

func TestLoadJSONConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "deploy-config.json"), `{
  "defaultVisibility": "private",
  "alwaysIncludeFiles": ["src/environments/environment.ts"]
}`)

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, "private", cfg.DefaultVisibility)
	assert.Equal(t, []string{"src/environments/environment.ts"}, cfg.AlwaysIncludeFiles)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CARVE_GITHUBUSERNAME", "from-env")
	t.Setenv("CARVE_RETRY_ATTEMPTS", "7")

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GithubUsername)
	assert.Equal(t, 7, cfg.Retry.Attempts)
}

func TestLoadDotEnv(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), "CARVE_WORKDIR=staging-tree\n")
	t.Cleanup(func() { os.Unsetenv("CARVE_WORKDIR") })

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, "staging-tree", cfg.WorkDir)
}

func TestLoadMalformedFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "custom.yaml")
	writeFile(t, path, "defaultVisibility: [unclosed\n")

	_, err := Load(root, path)
	assert.Error(t, err)
}

func TestDefaultMatchesLoad(t *testing.T) {
	loaded, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, loaded, Default())
}
