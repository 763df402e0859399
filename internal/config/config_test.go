package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/sparqlflow/internal/config"
)

func TestNewReturnsSensibleDefaults(t *testing.T) {
	cfg := config.New()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 30*time.Second, cfg.Query.Timeout)
	assert.Equal(t, 256, cfg.Cache.Size)
}

func TestLoadLayersYAMLFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "sparqlflow.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
logging:
  level: debug
  format: json
cache:
  size: 1024
sources:
  - id: default
    type: rdfjs
`), 0o644))

	t.Setenv("CONFIG_FILE", yamlPath)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 1024, cfg.Cache.Size)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "default", cfg.Sources[0].ID)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "sparqlflow.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("logging:\n  level: debug\n  format: json\n"), 0o644))

	t.Setenv("CONFIG_FILE", yamlPath)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level, "expected environment override to win over YAML")
}

func TestLoadToleratesMissingYAMLFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level, "expected defaults to still apply")
}
