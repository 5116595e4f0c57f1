package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, RemapBackendMemory, cfg.Remap.Backend)
	require.Equal(t, 24*time.Hour, cfg.Remap.TTL)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tubtakes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  public_url: "https://tubtakes.example"
remap:
  backend: file
  path: /tmp/remap.json
  ttl: 30m
rankings:
  full_weight: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "https://tubtakes.example", cfg.Server.PublicURL)
	require.Equal(t, RemapBackendFile, cfg.Remap.Backend)
	require.Equal(t, 30*time.Minute, cfg.Remap.TTL)
	require.Equal(t, 3, cfg.Rankings.FullWeight)
	require.Equal(t, defaultCatalogPath, cfg.Catalog.Path)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"TUBTAKES_ADDR":            ":7000",
		"TUBTAKES_REMAP_BACKEND":   "none",
		"TUBTAKES_REMAP_TTL":       "5m",
		"TUBTAKES_REMAP_MAX_SLOTS": "12",
		"LOG_LEVEL":                "debug",
	}))
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.Server.Addr)
	require.Equal(t, RemapBackendNone, cfg.Remap.Backend)
	require.Equal(t, 5*time.Minute, cfg.Remap.TTL)
	require.Equal(t, 12, cfg.Remap.MaxSlots)
	require.Equal(t, "debug", cfg.Log.Level)

	err = cfg.ApplyEnv(envMap(map[string]string{"TUBTAKES_REMAP_TTL": "soon"}))
	require.ErrorContains(t, err, "TUBTAKES_REMAP_TTL")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Remap.Backend = "redis"
	cfg.Rankings.FullWeight = 0
	err := cfg.Validate()
	require.ErrorContains(t, err, "remap.backend")
	require.ErrorContains(t, err, "full_weight")

	cfg = Default()
	cfg.Remap.Backend = RemapBackendFile
	cfg.Remap.Path = ""
	require.ErrorContains(t, cfg.Validate(), "remap.path")
}
