package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, 5, cfg.Workers.Concurrency)
	require.Equal(t, 60*time.Second, cfg.Workers.PollInterval)
	require.Equal(t, 50, cfg.LLM.RateLimit)
	require.Equal(t, 5, cfg.LLM.MaxAttempts)
	require.Equal(t, 300*time.Second, cfg.LLM.MaxElapsed)
	require.Equal(t, "jobs", cfg.Elasticsearch.Alias)
	require.Equal(t, 1000, cfg.Elasticsearch.PageSize)
	require.InEpsilon(t, 1.0, cfg.Search.MinScore, 1e-9)
}

func TestLoadConfigExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_DB_URL", "postgres://worker:secret@db:5432/jobs")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("database:\n  url: ${TEST_DB_URL}\nworkers:\n  concurrency: 8\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "postgres://worker:secret@db:5432/jobs", cfg.Database.URL)
	require.Equal(t, 8, cfg.Workers.Concurrency)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("LLM_MODEL", "claude-3-5-sonnet-latest")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "claude-3-5-sonnet-latest", cfg.LLM.Model)
}
