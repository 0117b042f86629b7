package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sedalabs/scriptscan/internal/scoring"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ".scriptscan/scriptscan.db", cfg.Database.Path)
	assert.Equal(t, ":8090", cfg.Server.Addr)

	interval, err := cfg.ScanInterval()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, interval)

	sc, err := cfg.ScoringConfig()
	require.NoError(t, err)
	assert.Equal(t, scoring.DefaultConfig(), sc)
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /var/lib/scriptscan/db.sqlite
scan:
  interval: 30m
  on_start: true
  max_concurrent_projects: 8
scoring:
  threshold: 0.85
notify:
  per_minute: 10
server:
  addr: ":9000"
github:
  token: tok-from-file
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/scriptscan/db.sqlite", cfg.Database.Path)
	assert.True(t, cfg.Scan.OnStart)
	assert.Equal(t, 8, cfg.Scan.MaxConcurrentProjects)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Notify.PerMinute)
	assert.Equal(t, "tok-from-file", cfg.GitHub.Token)

	interval, err := cfg.ScanInterval()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, interval)

	sc, err := cfg.ScoringConfig()
	require.NoError(t, err)
	assert.InDelta(t, 0.85, sc.Threshold, 1e-9)
	assert.InDelta(t, 0.6, sc.FunctionWeight, 1e-9, "unset weights keep defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0o644))

	t.Setenv("SCRIPTSCAN_API_ADDR", ":7777")
	t.Setenv("SCRIPTSCAN_DB_PATH", "/tmp/override.db")
	t.Setenv("SCRIPTSCAN_SCORING_THRESHOLD", "0.9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)

	sc, err := cfg.ScoringConfig()
	require.NoError(t, err)
	assert.InDelta(t, 0.9, sc.Threshold, 1e-9)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad interval", yaml: "scan:\n  interval: soon\n"},
		{name: "negative rate", yaml: "notify:\n  per_minute: -1\n"},
		{name: "threshold out of range", yaml: "scoring:\n  threshold: 1.5\n"},
		{name: "unknown strategy", yaml: "scoring:\n  strategy: vibes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestGitHubTokenFallsBackToGITHUBTOKEN(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ambient-token")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ambient-token", cfg.GitHub.Token)
}
