package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chtempdir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 80, cfg.Classify.AIThreshold)
	assert.Equal(t, 2, cfg.Classify.ConsensusRuns)
	assert.Equal(t, 0.85, cfg.Dedup.SimilarityThreshold)
	assert.Equal(t, 10*time.Second, cfg.Batch.PollInterval())
	assert.Equal(t, 2*time.Minute, cfg.Batch.MaxPollInterval())
	assert.Equal(t, 15*time.Minute, cfg.Classify.CacheTTL())
}

func TestLoadFromFile(t *testing.T) {
	dir := chtempdir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/payees
classify:
  consensus_runs: 3
  offline: true
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/payees", cfg.Store.DatabaseURL)
	assert.Equal(t, 3, cfg.Classify.ConsensusRuns)
	assert.True(t, cfg.Classify.Offline)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromEnv(t *testing.T) {
	chtempdir(t)
	t.Setenv("PAYEE_ANTHROPIC_KEY", "sk-test-123")
	t.Setenv("PAYEE_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", cfg.Anthropic.Key)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "not-a-level"}))
}

// chtempdir runs the test from an empty directory so a developer's local
// config.yaml cannot leak in.
func chtempdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}
