package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeOrchestrator/internal/adapters/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "./data/orders.db", cfg.DBPath)
	assert.False(t, cfg.UseMemoryStore)
	assert.Equal(t, 2_000_000.0, cfg.PortfolioValue)
	assert.Equal(t, 75.0, cfg.EscalationThreshold)
	assert.Equal(t, 85.0, cfg.AutoApproveLimit)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("USE_MEMORY_STORE", "true")
	t.Setenv("PORTFOLIO_VALUE", "5000000")
	t.Setenv("RISK_TIMEOUT_ALGO_MS", "25")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.True(t, cfg.UseMemoryStore)
	assert.Equal(t, 5_000_000.0, cfg.PortfolioValue)
	assert.Equal(t, 25*time.Millisecond, cfg.RiskTimeoutAlgo)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Setenv("ESCALATION_THRESHOLD", "90")
	t.Setenv("AUTO_APPROVE_LIMIT", "85")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ESCALATION_THRESHOLD")
}

func TestLoadConfigInvalidPortfolioValue(t *testing.T) {
	t.Setenv("PORTFOLIO_VALUE", "not-a-number")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORTFOLIO_VALUE")
}

func TestProfileOverridesFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	data := []byte(`
STANDARD:
  risk_timeout_ms: 20000
  escalation_threshold: 80
ALGORITHMIC:
  risk_timeout_ms: 30
`)
	require.NoError(t, os.WriteFile(path, data, 0644))
	t.Setenv("PROFILE_OVERRIDES_PATH", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Contains(t, cfg.ProfileOverrides, "STANDARD")
	assert.Equal(t, 20000, cfg.ProfileOverrides["STANDARD"].RiskTimeoutMs)
	assert.Equal(t, 80.0, cfg.ProfileOverrides["STANDARD"].EscalationThreshold)
	assert.Equal(t, 30, cfg.ProfileOverrides["ALGORITHMIC"].RiskTimeoutMs)
}

func TestProfileOverridesBadFile(t *testing.T) {
	t.Setenv("PROFILE_OVERRIDES_PATH", "/does/not/exist.yaml")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile overrides")
}
