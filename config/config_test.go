package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "trading:\n  symbol: NQ\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "NQ", cfg.Trading.Symbol)
	assert.Equal(t, 10000.0, cfg.Trading.InitialCapital)
	assert.Equal(t, 30*time.Second, cfg.PollInterval())
	assert.Equal(t, "trendbot.db", cfg.Storage.DSN)
	assert.Equal(t, "text", cfg.Log.Format)

	// Parámetros de estrategia por defecto
	assert.Equal(t, 200, cfg.Strategy.EMAPeriod)
	assert.Equal(t, 10, cfg.Strategy.STATRPeriod)
	assert.Equal(t, 3.0, cfg.Strategy.STMultiplier)
	assert.Equal(t, 1.2, cfg.Strategy.TPPct)
	assert.Equal(t, 0.4, cfg.Strategy.SLPct)
	assert.Equal(t, 5.0, cfg.Risk.MaxDailyLossPct)
}

func TestLoadOverridesFromYAML(t *testing.T) {
	path := writeConfig(t, `
trading:
  symbol: ES
  initial_capital: 25000
  poll_interval_seconds: 60
strategy:
  ema_period: 100
  tp_pct: 2.0
risk:
  max_daily_loss_pct: 3
storage:
  dsn: custom.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ES", cfg.Trading.Symbol)
	assert.Equal(t, 25000.0, cfg.Trading.InitialCapital)
	assert.Equal(t, time.Minute, cfg.PollInterval())
	assert.Equal(t, 100, cfg.Strategy.EMAPeriod)
	assert.Equal(t, 2.0, cfg.Strategy.TPPct)
	// Lo no tocado conserva el default
	assert.Equal(t, 0.4, cfg.Strategy.SLPct)
	assert.Equal(t, 3.0, cfg.Risk.MaxDailyLossPct)
	assert.Equal(t, "custom.db", cfg.Storage.DSN)
}

func TestLoadRejectsInvalidStrategy(t *testing.T) {
	path := writeConfig(t, `
trading:
  symbol: NQ
strategy:
  ema_period: -5
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidRisk(t *testing.T) {
	path := writeConfig(t, `
trading:
  symbol: NQ
risk:
  max_contracts: 1
  min_contracts: 5
  max_daily_loss_pct: 5
  max_drawdown_pct: 20
  risk_per_trade_pct: 1
  max_position_pct: 10
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRADING_SYMBOL", "YM")

	path := writeConfig(t, "trading:\n  symbol: NQ\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "YM", cfg.Trading.Symbol)
}
