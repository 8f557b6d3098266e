package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.InDelta(t, 10000, cfg.InitialCapital, 1e-9)
	assert.InDelta(t, 0.001, cfg.CommissionRate, 1e-9)
	assert.InDelta(t, 0.0005, cfg.SlippageRate, 1e-9)
	assert.Equal(t, 5, cfg.NSplits)
	assert.Equal(t, 1095, cfg.TrainWindowDays)
	assert.Equal(t, 90, cfg.TestWindowDays)
	assert.Equal(t, 30, cfg.StepDays)
	assert.Equal(t, 5*time.Minute, cfg.FoldTimeout)
}

func TestLoadJSONOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"symbol": "ETHUSDT",
		"initial_capital": 25000,
		"n_splits": 3
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.InDelta(t, 25000, cfg.InitialCapital, 1e-9)
	assert.Equal(t, 3, cfg.NSplits)
	// Untouched fields keep their defaults.
	assert.InDelta(t, 0.001, cfg.CommissionRate, 1e-9)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbol: SOLUSDT\nembargo_pct: 0.02\ntest_window_days: 60\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "SOLUSDT", cfg.Symbol)
	assert.InDelta(t, 0.02, cfg.EmbargoPct, 1e-9)
	assert.Equal(t, 60, cfg.TestWindowDays)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"n_splits": 3}`), 0644))

	t.Setenv("VALIDATOR_N_SPLITS", "7")
	t.Setenv("VALIDATOR_COMMISSION_RATE", "0.002")
	t.Setenv("VALIDATOR_UTILIZATION", "0.8")
	t.Setenv("VALIDATOR_FOLD_TIMEOUT", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.NSplits)
	assert.InDelta(t, 0.002, cfg.CommissionRate, 1e-9)
	assert.InDelta(t, 0.8, cfg.Utilization, 1e-9)
	assert.Equal(t, 90*time.Second, cfg.FoldTimeout)
}

func TestLoadRejectsOutOfRangeEnvUtilization(t *testing.T) {
	t.Setenv("VALIDATOR_UTILIZATION", "1.5")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.InitialCapital = 0 },
		func(c *Config) { c.CommissionRate = 1.5 },
		func(c *Config) { c.SlippageRate = -0.1 },
		func(c *Config) { c.Utilization = 0 },
		func(c *Config) { c.Utilization = 1.2 },
		func(c *Config) { c.NSplits = 0 },
		func(c *Config) { c.EmbargoPct = 0.6 },
		func(c *Config) { c.TrainWindowDays = 0 },
		func(c *Config) { c.ConfidenceLevel = 1.0 },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), "case %d", i)
	}
}
