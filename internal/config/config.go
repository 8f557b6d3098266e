package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full validation-run configuration. Every field has a
// sensible default and can be overridden by a JSON or YAML file and then
// by environment variables.
type Config struct {
	Symbol string `json:"symbol" yaml:"symbol"`

	// Cost model
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
	SlippageRate   float64 `json:"slippage_rate" yaml:"slippage_rate"`
	Utilization    float64 `json:"utilization" yaml:"utilization"`

	// Backtest stage
	NSplits    int     `json:"n_splits" yaml:"n_splits"`
	EmbargoPct float64 `json:"embargo_pct" yaml:"embargo_pct"`

	// Walk-forward stage
	TrainWindowDays int `json:"train_window_days" yaml:"train_window_days"`
	TestWindowDays  int `json:"test_window_days" yaml:"test_window_days"`
	StepDays        int `json:"step_days" yaml:"step_days"`

	// Shared fold policy
	MinTrainBars   int           `json:"min_train_bars" yaml:"min_train_bars"`
	MinTestBars    int           `json:"min_test_bars" yaml:"min_test_bars"`
	FoldTimeout    time.Duration `json:"fold_timeout" yaml:"fold_timeout"`
	Workers        int           `json:"workers" yaml:"workers"`

	// Gap analysis
	ConfidenceLevel float64 `json:"confidence_level" yaml:"confidence_level"`
}

// Default returns the standard validation configuration.
func Default() *Config {
	return &Config{
		Symbol:          "BTCUSDT",
		InitialCapital:  10000,
		CommissionRate:  0.001,
		SlippageRate:    0.0005,
		Utilization:     0.95,
		NSplits:         5,
		EmbargoPct:      0.01,
		TrainWindowDays: 365 * 3,
		TestWindowDays:  90,
		StepDays:        30,
		MinTrainBars:    100,
		MinTestBars:     20,
		FoldTimeout:     5 * time.Minute,
		ConfidenceLevel: 0.95,
	}
}

// Load builds a configuration from defaults, an optional config file
// (.json, .yaml or .yml) and environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		case ".json":
			if err := json.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse JSON config: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Symbol = getEnv("VALIDATOR_SYMBOL", c.Symbol)
	c.InitialCapital = getEnvFloat("VALIDATOR_INITIAL_CAPITAL", c.InitialCapital)
	c.CommissionRate = getEnvFloat("VALIDATOR_COMMISSION_RATE", c.CommissionRate)
	c.SlippageRate = getEnvFloat("VALIDATOR_SLIPPAGE_RATE", c.SlippageRate)
	c.Utilization = getEnvFloat("VALIDATOR_UTILIZATION", c.Utilization)
	c.NSplits = getEnvInt("VALIDATOR_N_SPLITS", c.NSplits)
	c.EmbargoPct = getEnvFloat("VALIDATOR_EMBARGO_PCT", c.EmbargoPct)
	c.TrainWindowDays = getEnvInt("VALIDATOR_TRAIN_WINDOW_DAYS", c.TrainWindowDays)
	c.TestWindowDays = getEnvInt("VALIDATOR_TEST_WINDOW_DAYS", c.TestWindowDays)
	c.StepDays = getEnvInt("VALIDATOR_STEP_DAYS", c.StepDays)
	c.MinTrainBars = getEnvInt("VALIDATOR_MIN_TRAIN_BARS", c.MinTrainBars)
	c.MinTestBars = getEnvInt("VALIDATOR_MIN_TEST_BARS", c.MinTestBars)
	c.FoldTimeout = getEnvDuration("VALIDATOR_FOLD_TIMEOUT", c.FoldTimeout)
	c.Workers = getEnvInt("VALIDATOR_WORKERS", c.Workers)
	c.ConfidenceLevel = getEnvFloat("VALIDATOR_CONFIDENCE_LEVEL", c.ConfidenceLevel)
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %.4f", c.InitialCapital)
	}
	if c.CommissionRate < 0 || c.CommissionRate >= 1 {
		return fmt.Errorf("commission_rate must be in [0,1), got %.4f", c.CommissionRate)
	}
	if c.SlippageRate < 0 || c.SlippageRate >= 1 {
		return fmt.Errorf("slippage_rate must be in [0,1), got %.4f", c.SlippageRate)
	}
	if c.Utilization <= 0 || c.Utilization > 1 {
		return fmt.Errorf("utilization must be in (0,1], got %.4f", c.Utilization)
	}
	if c.NSplits <= 0 {
		return fmt.Errorf("n_splits must be positive, got %d", c.NSplits)
	}
	if c.EmbargoPct < 0 || c.EmbargoPct >= 0.5 {
		return fmt.Errorf("embargo_pct must be in [0,0.5), got %.4f", c.EmbargoPct)
	}
	if c.TrainWindowDays <= 0 || c.TestWindowDays <= 0 || c.StepDays <= 0 {
		return fmt.Errorf("walk-forward windows must be positive")
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence_level must be in (0,1), got %.4f", c.ConfidenceLevel)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
